package facade

import (
	"fmt"

	"apiforge/internal/diag"
	"apiforge/internal/meta"
)

// versionSatisfied reports whether seed may stand in for contract under p.
func versionSatisfied(contract, seed meta.Version, p VersionPolicy) bool {
	if p.ForceZero || p.Mode == VersionIgnore {
		return true
	}
	if p.IgnoreBuildAndRevision {
		contract = contract.WithoutBuildAndRevision()
		seed = seed.WithoutBuildAndRevision()
	}
	if p.Mode == VersionExact {
		return seed.Compare(contract) == 0
	}
	return seed.Compare(contract) >= 0
}

// checkVersions applies the policy once per seed module bound by the contract.
func checkVersions(h *meta.Host, contract meta.ModuleID, forwards []Forward, p VersionPolicy, r diag.Reporter) {
	want := h.Module(contract).Version
	seen := make(map[meta.ModuleID]struct{})
	for _, fw := range forwards {
		if _, ok := seen[fw.Module]; ok {
			continue
		}
		seen[fw.Module] = struct{}{}
		got := h.Module(fw.Module).Version
		if versionSatisfied(want, got, p) {
			continue
		}
		sev := diag.SevError
		if p.OnMismatch == MismatchWarn {
			sev = diag.SevWarning
		}
		diag.NewReportBuilder(r, sev, diag.FacVersionMismatch,
			diag.Location{Module: h.ModuleName(contract), DocID: fw.DocID},
			fmt.Sprintf("seed %s version %s does not satisfy %s contract version %s",
				fw.Seed.Name, got, p.Mode, want)).
			WithNote(diag.Location{Module: h.ModuleOrigin(fw.Module)}, "seed module").
			Emit()
	}
}
