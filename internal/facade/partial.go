package facade

import (
	"fmt"
	"strings"

	"apiforge/internal/diag"
	"apiforge/internal/meta"
)

// checkPartialIdentity verifies that the partial module can stand in for the
// contract: same name, major and minor, build and revision unless the policy
// ignores them, and the same key token.
func checkPartialIdentity(contract, partial *meta.Module, p VersionPolicy, r diag.Reporter) bool {
	var problems []string
	if contract.Name != partial.Name {
		problems = append(problems, fmt.Sprintf("name %s != %s", partial.Name, contract.Name))
	}
	cv, pv := contract.Version, partial.Version
	if cv.Major != pv.Major || cv.Minor != pv.Minor {
		problems = append(problems, fmt.Sprintf("version %s != %s", pv, cv))
	} else if !p.IgnoreBuildAndRevision && (cv.Build != pv.Build || cv.Revision != pv.Revision) {
		problems = append(problems, fmt.Sprintf("build/revision %s != %s", pv, cv))
	}
	if contract.PublicKeyToken != partial.PublicKeyToken {
		problems = append(problems, fmt.Sprintf("key token %q != %q", partial.PublicKeyToken, contract.PublicKeyToken))
	}
	if len(problems) == 0 {
		return true
	}
	diag.ReportError(r, diag.FacPartialMismatch, diag.Location{Module: contract.Name},
		fmt.Sprintf("partial facade does not match contract %s: %s", contract.Identity(), strings.Join(problems, "; "))).Emit()
	return false
}

// undefinedIn drops the doc-ids the partial module defines itself.
func undefinedIn(h *meta.Host, partial meta.ModuleID, docIDs []string) []string {
	out := make([]string, 0, len(docIDs))
	for _, id := range docIDs {
		if h.FindType(partial, id).IsValid() {
			continue
		}
		out = append(out, id)
	}
	return out
}

// rewritePartial copies the partial module, redirects its references to the
// new forwards and appends them. Its types and debug stream stay.
func rewritePartial(h *meta.Host, partial meta.ModuleID, forwards []Forward, opts Options, r diag.Reporter) *meta.Module {
	src := h.Module(partial)
	out := newRedirector(src.Name, forwards).module(src)
	addForwards(h, out, forwards, r)
	finishFacade(h, out, src.References, forwards, opts)
	return out
}
