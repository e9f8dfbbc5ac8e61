package facade

import (
	"fmt"
	"strings"

	"apiforge/internal/diag"
	"apiforge/internal/meta"
)

// Forward binds a contract doc-id to the seed type that implements it.
type Forward struct {
	DocID  string
	Seed   meta.Identity
	Module meta.ModuleID
	Type   meta.TypeID
}

// Ambiguity is a doc-id that more than one seed defines and no preference
// settled.
type Ambiguity struct {
	Contract   string
	DocID      string
	Candidates []string
}

// Missing is a contract doc-id no seed defines.
type Missing struct {
	Contract string
	DocID    string
}

type binding struct {
	forwards  []Forward
	missing   []Missing
	ambiguous []Ambiguity
}

// bind resolves each doc-id to one seed type. docIDs must already be sorted.
func bind(h *meta.Host, contract string, docIDs []string, seeds seedTable, opts Options, r diag.Reporter) binding {
	var out binding
	for _, docID := range docIDs {
		cands := seeds[docID]
		switch len(cands) {
		case 0:
			out.missing = append(out.missing, Missing{Contract: contract, DocID: docID})
			loc := diag.Location{Module: contract, DocID: docID}
			if opts.MissingTypes == MissingIgnore {
				diag.ReportWarning(r, diag.FacMissingType, loc,
					fmt.Sprintf("type %s not found in any seed module; omitted from the facade", docID)).Emit()
			} else {
				diag.ReportError(r, diag.FacMissingType, loc,
					fmt.Sprintf("type %s not found in any seed module", docID)).Emit()
			}
			continue
		case 1:
			out.forwards = append(out.forwards, newForward(h, docID, cands[0], opts))
			continue
		}
		c, ok := pickPreferred(h, docID, cands, opts.Preferences, contract, r)
		if !ok {
			out.ambiguous = append(out.ambiguous, Ambiguity{
				Contract:   contract,
				DocID:      docID,
				Candidates: candidateNames(h, cands),
			})
			continue
		}
		out.forwards = append(out.forwards, newForward(h, docID, c, opts))
	}
	return out
}

func pickPreferred(h *meta.Host, docID string, cands []candidate, prefs Preferences, contract string, r diag.Reporter) (candidate, bool) {
	names := candidateNames(h, cands)
	loc := diag.Location{Module: contract, DocID: docID}
	want, ok := prefs[docID]
	if !ok {
		b := diag.ReportError(r, diag.FacAmbiguousType, loc,
			fmt.Sprintf("type %s is defined in multiple seed modules: %s; add a seed type preference to choose one",
				docID, strings.Join(names, ", ")))
		for _, name := range names {
			b.WithNote(diag.Location{Module: name}, fmt.Sprintf("prefer with %s=%s", strings.TrimPrefix(docID, "T:"), name))
		}
		b.Emit()
		return candidate{}, false
	}
	var match []candidate
	for _, c := range cands {
		if sameModuleName(h.ModuleName(c.module), want) {
			match = append(match, c)
		}
	}
	if len(match) != 1 {
		diag.ReportError(r, diag.FacPreferenceUnmatched, loc,
			fmt.Sprintf("preferred seed %q does not single out type %s among %s", want, docID, strings.Join(names, ", "))).Emit()
		return candidate{}, false
	}
	return match[0], true
}

func candidateNames(h *meta.Host, cands []candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, h.ModuleName(c.module))
	}
	return out
}

func newForward(h *meta.Host, docID string, c candidate, opts Options) Forward {
	seed := h.Module(c.module).Identity()
	if opts.Version.ForceZero {
		seed.Version = meta.Version{}
	}
	return Forward{DocID: docID, Seed: seed, Module: c.module, Type: c.typ}
}
