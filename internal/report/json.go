package report

import (
	"encoding/json"
	"io"

	"apiforge/internal/diag"
	"apiforge/internal/differ"
	"apiforge/internal/facade"
)

// LocationJSON names the module and symbol a diagnostic is about.
type LocationJSON struct {
	Module string `json:"module,omitempty"`
	DocID  string `json:"doc_id,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

type RecordJSON struct {
	DocID    string `json:"doc_id"`
	Module   string `json:"module,omitempty"`
	Node     string `json:"node"`
	Kind     string `json:"kind"`
	Rule     string `json:"rule,omitempty"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message,omitempty"`
}

type SuppressionJSON struct {
	Rule   string `json:"rule"`
	DocID  string `json:"doc_id"`
	Reason string `json:"reason"`
}

// DiffOutput is the root of `diff --format json`.
type DiffOutput struct {
	Records      []RecordJSON      `json:"records"`
	Count        int               `json:"count"`
	Incompatible int               `json:"incompatible"`
	Suppressed   []SuppressionJSON `json:"suppressed,omitempty"`
	Diagnostics  []DiagnosticJSON  `json:"diagnostics,omitempty"`
}

type ForwardJSON struct {
	DocID string `json:"doc_id"`
	Seed  string `json:"seed"`
}

type FacadeJSON struct {
	Contract string        `json:"contract"`
	Partial  bool          `json:"partial,omitempty"`
	Output   string        `json:"output,omitempty"`
	Forwards []ForwardJSON `json:"forwards"`
}

type AmbiguityJSON struct {
	Contract   string   `json:"contract"`
	DocID      string   `json:"doc_id"`
	Candidates []string `json:"candidates"`
}

// FacadeOutput is the root of `facade --format json`.
type FacadeOutput struct {
	Facades     []FacadeJSON     `json:"facades"`
	Unresolved  []LocationJSON   `json:"unresolved,omitempty"`
	Ambiguous   []AmbiguityJSON  `json:"ambiguous,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
}

func makeLocation(l diag.Location) LocationJSON {
	return LocationJSON{Module: l.Module, DocID: l.DocID}
}

// BuildDiagnostics converts diagnostics without serialising them.
func BuildDiagnostics(items []diag.Diagnostic, opts JSONOpts) []DiagnosticJSON {
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := make([]DiagnosticJSON, 0, n)
	for i := range n {
		d := items[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.At)}
			}
		}
		out = append(out, dj)
	}
	return out
}

func BuildDiffOutput(rep *differ.Report, diags []diag.Diagnostic, opts JSONOpts) DiffOutput {
	n := len(rep.Records)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiffOutput{
		Records:      make([]RecordJSON, 0, n),
		Incompatible: rep.Incompatible(),
		Diagnostics:  BuildDiagnostics(diags, opts),
	}
	for _, rec := range rep.Records[:n] {
		rj := RecordJSON{
			DocID:  rec.DocID,
			Module: rec.Module,
			Node:   rec.NodeKind.String(),
			Kind:   rec.Kind.String(),
			Rule:   rec.RuleID,
		}
		if rec.RuleID != "" {
			rj.Severity = rec.Severity.String()
			rj.Message = rec.Message
		}
		out.Records = append(out.Records, rj)
	}
	out.Count = len(out.Records)
	for _, s := range rep.Suppressed {
		out.Suppressed = append(out.Suppressed, SuppressionJSON{Rule: s.RuleID, DocID: s.DocID, Reason: s.Reason})
	}
	return out
}

// BuildFacadeOutput converts a synthesis result; outputs maps a contract name
// to the path its facade was written to.
func BuildFacadeOutput(res *facade.Result, outputs map[string]string, diags []diag.Diagnostic, opts JSONOpts) FacadeOutput {
	out := FacadeOutput{
		Facades:     make([]FacadeJSON, 0, len(res.Facades)),
		Diagnostics: BuildDiagnostics(diags, opts),
	}
	for _, fc := range res.Facades {
		fj := FacadeJSON{
			Contract: fc.Contract,
			Partial:  fc.Partial,
			Output:   outputs[fc.Contract],
			Forwards: make([]ForwardJSON, 0, len(fc.Forwards)),
		}
		for _, fw := range fc.Forwards {
			fj.Forwards = append(fj.Forwards, ForwardJSON{DocID: fw.DocID, Seed: fw.Seed.String()})
		}
		out.Facades = append(out.Facades, fj)
	}
	for _, m := range res.Unresolved {
		out.Unresolved = append(out.Unresolved, LocationJSON{Module: m.Contract, DocID: m.DocID})
	}
	for _, a := range res.Ambiguous {
		out.Ambiguous = append(out.Ambiguous, AmbiguityJSON{Contract: a.Contract, DocID: a.DocID, Candidates: a.Candidates})
	}
	return out
}

// JSON writes v indented.
func JSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
