package differ

import (
	"apiforge/internal/diag"
	"apiforge/internal/mapping"
)

// Record is one output row: a classified node, or one difference on it.
type Record struct {
	DocID    string
	Module   string
	NodeKind mapping.Kind
	Kind     DifferenceKind
	RuleID   string
	Severity Severity
	Message  string
}

type Suppression struct {
	RuleID string
	DocID  string
	Reason string
}

type Report struct {
	Records    []Record
	Suppressed []Suppression
}

// Incompatible counts incompatible difference records.
func (r *Report) Incompatible() int {
	n := 0
	for _, rec := range r.Records {
		if rec.RuleID != "" && rec.Severity == Incompatible {
			n++
		}
	}
	return n
}

// Count tallies distinct nodes by classification.
func (r *Report) Count(kind DifferenceKind) int {
	n := 0
	var last *Record
	for i := range r.Records {
		rec := &r.Records[i]
		if last != nil && last.DocID == rec.DocID && last.Module == rec.Module && last.NodeKind == rec.NodeKind {
			continue
		}
		last = rec
		if rec.Kind == kind {
			n++
		}
	}
	return n
}

// Differences returns only the records carrying a rule finding.
func (r *Report) Differences() []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.RuleID != "" {
			out = append(out, rec)
		}
	}
	return out
}

// Emit forwards every finding to rep as a diagnostic.
func (r *Report) Emit(rep diag.Reporter) {
	for _, rec := range r.Records {
		if rec.RuleID == "" {
			continue
		}
		code, sev := diag.DifCompatible, diag.SevInfo
		switch {
		case rec.RuleID == MustExistID:
			code, sev = diag.DifMustExist, diag.SevError
		case rec.Severity == Incompatible:
			code, sev = diag.DifIncompatible, diag.SevError
		}
		diag.NewReportBuilder(rep, sev, code, diag.Location{Module: rec.Module, DocID: rec.DocID},
			rec.RuleID+": "+rec.Message).Emit()
	}
	for _, s := range r.Suppressed {
		diag.ReportInfo(rep, diag.DifExempted, diag.Location{DocID: s.DocID}, s.RuleID+": "+s.Reason).Emit()
	}
}
