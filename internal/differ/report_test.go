package differ

import (
	"testing"

	"apiforge/internal/diag"
	"apiforge/internal/mapping"
)

func TestReportEmit(t *testing.T) {
	rep := &Report{
		Records: []Record{
			{DocID: "T:N.A", Module: "M", NodeKind: mapping.KindType, Kind: Changed, RuleID: "CannotSealType", Severity: Incompatible, Message: "type is now sealed"},
			{DocID: "T:N.B", Module: "M", NodeKind: mapping.KindType, Kind: Added, RuleID: MustExistID, Severity: Incompatible, Message: "missing"},
			{DocID: "T:N.C", Module: "M", NodeKind: mapping.KindType, Kind: Removed},
		},
		Suppressed: []Suppression{{RuleID: "CannotChangeInheritance", DocID: "T:N.D", Reason: "renamed"}},
	}
	bag := diag.NewBag(0)
	rep.Emit(diag.BagReporter{Bag: bag})

	if bag.Len() != 3 {
		t.Fatalf("want 3 diagnostics, got %d", bag.Len())
	}
	items := bag.Items()
	if items[0].Code != diag.DifIncompatible || items[0].Severity != diag.SevError {
		t.Fatalf("unexpected first diagnostic %+v", items[0])
	}
	if items[1].Code != diag.DifMustExist {
		t.Fatalf("want DifMustExist, got %s", items[1].Code.ID())
	}
	if items[2].Code != diag.DifExempted || items[2].Severity != diag.SevInfo {
		t.Fatalf("suppression must be informational, got %+v", items[2])
	}
	if rep.Count(Removed) != 1 || rep.Incompatible() != 2 {
		t.Fatalf("counts: removed=%d incompatible=%d", rep.Count(Removed), rep.Incompatible())
	}
}
