package diag

import (
	"strings"
	"testing"
)

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	loc := Location{Module: "M", DocID: "T:A"}
	for i := 0; i < 3; i++ {
		ok := b.Add(NewError(DifIncompatible, loc, "x"))
		if want := i < 2; ok != want {
			t.Fatalf("add %d: want %v, got %v", i, want, ok)
		}
	}
	if b.Len() != 2 {
		t.Fatalf("want 2 items, got %d", b.Len())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("expected errors and warnings to be reported")
	}
}

func TestBagUnlimited(t *testing.T) {
	b := NewBag(0)
	for i := 0; i < 300; i++ {
		if !b.Add(NewWarning(MapUnresolvedForward, Location{}, "w")) {
			t.Fatalf("unlimited bag rejected item %d", i)
		}
	}
	if b.HasErrors() {
		t.Fatalf("warnings only, HasErrors must be false")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(NewWarning(FacMissingType, Location{Module: "B", DocID: "T:X"}, "missing"))
	b.Add(NewError(FacAmbiguousType, Location{Module: "A", DocID: "T:Y"}, "ambiguous"))
	b.Add(NewWarning(FacMissingType, Location{Module: "A", DocID: "T:Y"}, "missing"))
	b.Add(NewError(FacAmbiguousType, Location{Module: "A", DocID: "T:Y"}, "ambiguous"))
	b.Sort()
	b.Dedup()

	got := make([]string, 0, b.Len())
	for _, d := range b.Items() {
		got = append(got, d.Primary.String()+" "+d.Code.ID())
	}
	want := []string{"A!T:Y FAC4002", "A!T:Y FAC4001", "B!T:X FAC4001"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(IOReadFailed, Location{Module: "A"}, "a"))
	other := NewBag(2)
	other.Add(NewError(IOReadFailed, Location{Module: "B"}, "b"))
	other.Add(NewError(IOReadFailed, Location{Module: "C"}, "c"))
	a.Merge(other)
	if a.Len() != 3 || a.Cap() != 3 {
		t.Fatalf("want len=3 cap=3, got len=%d cap=%d", a.Len(), a.Cap())
	}
}
