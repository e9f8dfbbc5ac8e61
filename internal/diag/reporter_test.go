package diag

import (
	"strings"
	"sync"
	"testing"
)

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	r := BagReporter{Bag: bag}
	b := ReportError(r, FacAmbiguousType, Location{Module: "Contracts", DocID: "T:System.Apple"}, "ambiguous").
		WithNote(Location{Module: "Seed1"}, "candidate").
		WithNote(Location{Module: "Seed2"}, "candidate")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("want 1 diagnostic, got %d", bag.Len())
	}
	if n := len(bag.Items()[0].Notes); n != 2 {
		t.Fatalf("want 2 notes, got %d", n)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	loc := Location{Module: "M", DocID: "T:A"}
	ReportWarning(r, MapUnresolvedForward, loc, "unresolved").Emit()
	ReportWarning(r, MapUnresolvedForward, loc, "unresolved").Emit()
	ReportError(r, MapUnresolvedForward, loc, "unresolved").Emit()
	if bag.Len() != 2 {
		t.Fatalf("want 2 diagnostics, got %d", bag.Len())
	}
}

func TestLockedReporterConcurrent(t *testing.T) {
	bag := NewBag(0)
	r := NewLockedReporter(BagReporter{Bag: bag})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ReportInfo(r, DifInfo, Location{}, "hello").Emit()
		}()
	}
	wg.Wait()
	if bag.Len() != 16 {
		t.Fatalf("want 16 diagnostics, got %d", bag.Len())
	}
}

func TestFormatShort(t *testing.T) {
	d := NewError(DifIncompatible, Location{Module: "Contracts", DocID: "T:System.Apple"}, "base type changed").
		WithNote(Location{Module: "Impl"}, "seen here")
	var sb strings.Builder
	if err := FormatShort(&sb, []Diagnostic{d}); err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "error DIF3001 Contracts!T:System.Apple: base type changed\n  note Impl: seen here\n"
	if sb.String() != want {
		t.Fatalf("want %q, got %q", want, sb.String())
	}
}

func TestCodeStrings(t *testing.T) {
	if got := FacAmbiguousType.ID(); got != "FAC4002" {
		t.Fatalf("want FAC4002, got %s", got)
	}
	if got := Code(9999).Title(); got != "Unknown error" {
		t.Fatalf("unknown code title: %q", got)
	}
	if got := Code(42).ID(); got != "E0000" {
		t.Fatalf("want E0000, got %s", got)
	}
}
