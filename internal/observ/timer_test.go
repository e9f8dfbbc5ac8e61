package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	if err := tm.Measure("load", func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	if err := tm.Measure("diff", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Measure returned %v", err)
	}
	tm.End(7, "ignored")

	rep := tm.Report()
	if len(rep.Stages) != 2 {
		t.Fatalf("got %d stages", len(rep.Stages))
	}
	if rep.Stages[0].DurationMS != 2 || rep.TotalMS != 4 {
		t.Fatalf("unexpected durations %+v", rep)
	}
	if rep.Stages[1].Note != "failed" {
		t.Fatalf("failed stage note = %q", rep.Stages[1].Note)
	}
	if s := tm.Summary(); !strings.Contains(s, "diff") || !strings.Contains(s, "total") {
		t.Fatalf("summary missing lines:\n%s", s)
	}
}

func TestEmptyTimer(t *testing.T) {
	if rep := NewTimer().Report(); rep.TotalMS != 0 || rep.Stages != nil {
		t.Fatalf("expected empty report, got %+v", rep)
	}
}
