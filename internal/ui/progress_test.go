package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"apiforge/internal/facade"
)

func TestProgressTracksContracts(t *testing.T) {
	events := make(chan facade.Event)
	m := NewProgressModel("facades", []string{"Widgets", "Gadgets"}, events).(*progressModel)

	m.applyEvent(facade.Event{Contract: "Widgets", Stage: facade.StageRewrite, Status: facade.StatusWorking})
	if got := m.items[0].status; got != "rewriting" {
		t.Fatalf("status = %q, want rewriting", got)
	}
	m.applyEvent(facade.Event{Contract: "Widgets", Stage: facade.StageEmit, Status: facade.StatusDone})
	m.applyEvent(facade.Event{Contract: "Gadgets", Stage: facade.StageResolve, Status: facade.StatusError, Err: errors.New("ambiguous")})
	m.applyEvent(facade.Event{Contract: "Unknown", Stage: facade.StageEmit, Status: facade.StatusDone})

	if got := m.percent(); got != 1.0 {
		t.Fatalf("percent = %v, want 1", got)
	}
	view := m.View()
	if !strings.Contains(view, "Widgets") || !strings.Contains(view, "error") {
		t.Fatalf("view missing rows:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("System.Runtime.Contracts", 10); got != "System...." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("Системные.Контракты", 12); runewidth.StringWidth(got) != 12 {
		t.Fatalf("truncate = %q, width %d", got, runewidth.StringWidth(got))
	}
	if got := truncate("Short", 10); got != "Short" {
		t.Fatalf("truncate = %q", got)
	}
}
