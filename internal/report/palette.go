package report

import (
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"apiforge/internal/diag"
	"apiforge/internal/differ"
)

type palette struct {
	on bool
}

func (p palette) paint(s string, attrs ...color.Attribute) string {
	if !p.on || s == "" {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func (p palette) kind(k differ.DifferenceKind) string {
	label := runewidth.FillRight(k.String(), kindWidth)
	switch k {
	case differ.Added:
		return p.paint(label, color.FgGreen)
	case differ.Removed:
		return p.paint(label, color.FgRed)
	case differ.Changed:
		return p.paint(label, color.FgYellow)
	case differ.Unchanged:
		return p.paint(label, color.Faint)
	}
	return p.paint(label, color.FgMagenta)
}

func (p palette) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.paint(s.Label(), color.FgRed, color.Bold)
	case diag.SevWarning:
		return p.paint(s.Label(), color.FgYellow, color.Bold)
	}
	return p.paint(s.Label(), color.FgCyan)
}

const kindWidth = 9

// truncate shortens s to width cells, keeping the tail where the type and
// member names live.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	runes := []rune(s)
	w := 1
	i := len(runes)
	for i > 0 {
		rw := runewidth.RuneWidth(runes[i-1])
		if w+rw > width {
			break
		}
		w += rw
		i--
	}
	return "…" + string(runes[i:])
}
