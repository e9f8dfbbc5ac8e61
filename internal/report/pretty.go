package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"apiforge/internal/diag"
	"apiforge/internal/differ"
	"apiforge/internal/facade"
)

// PrettyDiff prints one line per record followed by the rule finding, if
// any, and a summary line.
//
//	changed   T:Garden.Apple
//	          CannotChangeInheritance: base type chain changed from [...] to [...]
func PrettyDiff(w io.Writer, rep *differ.Report, opts PrettyOpts) {
	p := palette{on: opts.Color}
	indent := strings.Repeat(" ", kindWidth+1)
	last := ""
	for _, rec := range rep.Records {
		if rec.DocID != last || rec.RuleID == "" {
			fmt.Fprintf(w, "%s %s\n", p.kind(rec.Kind), truncate(displayID(rec), opts.Width))
			last = rec.DocID
		}
		if rec.RuleID == "" {
			continue
		}
		rule := rec.RuleID
		if rec.Severity == differ.Incompatible {
			rule = p.paint(rule, color.FgRed, color.Bold)
		} else {
			rule = p.paint(rule, color.FgCyan)
		}
		fmt.Fprintf(w, "%s%s: %s\n", indent, rule, rec.Message)
	}
	if opts.ShowNotes {
		for _, s := range rep.Suppressed {
			fmt.Fprintf(w, "%s %s\n", p.paint(runewidth.FillRight("exempt", kindWidth), color.Faint), truncate(s.DocID, opts.Width))
			fmt.Fprintf(w, "%s%s: %s\n", indent, s.RuleID, s.Reason)
		}
	}
	if !opts.Quiet {
		fmt.Fprintln(w, summary(rep))
	}
}

func displayID(rec differ.Record) string {
	if rec.DocID == "" {
		return "<modules>"
	}
	return rec.DocID
}

func summary(rep *differ.Report) string {
	parts := []string{
		fmt.Sprintf("%d added", rep.Count(differ.Added)),
		fmt.Sprintf("%d removed", rep.Count(differ.Removed)),
		fmt.Sprintf("%d changed", rep.Count(differ.Changed)),
	}
	out := strings.Join(parts, ", ") + fmt.Sprintf(" (%d incompatible)", rep.Incompatible())
	if n := len(rep.Suppressed); n > 0 {
		out += fmt.Sprintf(", %d exempted", n)
	}
	return out
}

// PrettyDiagnostics renders diagnostics in a compiler-like layout.
//
//	error[FAC4002]: type T:Acme.Foo is defined in multiple seed modules
//	  --> Widgets!T:Acme.Foo
//	  note: Seed1: prefer with Acme.Foo=Seed1
func PrettyDiagnostics(w io.Writer, items []diag.Diagnostic, opts PrettyOpts) {
	p := palette{on: opts.Color}
	for _, d := range items {
		fmt.Fprintf(w, "%s[%s]: %s\n", p.severity(d.Severity), d.Code.ID(), d.Message)
		fmt.Fprintf(w, "  %s %s\n", p.paint("-->", color.FgBlue), d.Primary)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s: %s: %s\n", p.paint("note", color.FgCyan), n.At, n.Msg)
		}
	}
}

// PrettyFacades summarises a synthesis result.
func PrettyFacades(w io.Writer, res *facade.Result, opts PrettyOpts) {
	p := palette{on: opts.Color}
	for _, fc := range res.Facades {
		kind := "facade"
		if fc.Partial {
			kind = "partial facade"
		}
		fmt.Fprintf(w, "%s %s: %d forwards\n", p.paint(kind, color.FgGreen), fc.Contract, len(fc.Forwards))
		if !opts.ShowForwards {
			continue
		}
		for _, fw := range fc.Forwards {
			fmt.Fprintf(w, "  %s -> %s\n", truncate(fw.DocID, opts.Width), fw.Seed)
		}
	}
	for _, m := range res.Unresolved {
		fmt.Fprintf(w, "%s %s: %s\n", p.paint("unresolved", color.FgRed), m.Contract, m.DocID)
	}
	for _, a := range res.Ambiguous {
		fmt.Fprintf(w, "%s %s: %s in %s\n", p.paint("ambiguous", color.FgRed), a.Contract, a.DocID, strings.Join(a.Candidates, ", "))
	}
}
