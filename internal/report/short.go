package report

import (
	"fmt"
	"io"

	"apiforge/internal/differ"
)

// ShortDiff writes one grep-friendly line per record:
//
//	changed T:Garden.Apple CannotChangeInheritance incompatible: message
func ShortDiff(w io.Writer, rep *differ.Report) {
	for _, rec := range rep.Records {
		if rec.RuleID == "" {
			fmt.Fprintf(w, "%s %s\n", rec.Kind, displayID(rec))
			continue
		}
		fmt.Fprintf(w, "%s %s %s %s: %s\n", rec.Kind, displayID(rec), rec.RuleID, rec.Severity, rec.Message)
	}
}
