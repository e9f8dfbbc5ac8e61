package diag

import (
	"fmt"
	"io"
	"strings"
)

// FormatShort renders one diagnostic per line followed by indented notes:
//
//	error DIF3001 Contracts!T:System.Apple: message
//	  note Seeds!T:System.Apple: detail
func FormatShort(w io.Writer, items []Diagnostic) error {
	var sb strings.Builder
	for _, d := range items {
		fmt.Fprintf(&sb, "%s %s %s: %s\n", d.Severity.Label(), d.Code.ID(), d.Primary, d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "  note %s: %s\n", n.At, n.Msg)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
