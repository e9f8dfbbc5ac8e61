package facade

import (
	"fmt"
	"strings"

	"apiforge/internal/diag"
)

// SynthesisError lists every fatal problem found by one Synthesize call.
type SynthesisError struct {
	Problems []diag.Diagnostic
}

func (e *SynthesisError) Error() string {
	if len(e.Problems) == 1 {
		return "facade synthesis failed: " + describe(e.Problems[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "facade synthesis failed with %d problems:", len(e.Problems))
	for _, p := range e.Problems {
		sb.WriteString("\n  ")
		sb.WriteString(describe(p))
	}
	return sb.String()
}

func describe(d diag.Diagnostic) string {
	return fmt.Sprintf("%s %s: %s", d.Code.ID(), d.Primary, d.Message)
}
