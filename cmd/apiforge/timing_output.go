package main

import (
	"fmt"
	"io"

	"apiforge/internal/observ"
)

func printTimings(out io.Writer, timer *observ.Timer, enabled bool) {
	if !enabled || timer == nil || out == nil {
		return
	}
	fmt.Fprint(out, timer.Summary())
}
