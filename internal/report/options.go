package report

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color bool
	// Width truncates doc-ids to this many cells; 0 disables truncation.
	Width     int
	ShowNotes bool
	// ShowForwards lists every forward of a facade.
	ShowForwards bool
	Quiet        bool
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	Max          int // cuts the output, not the run
	IncludeNotes bool
}
