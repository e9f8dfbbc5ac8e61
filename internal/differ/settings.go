package differ

// Include selects which classifications produce records.
type Include struct {
	Added     bool
	Removed   bool
	Changed   bool
	Unchanged bool
}

func IncludeAll() Include {
	return Include{Added: true, Removed: true, Changed: true, Unchanged: true}
}

// IncludeDifferences drops unchanged nodes.
func IncludeDifferences() Include {
	return Include{Added: true, Removed: true, Changed: true}
}

func (in Include) Allows(k DifferenceKind) bool {
	switch k {
	case Added:
		return in.Added
	case Removed:
		return in.Removed
	case Changed:
		return in.Changed
	}
	return in.Unchanged
}

type Settings struct {
	Include Include
	// TypesOnly stops the walk at type nodes; members are neither evaluated
	// nor recorded.
	TypesOnly bool
	// Presence reports right-only nodes as missing from the left side.
	Presence bool
	// EnforceOptional runs rules marked optional.
	EnforceOptional bool
	// Jobs > 1 evaluates top-level subtrees concurrently.
	Jobs int
}

func DefaultSettings() Settings {
	return Settings{Include: IncludeDifferences()}
}
