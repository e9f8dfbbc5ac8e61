package differ

type DifferenceKind uint8

const (
	Unknown DifferenceKind = iota
	Unchanged
	Added
	Removed
	Changed
)

func (k DifferenceKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	}
	return "unknown"
}

func (k DifferenceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type Severity uint8

const (
	Compatible Severity = iota
	Incompatible
)

func (s Severity) String() string {
	if s == Incompatible {
		return "incompatible"
	}
	return "compatible"
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
