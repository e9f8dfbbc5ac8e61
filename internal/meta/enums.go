package meta

import "fmt"

type TypeKind uint8

const (
	TypeClass TypeKind = iota
	TypeStruct
	TypeInterface
	TypeEnum
	TypeDelegate
)

var typeKindNames = [...]string{"class", "struct", "interface", "enum", "delegate"}

func (k TypeKind) String() string { return enumName(typeKindNames[:], int(k)) }

func (k TypeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *TypeKind) UnmarshalText(b []byte) error {
	v, err := enumParse("type kind", typeKindNames[:], string(b))
	*k = TypeKind(v)
	return err
}

type MemberKind uint8

const (
	MemberMethod MemberKind = iota
	MemberCtor
	MemberField
	MemberProperty
	MemberEvent
)

var memberKindNames = [...]string{"method", "ctor", "field", "property", "event"}

func (k MemberKind) String() string { return enumName(memberKindNames[:], int(k)) }

func (k MemberKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *MemberKind) UnmarshalText(b []byte) error {
	v, err := enumParse("member kind", memberKindNames[:], string(b))
	*k = MemberKind(v)
	return err
}

// DocPrefix is the doc-id prefix letter for the member kind.
func (k MemberKind) DocPrefix() string {
	switch k {
	case MemberField:
		return "F"
	case MemberProperty:
		return "P"
	case MemberEvent:
		return "E"
	default:
		return "M"
	}
}

// Visibility is ordered from least to most visible.
type Visibility uint8

const (
	VisPrivate Visibility = iota
	VisProtectedAndInternal
	VisInternal
	VisProtected
	VisProtectedInternal
	VisPublic
)

var visibilityNames = [...]string{"private", "private-protected", "internal", "protected", "protected-internal", "public"}

func (v Visibility) String() string { return enumName(visibilityNames[:], int(v)) }

func (v Visibility) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Visibility) UnmarshalText(b []byte) error {
	n, err := enumParse("visibility", visibilityNames[:], string(b))
	*v = Visibility(n)
	return err
}

// Exposed reports whether code outside the module can see the symbol.
func (v Visibility) Exposed() bool {
	return v == VisPublic || v == VisProtected || v == VisProtectedInternal
}

// Rank orders visibilities for reduction checks. Internal and protected are
// not comparable with each other, so both rank as "partially visible".
func (v Visibility) Rank() int {
	switch v {
	case VisPublic:
		return 4
	case VisProtectedInternal:
		return 3
	case VisProtected, VisInternal:
		return 2
	case VisProtectedAndInternal:
		return 1
	}
	return 0
}

type RefShape uint8

const (
	RefNamed RefShape = iota
	RefArray
	RefPointer
	RefByRef
	RefTypeParam
	RefMethodParam
)

var refShapeNames = [...]string{"named", "array", "pointer", "byref", "type-param", "method-param"}

func (s RefShape) String() string { return enumName(refShapeNames[:], int(s)) }

func (s RefShape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *RefShape) UnmarshalText(b []byte) error {
	v, err := enumParse("reference shape", refShapeNames[:], string(b))
	*s = RefShape(v)
	return err
}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func enumParse(what string, names []string, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}
