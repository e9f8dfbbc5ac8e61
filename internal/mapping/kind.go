package mapping

type Kind uint8

const (
	KindModuleSet Kind = iota
	KindModule
	KindNamespace
	KindType
	KindMember
)

func (k Kind) String() string {
	switch k {
	case KindModuleSet:
		return "module-set"
	case KindModule:
		return "module"
	case KindNamespace:
		return "namespace"
	case KindType:
		return "type"
	case KindMember:
		return "member"
	}
	return "unknown"
}

// Presence tells which slots of a node are filled.
type Presence uint8

const (
	OnlyLeft Presence = iota + 1
	OnlyRight
	Both
)

func (p Presence) String() string {
	switch p {
	case OnlyLeft:
		return "left"
	case OnlyRight:
		return "right"
	case Both:
		return "both"
	}
	return "none"
}
