package meta

type SymbolKind uint8

const (
	SymNone SymbolKind = iota
	SymModule
	SymNamespace
	SymType
	SymMember
)

func (k SymbolKind) String() string {
	switch k {
	case SymModule:
		return "module"
	case SymNamespace:
		return "namespace"
	case SymType:
		return "type"
	case SymMember:
		return "member"
	}
	return "none"
}

// Symbol is an opaque handle into a Host. The zero value is absent.
type Symbol struct {
	Kind      SymbolKind
	Module    ModuleID
	Namespace NamespaceID
	Type      TypeID
	Member    MemberID
}

func (s Symbol) IsValid() bool { return s.Kind != SymNone }

func ModuleSymbol(id ModuleID) Symbol {
	if !id.IsValid() {
		return Symbol{}
	}
	return Symbol{Kind: SymModule, Module: id}
}

func NamespaceSymbol(mod ModuleID, id NamespaceID) Symbol {
	if !id.IsValid() {
		return Symbol{}
	}
	return Symbol{Kind: SymNamespace, Module: mod, Namespace: id}
}
