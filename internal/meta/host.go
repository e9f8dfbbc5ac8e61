package meta

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrDuplicateModule = errors.New("module already loaded")

type moduleEntry struct {
	def        *Module
	origin     string
	group      string
	root       NamespaceID
	namespaces map[string]NamespaceID
	types      map[string]TypeID
	forwards   map[string]int
}

type namespaceEntry struct {
	module   ModuleID
	name     string
	parent   NamespaceID
	children []NamespaceID
	types    []TypeID
	forwards []int
}

type typeEntry struct {
	module  ModuleID
	ns      NamespaceID
	parent  TypeID
	def     *Type
	docID   string
	nested  []TypeID
	members []MemberID
	byKey   map[string]MemberID
}

type memberEntry struct {
	owner TypeID
	def   *Member
	docID string
	key   string
}

type resolveKey struct {
	from  ModuleID
	scope string
	docID string
}

// Host owns loaded modules. Add must complete before concurrent readers start;
// after that every method is safe for concurrent use.
type Host struct {
	modules    *Arena[moduleEntry]
	namespaces *Arena[namespaceEntry]
	types      *Arena[typeEntry]
	members    *Arena[memberEntry]
	byName     map[string][]ModuleID
	resolved   *lru.Cache[resolveKey, TypeID]
}

const resolveCacheSize = 4096

func NewHost() *Host {
	cache, err := lru.New[resolveKey, TypeID](resolveCacheSize)
	if err != nil {
		panic(fmt.Errorf("resolve cache: %w", err))
	}
	return &Host{
		modules:    NewArena[moduleEntry](8),
		namespaces: NewArena[namespaceEntry](64),
		types:      NewArena[typeEntry](256),
		members:    NewArena[memberEntry](1024),
		byName:     make(map[string][]ModuleID),
		resolved:   cache,
	}
}

// Add registers a decoded module. Group names the module set it belongs to
// ("left", "contract", ...); two modules with the same name may only be
// loaded into different groups.
func (h *Host) Add(def *Module, origin, group string) (ModuleID, error) {
	if def == nil || def.Name == "" {
		return NoModuleID, fmt.Errorf("%s: %w", origin, errMissingName)
	}
	for _, other := range h.byName[def.Name] {
		if h.modules.Get(uint32(other)).group == group {
			return NoModuleID, fmt.Errorf("%s: %s: %w", origin, def.Name, ErrDuplicateModule)
		}
	}
	if err := validateModule(def); err != nil {
		return NoModuleID, fmt.Errorf("%s: %w", origin, err)
	}
	id := ModuleID(h.modules.Allocate(moduleEntry{
		def:        def,
		origin:     origin,
		group:      group,
		namespaces: make(map[string]NamespaceID),
		types:      make(map[string]TypeID, len(def.Types)),
		forwards:   make(map[string]int, len(def.Forwards)),
	}))
	root := h.ensureNamespace(id, "")
	h.modules.Get(uint32(id)).root = root
	for i := range def.Types {
		t := &def.Types[i]
		ns := h.ensureNamespace(id, t.Namespace)
		tid := h.addType(id, ns, NoTypeID, t)
		nsEntry := h.namespaces.Get(uint32(ns))
		nsEntry.types = append(nsEntry.types, tid)
	}
	entry := h.modules.Get(uint32(id))
	for i := range def.Forwards {
		fw := def.Forwards[i].Target
		entry.forwards[RefDocID(fw)] = i
		ns := h.ensureNamespace(id, fw.Namespace)
		nsEntry := h.namespaces.Get(uint32(ns))
		nsEntry.forwards = append(nsEntry.forwards, i)
	}
	h.byName[def.Name] = append(h.byName[def.Name], id)
	h.resolved.Purge()
	return id, nil
}

var (
	errMissingName = errors.New("module has no name")
	errBadForward  = errors.New("forward must name a top-level type")
)

func (h *Host) ensureNamespace(mod ModuleID, name string) NamespaceID {
	entry := h.modules.Get(uint32(mod))
	if id, ok := entry.namespaces[name]; ok {
		return id
	}
	parent := NoNamespaceID
	if name != "" {
		parentName := ""
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			parentName = name[:i]
		}
		parent = h.ensureNamespace(mod, parentName)
	}
	id := NamespaceID(h.namespaces.Allocate(namespaceEntry{module: mod, name: name, parent: parent}))
	entry = h.modules.Get(uint32(mod))
	entry.namespaces[name] = id
	if parent.IsValid() {
		p := h.namespaces.Get(uint32(parent))
		p.children = append(p.children, id)
	}
	return id
}

// validateModule rejects everything Add would otherwise trip over halfway, so
// a failed Add leaves the host untouched.
func validateModule(def *Module) error {
	types := make(map[string]struct{}, len(def.Types))
	var walk func(t *Type, docID string) error
	walk = func(t *Type, docID string) error {
		if t.Name == "" {
			return fmt.Errorf("type without a name in namespace %q", t.Namespace)
		}
		if _, dup := types[docID]; dup {
			return fmt.Errorf("duplicate type %s", docID)
		}
		types[docID] = struct{}{}
		keys := make(map[string]struct{}, len(t.Members))
		for i := range t.Members {
			key := MemberKey(&t.Members[i])
			if _, dup := keys[key]; dup {
				return fmt.Errorf("duplicate member %s on %s", key, docID)
			}
			keys[key] = struct{}{}
		}
		for i := range t.Nested {
			n := &t.Nested[i]
			if err := walk(n, docID+"."+n.MetadataName()); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range def.Types {
		t := &def.Types[i]
		if err := walk(t, "T:"+QualifiedName(t.Namespace, t.MetadataName())); err != nil {
			return err
		}
	}
	forwards := make(map[string]struct{}, len(def.Forwards))
	for i := range def.Forwards {
		fw := def.Forwards[i].Target
		if fw.Shape != RefNamed || fw.Name == "" || fw.Nested() {
			return fmt.Errorf("forward %d: %w", i, errBadForward)
		}
		docID := RefDocID(fw)
		if _, dup := forwards[docID]; dup {
			return fmt.Errorf("duplicate forward %s", docID)
		}
		forwards[docID] = struct{}{}
	}
	return nil
}

// addType registers t and its members and nested types. def was validated.
func (h *Host) addType(mod ModuleID, ns NamespaceID, parent TypeID, t *Type) TypeID {
	var docID string
	if parent.IsValid() {
		docID = h.types.Get(uint32(parent)).docID + "." + t.MetadataName()
	} else {
		docID = "T:" + QualifiedName(t.Namespace, t.MetadataName())
	}
	entry := h.modules.Get(uint32(mod))
	id := TypeID(h.types.Allocate(typeEntry{
		module: mod,
		ns:     ns,
		parent: parent,
		def:    t,
		docID:  docID,
		byKey:  make(map[string]MemberID, len(t.Members)),
	}))
	entry.types[docID] = id
	typeName := strings.TrimPrefix(docID, "T:")
	for i := range t.Members {
		m := &t.Members[i]
		key := MemberKey(m)
		mid := MemberID(h.members.Allocate(memberEntry{owner: id, def: m, docID: memberDocID(typeName, m), key: key}))
		te := h.types.Get(uint32(id))
		te.members = append(te.members, mid)
		te.byKey[key] = mid
	}
	for i := range t.Nested {
		nid := h.addType(mod, ns, id, &t.Nested[i])
		te := h.types.Get(uint32(id))
		te.nested = append(te.nested, nid)
	}
	return id
}

func (h *Host) Modules() []ModuleID {
	out := make([]ModuleID, 0, h.modules.Len())
	for i := uint32(1); i <= h.modules.Len(); i++ {
		out = append(out, ModuleID(i))
	}
	return out
}

// ModulesIn lists the modules of one group in load order.
func (h *Host) ModulesIn(group string) []ModuleID {
	var out []ModuleID
	for _, id := range h.Modules() {
		if h.modules.Get(uint32(id)).group == group {
			out = append(out, id)
		}
	}
	return out
}

func (h *Host) Module(id ModuleID) *Module {
	if e := h.modules.Get(uint32(id)); e != nil {
		return e.def
	}
	return nil
}

func (h *Host) ModuleName(id ModuleID) string {
	if m := h.Module(id); m != nil {
		return m.Name
	}
	return ""
}

func (h *Host) ModuleOrigin(id ModuleID) string {
	if e := h.modules.Get(uint32(id)); e != nil {
		return e.origin
	}
	return ""
}

func (h *Host) ModuleGroup(id ModuleID) string {
	if e := h.modules.Get(uint32(id)); e != nil {
		return e.group
	}
	return ""
}

func (h *Host) RootNamespace(id ModuleID) NamespaceID {
	if e := h.modules.Get(uint32(id)); e != nil {
		return e.root
	}
	return NoNamespaceID
}

func (h *Host) NamespaceName(id NamespaceID) string {
	if e := h.namespaces.Get(uint32(id)); e != nil {
		return e.name
	}
	return ""
}

func (h *Host) NamespaceChildren(id NamespaceID) []NamespaceID {
	if e := h.namespaces.Get(uint32(id)); e != nil {
		return e.children
	}
	return nil
}

// NamespaceTypes lists the top-level types declared directly in the namespace.
func (h *Host) NamespaceTypes(id NamespaceID) []TypeID {
	if e := h.namespaces.Get(uint32(id)); e != nil {
		return e.types
	}
	return nil
}

// NamespaceForwards lists forward declarations whose target lives in the namespace.
func (h *Host) NamespaceForwards(id NamespaceID) []Forward {
	e := h.namespaces.Get(uint32(id))
	if e == nil {
		return nil
	}
	def := h.Module(e.module)
	out := make([]Forward, 0, len(e.forwards))
	for _, i := range e.forwards {
		out = append(out, def.Forwards[i])
	}
	return out
}

func (h *Host) Type(id TypeID) *Type {
	if e := h.types.Get(uint32(id)); e != nil {
		return e.def
	}
	return nil
}

func (h *Host) TypeModule(id TypeID) ModuleID {
	if e := h.types.Get(uint32(id)); e != nil {
		return e.module
	}
	return NoModuleID
}

// TypeParent is the containing type of a nested type.
func (h *Host) TypeParent(id TypeID) TypeID {
	if e := h.types.Get(uint32(id)); e != nil {
		return e.parent
	}
	return NoTypeID
}

func (h *Host) NestedTypes(id TypeID) []TypeID {
	if e := h.types.Get(uint32(id)); e != nil {
		return e.nested
	}
	return nil
}

func (h *Host) Members(id TypeID) []MemberID {
	if e := h.types.Get(uint32(id)); e != nil {
		return e.members
	}
	return nil
}

// MemberByKey finds a member declared directly on the type.
func (h *Host) MemberByKey(id TypeID, key string) MemberID {
	if e := h.types.Get(uint32(id)); e != nil {
		return e.byKey[key]
	}
	return NoMemberID
}

func (h *Host) Member(id MemberID) *Member {
	if e := h.members.Get(uint32(id)); e != nil {
		return e.def
	}
	return nil
}

func (h *Host) MemberOwner(id MemberID) TypeID {
	if e := h.members.Get(uint32(id)); e != nil {
		return e.owner
	}
	return NoTypeID
}

func (h *Host) MemberKeyOf(id MemberID) string {
	if e := h.members.Get(uint32(id)); e != nil {
		return e.key
	}
	return ""
}

// FindType looks up a type (top-level or nested) by doc-id in one module.
func (h *Host) FindType(mod ModuleID, docID string) TypeID {
	if e := h.modules.Get(uint32(mod)); e != nil {
		return e.types[docID]
	}
	return NoTypeID
}

// TopLevelTypes returns the module's top-level types sorted by doc-id.
func (h *Host) TopLevelTypes(mod ModuleID) []TypeID {
	e := h.modules.Get(uint32(mod))
	if e == nil {
		return nil
	}
	out := make([]TypeID, 0, len(e.types))
	for _, id := range e.types {
		if !h.types.Get(uint32(id)).parent.IsValid() {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return h.types.Get(uint32(out[i])).docID < h.types.Get(uint32(out[j])).docID
	})
	return out
}

func (h *Host) TypeSymbol(id TypeID) Symbol {
	e := h.types.Get(uint32(id))
	if e == nil {
		return Symbol{}
	}
	return Symbol{Kind: SymType, Module: e.module, Namespace: e.ns, Type: id}
}

func (h *Host) MemberSymbol(id MemberID) Symbol {
	e := h.members.Get(uint32(id))
	if e == nil {
		return Symbol{}
	}
	owner := h.types.Get(uint32(e.owner))
	return Symbol{Kind: SymMember, Module: owner.module, Namespace: owner.ns, Type: e.owner, Member: id}
}

// DocID renders the documentation identifier of a symbol.
func (h *Host) DocID(s Symbol) string {
	switch s.Kind {
	case SymModule:
		return h.ModuleName(s.Module)
	case SymNamespace:
		return "N:" + h.NamespaceName(s.Namespace)
	case SymType:
		if e := h.types.Get(uint32(s.Type)); e != nil {
			return e.docID
		}
	case SymMember:
		if e := h.members.Get(uint32(s.Member)); e != nil {
			return e.docID
		}
	}
	return ""
}

// Same reports whether two handles denote the same API element.
func (h *Host) Same(a, b Symbol) bool {
	if a.Kind != b.Kind || !a.IsValid() {
		return false
	}
	return h.DocID(a) == h.DocID(b)
}

// Visibility of a type or member; modules and namespaces count as public.
func (h *Host) Visibility(s Symbol) Visibility {
	switch s.Kind {
	case SymType:
		if t := h.Type(s.Type); t != nil {
			return t.Visibility
		}
	case SymMember:
		if m := h.Member(s.Member); m != nil {
			return m.Visibility
		}
	}
	return VisPublic
}

func (h *Host) Attributes(s Symbol) []Attribute {
	switch s.Kind {
	case SymModule:
		if m := h.Module(s.Module); m != nil {
			return m.Attributes
		}
	case SymType:
		if t := h.Type(s.Type); t != nil {
			return t.Attributes
		}
	case SymMember:
		if m := h.Member(s.Member); m != nil {
			return m.Attributes
		}
	}
	return nil
}

func (h *Host) Generated(s Symbol) bool {
	switch s.Kind {
	case SymType:
		if t := h.Type(s.Type); t != nil {
			return t.Generated
		}
	case SymMember:
		if m := h.Member(s.Member); m != nil {
			return m.Generated
		}
	}
	return false
}
