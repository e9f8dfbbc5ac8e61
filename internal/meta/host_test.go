package meta

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ref(scope, ns, name string) *TypeRef {
	return &TypeRef{Scope: scope, Namespace: ns, Name: name}
}

func fruitModule() *Module {
	return &Module{
		Name:    "Fruits",
		Version: Version{Major: 1},
		Types: []Type{
			{Namespace: "Garden", Name: "Fruit", Visibility: VisPublic, Base: ref("Core", "System", "Object")},
			{
				Namespace: "Garden", Name: "Apple", Visibility: VisPublic, Base: ref("", "Garden", "Fruit"),
				Members: []Member{
					{Name: "Peel", Kind: MemberMethod, Visibility: VisPublic},
					{Name: "Peel", Kind: MemberMethod, Visibility: VisPublic, Params: []TypeRef{*ref("Core", "System", "Int32")}},
					{Kind: MemberCtor, Visibility: VisPublic},
					{Name: "Weight", Kind: MemberProperty, Visibility: VisPublic, Return: ref("Core", "System", "Int32")},
				},
				Nested: []Type{{Name: "Seed", Visibility: VisPublic}},
			},
			{Namespace: "Garden.Tools", Name: "Basket", Arity: 1, Visibility: VisInternal},
		},
		Forwards: []Forward{{Target: *ref("Core", "System", "Object")}},
	}
}

func coreModule() *Module {
	return &Module{
		Name: "Core",
		Types: []Type{
			{Namespace: "System", Name: "Object", Visibility: VisPublic},
			{Namespace: "System", Name: "Int32", Kind: TypeStruct, Visibility: VisPublic, Base: ref("", "System", "ValueType")},
		},
	}
}

func TestHostDocIDs(t *testing.T) {
	h := NewHost()
	mod, err := h.Add(fruitModule(), "fruits.apimod", "left")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	apple := h.FindType(mod, "T:Garden.Apple")
	if !apple.IsValid() {
		t.Fatalf("Garden.Apple not found")
	}
	var got []string
	for _, m := range h.Members(apple) {
		got = append(got, h.DocID(h.MemberSymbol(m)))
	}
	want := []string{
		"M:Garden.Apple.Peel",
		"M:Garden.Apple.Peel(System.Int32)",
		"M:Garden.Apple.#ctor",
		"P:Garden.Apple.Weight",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("member doc-ids mismatch (-want +got):\n%s", diff)
	}
	nested := h.NestedTypes(apple)
	if len(nested) != 1 || h.DocID(h.TypeSymbol(nested[0])) != "T:Garden.Apple.Seed" {
		t.Fatalf("unexpected nested types %v", nested)
	}
	if id := h.FindType(mod, "T:Garden.Tools.Basket`1"); !id.IsValid() {
		t.Fatalf("generic type not keyed with arity")
	}
}

func TestHostNamespaceTree(t *testing.T) {
	h := NewHost()
	mod, err := h.Add(fruitModule(), "fruits.apimod", "left")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	root := h.RootNamespace(mod)
	var names []string
	stack := []NamespaceID{root}
	for len(stack) > 0 {
		ns := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		names = append(names, h.NamespaceName(ns))
		stack = append(stack, h.NamespaceChildren(ns)...)
	}
	want := map[string]bool{"": true, "Garden": true, "Garden.Tools": true, "System": true}
	if len(names) != len(want) {
		t.Fatalf("want namespaces %v, got %v", want, names)
	}
	for _, n := range names {
		if !want[n] {
			t.Fatalf("unexpected namespace %q", n)
		}
	}
	sys := h.modules.Get(uint32(mod)).namespaces["System"]
	if len(h.NamespaceTypes(sys)) != 0 || len(h.NamespaceForwards(sys)) != 1 {
		t.Fatalf("System must hold only the forward")
	}
}

func TestHostDuplicateModule(t *testing.T) {
	h := NewHost()
	if _, err := h.Add(coreModule(), "a", "left"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := h.Add(coreModule(), "b", "right"); err != nil {
		t.Fatalf("same name in another group must load: %v", err)
	}
	_, err := h.Add(coreModule(), "c", "left")
	if !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("want ErrDuplicateModule, got %v", err)
	}
}

func TestHostFailedAddLeavesNoTrace(t *testing.T) {
	bad := []func(*Module){
		func(m *Module) { m.Types = append(m.Types, Type{Namespace: "System", Name: "Object"}) },
		func(m *Module) {
			m.Forwards = append(m.Forwards,
				Forward{Target: TypeRef{Shape: RefNamed, Scope: "Other", Namespace: "System", Name: "Uri"}},
				Forward{Target: TypeRef{Shape: RefNamed, Scope: "Other", Namespace: "System", Name: "Uri"}})
		},
		func(m *Module) { m.Forwards = append(m.Forwards, Forward{Target: TypeRef{Shape: RefNamed}}) },
	}
	for i, mutate := range bad {
		h := NewHost()
		m := coreModule()
		mutate(m)
		if _, err := h.Add(m, "bad", "left"); err == nil {
			t.Fatalf("case %d: expected an error", i)
		}
		if got := h.Modules(); len(got) != 0 {
			t.Fatalf("case %d: failed add left modules %v", i, got)
		}
		if _, err := h.Add(coreModule(), "good", "left"); err != nil {
			t.Fatalf("case %d: retry after failed add: %v", i, err)
		}
		if got := len(h.ModulesIn("left")); got != 1 {
			t.Fatalf("case %d: want 1 module in group, got %d", i, got)
		}
	}
}

func TestHostDuplicateType(t *testing.T) {
	h := NewHost()
	m := coreModule()
	m.Types = append(m.Types, Type{Namespace: "System", Name: "Object"})
	if _, err := h.Add(m, "dup", "left"); err == nil {
		t.Fatalf("expected duplicate type error")
	}
}

func TestResolveFollowsForwardsAndGroups(t *testing.T) {
	h := NewHost()
	fruits, err := h.Add(fruitModule(), "fruits", "left")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	coreLeft, _ := h.Add(coreModule(), "core-left", "left")
	coreRight, _ := h.Add(coreModule(), "core-right", "right")

	obj, ok := h.Resolve(fruits, *ref("Fruits", "System", "Object"))
	if !ok {
		t.Fatalf("forward through Fruits not followed")
	}
	if h.TypeModule(obj) != coreLeft {
		t.Fatalf("resolution must prefer the same group: got module %d", h.TypeModule(obj))
	}
	fromRight, ok := h.Resolve(coreRight, *ref("Core", "System", "Int32"))
	if !ok || h.TypeModule(fromRight) != coreRight {
		t.Fatalf("right-side reference must stay on the right")
	}
	arr := TypeRef{Shape: RefArray, Elem: ref("Core", "System", "Int32")}
	if _, ok := h.Resolve(fruits, arr); !ok {
		t.Fatalf("array element should resolve")
	}
	if _, ok := h.Resolve(fruits, *ref("Missing", "X", "Y")); ok {
		t.Fatalf("unknown scope must not resolve")
	}
}

func TestBaseChain(t *testing.T) {
	h := NewHost()
	fruits, _ := h.Add(fruitModule(), "fruits", "left")
	apple := h.FindType(fruits, "T:Garden.Apple")

	chain := h.BaseChain(apple)
	var got []string
	for _, b := range chain {
		got = append(got, b.DocID)
	}
	if diff := cmp.Diff([]string{"T:Garden.Fruit", "T:System.Object"}, got); diff != "" {
		t.Fatalf("chain mismatch (-want +got):\n%s", diff)
	}
	if chain[1].Symbol.IsValid() {
		t.Fatalf("Core is not loaded; Object must stay unresolved")
	}

	if _, err := h.Add(coreModule(), "core", "left"); err != nil {
		t.Fatalf("add core: %v", err)
	}
	chain = h.BaseChain(apple)
	if len(chain) != 2 || !chain[1].Symbol.IsValid() {
		t.Fatalf("Object should resolve once Core is loaded: %+v", chain)
	}
}

func TestBaseChainCycle(t *testing.T) {
	h := NewHost()
	m := &Module{Name: "Loop", Types: []Type{
		{Name: "A", Base: ref("", "", "B")},
		{Name: "B", Base: ref("", "", "A")},
	}}
	mod, err := h.Add(m, "loop", "left")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	chain := h.BaseChain(h.FindType(mod, "T:A"))
	if len(chain) != 2 {
		t.Fatalf("cycle must terminate after visiting each ancestor once, got %d entries", len(chain))
	}
}

func TestFindInheritedMember(t *testing.T) {
	h := NewHost()
	m := &Module{Name: "M", Types: []Type{
		{Name: "Base", Visibility: VisPublic, Members: []Member{{Name: "Run", Kind: MemberMethod, Visibility: VisPublic}}},
		{Name: "Derived", Visibility: VisPublic, Base: ref("", "", "Base")},
	}}
	mod, _ := h.Add(m, "m", "left")
	derived := h.FindType(mod, "T:Derived")
	if id := h.FindInheritedMember(derived, "M:Run"); !id.IsValid() {
		t.Fatalf("Run should be found on Base")
	}
	if id := h.FindInheritedMember(derived, "M:Walk"); id.IsValid() {
		t.Fatalf("Walk does not exist")
	}
}

func TestSame(t *testing.T) {
	h := NewHost()
	left, _ := h.Add(coreModule(), "l", "left")
	right, _ := h.Add(coreModule(), "r", "right")
	a := h.TypeSymbol(h.FindType(left, "T:System.Object"))
	b := h.TypeSymbol(h.FindType(right, "T:System.Object"))
	if a == b {
		t.Fatalf("handles from different modules must differ")
	}
	if !h.Same(a, b) {
		t.Fatalf("same doc-id must be the same element")
	}
	if h.Same(Symbol{}, Symbol{}) {
		t.Fatalf("absent symbols are never the same")
	}
}
