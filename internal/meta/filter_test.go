package meta

import "testing"

func TestFilters(t *testing.T) {
	h := NewHost()
	m := &Module{Name: "M", Types: []Type{
		{Name: "Pub", Visibility: VisPublic},
		{Name: "Prot", Visibility: VisProtected},
		{Name: "Int", Visibility: VisInternal},
		{Name: "Priv", Visibility: VisPrivate},
		{Name: "Gen", Visibility: VisPublic, Generated: true},
		{Name: "Hidden", Visibility: VisPublic, Attributes: []Attribute{{Type: TypeRef{Namespace: "Tools", Name: "HideAttribute"}}}},
	}}
	mod, err := h.Add(m, "m", "left")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	sym := func(name string) Symbol { return h.TypeSymbol(h.FindType(mod, "T:"+name)) }

	tests := []struct {
		name   string
		filter Filter
		keep   map[string]bool
	}{
		{"public only", PublicOnly, map[string]bool{"Pub": true, "Prot": true, "Gen": true, "Hidden": true}},
		{"default options", NewFilter(FilterOptions{ExcludeAttributes: []string{"Tools.HideAttribute"}}),
			map[string]bool{"Pub": true, "Prot": true}},
		{"internals", NewFilter(FilterOptions{IncludeInternals: true, IncludeGenerated: true}),
			map[string]bool{"Pub": true, "Prot": true, "Int": true, "Gen": true, "Hidden": true}},
		{"privates", NewFilter(FilterOptions{IncludePrivates: true}),
			map[string]bool{"Pub": true, "Prot": true, "Int": true, "Priv": true, "Hidden": true}},
	}
	for _, tt := range tests {
		for _, name := range []string{"Pub", "Prot", "Int", "Priv", "Gen", "Hidden"} {
			if got := tt.filter.Include(h, sym(name)); got != tt.keep[name] {
				t.Fatalf("%s: %s: want %v, got %v", tt.name, name, tt.keep[name], got)
			}
		}
	}
}
