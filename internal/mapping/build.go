package mapping

import (
	"errors"
	"fmt"
	"sort"

	"apiforge/internal/diag"
	"apiforge/internal/meta"
)

var ErrEmptyInput = errors.New("both module sets are empty")

type tree struct {
	host     *meta.Host
	filter   meta.Filter
	opts     Settings
	reporter diag.Reporter
}

// candidate is one side's contribution to a child node.
type candidate struct {
	kind  Kind
	key   string
	sym   meta.Symbol
	parts []meta.Symbol
}

// Build aligns the left and right module sets. A nil filter keeps the public
// surface only. Either side may be empty, but not both.
func Build(h *meta.Host, left, right []meta.ModuleID, filter meta.Filter, opts Settings) (*Node, error) {
	if len(left) == 0 && len(right) == 0 {
		return nil, ErrEmptyInput
	}
	if filter == nil {
		filter = meta.PublicOnly
	}
	var rep diag.Reporter = diag.NopReporter{}
	if opts.Reporter != nil {
		rep = diag.NewLockedReporter(opts.Reporter)
	}
	t := &tree{host: h, filter: filter, opts: opts, reporter: rep}

	root := &Node{kind: KindModuleSet, tree: t}
	for side, mods := range [2][]meta.ModuleID{left, right} {
		for _, id := range mods {
			if h.Module(id) == nil {
				return nil, fmt.Errorf("module %d is not loaded", id)
			}
			root.parts[side] = append(root.parts[side], meta.ModuleSymbol(id))
		}
		if len(root.parts[side]) > 0 {
			root.slots[side] = root.parts[side][0]
		}
	}
	return root, nil
}

func (t *tree) expand(n *Node) []*Node {
	switch n.kind {
	case KindModuleSet:
		if t.opts.GroupByModule {
			return t.moduleChildren(n)
		}
		return t.namespaceChildren(n)
	case KindModule:
		return t.namespaceChildren(n)
	case KindType:
		return t.typeChildren(n)
	}
	return nil
}

func (t *tree) moduleChildren(n *Node) []*Node {
	var sides [2][]candidate
	for side := range sides {
		for _, sym := range n.parts[side] {
			sides[side] = append(sides[side], candidate{
				kind:  KindModule,
				key:   t.host.ModuleName(sym.Module),
				sym:   sym,
				parts: []meta.Symbol{sym},
			})
		}
	}
	return t.merge(n, sides)
}

// bucket gathers, for one namespace name, the namespace handles and the type
// candidates of each side.
type bucket struct {
	parts [2][]meta.Symbol
	types [2][]candidate
}

// namespaceChildren materializes the namespaces of the node's modules. A
// namespace only becomes a node when it contributes at least one type,
// declared or forwarded. Its children are computed in the same pass.
func (t *tree) namespaceChildren(n *Node) []*Node {
	buckets := make(map[string]*bucket)
	for side := range n.parts {
		for _, mod := range n.parts[side] {
			t.collectNamespaces(side, mod.Module, buckets)
		}
	}

	var sides [2][]candidate
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := buckets[name]
		for side := range sides {
			if len(b.parts[side]) == 0 {
				continue
			}
			sides[side] = append(sides[side], candidate{
				kind:  KindNamespace,
				key:   name,
				sym:   b.parts[side][0],
				parts: b.parts[side],
			})
		}
	}
	children := t.merge(n, sides)
	for _, ch := range children {
		ch.seal(t.merge(ch, buckets[ch.key].types))
	}
	return children
}

// collectNamespaces walks the namespace tree of mod with an explicit stack.
func (t *tree) collectNamespaces(side int, mod meta.ModuleID, into map[string]*bucket) {
	h := t.host
	stack := []meta.NamespaceID{h.RootNamespace(mod)}
	for len(stack) > 0 {
		ns := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, h.NamespaceChildren(ns)...)

		var found []candidate
		for _, tid := range h.NamespaceTypes(ns) {
			sym := h.TypeSymbol(tid)
			if !t.filter.Include(h, sym) {
				continue
			}
			found = append(found, candidate{kind: KindType, key: h.Type(tid).MetadataName(), sym: sym})
		}
		for _, fw := range h.NamespaceForwards(ns) {
			target, ok := h.ResolveForward(mod, fw)
			if !ok {
				diag.ReportWarning(t.reporter, diag.MapUnresolvedForward,
					diag.Location{Module: h.ModuleName(mod), DocID: meta.RefDocID(fw.Target)},
					fmt.Sprintf("forward target %s in %s could not be resolved; skipped", meta.RefName(fw.Target), fw.Target.Scope)).Emit()
				continue
			}
			sym := h.TypeSymbol(target)
			if !t.filter.Include(h, sym) {
				continue
			}
			found = append(found, candidate{kind: KindType, key: h.Type(target).MetadataName(), sym: sym})
		}
		if len(found) == 0 {
			continue
		}
		name := h.NamespaceName(ns)
		b := into[name]
		if b == nil {
			b = &bucket{}
			into[name] = b
		}
		b.parts[side] = append(b.parts[side], meta.NamespaceSymbol(mod, ns))
		b.types[side] = append(b.types[side], found...)
	}
}

func (t *tree) typeChildren(n *Node) []*Node {
	h := t.host
	var sides [2][]candidate
	for side, sym := range n.slots {
		if !sym.IsValid() {
			continue
		}
		for _, tid := range h.NestedTypes(sym.Type) {
			s := h.TypeSymbol(tid)
			if t.filter.Include(h, s) {
				sides[side] = append(sides[side], candidate{kind: KindType, key: h.Type(tid).MetadataName(), sym: s})
			}
		}
		for _, mid := range h.Members(sym.Type) {
			s := h.MemberSymbol(mid)
			if t.filter.Include(h, s) {
				sides[side] = append(sides[side], candidate{kind: KindMember, key: h.MemberKeyOf(mid), sym: s})
			}
		}
	}
	return t.merge(n, sides)
}

type childKey struct {
	kind Kind
	key  string
}

// merge pairs the candidates of both sides by (kind, key) and returns the
// resulting nodes sorted by key, then kind.
func (t *tree) merge(parent *Node, sides [2][]candidate) []*Node {
	index := make(map[childKey]*Node)
	var out []*Node
	for side, cands := range sides {
		for _, c := range cands {
			k := childKey{kind: c.kind, key: c.key}
			node := index[k]
			if node == nil {
				node = &Node{kind: c.kind, key: c.key, parent: parent, tree: t}
				index[k] = node
				out = append(out, node)
			}
			if node.slots[side].IsValid() {
				if c.kind == KindType {
					t.reportDuplicate(node, side, c.sym)
				}
				continue
			}
			node.slots[side] = c.sym
			node.parts[side] = c.parts
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].key != out[j].key {
			return out[i].key < out[j].key
		}
		return out[i].kind < out[j].kind
	})
	return out
}

func (t *tree) reportDuplicate(node *Node, side int, dup meta.Symbol) {
	h := t.host
	kept := node.slots[side]
	diag.ReportWarning(t.reporter, diag.MapDuplicateType,
		diag.Location{Module: h.ModuleName(dup.Module), DocID: h.DocID(dup)},
		fmt.Sprintf("%s is also defined in %s; keeping the first definition", h.DocID(dup), h.ModuleName(kept.Module))).
		WithNote(diag.Location{Module: h.ModuleName(kept.Module), DocID: h.DocID(kept)}, "first definition").
		Emit()
}
