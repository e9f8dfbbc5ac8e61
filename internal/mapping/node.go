package mapping

import (
	"sync"

	"apiforge/internal/meta"
)

// Node aligns one API element across the two sides.
type Node struct {
	kind   Kind
	key    string
	slots  [2]meta.Symbol
	parts  [2][]meta.Symbol
	parent *Node
	tree   *tree

	once     sync.Once
	children []*Node
}

func (n *Node) Kind() Kind         { return n.kind }
func (n *Node) Key() string        { return n.key }
func (n *Node) Parent() *Node      { return n.parent }
func (n *Node) Left() meta.Symbol  { return n.slots[0] }
func (n *Node) Right() meta.Symbol { return n.slots[1] }
func (n *Node) Host() *meta.Host   { return n.tree.host }

// Slot returns the symbol held at side 0 (left) or 1 (right).
func (n *Node) Slot(side int) meta.Symbol { return n.slots[side] }

// Parts lists every symbol merged into the slot. Module-set roots and merged
// namespaces carry one entry per contributing module.
func (n *Node) Parts(side int) []meta.Symbol { return n.parts[side] }

func (n *Node) Presence() Presence {
	l, r := n.slots[0].IsValid(), n.slots[1].IsValid()
	switch {
	case l && r:
		return Both
	case l:
		return OnlyLeft
	case r:
		return OnlyRight
	}
	return 0
}

// Symbol prefers the right slot.
func (n *Node) Symbol() meta.Symbol {
	if n.slots[1].IsValid() {
		return n.slots[1]
	}
	return n.slots[0]
}

// DocID of the node's symbol; empty for the module-set root.
func (n *Node) DocID() string {
	if n.kind == KindModuleSet {
		return ""
	}
	return n.tree.host.DocID(n.Symbol())
}

// ModuleName names the module the node's symbol lives in.
func (n *Node) ModuleName() string {
	s := n.Symbol()
	return n.tree.host.ModuleName(s.Module)
}

// Children returns the node's children sorted by key. The first call computes
// them; later calls return the same slice, which must not be modified.
func (n *Node) Children() []*Node {
	n.once.Do(func() {
		n.children = n.tree.expand(n)
	})
	return n.children
}

func (n *Node) seal(children []*Node) {
	n.once.Do(func() {
		n.children = children
	})
}
