package testkit

import (
	"fmt"

	"apiforge/internal/mapping"
)

// CheckTreeInvariants walks the whole tree and verifies:
// 1) every node below the root holds at least one symbol
// 2) children point back at their parent
// 3) children are sorted by key and no (kind, key) pair repeats
// 4) a second Children call returns the same slice
func CheckTreeInvariants(root *mapping.Node) error {
	if root == nil {
		return fmt.Errorf("nil root")
	}
	var failure error
	mapping.Walk(root, func(n *mapping.Node) bool {
		if failure != nil {
			return false
		}
		if n != root && n.Presence() == 0 {
			failure = fmt.Errorf("%s %q has no symbol", n.Kind(), n.Key())
			return false
		}
		children := n.Children()
		seen := make(map[string]struct{}, len(children))
		for i, ch := range children {
			if ch.Parent() != n {
				failure = fmt.Errorf("%s %q: wrong parent", ch.Kind(), ch.Key())
				return false
			}
			if i > 0 && children[i-1].Key() > ch.Key() {
				failure = fmt.Errorf("children of %q out of order: %q before %q", n.Key(), children[i-1].Key(), ch.Key())
				return false
			}
			id := ch.Kind().String() + "\x00" + ch.Key()
			if _, dup := seen[id]; dup {
				failure = fmt.Errorf("duplicate child %s %q under %q", ch.Kind(), ch.Key(), n.Key())
				return false
			}
			seen[id] = struct{}{}
		}
		if again := n.Children(); len(again) > 0 && &again[0] != &children[0] {
			failure = fmt.Errorf("children of %q recomputed", n.Key())
			return false
		}
		return true
	})
	return failure
}
