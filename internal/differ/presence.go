package differ

import (
	"apiforge/internal/mapping"
)

// MustExistID tags findings about elements missing from the left side.
const MustExistID = "MustExist"

// checkPresence reports a right-only node as missing on the left, once per
// missing subtree. A member that the left side inherits from a base type
// counts as present.
func (e *Engine) checkPresence(sink Sink, n *mapping.Node) {
	parent := n.Parent()
	if parent != nil && parent.Kind() != mapping.KindModuleSet && parent.Presence() == mapping.OnlyRight {
		return
	}
	h := sink.Host()
	if n.Kind() == mapping.KindMember && parent != nil && parent.Left().IsValid() {
		if inherited := h.FindInheritedMember(parent.Left().Type, n.Key()); inherited.IsValid() {
			return
		}
	}
	where := "the left module set"
	if parent != nil && parent.Kind() != mapping.KindModuleSet && parent.Left().IsValid() {
		where = h.DocID(parent.Left())
		if parent.Kind() == mapping.KindModule {
			where = "module " + where
		}
	}
	sink.Add(Difference{
		RuleID:   MustExistID,
		Severity: Incompatible,
		Message:  n.Kind().String() + " " + n.DocID() + " does not exist in " + where,
		DocID:    n.DocID(),
	})
}
