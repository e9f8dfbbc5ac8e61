package differ

import (
	"strings"

	"apiforge/internal/mapping"
	"apiforge/internal/meta"
)

// Exemption names a base type rename known to be equivalent: a hierarchy
// change matches when every removed ancestor is From and every added
// ancestor is To.
type Exemption struct {
	From string
	To   string
}

// CannotChangeInheritance flags types whose primary base chain lost ancestors
// and gained others at the same time. Pure additions or pure removals of
// ancestors pass.
type CannotChangeInheritance struct {
	exemptions []Exemption
}

func NewCannotChangeInheritance(exemptions ...Exemption) *CannotChangeInheritance {
	norm := make([]Exemption, 0, len(exemptions))
	for _, ex := range exemptions {
		norm = append(norm, Exemption{From: meta.NormalizeTypeDocID(ex.From), To: meta.NormalizeTypeDocID(ex.To)})
	}
	return &CannotChangeInheritance{exemptions: norm}
}

func (*CannotChangeInheritance) ID() string         { return "CannotChangeInheritance" }
func (*CannotChangeInheritance) Kind() mapping.Kind { return mapping.KindType }

func (r *CannotChangeInheritance) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	if left.Kind != meta.SymType || right.Kind != meta.SymType {
		return Unknown
	}
	h := sink.Host()
	leftChain := chainIDs(h.BaseChain(left.Type))
	rightChain := chainIDs(h.BaseChain(right.Type))
	added := minus(rightChain, leftChain)
	removed := minus(leftChain, rightChain)
	if len(added) == 0 || len(removed) == 0 {
		return Unknown
	}
	if ex, ok := r.exempt(removed, added); ok {
		sink.Suppressed(r.ID(), h.DocID(right), "base "+ex.From+" renamed to "+ex.To)
		return Unknown
	}
	return Incompatiblef(sink, r, right, "base type chain changed from [%s] to [%s]",
		renderChain(leftChain), renderChain(rightChain))
}

func (r *CannotChangeInheritance) exempt(removed, added []string) (Exemption, bool) {
	for _, ex := range r.exemptions {
		if allEqual(removed, ex.From) && allEqual(added, ex.To) {
			return ex, true
		}
	}
	return Exemption{}, false
}

func chainIDs(chain []meta.BaseEntry) []string {
	out := make([]string, len(chain))
	for i, b := range chain {
		out[i] = b.DocID
	}
	return out
}

// minus keeps the elements of a missing from b, in a's order.
func minus(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func allEqual(items []string, want string) bool {
	for _, s := range items {
		if s != want {
			return false
		}
	}
	return len(items) > 0
}

func renderChain(chain []string) string {
	parts := make([]string, len(chain))
	for i, id := range chain {
		parts[i] = strings.TrimPrefix(id, "T:")
	}
	return strings.Join(parts, ", ")
}
