package differ

import (
	"fmt"

	"apiforge/internal/meta"
)

// Difference is one finding about one symbol.
type Difference struct {
	RuleID   string
	Severity Severity
	Message  string
	DocID    string
}

// Sink is what a rule sees while it evaluates a pair.
type Sink interface {
	Host() *meta.Host
	// Add records a difference; repeats of (RuleID, DocID) within the node
	// being evaluated are dropped.
	Add(d Difference)
	// Suppressed records that a rule matched an exemption instead of
	// reporting a difference.
	Suppressed(ruleID, docID, reason string)
}

// Incompatiblef reports an incompatible difference for sym on behalf of rule
// and returns Changed, so rules can end with `return Incompatiblef(...)`.
func Incompatiblef(sink Sink, rule Rule, sym meta.Symbol, format string, args ...any) DifferenceKind {
	sink.Add(Difference{
		RuleID:   rule.ID(),
		Severity: Incompatible,
		Message:  fmt.Sprintf(format, args...),
		DocID:    sink.Host().DocID(sym),
	})
	return Changed
}

type diffKey struct {
	rule  string
	docID string
}

// Differences is an append-only, deduplicated list for one node.
type Differences struct {
	items []Difference
	seen  map[diffKey]struct{}
}

func (ds *Differences) Add(d Difference) bool {
	if ds.seen == nil {
		ds.seen = make(map[diffKey]struct{})
	}
	k := diffKey{rule: d.RuleID, docID: d.DocID}
	if _, dup := ds.seen[k]; dup {
		return false
	}
	ds.seen[k] = struct{}{}
	ds.items = append(ds.items, d)
	return true
}

func (ds *Differences) Items() []Difference { return ds.items }

// Reset empties the list for the next node. Items returned earlier stay valid.
func (ds *Differences) Reset() {
	ds.items = nil
	clear(ds.seen)
}

func (ds *Differences) Len() int { return len(ds.items) }
