package differ

import (
	"sort"
	"strings"

	"apiforge/internal/mapping"
	"apiforge/internal/meta"
)

// DefaultIgnoredAttributes are compiler bookkeeping attributes that never
// change what a caller can do.
var DefaultIgnoredAttributes = []string{
	"T:System.Diagnostics.DebuggerStepThroughAttribute",
	"T:System.Diagnostics.DebuggerHiddenAttribute",
	"T:System.Runtime.CompilerServices.CompilerGeneratedAttribute",
	"T:System.Runtime.CompilerServices.NullableAttribute",
	"T:System.Runtime.CompilerServices.NullableContextAttribute",
	"T:System.Runtime.TargetedPatchingOptOutAttribute",
}

// CannotAddAttributes flags attributes present on the right that the left
// lacks. It is optional.
type CannotAddAttributes struct {
	scope   mapping.Kind
	ignored map[string]struct{}
}

func NewCannotAddAttributes(scope mapping.Kind, ignored []string) CannotAddAttributes {
	set := make(map[string]struct{}, len(ignored))
	for _, id := range ignored {
		set[meta.NormalizeTypeDocID(id)] = struct{}{}
	}
	return CannotAddAttributes{scope: scope, ignored: set}
}

func (CannotAddAttributes) ID() string           { return "CannotAddAttributes" }
func (r CannotAddAttributes) Kind() mapping.Kind { return r.scope }
func (CannotAddAttributes) Optional() bool       { return true }

func (r CannotAddAttributes) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	if !left.IsValid() || !right.IsValid() {
		return Unknown
	}
	h := sink.Host()
	have := make(map[string]struct{})
	for _, a := range h.Attributes(left) {
		have[meta.RefDocID(a.Type)] = struct{}{}
	}
	var added []string
	for _, a := range h.Attributes(right) {
		id := meta.RefDocID(a.Type)
		if _, ok := have[id]; ok {
			continue
		}
		if _, ok := r.ignored[id]; ok {
			continue
		}
		added = append(added, strings.TrimPrefix(id, "T:"))
	}
	if len(added) == 0 {
		return Unchanged
	}
	sort.Strings(added)
	return Incompatiblef(sink, r, right, "attributes added: %s", strings.Join(added, ", "))
}
