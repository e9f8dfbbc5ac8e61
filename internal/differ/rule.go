package differ

import (
	"sort"
	"strings"

	"apiforge/internal/mapping"
	"apiforge/internal/meta"
)

// Rule classifies one pair of symbols of a single node kind. A rule that does
// not apply returns Unknown and reports nothing.
type Rule interface {
	ID() string
	Kind() mapping.Kind
	Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind
}

// OptionalRule is implemented by rules that only run when optional rules are
// enforced.
type OptionalRule interface {
	Optional() bool
}

func isOptional(r Rule) bool {
	o, ok := r.(OptionalRule)
	return ok && o.Optional()
}

// Registry keeps rules in registration order.
type Registry struct {
	rules  []Rule
	byKind map[mapping.Kind][]Rule
}

func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{byKind: make(map[mapping.Kind][]Rule)}
	for _, rule := range rules {
		r.Register(rule)
	}
	return r
}

func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
	r.byKind[rule.Kind()] = append(r.byKind[rule.Kind()], rule)
}

// For returns the rules for kind in registration order.
func (r *Registry) For(kind mapping.Kind) []Rule {
	return r.byKind[kind]
}

func (r *Registry) Rules() []Rule { return r.rules }

// Select returns a registry holding the rules keep accepts, order preserved.
func (r *Registry) Select(keep func(Rule) bool) *Registry {
	out := NewRegistry()
	for _, rule := range r.rules {
		if keep(rule) {
			out.Register(rule)
		}
	}
	return out
}

type RuleInfo struct {
	ID       string
	Optional bool
	Kinds    []mapping.Kind
}

// Describe lists distinct rule ids sorted case-insensitively.
func (r *Registry) Describe() []RuleInfo {
	index := make(map[string]int)
	var out []RuleInfo
	for _, rule := range r.rules {
		i, ok := index[rule.ID()]
		if !ok {
			i = len(out)
			index[rule.ID()] = i
			out = append(out, RuleInfo{ID: rule.ID(), Optional: isOptional(rule)})
		}
		out[i].Kinds = append(out[i].Kinds, rule.Kind())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].ID) < strings.ToLower(out[j].ID)
	})
	return out
}
