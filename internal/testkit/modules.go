package testkit

import (
	"testing"

	"apiforge/internal/meta"
)

// ModuleBuilder assembles in-memory modules for tests.
type ModuleBuilder struct {
	m *meta.Module
}

func Module(name string) *ModuleBuilder {
	return &ModuleBuilder{m: &meta.Module{Name: name, Version: meta.Version{Major: 1}}}
}

func (b *ModuleBuilder) Version(major, minor, build, revision uint16) *ModuleBuilder {
	b.m.Version = meta.Version{Major: major, Minor: minor, Build: build, Revision: revision}
	return b
}

func (b *ModuleBuilder) KeyToken(token string) *ModuleBuilder {
	b.m.PublicKeyToken = token
	return b
}

func (b *ModuleBuilder) Attribute(ns, name string, args ...meta.AttributeArg) *ModuleBuilder {
	b.m.Attributes = append(b.m.Attributes, meta.Attribute{Type: meta.TypeRef{Namespace: ns, Name: name}, Args: args})
	return b
}

// Type adds a public class unless options say otherwise.
func (b *ModuleBuilder) Type(ns, name string, opts ...TypeOption) *ModuleBuilder {
	b.m.Types = append(b.m.Types, NewType(ns, name, opts...))
	return b
}

// Hierarchy adds a single-inheritance chain listed farthest ancestor first:
// Hierarchy("Garden", "Object", "Fruit", "Apple") makes Apple derive from
// Fruit and Fruit from Object.
func (b *ModuleBuilder) Hierarchy(ns string, chain ...string) *ModuleBuilder {
	for i, name := range chain {
		t := NewType(ns, name)
		if i > 0 {
			base := Ref("", ns, chain[i-1])
			t.Base = &base
		}
		b.m.Types = append(b.m.Types, t)
	}
	return b
}

func (b *ModuleBuilder) Forward(scope, ns, name string) *ModuleBuilder {
	b.m.Forwards = append(b.m.Forwards, meta.Forward{Target: Ref(scope, ns, name)})
	return b
}

func (b *ModuleBuilder) Build() *meta.Module {
	return b.m
}

type TypeOption func(*meta.Type)

func NewType(ns, name string, opts ...TypeOption) meta.Type {
	t := meta.Type{Namespace: ns, Name: name, Visibility: meta.VisPublic}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func Base(scope, ns, name string) TypeOption {
	return func(t *meta.Type) {
		r := Ref(scope, ns, name)
		t.Base = &r
	}
}

func Kind(k meta.TypeKind) TypeOption { return func(t *meta.Type) { t.Kind = k } }

func Visibility(v meta.Visibility) TypeOption { return func(t *meta.Type) { t.Visibility = v } }

func Sealed() TypeOption { return func(t *meta.Type) { t.Sealed = true } }

func Abstract() TypeOption { return func(t *meta.Type) { t.Abstract = true } }

func Arity(n int) TypeOption { return func(t *meta.Type) { t.Arity = n } }

func Generated() TypeOption { return func(t *meta.Type) { t.Generated = true } }

func TypeAttribute(ns, name string) TypeOption {
	return func(t *meta.Type) {
		t.Attributes = append(t.Attributes, meta.Attribute{Type: meta.TypeRef{Namespace: ns, Name: name}})
	}
}

func Nested(name string, opts ...TypeOption) TypeOption {
	return func(t *meta.Type) {
		t.Nested = append(t.Nested, NewType("", name, opts...))
	}
}

func Members(members ...meta.Member) TypeOption {
	return func(t *meta.Type) { t.Members = append(t.Members, members...) }
}

func Method(name string, ret *meta.TypeRef, params ...meta.TypeRef) meta.Member {
	return meta.Member{Name: name, Kind: meta.MemberMethod, Visibility: meta.VisPublic, Return: ret, Params: params}
}

func Field(name string, typ meta.TypeRef) meta.Member {
	return meta.Member{Name: name, Kind: meta.MemberField, Visibility: meta.VisPublic, Return: &typ}
}

func Property(name string, typ meta.TypeRef) meta.Member {
	return meta.Member{Name: name, Kind: meta.MemberProperty, Visibility: meta.VisPublic, Return: &typ}
}

func Ref(scope, ns, name string) meta.TypeRef {
	return meta.TypeRef{Scope: scope, Namespace: ns, Name: name}
}

func RefPtr(scope, ns, name string) *meta.TypeRef {
	r := Ref(scope, ns, name)
	return &r
}

// Load registers modules with h under group and fails the test on error.
func Load(t testing.TB, h *meta.Host, group string, mods ...*meta.Module) []meta.ModuleID {
	t.Helper()
	ids := make([]meta.ModuleID, 0, len(mods))
	for _, m := range mods {
		id, err := h.Add(m, m.Name+meta.FileExt, group)
		if err != nil {
			t.Fatalf("load %s into %s: %v", m.Name, group, err)
		}
		ids = append(ids, id)
	}
	return ids
}
