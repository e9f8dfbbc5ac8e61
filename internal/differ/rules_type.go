package differ

import (
	"apiforge/internal/mapping"
	"apiforge/internal/meta"
)

// ModuleIdentityMustMatch flags a changed public key token.
type ModuleIdentityMustMatch struct{}

func (ModuleIdentityMustMatch) ID() string         { return "ModuleIdentityMustMatch" }
func (ModuleIdentityMustMatch) Kind() mapping.Kind { return mapping.KindModule }

func (r ModuleIdentityMustMatch) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	if left.Kind != meta.SymModule || right.Kind != meta.SymModule {
		return Unknown
	}
	h := sink.Host()
	l, rm := h.Module(left.Module), h.Module(right.Module)
	if l.PublicKeyToken == rm.PublicKeyToken {
		return Unchanged
	}
	return Incompatiblef(sink, r, right, "public key token changed from %s to %s",
		tokenOrNull(l.PublicKeyToken), tokenOrNull(rm.PublicKeyToken))
}

func tokenOrNull(t string) string {
	if t == "" {
		return "null"
	}
	return t
}

// typePair returns both definitions when the rule applies.
func typePair(sink Sink, left, right meta.Symbol) (*meta.Type, *meta.Type, bool) {
	if left.Kind != meta.SymType || right.Kind != meta.SymType {
		return nil, nil, false
	}
	h := sink.Host()
	l, r := h.Type(left.Type), h.Type(right.Type)
	return l, r, l != nil && r != nil
}

type TypeKindMustMatch struct{}

func (TypeKindMustMatch) ID() string         { return "TypeKindMustMatch" }
func (TypeKindMustMatch) Kind() mapping.Kind { return mapping.KindType }

func (r TypeKindMustMatch) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	l, rt, ok := typePair(sink, left, right)
	if !ok {
		return Unknown
	}
	if l.Kind == rt.Kind {
		return Unchanged
	}
	return Incompatiblef(sink, r, right, "type kind changed from %s to %s", l.Kind, rt.Kind)
}

// CannotSealType flags a class that became sealed or static.
type CannotSealType struct{}

func (CannotSealType) ID() string         { return "CannotSealType" }
func (CannotSealType) Kind() mapping.Kind { return mapping.KindType }

func (r CannotSealType) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	l, rt, ok := typePair(sink, left, right)
	if !ok || l.Kind != meta.TypeClass || rt.Kind != meta.TypeClass {
		return Unknown
	}
	switch {
	case !l.Sealed && !l.Static && rt.Sealed:
		return Incompatiblef(sink, r, right, "type is now sealed")
	case !l.Static && rt.Static:
		return Incompatiblef(sink, r, right, "type is now static")
	}
	return Unchanged
}

type CannotMakeTypeAbstract struct{}

func (CannotMakeTypeAbstract) ID() string         { return "CannotMakeTypeAbstract" }
func (CannotMakeTypeAbstract) Kind() mapping.Kind { return mapping.KindType }

func (r CannotMakeTypeAbstract) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	l, rt, ok := typePair(sink, left, right)
	if !ok || l.Kind != meta.TypeClass || rt.Kind != meta.TypeClass {
		return Unknown
	}
	if !l.Abstract && rt.Abstract && !rt.Static {
		return Incompatiblef(sink, r, right, "type is now abstract")
	}
	return Unchanged
}

// CannotReduceVisibility applies to types or members depending on scope.
type CannotReduceVisibility struct {
	scope mapping.Kind
}

func NewCannotReduceVisibility(scope mapping.Kind) CannotReduceVisibility {
	return CannotReduceVisibility{scope: scope}
}

func (CannotReduceVisibility) ID() string           { return "CannotReduceVisibility" }
func (r CannotReduceVisibility) Kind() mapping.Kind { return r.scope }

func (r CannotReduceVisibility) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	want := meta.SymType
	if r.scope == mapping.KindMember {
		want = meta.SymMember
	}
	if left.Kind != want || right.Kind != want {
		return Unknown
	}
	h := sink.Host()
	lv, rv := h.Visibility(left), h.Visibility(right)
	if rv.Rank() < lv.Rank() {
		return Incompatiblef(sink, r, right, "visibility reduced from %s to %s", lv, rv)
	}
	return Unchanged
}
