package differ

import (
	"apiforge/internal/mapping"
	"apiforge/internal/meta"
)

func memberPair(sink Sink, left, right meta.Symbol) (*meta.Member, *meta.Member, bool) {
	if left.Kind != meta.SymMember || right.Kind != meta.SymMember {
		return nil, nil, false
	}
	h := sink.Host()
	l, r := h.Member(left.Member), h.Member(right.Member)
	return l, r, l != nil && r != nil
}

type MemberKindMustMatch struct{}

func (MemberKindMustMatch) ID() string         { return "MemberKindMustMatch" }
func (MemberKindMustMatch) Kind() mapping.Kind { return mapping.KindMember }

func (r MemberKindMustMatch) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	l, rm, ok := memberPair(sink, left, right)
	if !ok {
		return Unknown
	}
	if l.Kind == rm.Kind {
		return Unchanged
	}
	return Incompatiblef(sink, r, right, "member kind changed from %s to %s", l.Kind, rm.Kind)
}

// ReturnTypeMustMatch compares return types of methods and properties and
// the type of fields and events.
type ReturnTypeMustMatch struct{}

func (ReturnTypeMustMatch) ID() string         { return "ReturnTypeMustMatch" }
func (ReturnTypeMustMatch) Kind() mapping.Kind { return mapping.KindMember }

func (r ReturnTypeMustMatch) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	l, rm, ok := memberPair(sink, left, right)
	if !ok || l.Kind == meta.MemberCtor || rm.Kind == meta.MemberCtor {
		return Unknown
	}
	lt, rt := returnName(l.Return), returnName(rm.Return)
	if lt == rt {
		return Unchanged
	}
	return Incompatiblef(sink, r, right, "type changed from %s to %s", lt, rt)
}

func returnName(ref *meta.TypeRef) string {
	if ref == nil {
		return "void"
	}
	return meta.RefName(*ref)
}

type CannotChangeStatic struct{}

func (CannotChangeStatic) ID() string         { return "CannotChangeStatic" }
func (CannotChangeStatic) Kind() mapping.Kind { return mapping.KindMember }

func (r CannotChangeStatic) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	l, rm, ok := memberPair(sink, left, right)
	if !ok {
		return Unknown
	}
	switch {
	case l.Static == rm.Static:
		return Unchanged
	case rm.Static:
		return Incompatiblef(sink, r, right, "member is now static")
	default:
		return Incompatiblef(sink, r, right, "member is no longer static")
	}
}

type CannotMakeAbstract struct{}

func (CannotMakeAbstract) ID() string         { return "CannotMakeAbstract" }
func (CannotMakeAbstract) Kind() mapping.Kind { return mapping.KindMember }

func (r CannotMakeAbstract) Evaluate(sink Sink, left, right meta.Symbol) DifferenceKind {
	l, rm, ok := memberPair(sink, left, right)
	if !ok {
		return Unknown
	}
	if !l.Abstract && rm.Abstract {
		return Incompatiblef(sink, r, right, "member is now abstract")
	}
	return Unchanged
}
