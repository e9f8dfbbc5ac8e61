package meta

// maxForwardHops bounds forward chains so a cycle cannot spin forever.
const maxForwardHops = 8

// Resolve finds the type a named reference points at, as seen from module
// from. Modules of the same group are preferred over modules of other groups
// with the same name; forward declarations are followed.
func (h *Host) Resolve(from ModuleID, ref TypeRef) (TypeID, bool) {
	for ref.Shape != RefNamed {
		if ref.Elem == nil {
			return NoTypeID, false
		}
		ref = *ref.Elem
	}
	if ref.Name == "" {
		return NoTypeID, false
	}
	key := resolveKey{from: from, scope: ref.Scope, docID: RefDocID(ref)}
	if id, ok := h.resolved.Get(key); ok {
		return id, id.IsValid()
	}
	id := h.resolve(from, ref, 0)
	h.resolved.Add(key, id)
	return id, id.IsValid()
}

func (h *Host) resolve(from ModuleID, ref TypeRef, hops int) TypeID {
	if hops > maxForwardHops {
		return NoTypeID
	}
	docID := RefDocID(ref)
	for _, mod := range h.scopeCandidates(from, ref.Scope) {
		if id := h.FindType(mod, docID); id.IsValid() {
			return id
		}
		entry := h.modules.Get(uint32(mod))
		top := RefDocID(ref.TopLevel())
		if i, ok := entry.forwards[top]; ok {
			next := ref
			next.Scope = entry.def.Forwards[i].Target.Scope
			if next.Scope == "" || next.Scope == entry.def.Name {
				continue
			}
			if id := h.resolve(mod, next, hops+1); id.IsValid() {
				return id
			}
		}
	}
	return NoTypeID
}

// scopeCandidates orders the modules a reference scope may denote.
func (h *Host) scopeCandidates(from ModuleID, scope string) []ModuleID {
	if scope == "" || scope == h.ModuleName(from) {
		if from.IsValid() {
			return []ModuleID{from}
		}
		return nil
	}
	named := h.byName[scope]
	if len(named) <= 1 {
		return named
	}
	group := h.ModuleGroup(from)
	out := make([]ModuleID, 0, len(named))
	for _, id := range named {
		if h.ModuleGroup(id) == group {
			out = append(out, id)
		}
	}
	for _, id := range named {
		if h.ModuleGroup(id) != group {
			out = append(out, id)
		}
	}
	return out
}

// ResolveForward resolves the target of a forward declared in mod.
func (h *Host) ResolveForward(mod ModuleID, fw Forward) (TypeID, bool) {
	if fw.Target.Scope == "" || fw.Target.Scope == h.ModuleName(mod) {
		return NoTypeID, false
	}
	return h.Resolve(mod, fw.Target)
}

// BaseEntry is one ancestor in a base chain. Symbol is absent when the
// ancestor's module is not loaded; DocID is always set.
type BaseEntry struct {
	DocID  string
	Symbol Symbol
}

// BaseChain lists the primary base classes of t, nearest first, excluding t.
// The walk stops at the first ancestor that cannot be resolved, after
// recording it.
func (h *Host) BaseChain(t TypeID) []BaseEntry {
	var chain []BaseEntry
	seen := map[TypeID]struct{}{t: {}}
	cur := t
	for {
		def := h.Type(cur)
		if def == nil || def.Base == nil {
			return chain
		}
		ref := *def.Base
		entry := BaseEntry{DocID: RefDocID(ref)}
		next, ok := h.Resolve(h.TypeModule(cur), ref)
		if ok {
			entry.Symbol = h.TypeSymbol(next)
		}
		chain = append(chain, entry)
		if !ok {
			return chain
		}
		if _, loop := seen[next]; loop {
			return chain
		}
		seen[next] = struct{}{}
		cur = next
	}
}

// FindInheritedMember searches the base chain of t (excluding t) for a member
// with the given key.
func (h *Host) FindInheritedMember(t TypeID, key string) MemberID {
	for _, base := range h.BaseChain(t) {
		if !base.Symbol.IsValid() {
			return NoMemberID
		}
		if id := h.MemberByKey(base.Symbol.Type, key); id.IsValid() {
			return id
		}
	}
	return NoMemberID
}
