package facade

import (
	"fmt"
	"sort"
	"strings"

	"apiforge/internal/diag"
	"apiforge/internal/meta"
)

const (
	attrSignatureKey         = "AssemblySignatureKeyAttribute"
	attrFileVersion          = "AssemblyFileVersionAttribute"
	attrInformationalVersion = "AssemblyInformationalVersionAttribute"
	attrReferenceAssembly    = "ReferenceAssemblyAttribute"

	nsReflection       = "System.Reflection"
	nsCompilerServices = "System.Runtime.CompilerServices"
)

// redirector rewrites references to forwarded types so they name the seed
// module. Only references into the module itself are candidates; nested
// references follow their top-level container.
type redirector struct {
	self    string
	targets map[string]string
}

func newRedirector(self string, forwards []Forward) redirector {
	targets := make(map[string]string, len(forwards))
	for _, fw := range forwards {
		targets[fw.DocID] = fw.Seed.Name
	}
	return redirector{self: self, targets: targets}
}

func (rw redirector) ref(r meta.TypeRef) meta.TypeRef {
	if r.Shape == meta.RefNamed && (r.Scope == "" || r.Scope == rw.self) {
		if seed, ok := rw.targets[meta.RefDocID(r.TopLevel())]; ok {
			r.Scope = seed
		}
	}
	if len(r.Args) > 0 {
		args := make([]meta.TypeRef, len(r.Args))
		for i, a := range r.Args {
			args[i] = rw.ref(a)
		}
		r.Args = args
	}
	r.Elem = rw.refPtr(r.Elem)
	return r
}

func (rw redirector) refPtr(r *meta.TypeRef) *meta.TypeRef {
	if r == nil {
		return nil
	}
	out := rw.ref(*r)
	return &out
}

func (rw redirector) refs(in []meta.TypeRef) []meta.TypeRef {
	if in == nil {
		return nil
	}
	out := make([]meta.TypeRef, len(in))
	for i, r := range in {
		out[i] = rw.ref(r)
	}
	return out
}

func (rw redirector) attribute(a meta.Attribute) meta.Attribute {
	out := meta.Attribute{Type: rw.ref(a.Type)}
	if a.Args != nil {
		out.Args = make([]meta.AttributeArg, len(a.Args))
		for i, arg := range a.Args {
			arg.Type = rw.refPtr(arg.Type)
			out.Args[i] = arg
		}
	}
	return out
}

func (rw redirector) attributes(in []meta.Attribute) []meta.Attribute {
	if in == nil {
		return nil
	}
	out := make([]meta.Attribute, len(in))
	for i, a := range in {
		out[i] = rw.attribute(a)
	}
	return out
}

func (rw redirector) member(m meta.Member) meta.Member {
	m.Params = rw.refs(m.Params)
	m.Return = rw.refPtr(m.Return)
	m.Attributes = rw.attributes(m.Attributes)
	return m
}

func (rw redirector) typ(t meta.Type) meta.Type {
	t.Base = rw.refPtr(t.Base)
	t.Interfaces = rw.refs(t.Interfaces)
	t.Attributes = rw.attributes(t.Attributes)
	if t.Members != nil {
		members := make([]meta.Member, len(t.Members))
		for i, m := range t.Members {
			members[i] = rw.member(m)
		}
		t.Members = members
	}
	if t.Nested != nil {
		nested := make([]meta.Type, len(t.Nested))
		for i, n := range t.Nested {
			nested[i] = rw.typ(n)
		}
		t.Nested = nested
	}
	return t
}

// module deep-copies m with every reference redirected.
func (rw redirector) module(m *meta.Module) *meta.Module {
	out := *m
	if m.Types != nil {
		out.Types = make([]meta.Type, len(m.Types))
		for i, t := range m.Types {
			out.Types[i] = rw.typ(t)
		}
	}
	if m.Forwards != nil {
		out.Forwards = make([]meta.Forward, len(m.Forwards))
		copy(out.Forwards, m.Forwards)
	}
	out.Attributes = rw.attributes(m.Attributes)
	out.References = append([]meta.Identity(nil), m.References...)
	out.DebugSymbols = append([]byte(nil), m.DebugSymbols...)
	return &out
}

// attributeName is the simple name of an attribute type, without namespace
// or containing types.
func attributeName(a meta.Attribute) string {
	name := a.Type.Name
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// keepAssemblyAttribute keeps module-level attributes whose name starts with
// "Assembly", except the signature key and, when a new file version is set,
// the version attributes that get re-added.
func keepAssemblyAttribute(a meta.Attribute, stripFileVersion bool) bool {
	name := attributeName(a)
	switch {
	case !strings.HasPrefix(name, "Assembly"):
		return false
	case name == attrSignatureKey:
		return false
	case stripFileVersion && (name == attrFileVersion || name == attrInformationalVersion):
		return false
	}
	return true
}

// rewriteContract turns a copy of the contract into a facade: no types, only
// assembly-level attributes and one forward per bound doc-id.
func rewriteContract(h *meta.Host, contract meta.ModuleID, forwards []Forward, opts Options, r diag.Reporter) *meta.Module {
	src := h.Module(contract)
	rw := newRedirector(src.Name, forwards)
	out := &meta.Module{
		Name:           src.Name,
		Version:        src.Version,
		PublicKeyToken: src.PublicKeyToken,
	}
	for _, a := range src.Attributes {
		if keepAssemblyAttribute(a, opts.FileVersion != nil) {
			out.Attributes = append(out.Attributes, rw.attribute(a))
		}
	}
	addForwards(h, out, forwards, r)
	finishFacade(h, out, src.References, forwards, opts)
	return out
}

// addForwards appends a forward per binding. A forward that already exists
// for the same seed is kept; one pointing elsewhere is fatal.
func addForwards(h *meta.Host, out *meta.Module, forwards []Forward, r diag.Reporter) {
	existing := make(map[string]string, len(out.Forwards)+len(forwards))
	for _, fw := range out.Forwards {
		existing[meta.RefDocID(fw.Target)] = fw.Target.Scope
	}
	for _, fw := range forwards {
		if scope, dup := existing[fw.DocID]; dup {
			if scope == fw.Seed.Name {
				continue
			}
			diag.ReportError(r, diag.FacDuplicateForward, diag.Location{Module: out.Name, DocID: fw.DocID},
				fmt.Sprintf("type forward for %s already exists (to %s, not %s)", fw.DocID, scope, fw.Seed.Name)).Emit()
			continue
		}
		t := h.Type(fw.Type)
		out.Forwards = append(out.Forwards, meta.Forward{Target: meta.TypeRef{
			Scope:     fw.Seed.Name,
			Namespace: t.Namespace,
			Name:      t.MetadataName(),
		}})
		existing[fw.DocID] = fw.Seed.Name
	}
}

// finishFacade applies the version and design-time options and recomputes
// the module references.
func finishFacade(h *meta.Host, out *meta.Module, known []meta.Identity, forwards []Forward, opts Options) {
	if opts.FileVersion != nil {
		v := opts.FileVersion.String()
		out.Attributes = removeAttributes(out.Attributes, attrFileVersion, attrInformationalVersion)
		out.Attributes = append(out.Attributes,
			stringAttribute(nsReflection, attrFileVersion, v),
			stringAttribute(nsReflection, attrInformationalVersion, v))
	}
	if opts.DesignTime {
		out.Reference = true
		out.Attributes = removeAttributes(out.Attributes, attrReferenceAssembly)
		out.Attributes = append(out.Attributes, meta.Attribute{Type: meta.TypeRef{Namespace: nsCompilerServices, Name: attrReferenceAssembly}})
	}
	if opts.ClearBuildAndRevision {
		out.Version = out.Version.WithoutBuildAndRevision()
	}
	out.References = references(h, out, known, forwards, opts.Version.ForceZero)
}

func stringAttribute(ns, name, value string) meta.Attribute {
	return meta.Attribute{
		Type: meta.TypeRef{Namespace: ns, Name: name},
		Args: []meta.AttributeArg{{Kind: meta.ArgString, String: value}},
	}
}

func removeAttributes(in []meta.Attribute, names ...string) []meta.Attribute {
	out := in[:0]
	for _, a := range in {
		drop := false
		for _, n := range names {
			if attributeName(a) == n {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, a)
		}
	}
	return out
}

// references lists every module out refers to, sorted by name. Seed
// identities come from the bindings, others from the previous reference list
// or the host.
func references(h *meta.Host, out *meta.Module, known []meta.Identity, forwards []Forward, forceZero bool) []meta.Identity {
	scopes := make(map[string]struct{})
	collectScopes(out, scopes)
	delete(scopes, "")
	delete(scopes, out.Name)

	byName := make(map[string]meta.Identity, len(known)+len(forwards))
	for _, id := range known {
		byName[id.Name] = id
	}
	for _, fw := range forwards {
		byName[fw.Seed.Name] = fw.Seed
	}
	refs := make([]meta.Identity, 0, len(scopes))
	for scope := range scopes {
		id, ok := byName[scope]
		if !ok {
			id = meta.Identity{Name: scope}
			for _, mod := range h.Modules() {
				if h.ModuleName(mod) == scope {
					id = h.Module(mod).Identity()
					break
				}
			}
		}
		if forceZero {
			id.Version = meta.Version{}
		}
		refs = append(refs, id)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs
}

func collectScopes(m *meta.Module, into map[string]struct{}) {
	for _, fw := range m.Forwards {
		refScopes(fw.Target, into)
	}
	attrScopes(m.Attributes, into)
	for i := range m.Types {
		typeScopes(&m.Types[i], into)
	}
}

func typeScopes(t *meta.Type, into map[string]struct{}) {
	if t.Base != nil {
		refScopes(*t.Base, into)
	}
	for _, r := range t.Interfaces {
		refScopes(r, into)
	}
	attrScopes(t.Attributes, into)
	for i := range t.Members {
		m := &t.Members[i]
		for _, p := range m.Params {
			refScopes(p, into)
		}
		if m.Return != nil {
			refScopes(*m.Return, into)
		}
		attrScopes(m.Attributes, into)
	}
	for i := range t.Nested {
		typeScopes(&t.Nested[i], into)
	}
}

func attrScopes(attrs []meta.Attribute, into map[string]struct{}) {
	for _, a := range attrs {
		refScopes(a.Type, into)
		for _, arg := range a.Args {
			if arg.Type != nil {
				refScopes(*arg.Type, into)
			}
		}
	}
}

func refScopes(r meta.TypeRef, into map[string]struct{}) {
	into[r.Scope] = struct{}{}
	for _, a := range r.Args {
		refScopes(a, into)
	}
	if r.Elem != nil {
		refScopes(*r.Elem, into)
	}
}
