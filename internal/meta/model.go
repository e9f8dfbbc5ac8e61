package meta

import (
	"fmt"
	"strings"
)

// SchemaVersion is the current on-disk module format.
const SchemaVersion uint16 = 1

type Version struct {
	Major    uint16 `msgpack:"major" json:"major"`
	Minor    uint16 `msgpack:"minor" json:"minor"`
	Build    uint16 `msgpack:"build" json:"build"`
	Revision uint16 `msgpack:"revision" json:"revision"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// Compare orders versions field by field; it returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	a := [4]uint16{v.Major, v.Minor, v.Build, v.Revision}
	b := [4]uint16{o.Major, o.Minor, o.Build, o.Revision}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// WithoutBuildAndRevision zeroes the build and revision fields.
func (v Version) WithoutBuildAndRevision() Version {
	v.Build, v.Revision = 0, 0
	return v
}

// ParseVersion accepts "major.minor[.build[.revision]]".
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || len(parts) > 4 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	var out [4]uint16
	for i, p := range parts {
		var n uint16
		if _, err := fmt.Sscanf(p, "%d", &n); err != nil || fmt.Sprint(n) != p {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		out[i] = n
	}
	return Version{Major: out[0], Minor: out[1], Build: out[2], Revision: out[3]}, nil
}

// Identity names a module the way references and forwards do.
type Identity struct {
	Name           string  `msgpack:"name" json:"name"`
	Version        Version `msgpack:"version" json:"version"`
	PublicKeyToken string  `msgpack:"key_token,omitempty" json:"key_token,omitempty"`
}

func (id Identity) String() string {
	token := id.PublicKeyToken
	if token == "" {
		token = "null"
	}
	return fmt.Sprintf("%s, Version=%s, PublicKeyToken=%s", id.Name, id.Version, token)
}

// Module is the persisted form of one compiled library's public surface.
type Module struct {
	Schema         uint16      `msgpack:"schema" json:"schema"`
	Name           string      `msgpack:"name" json:"name"`
	Version        Version     `msgpack:"version" json:"version"`
	PublicKeyToken string      `msgpack:"key_token,omitempty" json:"key_token,omitempty"`
	Reference      bool        `msgpack:"reference,omitempty" json:"reference,omitempty"`
	Types          []Type      `msgpack:"types" json:"types,omitempty"`
	Forwards       []Forward   `msgpack:"forwards,omitempty" json:"forwards,omitempty"`
	Attributes     []Attribute `msgpack:"attributes,omitempty" json:"attributes,omitempty"`
	References     []Identity  `msgpack:"references,omitempty" json:"references,omitempty"`
	DebugSymbols   []byte      `msgpack:"debug,omitempty" json:"-"`
}

func (m *Module) Identity() Identity {
	return Identity{Name: m.Name, Version: m.Version, PublicKeyToken: m.PublicKeyToken}
}

type Type struct {
	Namespace  string      `msgpack:"ns,omitempty" json:"namespace,omitempty"`
	Name       string      `msgpack:"name" json:"name"`
	Arity      int         `msgpack:"arity,omitempty" json:"arity,omitempty"`
	Kind       TypeKind    `msgpack:"kind" json:"kind"`
	Visibility Visibility  `msgpack:"vis" json:"visibility"`
	Sealed     bool        `msgpack:"sealed,omitempty" json:"sealed,omitempty"`
	Abstract   bool        `msgpack:"abstract,omitempty" json:"abstract,omitempty"`
	Static     bool        `msgpack:"static,omitempty" json:"static,omitempty"`
	Generated  bool        `msgpack:"generated,omitempty" json:"generated,omitempty"`
	Base       *TypeRef    `msgpack:"base,omitempty" json:"base,omitempty"`
	Interfaces []TypeRef   `msgpack:"ifaces,omitempty" json:"interfaces,omitempty"`
	Nested     []Type      `msgpack:"nested,omitempty" json:"nested,omitempty"`
	Members    []Member    `msgpack:"members,omitempty" json:"members,omitempty"`
	Attributes []Attribute `msgpack:"attrs,omitempty" json:"attributes,omitempty"`
}

// MetadataName is the name with its generic arity suffix (List`1).
func (t *Type) MetadataName() string {
	if t.Arity > 0 {
		return fmt.Sprintf("%s`%d", t.Name, t.Arity)
	}
	return t.Name
}

type Member struct {
	Name       string      `msgpack:"name" json:"name"`
	Kind       MemberKind  `msgpack:"kind" json:"kind"`
	Visibility Visibility  `msgpack:"vis" json:"visibility"`
	Static     bool        `msgpack:"static,omitempty" json:"static,omitempty"`
	Virtual    bool        `msgpack:"virtual,omitempty" json:"virtual,omitempty"`
	Abstract   bool        `msgpack:"abstract,omitempty" json:"abstract,omitempty"`
	Generated  bool        `msgpack:"generated,omitempty" json:"generated,omitempty"`
	Arity      int         `msgpack:"arity,omitempty" json:"arity,omitempty"`
	Params     []TypeRef   `msgpack:"params,omitempty" json:"params,omitempty"`
	Return     *TypeRef    `msgpack:"ret,omitempty" json:"return,omitempty"`
	Attributes []Attribute `msgpack:"attrs,omitempty" json:"attributes,omitempty"`
}

// TypeRef is the referencing form of a type. Named references carry the
// defining module in Scope and nested paths as "Outer/Inner"; segment names
// keep their arity suffix. Array, pointer and byref shapes wrap Elem; type
// and method parameters use Index.
type TypeRef struct {
	Shape     RefShape  `msgpack:"shape,omitempty" json:"shape,omitempty"`
	Scope     string    `msgpack:"scope,omitempty" json:"scope,omitempty"`
	Namespace string    `msgpack:"ns,omitempty" json:"namespace,omitempty"`
	Name      string    `msgpack:"name,omitempty" json:"name,omitempty"`
	Args      []TypeRef `msgpack:"args,omitempty" json:"args,omitempty"`
	Elem      *TypeRef  `msgpack:"elem,omitempty" json:"elem,omitempty"`
	Rank      int       `msgpack:"rank,omitempty" json:"rank,omitempty"`
	Index     int       `msgpack:"index,omitempty" json:"index,omitempty"`
}

// TopLevel returns the reference to the outermost containing type.
func (r TypeRef) TopLevel() TypeRef {
	if i := strings.IndexByte(r.Name, '/'); i >= 0 {
		return TypeRef{Shape: RefNamed, Scope: r.Scope, Namespace: r.Namespace, Name: r.Name[:i]}
	}
	return TypeRef{Shape: RefNamed, Scope: r.Scope, Namespace: r.Namespace, Name: r.Name}
}

// Nested reports whether the reference names a nested type.
func (r TypeRef) Nested() bool {
	return r.Shape == RefNamed && strings.IndexByte(r.Name, '/') >= 0
}

type ArgKind uint8

const (
	ArgString ArgKind = iota
	ArgNumber
	ArgBool
	ArgType
)

type AttributeArg struct {
	Kind   ArgKind  `msgpack:"k" json:"kind"`
	String string   `msgpack:"s,omitempty" json:"string,omitempty"`
	Number int64    `msgpack:"n,omitempty" json:"number,omitempty"`
	Bool   bool     `msgpack:"b,omitempty" json:"bool,omitempty"`
	Type   *TypeRef `msgpack:"t,omitempty" json:"type,omitempty"`
}

type Attribute struct {
	Type TypeRef        `msgpack:"type" json:"type"`
	Args []AttributeArg `msgpack:"args,omitempty" json:"args,omitempty"`
}

// Forward declares that a type is implemented in another module.
type Forward struct {
	Target TypeRef `msgpack:"target" json:"target"`
}
