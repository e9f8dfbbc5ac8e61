package meta

import (
	"fmt"
	"strings"
)

// RefName renders a reference in doc-id form: System.Collections.Generic.List{System.Int32},
// System.Int32[], T*, T@, `0 and ``0.
func RefName(r TypeRef) string {
	var sb strings.Builder
	writeRef(&sb, r)
	return sb.String()
}

func writeRef(sb *strings.Builder, r TypeRef) {
	switch r.Shape {
	case RefArray:
		writeElem(sb, r.Elem)
		sb.WriteByte('[')
		for i := 1; i < r.Rank; i++ {
			sb.WriteByte(',')
		}
		sb.WriteByte(']')
	case RefPointer:
		writeElem(sb, r.Elem)
		sb.WriteByte('*')
	case RefByRef:
		writeElem(sb, r.Elem)
		sb.WriteByte('@')
	case RefTypeParam:
		fmt.Fprintf(sb, "`%d", r.Index)
	case RefMethodParam:
		fmt.Fprintf(sb, "``%d", r.Index)
	default:
		sb.WriteString(QualifiedName(r.Namespace, r.Name))
		if len(r.Args) > 0 {
			sb.WriteByte('{')
			for i, a := range r.Args {
				if i > 0 {
					sb.WriteByte(',')
				}
				writeRef(sb, a)
			}
			sb.WriteByte('}')
		}
	}
}

func writeElem(sb *strings.Builder, elem *TypeRef) {
	if elem == nil {
		sb.WriteString("?")
		return
	}
	writeRef(sb, *elem)
}

// QualifiedName joins a namespace with a metadata name path, turning nested
// separators into dots.
func QualifiedName(ns, name string) string {
	name = strings.ReplaceAll(name, "/", ".")
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// RefDocID is the doc-id of the named type a reference points at.
func RefDocID(r TypeRef) string {
	return "T:" + QualifiedName(r.Namespace, r.Name)
}

// NormalizeTypeDocID adds the "T:" prefix when missing.
func NormalizeTypeDocID(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "T:") {
		return name
	}
	return "T:" + name
}

// MemberKey identifies a member inside its type. Methods carry their
// signature so overloads stay apart; fields, properties and events are keyed
// by name so a field turned into a property still aligns.
func MemberKey(m *Member) string {
	if m.Kind != MemberMethod && m.Kind != MemberCtor && len(m.Params) == 0 {
		return m.Name
	}
	return "M:" + memberTail(m)
}

func memberDocID(typeName string, m *Member) string {
	return m.Kind.DocPrefix() + ":" + typeName + "." + memberTail(m)
}

func memberTail(m *Member) string {
	var sb strings.Builder
	if m.Kind == MemberCtor {
		if m.Static {
			sb.WriteString("#cctor")
		} else {
			sb.WriteString("#ctor")
		}
	} else {
		sb.WriteString(m.Name)
	}
	if m.Arity > 0 {
		fmt.Fprintf(&sb, "``%d", m.Arity)
	}
	if len(m.Params) > 0 {
		sb.WriteByte('(')
		for i, p := range m.Params {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeRef(&sb, p)
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
