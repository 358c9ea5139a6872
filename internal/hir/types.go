package hir

import (
	"fmt"
	"strings"
)

// TypeKind represents the fundamental kind of a type.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindUnit
	TypeKindBoolean
	TypeKindInt
	TypeKindLong
	TypeKindChar
	TypeKindIntRange
	TypeKindIntProgression
	TypeKindLongRange
	TypeKindLongProgression
	TypeKindCharRange
	TypeKindCharProgression
	TypeKindIterator
	TypeKindIntIterator
	TypeKindLongIterator
	TypeKindCharIterator
	TypeKindList
	TypeKindAny
)

var typeKindNames = map[TypeKind]string{
	TypeKindUnknown:         "<unknown>",
	TypeKindUnit:            "Unit",
	TypeKindBoolean:         "Boolean",
	TypeKindInt:             "Int",
	TypeKindLong:            "Long",
	TypeKindChar:            "Char",
	TypeKindIntRange:        "IntRange",
	TypeKindIntProgression:  "IntProgression",
	TypeKindLongRange:       "LongRange",
	TypeKindLongProgression: "LongProgression",
	TypeKindCharRange:       "CharRange",
	TypeKindCharProgression: "CharProgression",
	TypeKindIterator:        "Iterator",
	TypeKindIntIterator:     "IntIterator",
	TypeKindLongIterator:    "LongIterator",
	TypeKindCharIterator:    "CharIterator",
	TypeKindList:            "List",
	TypeKindAny:             "Any",
}

// supertypes lists the direct supertype of each kind. Any is the root.
var supertypes = map[TypeKind]TypeKind{
	TypeKindIntRange:     TypeKindIntProgression,
	TypeKindLongRange:    TypeKindLongProgression,
	TypeKindCharRange:    TypeKindCharProgression,
	TypeKindIntIterator:  TypeKindIterator,
	TypeKindLongIterator: TypeKindIterator,
	TypeKindCharIterator: TypeKindIterator,
}

// Type is a (possibly nullable) HIR type.
type Type struct {
	Kind     TypeKind
	Nullable bool
}

// Predefined non-nullable types.
var (
	Unit            = Type{Kind: TypeKindUnit}
	Boolean         = Type{Kind: TypeKindBoolean}
	Int             = Type{Kind: TypeKindInt}
	Long            = Type{Kind: TypeKindLong}
	Char            = Type{Kind: TypeKindChar}
	IntRange        = Type{Kind: TypeKindIntRange}
	IntProgression  = Type{Kind: TypeKindIntProgression}
	LongRange       = Type{Kind: TypeKindLongRange}
	LongProgression = Type{Kind: TypeKindLongProgression}
	CharRange       = Type{Kind: TypeKindCharRange}
	CharProgression = Type{Kind: TypeKindCharProgression}
	Iterator        = Type{Kind: TypeKindIterator}
	IntIterator     = Type{Kind: TypeKindIntIterator}
	LongIterator    = Type{Kind: TypeKindLongIterator}
	CharIterator    = Type{Kind: TypeKindCharIterator}
	List            = Type{Kind: TypeKindList}
	Any             = Type{Kind: TypeKindAny}
)

// NotNull returns t without the nullability marker.
func (t Type) NotNull() Type { return Type{Kind: t.Kind} }

// OrNull returns the nullable variant of t.
func (t Type) OrNull() Type { return Type{Kind: t.Kind, Nullable: true} }

// Is reports whether t has kind k, ignoring nullability.
func (t Type) Is(k TypeKind) bool { return t.Kind == k }

// IsSubtypeOf reports whether a value of type t can be used where super is expected.
func (t Type) IsSubtypeOf(super Type) bool {
	if t.Nullable && !super.Nullable {
		return false
	}
	if super.Kind == TypeKindAny {
		return true
	}
	for k := t.Kind; ; {
		if k == super.Kind {
			return true
		}
		next, ok := supertypes[k]
		if !ok {
			return false
		}
		k = next
	}
}

func (t Type) String() string {
	name, ok := typeKindNames[t.Kind]
	if !ok {
		name = fmt.Sprintf("<kind %d>", int(t.Kind))
	}
	if t.Nullable {
		return name + "?"
	}
	return name
}

// ParseType parses the String form of a type.
func ParseType(s string) (Type, error) {
	nullable := strings.HasSuffix(s, "?")
	name := strings.TrimSuffix(s, "?")
	for k, n := range typeKindNames {
		if n == name && k != TypeKindUnknown {
			return Type{Kind: k, Nullable: nullable}, nil
		}
	}
	return Type{}, fmt.Errorf("unknown type %q", s)
}

// FunctionSymbol identifies a callable. Two calls resolve to the same function iff
// their symbols are the same pointer.
type FunctionSymbol struct {
	Name     string
	Receiver *Type // nil for top-level functions
	Params   []Type
	Return   Type
}

// Signature returns a stable textual identity, e.g. "Int.rangeTo(Int):IntRange".
func (f *FunctionSymbol) Signature() string {
	var sb strings.Builder
	if f.Receiver != nil {
		sb.WriteString(f.Receiver.String())
		sb.WriteByte('.')
	}
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.String())
	}
	sb.WriteString("):")
	sb.WriteString(f.Return.String())
	return sb.String()
}

func (f *FunctionSymbol) String() string { return f.Signature() }
