// Package types defines the data model shared by the goxmatch packages.
//
// This package contains type definitions for:
//   - Type: the static type lattice used by expression analysis
//   - Item: atomic values and document nodes
//   - Sequence and NodeSet: ordered item collections
//   - Document and DocumentSet: the stored document trees
//   - Dependency and Cardinality: static analysis flags
//   - Error: structured errors with codes
//   - Expression and ASTNode: parsed queries
package types

import "strings"

// Type identifies a static item type.
type Type int

// Type lattice. Item is the top type.
const (
	TypeItem Type = iota
	TypeNode
	TypeDocument
	TypeElement
	TypeAtomic
	TypeString
	TypeUntypedAtomic
	TypeBoolean
	TypeNumeric
	TypeInteger
	TypeDouble
)

var typeParents = [...]Type{
	TypeItem:          TypeItem,
	TypeNode:          TypeItem,
	TypeDocument:      TypeNode,
	TypeElement:       TypeNode,
	TypeAtomic:        TypeItem,
	TypeString:        TypeAtomic,
	TypeUntypedAtomic: TypeAtomic,
	TypeBoolean:       TypeAtomic,
	TypeNumeric:       TypeAtomic,
	TypeInteger:       TypeNumeric,
	TypeDouble:        TypeNumeric,
}

var typeNames = [...]string{
	TypeItem:          "item()",
	TypeNode:          "node()",
	TypeDocument:      "document-node()",
	TypeElement:       "element()",
	TypeAtomic:        "xs:anyAtomicType",
	TypeString:        "xs:string",
	TypeUntypedAtomic: "xs:untypedAtomic",
	TypeBoolean:       "xs:boolean",
	TypeNumeric:       "numeric",
	TypeInteger:       "xs:integer",
	TypeDouble:        "xs:double",
}

// String returns the type's name in sequence-type notation.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// SubTypeOf reports whether t equals super or derives from it.
func SubTypeOf(t, super Type) bool {
	if t < 0 || int(t) >= len(typeParents) {
		return false
	}
	for {
		if t == super {
			return true
		}
		if t == TypeItem {
			return false
		}
		t = typeParents[t]
	}
}

// CommonSuperType returns the most specific type both a and b derive from.
func CommonSuperType(a, b Type) Type {
	for t := a; ; t = typeParents[t] {
		if SubTypeOf(b, t) {
			return t
		}
		if t == TypeItem {
			return TypeItem
		}
	}
}

// ParseType resolves a configuration type name such as "string" or
// "xs:integer". ok is false for unknown names.
func ParseType(name string) (Type, bool) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "xs:") {
	case "string":
		return TypeString, true
	case "untypedatomic":
		return TypeUntypedAtomic, true
	case "integer", "int":
		return TypeInteger, true
	case "double", "float", "number":
		return TypeDouble, true
	case "boolean", "bool":
		return TypeBoolean, true
	default:
		return TypeItem, false
	}
}

// Cardinality constrains the number of items in a sequence.
type Cardinality uint8

// Cardinality values.
const (
	ZeroOrOne Cardinality = iota
	ExactlyOne
	ZeroOrMore
	OneOrMore
)

// String returns the occurrence indicator for the cardinality.
func (c Cardinality) String() string {
	switch c {
	case ZeroOrOne:
		return "?"
	case ZeroOrMore:
		return "*"
	case OneOrMore:
		return "+"
	default:
		return ""
	}
}

// Allows reports whether a sequence of length n satisfies the cardinality.
func (c Cardinality) Allows(n int) bool {
	switch c {
	case ZeroOrOne:
		return n <= 1
	case ExactlyOne:
		return n == 1
	case OneOrMore:
		return n >= 1
	default:
		return n >= 0
	}
}
