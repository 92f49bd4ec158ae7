package types

import (
	"strconv"
)

// Item is a single member of a sequence: an atomic value or a document node.
type Item interface {
	// Type returns the dynamic type of the item.
	Type() Type
	// StringValue returns the item's string value.
	StringValue() string
}

// String is an xs:string value.
type String string

// Type implements Item.
func (String) Type() Type { return TypeString }

// StringValue implements Item.
func (s String) StringValue() string { return string(s) }

// UntypedAtomic is the atomized value of a node.
type UntypedAtomic string

// Type implements Item.
func (UntypedAtomic) Type() Type { return TypeUntypedAtomic }

// StringValue implements Item.
func (u UntypedAtomic) StringValue() string { return string(u) }

// Boolean is an xs:boolean value.
type Boolean bool

// Type implements Item.
func (Boolean) Type() Type { return TypeBoolean }

// StringValue implements Item.
func (b Boolean) StringValue() string { return strconv.FormatBool(bool(b)) }

// Integer is an xs:integer value.
type Integer int64

// Type implements Item.
func (Integer) Type() Type { return TypeInteger }

// StringValue implements Item.
func (i Integer) StringValue() string { return strconv.FormatInt(int64(i), 10) }

// Double is an xs:double value.
type Double float64

// Type implements Item.
func (Double) Type() Type { return TypeDouble }

// StringValue implements Item.
func (d Double) StringValue() string {
	return strconv.FormatFloat(float64(d), 'g', -1, 64)
}

// Atomize returns the typed value of an item. Nodes atomize to UntypedAtomic.
func Atomize(it Item) Item {
	if n, ok := it.(*Node); ok {
		return UntypedAtomic(n.StringValue())
	}
	return it
}

// IsNode reports whether the item is a document node.
func IsNode(it Item) bool {
	return SubTypeOf(it.Type(), TypeNode)
}
