package types

import (
	"fmt"
	"math"
)

// Sequence is an ordered collection of items.
type Sequence interface {
	// Len returns the number of items.
	Len() int
	// ItemAt returns the i-th item.
	ItemAt(i int) Item
	// ItemType returns the most specific type shared by all items.
	ItemType() Type
	// StringValue coerces the sequence to a single string.
	StringValue() (string, error)
}

// ValueSequence is a general-purpose sequence backed by a slice.
type ValueSequence []Item

// Empty is the empty sequence.
var Empty Sequence = ValueSequence(nil)

// Singleton returns a sequence holding exactly it.
func Singleton(it Item) Sequence {
	return ValueSequence{it}
}

// Len implements Sequence.
func (s ValueSequence) Len() int { return len(s) }

// ItemAt implements Sequence.
func (s ValueSequence) ItemAt(i int) Item { return s[i] }

// ItemType implements Sequence.
func (s ValueSequence) ItemType() Type { return itemType(s) }

// StringValue implements Sequence.
func (s ValueSequence) StringValue() (string, error) { return coerceString(s) }

func itemType(s Sequence) Type {
	if s.Len() == 0 {
		return TypeItem
	}
	t := s.ItemAt(0).Type()
	for i := 1; i < s.Len() && t != TypeItem; i++ {
		t = CommonSuperType(t, s.ItemAt(i).Type())
	}
	return t
}

// coerceString applies the single-item string coercion rule: empty yields
// "", one item yields its string value, anything longer is a type error.
func coerceString(s Sequence) (string, error) {
	switch s.Len() {
	case 0:
		return "", nil
	case 1:
		return s.ItemAt(0).StringValue(), nil
	default:
		return "", Errorf(ErrTypeMismatch,
			"a sequence of %d items cannot be coerced to a single string", s.Len())
	}
}

// NodeSet is an ordered sequence of nodes without duplicate identities.
type NodeSet struct {
	nodes []*Node
	seen  map[NodeKey]struct{}
}

// NewNodeSet creates a node set holding nodes in order, skipping duplicates.
func NewNodeSet(nodes ...*Node) *NodeSet {
	ns := &NodeSet{seen: make(map[NodeKey]struct{}, len(nodes))}
	for _, n := range nodes {
		ns.Add(n)
	}
	return ns
}

// Add appends n unless a node with the same identity is present.
// It reports whether n was added.
func (ns *NodeSet) Add(n *Node) bool {
	if ns.seen == nil {
		ns.seen = make(map[NodeKey]struct{})
	}
	k := n.Key()
	if _, ok := ns.seen[k]; ok {
		return false
	}
	ns.seen[k] = struct{}{}
	ns.nodes = append(ns.nodes, n)
	return true
}

// Contains reports whether a node with n's identity is present.
func (ns *NodeSet) Contains(n *Node) bool {
	_, ok := ns.seen[n.Key()]
	return ok
}

// Nodes returns the members in order.
func (ns *NodeSet) Nodes() []*Node { return ns.nodes }

// Len implements Sequence.
func (ns *NodeSet) Len() int { return len(ns.nodes) }

// ItemAt implements Sequence.
func (ns *NodeSet) ItemAt(i int) Item { return ns.nodes[i] }

// ItemType implements Sequence.
func (ns *NodeSet) ItemType() Type { return itemType(ns) }

// StringValue implements Sequence.
func (ns *NodeSet) StringValue() (string, error) { return coerceString(ns) }

// Documents returns the documents spanned by the node set, in first-seen order.
func (ns *NodeSet) Documents() *DocumentSet {
	docs := NewDocumentSet()
	for _, n := range ns.nodes {
		docs.Add(n.doc)
	}
	return docs
}

// IndexType returns the declared index type shared by every member.
// Empty or mixed sets report TypeItem.
func (ns *NodeSet) IndexType() Type {
	if len(ns.nodes) == 0 {
		return TypeItem
	}
	t := ns.nodes[0].indexType
	for _, n := range ns.nodes[1:] {
		if n.indexType != t {
			return TypeItem
		}
	}
	return t
}

// String returns a short description of the node set.
func (ns *NodeSet) String() string {
	return fmt.Sprintf("NodeSet(%d)", len(ns.nodes))
}

// ToNodeSet converts a sequence of nodes to a NodeSet. Any non-node item
// is a type error.
func ToNodeSet(s Sequence) (*NodeSet, error) {
	if ns, ok := s.(*NodeSet); ok {
		return ns, nil
	}
	ns := NewNodeSet()
	for i := 0; i < s.Len(); i++ {
		n, ok := s.ItemAt(i).(*Node)
		if !ok {
			return nil, Errorf(ErrTypeMismatch,
				"expected a node sequence, found %s", s.ItemAt(i).Type())
		}
		ns.Add(n)
	}
	return ns, nil
}

// EffectiveBooleanValue computes the effective boolean value of s.
func EffectiveBooleanValue(s Sequence) (bool, error) {
	if s.Len() == 0 {
		return false, nil
	}
	first := s.ItemAt(0)
	if IsNode(first) {
		return true, nil
	}
	if s.Len() > 1 {
		return false, Errorf(ErrInvalidEBV,
			"effective boolean value is not defined for a sequence of %d atomic values", s.Len())
	}
	switch v := first.(type) {
	case Boolean:
		return bool(v), nil
	case String:
		return v != "", nil
	case UntypedAtomic:
		return v != "", nil
	case Integer:
		return v != 0, nil
	case Double:
		return v != 0 && !math.IsNaN(float64(v)), nil
	default:
		return false, Errorf(ErrInvalidEBV,
			"effective boolean value is not defined for %s", first.Type())
	}
}
