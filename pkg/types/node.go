package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DocumentID identifies a stored document.
type DocumentID = uuid.UUID

// NodeKind distinguishes document nodes from element nodes.
type NodeKind uint8

// Node kinds.
const (
	DocumentNode NodeKind = iota
	ElementNode
)

// Document is a tree of element nodes below a document node.
// Nodes are numbered in document order; the document node has position 0.
type Document struct {
	id    DocumentID
	uri   string
	nodes []*Node
}

// NewDocument creates an empty document with a fresh identity.
func NewDocument(uri string) *Document {
	d := &Document{id: uuid.New(), uri: uri}
	d.nodes = []*Node{{doc: d, kind: DocumentNode, indexType: TypeItem}}
	return d
}

// ID returns the document identity.
func (d *Document) ID() DocumentID { return d.id }

// URI returns the document URI.
func (d *Document) URI() string { return d.uri }

// Root returns the document node.
func (d *Document) Root() *Node { return d.nodes[0] }

// Nodes returns all nodes in document order, document node first.
func (d *Document) Nodes() []*Node { return d.nodes }

// Node returns the node at the given document-order position.
func (d *Document) Node(pos int) (*Node, bool) {
	if pos < 0 || pos >= len(d.nodes) {
		return nil, false
	}
	return d.nodes[pos], true
}

// Node is a document or element node.
type Node struct {
	doc       *Document
	pos       int
	parent    *Node
	kind      NodeKind
	name      string
	text      string
	children  []*Node
	indexType Type
}

// NodeKey is the identity of a node: its document and position.
type NodeKey struct {
	Doc DocumentID
	Pos int
}

// AppendElement adds a child element at the end of the document.
// Children must be appended in document order: a node's subtree has to be
// complete before a following sibling of any ancestor is appended.
func (n *Node) AppendElement(name, text string) *Node {
	child := &Node{
		doc:       n.doc,
		pos:       len(n.doc.nodes),
		parent:    n,
		kind:      ElementNode,
		name:      name,
		text:      text,
		indexType: TypeItem,
	}
	n.doc.nodes = append(n.doc.nodes, child)
	n.children = append(n.children, child)
	return child
}

// Type implements Item.
func (n *Node) Type() Type {
	if n.kind == DocumentNode {
		return TypeDocument
	}
	return TypeElement
}

// StringValue implements Item: the node's own text followed by the text of
// its descendants in document order.
func (n *Node) StringValue() string {
	if len(n.children) == 0 {
		return n.text
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	b.WriteString(n.text)
	for _, c := range n.children {
		c.writeText(b)
	}
}

// Key returns the node identity.
func (n *Node) Key() NodeKey { return NodeKey{Doc: n.doc.id, Pos: n.pos} }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }

// Position returns the document-order position.
func (n *Node) Position() int { return n.pos }

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Name returns the element name; empty for document nodes.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, or nil for the document node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child elements in document order.
func (n *Node) Children() []*Node { return n.children }

// IndexType returns the declared value-index type, TypeItem if none.
func (n *Node) IndexType() Type { return n.indexType }

// SetIndexType declares the value-index type covering this node.
func (n *Node) SetIndexType(t Type) { n.indexType = t }

// Path returns the slash-separated element names from the root element,
// e.g. "library/book/title". The document node has an empty path.
func (n *Node) Path() string {
	if n.kind == DocumentNode {
		return ""
	}
	if n.parent == nil || n.parent.kind == DocumentNode {
		return n.name
	}
	return n.parent.Path() + "/" + n.name
}

// IsAncestorOrSelfOf reports whether n is other or one of its ancestors.
func (n *Node) IsAncestorOrSelfOf(other *Node) bool {
	if n.doc != other.doc {
		return false
	}
	for m := other; m != nil; m = m.parent {
		if m == n {
			return true
		}
	}
	return false
}

// String returns a short description of the node.
func (n *Node) String() string {
	if n.kind == DocumentNode {
		return fmt.Sprintf("document(%s)", n.doc.uri)
	}
	return fmt.Sprintf("%s#%d(%s)", n.doc.uri, n.pos, n.Path())
}

// FromJSON builds a document from a decoded JSON value.
// Object members become child elements in sorted key order, array members
// become repeated elements named after the enclosing key, and scalars become
// element text. A top-level array yields elements named "item".
func FromJSON(uri string, data interface{}) *Document {
	d := NewDocument(uri)
	switch v := data.(type) {
	case map[string]interface{}:
		appendJSONMembers(d.Root(), v)
	case []interface{}:
		for _, m := range v {
			appendJSONValue(d.Root(), "item", m)
		}
	default:
		appendJSONValue(d.Root(), "value", v)
	}
	return d
}

func appendJSONMembers(parent *Node, obj map[string]interface{}) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		appendJSONValue(parent, k, obj[k])
	}
}

func appendJSONValue(parent *Node, name string, v interface{}) {
	switch val := v.(type) {
	case map[string]interface{}:
		appendJSONMembers(parent.AppendElement(name, ""), val)
	case []interface{}:
		for _, m := range val {
			appendJSONValue(parent, name, m)
		}
	case nil:
		parent.AppendElement(name, "")
	case string:
		parent.AppendElement(name, val)
	case float64:
		parent.AppendElement(name, strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		parent.AppendElement(name, strconv.FormatBool(val))
	default:
		parent.AppendElement(name, fmt.Sprint(val))
	}
}

// DocumentSet is an ordered set of documents without duplicates.
type DocumentSet struct {
	docs []*Document
	ids  map[DocumentID]struct{}
}

// NewDocumentSet creates a document set holding docs in order.
func NewDocumentSet(docs ...*Document) *DocumentSet {
	s := &DocumentSet{ids: make(map[DocumentID]struct{}, len(docs))}
	for _, d := range docs {
		s.Add(d)
	}
	return s
}

// Add appends d unless it is already present.
func (s *DocumentSet) Add(d *Document) {
	if s.ids == nil {
		s.ids = make(map[DocumentID]struct{})
	}
	if _, ok := s.ids[d.id]; ok {
		return
	}
	s.ids[d.id] = struct{}{}
	s.docs = append(s.docs, d)
}

// Contains reports whether the set holds the document with the given id.
func (s *DocumentSet) Contains(id DocumentID) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of documents.
func (s *DocumentSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.docs)
}

// Documents returns the documents in insertion order.
func (s *DocumentSet) Documents() []*Document {
	if s == nil {
		return nil
	}
	return s.docs
}

// IDs returns the document identities as strings, in insertion order.
func (s *DocumentSet) IDs() []string {
	ids := make([]string, 0, s.Len())
	for _, d := range s.Documents() {
		ids = append(ids, d.id.String())
	}
	return ids
}

// Roots returns the document nodes of all documents as a node set.
func (s *DocumentSet) Roots() *NodeSet {
	ns := NewNodeSet()
	for _, d := range s.Documents() {
		ns.Add(d.Root())
	}
	return ns
}
