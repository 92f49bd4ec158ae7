package types

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types for the supported query subset.
const (
	// Literals
	NodeString NodeType = "string"
	NodeNumber NodeType = "number"
	NodeEmpty  NodeType = "empty" // ()

	// Navigation
	NodePath     NodeType = "path"     // Location path
	NodeStep     NodeType = "step"     // Name test on an axis
	NodeWildcard NodeType = "wildcard" // *
	NodeContext  NodeType = "context"  // .

	// Functions
	NodeFunction NodeType = "function" // Function call

	// Predicates
	NodeFilter NodeType = "filter" // Primary[...]
)

// Axis selects which nodes a step visits.
type Axis uint8

// Axes.
const (
	AxisChild Axis = iota
	AxisDescendant
)

// String returns the axis separator as written in a path.
func (a Axis) String() string {
	if a == AxisDescendant {
		return "//"
	}
	return "/"
}

// ASTNode represents a node in the Abstract Syntax Tree.
type ASTNode struct {
	Type     NodeType
	StrValue string  // Name, string literal or function name
	NumValue float64 // Set for NodeNumber
	Position int

	// Relations
	Primary    *ASTNode   // Filtered primary, or the start of a relative path
	Steps      []*ASTNode // Axis steps of a path
	Arguments  []*ASTNode // Function arguments
	Predicates []*ASTNode // Step or filter predicates

	// Attributes
	Axis     Axis // Axis of a step
	Absolute bool // Path starts at the document root
}

// NewASTNode creates a new AST node of the specified type.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// String returns a string representation of the node type.
func (n *ASTNode) String() string {
	return string(n.Type)
}
