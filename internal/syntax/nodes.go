package syntax

import "fmt"

// ----------------------------------------------------------------------------
// Nodes
//
// The syntax tree is a generic node graph: every node has a kind tag, an
// optional data string and an ordered list of children. The child layout
// of each kind is fixed and listed below; optional children that are
// absent are represented by an Empty node so that indices stay stable.
//
//	File        [Namespace|Empty, Using..., (Class|Interface|Method)...]
//	Namespace   Data=qualified name
//	Using       Data=qualified name
//	Class       Data=name  [Modifiers, TypeName|Empty (extends), List (implements), (Field|Method|Ctor)...]
//	Interface   Data=name  [Modifiers, Method...]
//	Field       Data=name  [type]
//	Method      Data=name  [Modifiers, List (TypeParam...), List (Param...), type|Empty (void), Block|Empty]
//	Ctor                   [Modifiers, List (Param...), Block]
//	Modifiers              [Modifier...]
//	Modifier    Data=override|entrypoint|abstract
//	TypeParam   Data=name  [type|Empty (extends), List (implements)]
//	Param       Data=name  [type]
//	TypeName    Data=qualified name
//	TypeArray              [element type]
//
//	Block                  [stmt...]
//	Let         Data=name  [type|Empty, expr|Empty]
//	Assign      Data=op    [target, value]          op is =, +=, -= or *=
//	Increment   Data=op    [target]                 op is ++ or --
//	If                     [cond, stmt, stmt|Empty]
//	While                  [cond, stmt]
//	For                    [stmt|Empty, expr|Empty, stmt|Empty, stmt]
//	Return                 [expr|Empty]
//	Break, Continue
//	ExprStmt               [expr]
//
//	IntLit      Data=decimal or 0x text, with a leading "-" if negated
//	BoolLit     Data=true|false
//	Null, This
//	StringLit   Data=decoded text
//	Ident       Data=name
//	Binary      Data=op    [x, y]
//	Unary       Data=op    [x]                      op is -, ! or ~
//	Cast                   [x, type]
//	InstanceOf             [x, type]
//	New                    [TypeName, List (args)]
//	ArrayLit               [expr...]
//	ArrayNew               [element type, length expr]
//	Call        Data=name  [List (type args), List (args)]
//	Chain                  [base, (Property|Index|MethodCall)...]
//	Property    Data=name
//	Index                  [expr]
//	MethodCall  Data=name  [List (type args), List (args)]

// Kind tags a syntax node.
type Kind uint8

const (
	Empty Kind = iota
	List

	// Declarations
	File
	Namespace
	Using
	Class
	Interface
	Field
	Method
	Ctor
	Modifiers
	Modifier
	TypeParam
	Param

	// Type annotations
	TypeName
	TypeArray

	// Statements
	Block
	Let
	Assign
	Increment
	If
	While
	For
	Return
	Break
	Continue
	ExprStmt

	// Expressions
	IntLit
	BoolLit
	Null
	This
	StringLit
	Ident
	Binary
	Unary
	Cast
	InstanceOf
	New
	ArrayLit
	ArrayNew
	Call
	Chain

	// Chain segments
	Property
	Index
	MethodCall

	kindCount
)

var kindNames = [...]string{
	Empty:      "Empty",
	List:       "List",
	File:       "File",
	Namespace:  "Namespace",
	Using:      "Using",
	Class:      "Class",
	Interface:  "Interface",
	Field:      "Field",
	Method:     "Method",
	Ctor:       "Ctor",
	Modifiers:  "Modifiers",
	Modifier:   "Modifier",
	TypeParam:  "TypeParam",
	Param:      "Param",
	TypeName:   "TypeName",
	TypeArray:  "TypeArray",
	Block:      "Block",
	Let:        "Let",
	Assign:     "Assign",
	Increment:  "Increment",
	If:         "If",
	While:      "While",
	For:        "For",
	Return:     "Return",
	Break:      "Break",
	Continue:   "Continue",
	ExprStmt:   "ExprStmt",
	IntLit:     "IntLit",
	BoolLit:    "BoolLit",
	Null:       "Null",
	This:       "This",
	StringLit:  "StringLit",
	Ident:      "Ident",
	Binary:     "Binary",
	Unary:      "Unary",
	Cast:       "Cast",
	InstanceOf: "InstanceOf",
	New:        "New",
	ArrayLit:   "ArrayLit",
	ArrayNew:   "ArrayNew",
	Call:       "Call",
	Chain:      "Chain",
	Property:   "Property",
	Index:      "Index",
	MethodCall: "MethodCall",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// NodeID is a node's index in its Tree. Passes that derive facts about
// nodes key their side tables by NodeID.
type NodeID int

// Node is a syntax tree node.
type Node struct {
	ID       NodeID
	Kind     Kind
	Data     string
	Children []*Node
	Pos      Pos
}

// Child returns the i'th child.
func (n *Node) Child(i int) *Node {
	return n.Children[i]
}

// Len returns the number of children.
func (n *Node) Len() int {
	return len(n.Children)
}

// IsEmpty reports whether n stands for an absent optional child.
func (n *Node) IsEmpty() bool {
	return n == nil || n.Kind == Empty
}

// HasModifier reports whether the Modifiers node m contains mod.
func (m *Node) HasModifier(mod string) bool {
	for _, c := range m.Children {
		if c.Data == mod {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	if n.Data != "" {
		return fmt.Sprintf("%s(%s)", n.Kind, n.Data)
	}
	return n.Kind.String()
}

// Tree owns every node of one parsed file.
// Nodes[id] is the node with that ID.
type Tree struct {
	Filename string
	Root     *Node
	Nodes    []*Node
}

// newNode allocates a node in the tree, stamping it with pos.
func (t *Tree) newNode(kind Kind, data string, pos Pos, children ...*Node) *Node {
	n := &Node{
		ID:       NodeID(len(t.Nodes)),
		Kind:     kind,
		Data:     data,
		Children: children,
		Pos:      pos,
	}
	t.Nodes = append(t.Nodes, n)
	return n
}

// Inspect traverses the subtree rooted at n in depth-first order, calling
// f for each node. If f returns false, the children of that node are
// skipped.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children {
		Inspect(c, f)
	}
}
