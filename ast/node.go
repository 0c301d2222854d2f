// Package ast defines the tree the parser hands to the compiler core.
//
// A Node is tagged by Kind and carries a textual Value (identifier name,
// literal lexeme, operator glyph, type name, visibility word), an ordered
// list of Children, a non-owning Parent back-reference, and the
// annotations later passes attach: ScopePtr (innermost enclosing scope),
// EntryPtr (owning symbol-table entry, if any), SemanticType, and
// TempPtr.
//
// The program root exclusively owns the tree; every node exclusively owns
// its Children. Parent links are set by New and Append and are never used
// to mutate tree shape.
package ast

import "fmt"

type Kind int

const (
	Prog Kind = iota
	StructDecl
	ImplDef
	FuncDef
	FuncDecl
	InheritList
	MemberList
	Member
	Visibility
	FParamList
	FParam
	VarDecl
	VarDeclOrStatBlock
	StatBlock
	Type
	Id
	ArraySizeList
	IntLit
	FloatLit
	AddOp
	MultOp
	RelOp
	AssignOp
	Sign
	Not
	RelExpr
	Variable
	Dot
	FunctionCall
	IndiceList
	AParamsList
	IfStat
	WhileStat
	ReadStat
	WriteStat
	ReturnStat
	AssignStat
	ImplFuncList
	Epsilon
)

var kindNames = map[Kind]string{
	Prog:                "Prog",
	StructDecl:          "StructDecl",
	ImplDef:             "ImplDef",
	FuncDef:             "FuncDef",
	FuncDecl:            "FuncDecl",
	InheritList:         "InheritList",
	MemberList:          "MemberList",
	Member:              "Member",
	Visibility:          "Visibility",
	FParamList:          "FParamList",
	FParam:              "FParam",
	VarDecl:             "VarDecl",
	VarDeclOrStatBlock:  "VarDeclOrStatBlock",
	StatBlock:           "StatBlock",
	Type:                "Type",
	Id:                  "Id",
	ArraySizeList:       "ArraySizeList",
	IntLit:              "IntLit",
	FloatLit:            "FloatLit",
	AddOp:               "AddOp",
	MultOp:              "MultOp",
	RelOp:               "RelOp",
	AssignOp:            "AssignOp",
	Sign:                "Sign",
	Not:                 "Not",
	RelExpr:             "RelExpr",
	Variable:            "Variable",
	Dot:                 "Dot",
	FunctionCall:        "FunctionCall",
	IndiceList:          "IndiceList",
	AParamsList:         "AParamsList",
	IfStat:              "IfStat",
	WhileStat:           "WhileStat",
	ReadStat:            "ReadStat",
	WriteStat:           "WriteStat",
	ReturnStat:          "ReturnStat",
	AssignStat:          "AssignStat",
	ImplFuncList:        "ImplFuncList",
	Epsilon:             "Epsilon",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ErrorType is the sentinel semantic type that suppresses cascading
// diagnostics on ancestor expressions (spec.md §4.5, §7).
const ErrorType = "errortype"

// Node is a tree node. ScopePtr/EntryPtr/SemanticType are filled in by
// later passes (C2 sets ScopePtr, C2/C3 set EntryPtr on declaration
// nodes, C5 sets SemanticType on expression nodes).
type Node struct {
	Kind     Kind
	Value    string
	Children []*Node
	Parent   *Node
	Line     int

	ScopePtr     interface{} // *symtab.Scope; interface{} avoids an import cycle with symtab.
	EntryPtr     interface{} // *symtab.Entry
	SemanticType string

	// TempPtr is the *symtab.Entry for the tempvar C6 allocates to hold
	// this node's computed value (IntLit/FloatLit/AddOp/MultOp/RelExpr/
	// FunctionCall only). Kept separate from EntryPtr so a FunctionCall
	// node can carry both its resolved callee (EntryPtr, set by C5) and
	// its result-holding temporary (TempPtr, set by C6) at once.
	TempPtr interface{}
}

// New creates a node with the given children, wiring Parent back-links.
func New(kind Kind, value string, children ...*Node) *Node {
	n := &Node{Kind: kind, Value: value, Children: children}
	for _, c := range children {
		if c != nil {
			c.Parent = n
		}
	}
	return n
}

// Append adds a child and wires its Parent link.
func (n *Node) Append(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Child returns the i-th child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// EnclosingFunc walks Parent links to the nearest FuncDef ancestor.
func (n *Node) EnclosingFunc() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == FuncDef {
			return p
		}
	}
	return nil
}

// EnclosingStruct walks Parent links to the nearest StructDecl ancestor.
func (n *Node) EnclosingStruct() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == StructDecl {
			return p
		}
	}
	return nil
}

// HasErrorType reports whether the node's semantic type is the error
// sentinel; used to decide whether to suppress a secondary diagnostic.
func (n *Node) HasErrorType() bool {
	return n != nil && n.SemanticType == ErrorType
}
