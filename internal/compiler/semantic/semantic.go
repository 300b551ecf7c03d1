// Package semantic defines the post-extraction tree (spec.md §3's "Semantic
// node") and its type-check annotations, and implements the extractor (C7)
// that builds it from a trimmed, scope-resolved tree.Node.
//
// Where tree.Node is shaped by the grammar (every node mirrors a
// production), semantic.Node is shaped by meaning: one discriminant field
// selects which of a fixed set of named-field variants is populated, the
// Go counterpart of original_source/src/cilantro/common.rs's `NodeData`
// enum (there a Rust enum with per-variant fields; here a flat struct with
// a Kind discriminant, since Go has no sum types and this spec's node
// shapes are simple enough that one struct beats nine small
// interface-implementing types for something this size).
package semantic

import (
	"fmt"

	"github.com/shine00chang/cilantro/internal/compiler/token"
)

// Kind discriminates the variant of a Node's populated fields.
type Kind int

const (
	KFunction Kind = iota
	KBlock
	KDeclaration
	KIf
	KReturn
	KInvoke
	KExpr
	KUExpr
	KParams
)

var kindNames = map[Kind]string{
	KFunction:    "Function",
	KBlock:       "Block",
	KDeclaration: "Declaration",
	KIf:          "If",
	KReturn:      "Return",
	KInvoke:      "Invoke",
	KExpr:        "Expr",
	KUExpr:       "UExpr",
	KParams:      "Params",
}

func (k Kind) String() string { return kindNames[k] }

// Type is the type-checker's value type lattice: spec.md §4.8's Int, Bool,
// String, Void, plus TUnresolved as the pre-check sentinel spec.md §3's
// invariant list calls "non-sentinel after C8".
type Type int

const (
	TUnresolved Type = iota
	TVoid
	TInt
	TBool
	TString
)

var typeNames = map[Type]string{
	TUnresolved: "<unresolved>",
	TVoid:       "void",
	TInt:        "i64",
	TBool:       "bool",
	TString:     "str",
}

func (t Type) String() string { return typeNames[t] }

// TypeFromName maps a declared type literal's text (as lexed into
// token.TypeLit's TypeName payload) to a Type, per spec.md §6's type
// literal set.
func TypeFromName(name string) (Type, bool) {
	switch name {
	case "i64":
		return TInt, true
	case "bool":
		return TBool, true
	case "str":
		return TString, true
	case "void":
		return TVoid, true
	}
	return TUnresolved, false
}

// Param is one (name, declared type) entry of a Params node.
type Param struct {
	Name     string
	TypeName string
}

// Elem is an expression-tree position: either a literal/identifier token or
// a sub-Node (Invoke, Expr, UExpr). Type is filled in by the checker
// regardless of which arm is populated, since a leaf token has no Node of
// its own to carry an assigned type.
type Elem struct {
	IsToken bool
	Token   token.Token
	Node    *Node
	Type    Type
}

func OfToken(t token.Token) Elem { return Elem{IsToken: true, Token: t} }
func OfNode(n *Node) Elem        { return Elem{Node: n} }

func (e Elem) Start() int {
	if e.IsToken {
		return e.Token.Start
	}
	return e.Node.Start
}

func (e Elem) End() int {
	if e.IsToken {
		return e.Token.End
	}
	return e.Node.End
}

// Node is a semantic-tree node. Exactly the fields relevant to Kind are
// populated; see the per-field comments for which Kind owns which field.
type Node struct {
	Start int
	End   int
	Kind  Kind
	Type  Type // the node's checked type; TUnresolved until C8 visits it

	Name string // Function.name, Declaration.name, Invoke.name

	// Function
	Params     *Node // Kind == KParams, nil if the function takes none
	ReturnType string
	Body       *Node // Kind == KBlock; also If.body

	// Params
	ParamItems []Param

	// Block
	Statements []*Node

	// Declaration
	Initializer Elem

	// If
	Condition Elem

	// Return
	Value Elem

	// Invoke
	Arguments []Elem

	// Expr (binary) / UExpr (unary)
	Left    Elem
	Op      string
	Right   Elem
	Operand Elem
}

func (n *Node) String() string {
	return fmt.Sprintf("%s [%d:%d] : %s", n.Kind, n.Start, n.End, n.Type)
}
