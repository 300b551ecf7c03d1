// Package tree defines the concrete parse tree produced by the shift-reduce
// driver (C4) and consumed by the tree trimmer (C5): spec.md §3's
// "Concrete node" and "Element kind" shapes.
package tree

import (
	"fmt"
	"strings"

	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/token"
)

// Elem is a single child of a Node: either a terminal Token or a
// non-terminal *Node. Exactly one field is meaningful, selected by IsToken —
// the tagged-union shape spec.md §3 calls for rather than a Go interface,
// since elements are produced and consumed positionally during reduction.
type Elem struct {
	IsToken bool
	Token   token.Token
	Node    *Node
}

func OfToken(t token.Token) Elem { return Elem{IsToken: true, Token: t} }
func OfNode(n *Node) Elem        { return Elem{Node: n} }

// Start returns the byte offset at which this element begins.
func (e Elem) Start() int {
	if e.IsToken {
		return e.Token.Start
	}
	return e.Node.Start
}

// End returns the byte offset at which this element ends.
func (e Elem) End() int {
	if e.IsToken {
		return e.Token.End
	}
	return e.Node.End
}

// ElemKind returns the grammar element kind matched by this element.
func (e Elem) ElemKind() grammar.ElemKind {
	if e.IsToken {
		return grammar.Term(e.Token.Kind)
	}
	return grammar.Node(e.Node.Kind)
}

// Node is a concrete parse tree node: one reduction's worth of children,
// tagged with the production's left-hand side.
//
// Start/End span every child (spec.md §3's offset-monotonicity invariant);
// children are owned exclusively by their parent and the tree is acyclic.
type Node struct {
	Start    int
	End      int
	Kind     grammar.NodeKind
	Children []Elem
}

// New builds a Node from a production reduction: the node's span is the
// union of start..end of its first and last child (children must be
// non-empty; epsilon productions do not occur in the Cilantro grammar).
func New(kind grammar.NodeKind, children []Elem) *Node {
	n := &Node{Kind: kind, Children: children}
	if len(children) > 0 {
		n.Start = children[0].Start()
		n.End = children[len(children)-1].End()
	}
	return n
}

// String renders the tree in a simple indented form for debugging and trace
// output.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s [%d:%d]\n", indent, n.Kind, n.Start, n.End)
	for _, c := range n.Children {
		if c.IsToken {
			fmt.Fprintf(sb, "%s  %s\n", indent, c.Token)
		} else {
			c.Node.write(sb, depth+1)
		}
	}
}
