// Package grammar is the declarative grammar model for Cilantro (C1) and the
// FIRST/FOLLOW fixpoint solver that closes it (C2).
//
// It is deliberately not a general-purpose grammar toolkit: the production
// list is fixed at package init and authored to be conflict-free under SLR,
// per spec.md §4.3. A generic grammar-authoring DSL (of the kind
// github.com/dekarrin/tunaq/internal/ictiobus builds from fishi markdown)
// is out of scope here — there is exactly one grammar, Cilantro's.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shine00chang/cilantro/internal/compiler/token"
)

// NodeKind discriminates the non-terminals of the Cilantro grammar.
type NodeKind int

const (
	NBlock NodeKind = iota
	NList
	NParams
	NFunction
	NStatement
	NDeclaration
	NIf
	NReturn
	NInvoke
	NArgs
	NExpr
	NT1
	NT2
	NT3
	NTBase

	// NUExpr does not appear on the left-hand side of any production; the
	// tree trimmer (C5) assigns it to a TBase node that reduces a unary
	// operator applied to an operand, per spec.md §4.5.
	NUExpr
)

var nodeNames = map[NodeKind]string{
	NBlock:       "Block",
	NList:        "List",
	NParams:      "Params",
	NFunction:    "Function",
	NStatement:   "Statement",
	NDeclaration: "Declaration",
	NIf:          "If",
	NReturn:      "Return",
	NInvoke:      "Invoke",
	NArgs:        "Args",
	NExpr:        "Expr",
	NT1:          "T1",
	NT2:          "T2",
	NT3:          "T3",
	NTBase:       "TBase",
	NUExpr:       "UExpr",
}

func (n NodeKind) String() string {
	if name, ok := nodeNames[n]; ok {
		return name
	}
	return fmt.Sprintf("node(%d)", int(n))
}

// ElemKind is the tagged union of grammar elements permitted on the
// right-hand side of a production: either a non-terminal (Node) or a
// terminal (Token). This is spec.md §3's "Element kind".
type ElemKind struct {
	IsToken bool
	Node    NodeKind
	Token   token.Kind
}

func Node(n NodeKind) ElemKind  { return ElemKind{Node: n} }
func Term(t token.Kind) ElemKind { return ElemKind{IsToken: true, Token: t} }

func (e ElemKind) String() string {
	if e.IsToken {
		return e.Token.Human()
	}
	return e.Node.String()
}

// Production is a single grammar rule `lhs := rhs...`.
type Production struct {
	LHS NodeKind
	RHS []ElemKind
}

func (p Production) String() string {
	parts := make([]string, len(p.RHS))
	for i, e := range p.RHS {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%s -> %s", p.LHS, strings.Join(parts, " "))
}

// Grammar is the fixed Cilantro grammar: its ordered production list and the
// set of node kinds accepted at the top level of a program (spec.md's "root
// node kind").
type Grammar struct {
	Productions []Production
	Roots       []NodeKind

	// follow is populated by Close(); it maps every NodeKind to the set of
	// terminal kinds that may legally follow it, including token.EOF for
	// root kinds.
	follow map[NodeKind]map[token.Kind]bool
}

// ProductionsFor returns the indices into g.Productions whose LHS is n, in
// declaration order.
func (g *Grammar) ProductionsFor(n NodeKind) []int {
	var out []int
	for i, p := range g.Productions {
		if p.LHS == n {
			out = append(out, i)
		}
	}
	return out
}

// IsRoot reports whether n is a root node kind.
func (g *Grammar) IsRoot(n NodeKind) bool {
	for _, r := range g.Roots {
		if r == n {
			return true
		}
	}
	return false
}

// Follow returns the FOLLOW set of n, computed by Close. Calling Follow
// before Close returns an empty set.
func (g *Grammar) Follow(n NodeKind) map[token.Kind]bool {
	return g.follow[n]
}

// allNodeKinds enumerates every NodeKind appearing as an LHS, used by Close
// to seed its fixpoint maps. The grammar is fixed, so this is just the
// distinct set of node.Kind over g.Productions plus any kind appearing on an
// RHS (a node with no productions of its own, which never occurs in this
// grammar, would simply get empty begin/follow sets).
func (g *Grammar) allNodeKinds() []NodeKind {
	seen := map[NodeKind]bool{}
	var order []NodeKind
	add := func(n NodeKind) {
		if !seen[n] {
			seen[n] = true
			order = append(order, n)
		}
	}
	for _, p := range g.Productions {
		add(p.LHS)
		for _, e := range p.RHS {
			if !e.IsToken {
				add(e.Node)
			}
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return order
}

// New builds a Cilantro production list. productions is the full grammar as
// declared in language.go; roots is the set of node kinds accepted at
// top level.
func New(productions []Production, roots []NodeKind) *Grammar {
	g := &Grammar{Productions: productions, Roots: roots}
	g.Close()
	return g
}
