package parse

import (
	"fmt"
	"sort"

	"github.com/shine00chang/cilantro/internal/ccerrors"
	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/token"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
)

// stackEntry is one (element, state) pair on the driver's left stack,
// spec.md §4.4's "left of (element, stateIndex)".
type stackEntry struct {
	elem  tree.Elem
	state int
}

// Parse drives table over tokens, following spec.md §4.4's two-stack
// shift-reduce loop, and returns the accepted top-level nodes in source
// order. tokens must end with a token.EOF sentinel. src is the original
// source text, needed only to render a *ccerrors.SyntaxError if parsing
// fails.
func Parse(g *grammar.Grammar, table Table, tokens []token.Token, src string) ([]*tree.Node, error) {
	left := []stackEntry{}
	right := make([]tree.Elem, len(tokens))
	for i, t := range tokens {
		right[i] = tree.OfToken(t)
	}

	for {
		if len(right) == 1 && isDone(g, left) {
			out := make([]*tree.Node, len(left))
			for i, e := range left {
				out[i] = e.elem.Node
			}
			return out, nil
		}

		state := 0
		if len(left) > 0 {
			state = left[len(left)-1].state
		}

		top := right[0]
		key := top.ElemKind()

		if state < 0 || state >= len(table) {
			return nil, fmt.Errorf("internal error: state %d out of range", state)
		}
		cell := table[state]
		action, ok := cell[key]
		if !ok {
			return nil, syntaxError(g, cell, top, left)
		}

		switch action.Kind {
		case Shift:
			right = right[1:]
			left = append(left, stackEntry{elem: top, state: action.State})

		case Reduce:
			prod := g.Productions[action.Prod]
			n := len(prod.RHS)
			if n > len(left) {
				return nil, fmt.Errorf("internal error: reduce by production with %d elements but only %d on stack", n, len(left))
			}
			children := make([]tree.Elem, n)
			for i := 0; i < n; i++ {
				children[i] = left[len(left)-n+i].elem
			}
			left = left[:len(left)-n]
			node := tree.New(prod.LHS, children)
			right = append([]tree.Elem{tree.OfNode(node)}, right...)
		}
	}
}

// isDone reports whether the left stack is entirely root-kind nodes, the
// drain condition from spec.md §4.4.
func isDone(g *grammar.Grammar, left []stackEntry) bool {
	if len(left) == 0 {
		return false
	}
	for _, e := range left {
		if e.elem.IsToken || !g.IsRoot(e.elem.Node.Kind) {
			return false
		}
	}
	return true
}

// syntaxError builds the *ccerrors.SyntaxError for a missing table cell,
// reporting the offending token and the set of elements that would have
// been accepted instead, per spec.md §4.4.
func syntaxError(g *grammar.Grammar, cell map[grammar.ElemKind]Action, top tree.Elem, left []stackEntry) error {
	found := top.ElemKind().String()

	expected := make([]string, 0, len(cell))
	for k := range cell {
		expected = append(expected, k.String())
	}
	sort.Strings(expected)

	return ccerrors.NewSyntaxError(top.Start(), top.End(), found, expected)
}
