// Package parse builds the SLR(1) action table for the Cilantro grammar (C3)
// and drives it over a token stream to produce a concrete parse tree (C4).
//
// The table construction is grounded directly on
// original_source/src/cilantro/parser/table.rs's Item/State/States/make_state,
// restated in Go with native maps and slices standing in for Rust's
// HashSet/HashMap, and with explicit conflict reporting in place of the
// original's silent last-write-wins map insert (spec.md §9's decision to
// surface ambiguity as a build-time error rather than tolerate it).
package parse

import "github.com/shine00chang/cilantro/internal/compiler/grammar"

// Item is a dotted production: "prod, with the dot before RHS[pos]".
type Item struct {
	Prod int
	Pos  int
}

// Next returns the grammar element immediately after the dot, and false if
// the dot is at the end of the production (the item is complete).
func (it Item) Next(g *grammar.Grammar) (grammar.ElemKind, bool) {
	rhs := g.Productions[it.Prod].RHS
	if it.Pos >= len(rhs) {
		return grammar.ElemKind{}, false
	}
	return rhs[it.Pos], true
}

// Advance returns the item with the dot moved one element to the right. It
// must only be called when Next reports ok.
func (it Item) Advance() Item {
	return Item{Prod: it.Prod, Pos: it.Pos + 1}
}

// LHS returns the non-terminal produced by this item's production.
func (it Item) LHS(g *grammar.Grammar) grammar.NodeKind {
	return g.Productions[it.Prod].LHS
}

// complete reports whether the dot has reached the end of the production.
func (it Item) complete(g *grammar.Grammar) bool {
	_, ok := it.Next(g)
	return !ok
}
