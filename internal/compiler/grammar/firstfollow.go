package grammar

import "github.com/shine00chang/cilantro/internal/compiler/token"

// beginSet is the "begins" auxiliary map from spec.md §4.2: for a node kind,
// the set of node kinds and the set of token kinds that can appear first in
// some derivation of it.
type beginSet struct {
	nodes  map[NodeKind]bool
	tokens map[token.Kind]bool
}

func newBeginSet() beginSet {
	return beginSet{nodes: map[NodeKind]bool{}, tokens: map[token.Kind]bool{}}
}

// Close computes g.follow to a fixpoint, following spec.md §4.2:
//
//  1. Introduce a synthetic production `root := root EOF` for each root kind
//     so that FOLLOW is uniform (every root's FOLLOW includes token.EOF via
//     this synthetic self-loop).
//  2. Build begins[N] and follows[N] by scanning each production once.
//  3. Iterate begins to a fixpoint by lifting node-begins through begins,
//     then iterate follows to a fixpoint by lifting node-follows through
//     begins (not follows — a node's FOLLOW only needs the possible leading
//     terminals of whatever follows it, not that node's own FOLLOW).
//  4. Propagate a production's LHS follow-set onto its last element, if that
//     element is a node (the "X := αY" case where FOLLOW(X) ⊆ FOLLOW(Y)).
//  5. Flatten node-follows ∪ token-follows into one terminal set per node
//     kind, and discard the synthetic productions.
func (g *Grammar) Close() {
	kinds := g.allNodeKinds()

	prods := make([]Production, len(g.Productions))
	copy(prods, g.Productions)

	// Step 1: synthetic productions, one self-referential `root := root EOF`
	// per root, so the step 2 scan records token.EOF in FOLLOW(root)
	// directly.
	for _, r := range g.Roots {
		prods = append(prods, Production{
			LHS: r,
			RHS: []ElemKind{Node(r), Term(token.EOF)},
		})
	}

	begins := map[NodeKind]beginSet{}
	followNodes := map[NodeKind]map[NodeKind]bool{}
	followTokens := map[NodeKind]map[token.Kind]bool{}
	for _, n := range kinds {
		begins[n] = newBeginSet()
		followNodes[n] = map[NodeKind]bool{}
		followTokens[n] = map[token.Kind]bool{}
	}

	// Step 2: scan each production once.
	for _, p := range prods {
		if len(p.RHS) == 0 {
			continue
		}
		first := p.RHS[0]
		if first.IsToken {
			begins[p.LHS].tokens[first.Token] = true
		} else {
			begins[p.LHS].nodes[first.Node] = true
		}

		for i := 0; i < len(p.RHS)-1; i++ {
			cur := p.RHS[i]
			if cur.IsToken {
				continue
			}
			next := p.RHS[i+1]
			if next.IsToken {
				followTokens[cur.Node][next.Token] = true
			} else {
				followNodes[cur.Node][next.Node] = true
			}
		}
	}

	// Step 3a: lift node-begins through begins to a fixpoint.
	for {
		mutated := false
		for _, n := range kinds {
			for x := range begins[n].nodes {
				for t := range begins[x].tokens {
					if !begins[n].tokens[t] {
						begins[n].tokens[t] = true
						mutated = true
					}
				}
			}
		}
		if !mutated {
			break
		}
	}

	// Step 3b: lift node-follows through begins to a fixpoint.
	for {
		mutated := false
		for _, n := range kinds {
			for x := range followNodes[n] {
				for t := range begins[x].tokens {
					if !followTokens[n][t] {
						followTokens[n][t] = true
						mutated = true
					}
				}
			}
		}
		if !mutated {
			break
		}
	}

	// Step 4: propagate FOLLOW(lhs) onto the last RHS element, if it's a
	// node. This must happen after the begins-driven fixpoint above so that
	// the propagated terminals are the LHS's true FOLLOW set, then we
	// re-settle to a fixpoint since propagation can chain (A's follow
	// depends on B's, B's on C's, ...).
	for {
		mutated := false
		for _, p := range prods {
			if len(p.RHS) == 0 {
				continue
			}
			last := p.RHS[len(p.RHS)-1]
			if last.IsToken {
				continue
			}
			for t := range followTokens[p.LHS] {
				if !followTokens[last.Node][t] {
					followTokens[last.Node][t] = true
					mutated = true
				}
			}
			for nd := range followNodes[p.LHS] {
				if !followNodes[last.Node][nd] {
					followNodes[last.Node][nd] = true
					mutated = true
				}
			}
		}
		if mutated {
			// a change to followNodes means another begins-lift pass may be
			// needed to pick up newly-reachable terminals.
			for {
				innerMutated := false
				for _, n := range kinds {
					for x := range followNodes[n] {
						for t := range begins[x].tokens {
							if !followTokens[n][t] {
								followTokens[n][t] = true
								innerMutated = true
							}
						}
					}
				}
				if !innerMutated {
					break
				}
			}
		} else {
			break
		}
	}

	// Step 5: flatten and discard synthetics (the synthetics never exist as
	// a distinct map entry — their effect is already folded into the
	// existing NodeKind's maps — so nothing further to discard there).
	g.follow = map[NodeKind]map[token.Kind]bool{}
	for _, n := range kinds {
		g.follow[n] = followTokens[n]
	}
}
