package parse

import (
	"fmt"
	"sort"

	"github.com/shine00chang/cilantro/internal/compiler/grammar"
)

// ActionKind discriminates the two entries an SLR table cell can hold.
type ActionKind int

const (
	Shift ActionKind = iota
	Reduce
)

// Action is a single parse table cell: either "shift to State" or "reduce by
// Production".
type Action struct {
	Kind  ActionKind
	State int // valid when Kind == Shift
	Prod  int // valid when Kind == Reduce
}

func (a Action) String() string {
	if a.Kind == Shift {
		return fmt.Sprintf("shift %d", a.State)
	}
	return fmt.Sprintf("reduce %d", a.Prod)
}

// Table is the parser's action table: Table[state][elem] is the action taken
// when elem is seen with the stack in state.
type Table []map[grammar.ElemKind]Action

// GrammarConflictError reports that two distinct actions were derived for
// the same (state, lookahead) cell while building a Table: spec.md §9's
// resolution to surface this as a returned error rather than the silent
// last-write-wins a plain map insert would give.
type GrammarConflictError struct {
	State    int
	Elem     grammar.ElemKind
	Existing Action
	New      Action
}

func (e *GrammarConflictError) Error() string {
	return fmt.Sprintf("grammar conflict in state %d on %s: %s vs %s", e.State, e.Elem, e.Existing, e.New)
}

// itemSet is a set of Items: a state's kernel, or its kernel together with
// the items closure adds to it.
type itemSet map[Item]bool

func (s itemSet) add(it Item) { s[it] = true }

// kernelKey is a sortable, comparable identity for a state: the (prod, pos)
// pairs of its items with pos > 0, mirroring table.rs's State::to_hash. Items
// with pos == 0 are closure-derived (or root seeds) and do not distinguish
// states, since closure is a deterministic function of the kernel.
type kernelKey string

func kernelOf(items itemSet) kernelKey {
	type pair struct{ prod, pos int }
	var pairs []pair
	for it := range items {
		if it.Pos > 0 {
			pairs = append(pairs, pair{it.Prod, it.Pos})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].prod != pairs[j].prod {
			return pairs[i].prod < pairs[j].prod
		}
		return pairs[i].pos < pairs[j].pos
	})
	key := make([]byte, 0, len(pairs)*8)
	for _, p := range pairs {
		key = append(key, byte(p.prod), byte(p.prod>>8), byte(p.pos), byte(p.pos>>8))
	}
	return kernelKey(key)
}

// closure expands a kernel item set with every item reachable by repeatedly
// adding (prod, 0) for each production whose LHS is the node immediately
// after some item's dot, per table.rs's queue/visited walk in make_state.
func closure(g *grammar.Grammar, kernel itemSet) itemSet {
	items := itemSet{}
	for it := range kernel {
		items.add(it)
	}

	visited := map[grammar.NodeKind]bool{}
	var queue []grammar.NodeKind
	enqueue := func(n grammar.NodeKind) {
		if !visited[n] {
			visited[n] = true
			queue = append(queue, n)
		}
	}

	for it := range items {
		if next, ok := it.Next(g); ok && !next.IsToken {
			enqueue(next.Node)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, pi := range g.ProductionsFor(n) {
			it := Item{Prod: pi, Pos: 0}
			if next, ok := it.Next(g); ok && !next.IsToken {
				enqueue(next.Node)
			}
			items.add(it)
		}
	}
	return items
}

// inheritances returns, for every item in items whose next element equals x,
// that item advanced past x. This is the kernel of the state reached by
// shifting/goto-ing on x, per table.rs's State::get_inheritances.
func inheritances(g *grammar.Grammar, items itemSet, x grammar.ElemKind) itemSet {
	out := itemSet{}
	for it := range items {
		if next, ok := it.Next(g); ok && next == x {
			out.add(it.Advance())
		}
	}
	return out
}

// builder accumulates States and their edges while constructing the table.
type builder struct {
	g       *grammar.Grammar
	states  []itemSet
	byKey   map[kernelKey]int
	edges   []map[grammar.ElemKind]Action
}

// BuildTable constructs the SLR(1) action table for g, following
// original_source/src/cilantro/parser/table.rs's make_table/make_state. It
// returns a *GrammarConflictError, rather than panicking, the first time two
// productions demand different actions in the same table cell — per the
// grammar's "no conflicts tolerated" design this should never trigger for
// grammar.Cilantro(), but a returned error lets callers report it cleanly
// instead of crashing.
func BuildTable(g *grammar.Grammar) (Table, error) {
	b := &builder{
		g:     g,
		byKey: map[kernelKey]int{},
	}

	initKernel := itemSet{}
	for i, p := range g.Productions {
		if g.IsRoot(p.LHS) {
			initKernel.add(Item{Prod: i, Pos: 0})
		}
	}

	if _, err := b.state(initKernel); err != nil {
		return nil, err
	}

	table := Table(b.edges)

	// All root node kinds self-shift at state 0, per table.rs's make_table:
	// a fully-reduced root node sitting atop the stack is itself a valid
	// "next element" at the origin state, letting the driver re-enter with
	// an already-built root (e.g. when chaining top-level declarations).
	for _, r := range g.Roots {
		table[0][grammar.Node(r)] = Action{Kind: Shift, State: 0}
	}

	return table, nil
}

// MustBuildTable wraps BuildTable for callers that treat a conflicting
// grammar as unrecoverable, such as the compiler-pass tests; the cmd/
// entrypoints call BuildTable and report its error themselves.
func MustBuildTable(g *grammar.Grammar) Table {
	t, err := BuildTable(g)
	if err != nil {
		panic(err)
	}
	return t
}

// state returns the index of the state whose kernel is kernel, building it
// (and recursively, everything reachable from it) if it doesn't exist yet.
func (b *builder) state(kernel itemSet) (int, error) {
	key := kernelOf(kernel)
	if idx, ok := b.byKey[key]; ok {
		return idx, nil
	}

	items := closure(b.g, kernel)
	index := len(b.states)
	b.states = append(b.states, items)
	b.edges = append(b.edges, map[grammar.ElemKind]Action{})
	b.byKey[key] = index

	edges := map[grammar.ElemKind]Action{}

	set := func(elem grammar.ElemKind, act Action) error {
		if existing, ok := edges[elem]; ok && existing != act {
			return &GrammarConflictError{State: index, Elem: elem, Existing: existing, New: act}
		}
		edges[elem] = act
		return nil
	}

	// Deterministic iteration: sort items by (prod, pos) so error messages
	// and any incidental ordering-sensitive behavior are reproducible.
	ordered := orderedItems(items)

	for _, it := range ordered {
		next, ok := it.Next(b.g)
		if ok {
			ni := inheritances(b.g, items, next)
			ns, err := b.state(ni)
			if err != nil {
				return 0, err
			}
			if err := set(next, Action{Kind: Shift, State: ns}); err != nil {
				return 0, err
			}
			continue
		}

		lhs := it.LHS(b.g)
		follow := b.g.Follow(lhs)
		if len(follow) == 0 && !b.g.IsRoot(lhs) {
			return 0, fmt.Errorf("internal error: item completing %s has no FOLLOW set", lhs)
		}
		for t := range follow {
			if err := set(grammar.Term(t), Action{Kind: Reduce, Prod: it.Prod}); err != nil {
				return 0, err
			}
		}
	}

	b.edges[index] = edges
	return index, nil
}

func orderedItems(items itemSet) []Item {
	out := make([]Item, 0, len(items))
	for it := range items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Prod != out[j].Prod {
			return out[i].Prod < out[j].Prod
		}
		return out[i].Pos < out[j].Pos
	})
	return out
}
