// Package scope walks the trimmed tree with a scoped symbol stack (C6),
// annotating every identifier reference with its binding's scope depth and
// rejecting undeclared or redeclared names.
//
// The traversal shape — recurse, opening a scope at Block and declaring at
// Declaration — is grounded on
// original_source/src/cilantro/semantics/scope.rs's SymbolStack/resolve_scope.
// Two deliberate departures from that file, both decided by the open items
// it leaves for a "cleaner design": library (and user) function names are
// pre-populated into global scope so an Invoke callee is resolved like any
// other identifier reference, rather than being skipped by a special case;
// and a Declaration's initializer expression is walked for identifier
// references rather than returned from early (the original's early return
// after declaring the bound name silently skipped resolving its own
// initializer, which would wrongly leave inner references unannotated).
package scope

import (
	"fmt"

	"github.com/shine00chang/cilantro/internal/ccerrors"
	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/token"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
)

// symbolStack is a push-down of identifier sets; index 0 is always global
// scope, the last index is the innermost currently-open scope. The scope
// "level" used in `@<level>` annotations is simply the slice index a name
// was declared at.
type symbolStack struct {
	scopes []map[string]bool
}

func newSymbolStack() *symbolStack {
	return &symbolStack{scopes: []map[string]bool{{}}}
}

func (s *symbolStack) pushScope() {
	s.scopes = append(s.scopes, map[string]bool{})
}

func (s *symbolStack) popScope() {
	if len(s.scopes) == 1 {
		panic("scope: tried to pop global scope")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// declare inserts ident into the innermost scope, returning its level. ok is
// false if ident is already present in that same scope (redeclaration).
func (s *symbolStack) declare(ident string) (level int, ok bool) {
	level = len(s.scopes) - 1
	inner := s.scopes[level]
	if inner[ident] {
		return level, false
	}
	inner[ident] = true
	return level, true
}

// lookup walks the stack from innermost to outermost, returning the level
// at which ident was found.
func (s *symbolStack) lookup(ident string) (level int, ok bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if s.scopes[i][ident] {
			return i, true
		}
	}
	return 0, false
}

// Resolve annotates every identifier reference in nodes (a program's
// top-level node list, in source order) with its binding's scope level, and
// returns a *ccerrors.ScopeError on the first undeclared reference,
// redeclaration, or non-global function definition. libraryNames seeds
// global scope before any user declaration is processed, per spec.md §9's
// resolved open item.
func Resolve(nodes []*tree.Node, libraryNames []string) error {
	stack := newSymbolStack()
	for _, name := range libraryNames {
		stack.declare(name)
	}

	// Functions are declared in a pre-pass so that one function may invoke
	// another defined later in the source; function definitions only ever
	// occur at the top level (the grammar gives Function no path into a
	// Block), so this loop and the prepass both operate over nodes, never
	// recursively.
	for _, n := range nodes {
		if n.Kind != grammar.NFunction {
			continue
		}
		nameTok := &n.Children[0]
		name := nameTok.Token.Ident
		level, ok := stack.declare(name)
		if !ok {
			return ccerrors.NewScopeError(nameTok.Token.Start, fmt.Sprintf("redeclaration of function %q", name))
		}
		nameTok.Token.Ident = fmt.Sprintf("%s@%d", name, level)
	}

	for _, n := range nodes {
		var err error
		if n.Kind == grammar.NFunction {
			err = resolveFunction(n, stack)
		} else {
			err = resolveNode(n, stack)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveFunction declares a function's parameters into one new scope that
// also holds its body's statements directly — the function's own Block is
// deliberately not given a second, nested scope of its own, so a parameter
// and a top-level local in the body share one scope level (spec.md §8's S4
// expects both `x` and `y` annotated `@1`, not `@2`).
func resolveFunction(n *tree.Node, stack *symbolStack) error {
	rest := n.Children[1:]

	var params *tree.Node
	var body *tree.Node
	if len(rest) == 3 {
		params = rest[0].Node
		body = rest[2].Node
	} else {
		body = rest[1].Node
	}

	stack.pushScope()

	if params != nil {
		for i := 0; i+1 < len(params.Children); i += 2 {
			nameTok := &params.Children[i]
			name := nameTok.Token.Ident
			level, ok := stack.declare(name)
			if !ok {
				stack.popScope()
				return ccerrors.NewScopeError(nameTok.Token.Start, fmt.Sprintf("redeclaration of parameter %q", name))
			}
			nameTok.Token.Ident = fmt.Sprintf("%s@%d", name, level)
		}
	}

	for i := range body.Children {
		if err := resolveNode(body.Children[i].Node, stack); err != nil {
			stack.popScope()
			return err
		}
	}

	stack.popScope()
	return nil
}

func resolveNode(n *tree.Node, stack *symbolStack) error {
	switch n.Kind {
	case grammar.NDeclaration:
		nameTok := &n.Children[0]
		name := nameTok.Token.Ident
		level, ok := stack.declare(name)
		if !ok {
			return ccerrors.NewScopeError(nameTok.Token.Start, fmt.Sprintf("redeclaration of %q", name))
		}
		nameTok.Token.Ident = fmt.Sprintf("%s@%d", name, level)
		return resolveElem(&n.Children[1], stack)

	case grammar.NIf:
		if err := resolveElem(&n.Children[0], stack); err != nil {
			return err
		}
		return resolveNode(n.Children[1].Node, stack)

	case grammar.NReturn:
		return resolveElem(&n.Children[0], stack)

	case grammar.NInvoke:
		return resolveInvoke(n, stack)

	case grammar.NBlock:
		stack.pushScope()
		for i := range n.Children {
			if err := resolveNode(n.Children[i].Node, stack); err != nil {
				stack.popScope()
				return err
			}
		}
		stack.popScope()
		return nil

	case grammar.NExpr:
		if err := resolveElem(&n.Children[0], stack); err != nil {
			return err
		}
		return resolveElem(&n.Children[2], stack)

	case grammar.NUExpr:
		return resolveElem(&n.Children[1], stack)

	case grammar.NFunction:
		return resolveFunction(n, stack)

	default:
		return fmt.Errorf("internal error: scope.resolveNode: unexpected node kind %s", n.Kind)
	}
}

func resolveInvoke(n *tree.Node, stack *symbolStack) error {
	nameTok := &n.Children[0]
	name := nameTok.Token.Ident
	level, ok := stack.lookup(name)
	if !ok {
		return ccerrors.NewScopeError(nameTok.Token.Start, fmt.Sprintf("undeclared identifier %q", name))
	}
	nameTok.Token.Ident = fmt.Sprintf("%s@%d", name, level)

	for i := 1; i < len(n.Children); i++ {
		if err := resolveElem(&n.Children[i], stack); err != nil {
			return err
		}
	}
	return nil
}

func resolveElem(e *tree.Elem, stack *symbolStack) error {
	if e.IsToken {
		if e.Token.Kind != token.Ident {
			return nil
		}
		name := e.Token.Ident
		level, ok := stack.lookup(name)
		if !ok {
			return ccerrors.NewScopeError(e.Token.Start, fmt.Sprintf("undeclared identifier %q", name))
		}
		e.Token.Ident = fmt.Sprintf("%s@%d", name, level)
		return nil
	}
	return resolveNode(e.Node, stack)
}
