// Package trim rewrites the concrete parse tree bottom-up (C5): dropping
// punctuation tokens, collapsing singleton precedence-chain nodes, and
// flattening left-recursive list productions into flat child sequences.
//
// The per-kind rule table is grounded on
// original_source/src/cilantro/semantics/trim.rs's Node::trim, generalized
// from that file's partial case list (Declaration/Invoke/Args/Expr/T1/T2
// only) to the complete set spec.md §4.5 names.
package trim

import (
	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/token"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
)

// Trim rewrites n and everything beneath it, returning the replacement
// element (a trimmed node might collapse down to a bare token or to its
// sole child).
func Trim(n *tree.Node) tree.Elem {
	switch n.Kind {
	case grammar.NDeclaration:
		return recurse(n, filterTok(n, token.KwLet, token.Assign))

	case grammar.NIf:
		return recurse(n, filterTok(n, token.KwIf))

	case grammar.NReturn:
		return recurse(n, filterTok(n, token.KwReturn))

	case grammar.NInvoke:
		filtered := filterTok(n, token.ParenL, token.ParenR)
		children := recurseChildren(filtered)
		return tree.OfNode(tree.New(n.Kind, spliceKind(children, grammar.NArgs)))

	case grammar.NFunction:
		filtered := filterTok(n, token.KwFunc, token.ParenL, token.ParenR, token.Arrow)
		return recurse(n, filtered)

	case grammar.NBlock:
		filtered := filterTok(n, token.CurlyL, token.CurlyR)
		children := recurseChildren(filtered)
		return tree.OfNode(tree.New(n.Kind, spliceKind(children, grammar.NList)))

	case grammar.NExpr, grammar.NT1, grammar.NT2, grammar.NT3:
		children := recurseChildren(n.Children)
		return collapseOrRename(n, children, grammar.NExpr)

	case grammar.NTBase:
		filtered := filterTok(n, token.ParenL, token.ParenR)
		children := recurseChildren(filtered)
		if len(children) == 2 {
			return tree.OfNode(rebuild(n, grammar.NUExpr, children))
		}
		return collapseOrRename(n, children, grammar.NExpr)

	case grammar.NArgs:
		children := flattenList(recurseChildren(filterTok(n, token.Comma)), grammar.NArgs)
		return tree.OfNode(rebuild(n, n.Kind, children))

	case grammar.NList:
		children := flattenList(recurseChildren(n.Children), grammar.NList)
		return tree.OfNode(rebuild(n, n.Kind, children))

	case grammar.NParams:
		children := flattenList(recurseChildren(filterTok(n, token.Comma, token.Colon)), grammar.NParams)
		return tree.OfNode(rebuild(n, n.Kind, children))

	case grammar.NStatement:
		children := recurseChildren(n.Children)
		return children[0]

	default:
		return tree.OfNode(rebuild(n, n.Kind, recurseChildren(n.Children)))
	}
}

// filterTok returns n's children with any token of the given kinds removed.
func filterTok(n *tree.Node, kinds ...token.Kind) []tree.Elem {
	drop := make(map[token.Kind]bool, len(kinds))
	for _, k := range kinds {
		drop[k] = true
	}
	out := make([]tree.Elem, 0, len(n.Children))
	for _, c := range n.Children {
		if c.IsToken && drop[c.Token.Kind] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// recurseChildren trims every node child in place, leaving token children
// untouched.
func recurseChildren(children []tree.Elem) []tree.Elem {
	out := make([]tree.Elem, len(children))
	for i, c := range children {
		if c.IsToken {
			out[i] = c
		} else {
			out[i] = Trim(c.Node)
		}
	}
	return out
}

// recurse is the common "filter then recurse then rebuild as the same kind"
// path used by Declaration/If/Return/Function.
func recurse(n *tree.Node, filtered []tree.Elem) tree.Elem {
	return tree.OfNode(rebuild(n, n.Kind, recurseChildren(filtered)))
}

// rebuild constructs a replacement node preserving n's span but with a new
// kind and child list.
func rebuild(n *tree.Node, kind grammar.NodeKind, children []tree.Elem) *tree.Node {
	return &tree.Node{Start: n.Start, End: n.End, Kind: kind, Children: children}
}

// collapseOrRename renames n to kind, collapsing to its sole child if there
// is exactly one (spec.md §4.5's "defeats the precedence chain when no
// operator is present").
func collapseOrRename(n *tree.Node, children []tree.Elem, kind grammar.NodeKind) tree.Elem {
	if len(children) == 1 {
		return children[0]
	}
	return tree.OfNode(rebuild(n, kind, children))
}

// spliceKind replaces a single child of the given node kind with that
// child's own children, in place (Invoke adopting Args, Block adopting
// List). If no such child is present, children is returned unchanged.
func spliceKind(children []tree.Elem, kind grammar.NodeKind) []tree.Elem {
	out := make([]tree.Elem, 0, len(children))
	for _, c := range children {
		if !c.IsToken && c.Node.Kind == kind {
			out = append(out, c.Node.Children...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

// flattenList hoists a leading child of the given kind's own children in
// place, implementing the left-recursive `X := X a | a` flattening spec.md
// §4.5 calls for in Args/List/Params.
func flattenList(children []tree.Elem, kind grammar.NodeKind) []tree.Elem {
	if len(children) == 0 {
		return children
	}
	first := children[0]
	if first.IsToken || first.Node.Kind != kind {
		return children
	}
	out := make([]tree.Elem, 0, len(children)-1+len(first.Node.Children))
	out = append(out, first.Node.Children...)
	out = append(out, children[1:]...)
	return out
}
