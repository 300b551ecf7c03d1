package semantic

import (
	"fmt"

	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
)

// Extract converts a trimmed, scope-resolved tree.Node into a semantic.Node,
// per spec.md §4.7: children are consumed positionally in the shape the
// trimmer left them, literal strings are read directly into named fields,
// and sub-nodes recurse. This generalizes
// original_source/src/cilantro/semantics/extract.rs's partial case list
// (Declaration/Invoke/Args/Expr only) to every kind the trimmer produces.
//
// An unexpected child shape is a grammar/trimmer mismatch — a programming
// error, not a user-facing one — and is reported as an error rather than a
// panic so the top-level driver can wrap it uniformly with the other
// compiler passes.
func Extract(n *tree.Node) (*Node, error) {
	switch n.Kind {
	case grammar.NDeclaration:
		return extractDeclaration(n)
	case grammar.NIf:
		return extractIf(n)
	case grammar.NReturn:
		return extractReturn(n)
	case grammar.NInvoke:
		return extractInvoke(n)
	case grammar.NFunction:
		return extractFunction(n)
	case grammar.NBlock:
		return extractBlock(n)
	case grammar.NParams:
		return extractParams(n)
	case grammar.NExpr:
		return extractExpr(n)
	case grammar.NUExpr:
		return extractUExpr(n)
	default:
		return nil, fmt.Errorf("internal error: extract: unexpected node kind %s", n.Kind)
	}
}

func extractElem(e tree.Elem) (Elem, error) {
	if e.IsToken {
		return OfToken(e.Token), nil
	}
	sub, err := Extract(e.Node)
	if err != nil {
		return Elem{}, err
	}
	return OfNode(sub), nil
}

func extractDeclaration(n *tree.Node) (*Node, error) {
	if len(n.Children) != 2 || !n.Children[0].IsToken {
		return nil, fmt.Errorf("internal error: extract: malformed Declaration")
	}
	init, err := extractElem(n.Children[1])
	if err != nil {
		return nil, err
	}
	return &Node{
		Start: n.Start, End: n.End, Kind: KDeclaration,
		Name:        n.Children[0].Token.Ident,
		Initializer: init,
	}, nil
}

func extractIf(n *tree.Node) (*Node, error) {
	if len(n.Children) != 2 || n.Children[1].IsToken {
		return nil, fmt.Errorf("internal error: extract: malformed If")
	}
	cond, err := extractElem(n.Children[0])
	if err != nil {
		return nil, err
	}
	body, err := Extract(n.Children[1].Node)
	if err != nil {
		return nil, err
	}
	return &Node{Start: n.Start, End: n.End, Kind: KIf, Condition: cond, Body: body}, nil
}

func extractReturn(n *tree.Node) (*Node, error) {
	if len(n.Children) != 1 {
		return nil, fmt.Errorf("internal error: extract: malformed Return")
	}
	val, err := extractElem(n.Children[0])
	if err != nil {
		return nil, err
	}
	return &Node{Start: n.Start, End: n.End, Kind: KReturn, Value: val}, nil
}

func extractInvoke(n *tree.Node) (*Node, error) {
	if len(n.Children) < 1 || !n.Children[0].IsToken {
		return nil, fmt.Errorf("internal error: extract: malformed Invoke")
	}
	args := make([]Elem, 0, len(n.Children)-1)
	for _, c := range n.Children[1:] {
		e, err := extractElem(c)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return &Node{
		Start: n.Start, End: n.End, Kind: KInvoke,
		Name:      n.Children[0].Token.Ident,
		Arguments: args,
	}, nil
}

func extractFunction(n *tree.Node) (*Node, error) {
	rest := n.Children[1:]
	if len(rest) != 2 && len(rest) != 3 {
		return nil, fmt.Errorf("internal error: extract: malformed Function")
	}

	var params *Node
	var returnTypeTok, bodyElem tree.Elem
	if len(rest) == 3 {
		if rest[0].IsToken {
			return nil, fmt.Errorf("internal error: extract: malformed Function params")
		}
		p, err := extractParams(rest[0].Node)
		if err != nil {
			return nil, err
		}
		params = p
		returnTypeTok, bodyElem = rest[1], rest[2]
	} else {
		returnTypeTok, bodyElem = rest[0], rest[1]
	}

	if !returnTypeTok.IsToken || bodyElem.IsToken {
		return nil, fmt.Errorf("internal error: extract: malformed Function tail")
	}
	body, err := Extract(bodyElem.Node)
	if err != nil {
		return nil, err
	}

	return &Node{
		Start: n.Start, End: n.End, Kind: KFunction,
		Name:       n.Children[0].Token.Ident,
		Params:     params,
		ReturnType: returnTypeTok.Token.TypeName,
		Body:       body,
	}, nil
}

func extractBlock(n *tree.Node) (*Node, error) {
	stmts := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.IsToken {
			return nil, fmt.Errorf("internal error: extract: malformed Block statement")
		}
		s, err := Extract(c.Node)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return &Node{Start: n.Start, End: n.End, Kind: KBlock, Statements: stmts}, nil
}

func extractParams(n *tree.Node) (*Node, error) {
	if len(n.Children)%2 != 0 {
		return nil, fmt.Errorf("internal error: extract: malformed Params")
	}
	items := make([]Param, 0, len(n.Children)/2)
	for i := 0; i+1 < len(n.Children); i += 2 {
		nameTok, typeTok := n.Children[i], n.Children[i+1]
		if !nameTok.IsToken || !typeTok.IsToken {
			return nil, fmt.Errorf("internal error: extract: malformed Params entry")
		}
		items = append(items, Param{Name: nameTok.Token.Ident, TypeName: typeTok.Token.TypeName})
	}
	return &Node{Start: n.Start, End: n.End, Kind: KParams, ParamItems: items}, nil
}

func extractExpr(n *tree.Node) (*Node, error) {
	if len(n.Children) != 3 || !n.Children[1].IsToken {
		return nil, fmt.Errorf("internal error: extract: malformed Expr")
	}
	left, err := extractElem(n.Children[0])
	if err != nil {
		return nil, err
	}
	right, err := extractElem(n.Children[2])
	if err != nil {
		return nil, err
	}
	return &Node{
		Start: n.Start, End: n.End, Kind: KExpr,
		Left: left, Op: n.Children[1].Token.Op, Right: right,
	}, nil
}

func extractUExpr(n *tree.Node) (*Node, error) {
	if len(n.Children) != 2 || !n.Children[0].IsToken {
		return nil, fmt.Errorf("internal error: extract: malformed UExpr")
	}
	operand, err := extractElem(n.Children[1])
	if err != nil {
		return nil, err
	}
	return &Node{
		Start: n.Start, End: n.End, Kind: KUExpr,
		Op: n.Children[0].Token.Op, Operand: operand,
	}, nil
}
