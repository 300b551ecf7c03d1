package grammar

import "github.com/shine00chang/cilantro/internal/compiler/token"

// Cilantro returns the fixed grammar for the Cilantro source language,
// spec.md §4.1 and §6. It is authored to be conflict-free under SLR(1); see
// parse.BuildTable.
//
// The expression precedence chain `Expr -> T1 -> T2 -> T3 -> TBase` encodes
// left-associativity and the four operator precedence levels directly into
// the shape of the parse tree, lowest precedence first: Op1 (==, !=), Op2
// (&&, ||), Op3 (+, -), Op4 (*, /), with TBase handling unary `!`, literals,
// identifiers, invocations, and parenthesized sub-expressions.
func Cilantro() *Grammar {
	roots := []NodeKind{NStatement, NFunction, NBlock}

	prods := []Production{
		// Block := '{' '}'  |  '{' List '}'
		{LHS: NBlock, RHS: []ElemKind{Term(token.CurlyL), Term(token.CurlyR)}},
		{LHS: NBlock, RHS: []ElemKind{Term(token.CurlyL), Node(NList), Term(token.CurlyR)}},

		// List := Statement | List Statement
		{LHS: NList, RHS: []ElemKind{Node(NStatement)}},
		{LHS: NList, RHS: []ElemKind{Node(NList), Node(NStatement)}},

		// Params := Ident ':' Type  |  Params ',' Ident ':' Type
		{LHS: NParams, RHS: []ElemKind{Term(token.Ident), Term(token.Colon), Term(token.TypeLit)}},
		{LHS: NParams, RHS: []ElemKind{Node(NParams), Term(token.Comma), Term(token.Ident), Term(token.Colon), Term(token.TypeLit)}},

		// Function := 'func' Ident '(' Params? ')' '->' Type Block
		{LHS: NFunction, RHS: []ElemKind{
			Term(token.KwFunc), Term(token.Ident), Term(token.ParenL),
			Node(NParams), Term(token.ParenR), Term(token.Arrow), Term(token.TypeLit), Node(NBlock),
		}},
		{LHS: NFunction, RHS: []ElemKind{
			Term(token.KwFunc), Term(token.Ident), Term(token.ParenL),
			Term(token.ParenR), Term(token.Arrow), Term(token.TypeLit), Node(NBlock),
		}},

		// Statement := Declaration | Block | Invoke | Return | If
		{LHS: NStatement, RHS: []ElemKind{Node(NDeclaration)}},
		{LHS: NStatement, RHS: []ElemKind{Node(NBlock)}},
		{LHS: NStatement, RHS: []ElemKind{Node(NInvoke)}},
		{LHS: NStatement, RHS: []ElemKind{Node(NReturn)}},
		{LHS: NStatement, RHS: []ElemKind{Node(NIf)}},

		// Declaration := 'let' Ident '=' Expr
		{LHS: NDeclaration, RHS: []ElemKind{Term(token.KwLet), Term(token.Ident), Term(token.Assign), Node(NExpr)}},

		// If := 'if' Expr Block
		{LHS: NIf, RHS: []ElemKind{Term(token.KwIf), Node(NExpr), Node(NBlock)}},

		// Return := 'return' Expr
		{LHS: NReturn, RHS: []ElemKind{Term(token.KwReturn), Node(NExpr)}},

		// Invoke := Ident '(' Args? ')'
		{LHS: NInvoke, RHS: []ElemKind{Term(token.Ident), Term(token.ParenL), Node(NArgs), Term(token.ParenR)}},
		{LHS: NInvoke, RHS: []ElemKind{Term(token.Ident), Term(token.ParenL), Term(token.ParenR)}},

		// Args := Expr | Args ',' Expr
		{LHS: NArgs, RHS: []ElemKind{Node(NExpr)}},
		{LHS: NArgs, RHS: []ElemKind{Node(NArgs), Term(token.Comma), Node(NExpr)}},

		// Expr := T1 Op1 Expr | T1
		{LHS: NExpr, RHS: []ElemKind{Node(NT1), Term(token.Op1), Node(NExpr)}},
		{LHS: NExpr, RHS: []ElemKind{Node(NT1)}},

		// T1 := T2 Op2 T1 | T2
		{LHS: NT1, RHS: []ElemKind{Node(NT2), Term(token.Op2), Node(NT1)}},
		{LHS: NT1, RHS: []ElemKind{Node(NT2)}},

		// T2 := T3 Op3 T2 | T3
		{LHS: NT2, RHS: []ElemKind{Node(NT3), Term(token.Op3), Node(NT2)}},
		{LHS: NT2, RHS: []ElemKind{Node(NT3)}},

		// T3 := TBase Op4 T3 | TBase
		{LHS: NT3, RHS: []ElemKind{Node(NTBase), Term(token.Op4), Node(NT3)}},
		{LHS: NT3, RHS: []ElemKind{Node(NTBase)}},

		// TBase := Invoke | Int | Ident | Str | Bool | '(' Expr ')' | Unary TBase
		{LHS: NTBase, RHS: []ElemKind{Node(NInvoke)}},
		{LHS: NTBase, RHS: []ElemKind{Term(token.Int)}},
		{LHS: NTBase, RHS: []ElemKind{Term(token.Ident)}},
		{LHS: NTBase, RHS: []ElemKind{Term(token.Str)}},
		{LHS: NTBase, RHS: []ElemKind{Term(token.Bool)}},
		{LHS: NTBase, RHS: []ElemKind{Term(token.ParenL), Node(NExpr), Term(token.ParenR)}},
		{LHS: NTBase, RHS: []ElemKind{Term(token.Unary), Node(NTBase)}},
	}

	return New(prods, roots)
}
