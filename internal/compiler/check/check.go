// Package check is the type checker (C8): it assigns a semantic.Type to
// every expression and statement in a semantic tree, against a type table
// seeded with the standard library's signatures by C9.
//
// Grounded on original_source/src/cilantro/semantics/type_check.rs's
// TypeTable/type_check, generalized from that file's partial case list
// (Expr/Return/Invoke/Block/Declaration/Function only — If and UExpr were
// left unimplemented there) to every semantic.Kind, and with one deliberate
// fix: the original tracks the enclosing function via a `static mut
// CURRENT_FUNC`, a process-wide global subsequent calls would stomp on
// (fine for the original's single-threaded one-shot CLI, but not a pattern
// worth reproducing); spec.md §9 endorses threading it as an explicit
// parameter instead, which is what checkNode does here.
package check

import (
	"fmt"

	"github.com/shine00chang/cilantro/internal/ccerrors"
	"github.com/shine00chang/cilantro/internal/compiler/semantic"
	"github.com/shine00chang/cilantro/internal/compiler/token"
)

// FuncSig is a function's checked signature: its parameter types in
// declaration order and its declared return type.
type FuncSig struct {
	Params []semantic.Type
	Return semantic.Type
}

// Table holds the two mappings spec.md §3's "Type table" names: variables
// by (scope-annotated) name, and functions by name. A function can only be
// declared at global scope (C6 rejects any other position), so every
// function name carries the scope annotation "@0" by the time it reaches
// here — library signatures loaded by C9 must be keyed the same way.
type Table struct {
	Vars  map[string]semantic.Type
	Funcs map[string]FuncSig
}

func NewTable() *Table {
	return &Table{Vars: map[string]semantic.Type{}, Funcs: map[string]FuncSig{}}
}

// DefineFunc registers a function's signature. It is an error to redefine
// an existing name — C9 enforces this for library symbols and C6 enforces
// it for user symbols, so this should never trigger in practice, but is
// checked rather than silently overwritten.
func (t *Table) DefineFunc(name string, sig FuncSig) error {
	if _, exists := t.Funcs[name]; exists {
		return fmt.Errorf("internal error: duplicate function signature for %q", name)
	}
	t.Funcs[name] = sig
	return nil
}

func (t *Table) DefineVar(name string, ty semantic.Type) {
	t.Vars[name] = ty
}

func (t *Table) LookupFunc(name string) (FuncSig, bool) {
	sig, ok := t.Funcs[name]
	return sig, ok
}

func (t *Table) LookupVar(name string) (semantic.Type, bool) {
	ty, ok := t.Vars[name]
	return ty, ok
}

// Check type-checks a program's top-level node list in source order,
// mutating each node's Type field in place. table should already carry the
// library signatures C9 produced.
func Check(nodes []*semantic.Node, table *Table) error {
	for _, n := range nodes {
		if _, err := checkNode(n, table, nil); err != nil {
			return err
		}
	}
	return nil
}

// checkNode type-checks n and everything beneath it, returning n's type.
// currentReturn is the declared return type of the innermost enclosing
// function, or nil outside of one — spec.md §9's parameter-threading
// resolution of the "current function" open item.
func checkNode(n *semantic.Node, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	var ty semantic.Type
	var err error

	switch n.Kind {
	case semantic.KDeclaration:
		ty, err = checkDeclaration(n, table, currentReturn)
	case semantic.KIf:
		ty, err = checkIf(n, table, currentReturn)
	case semantic.KReturn:
		ty, err = checkReturn(n, table, currentReturn)
	case semantic.KInvoke:
		ty, err = checkInvoke(n, table, currentReturn)
	case semantic.KFunction:
		ty, err = checkFunction(n, table)
	case semantic.KBlock:
		ty, err = checkBlock(n, table, currentReturn)
	case semantic.KExpr:
		ty, err = checkExpr(n, table, currentReturn)
	case semantic.KUExpr:
		ty, err = checkUExpr(n, table, currentReturn)
	default:
		return semantic.TUnresolved, fmt.Errorf("internal error: check: unexpected node kind %s", n.Kind)
	}

	if err != nil {
		return semantic.TUnresolved, err
	}
	n.Type = ty
	return ty, nil
}

// checkElem type-checks an expression position, whether it is a bare
// literal/identifier token or a sub-node.
func checkElem(e *semantic.Elem, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	var ty semantic.Type
	var err error

	if e.IsToken {
		ty, err = checkToken(e)
	} else {
		ty, err = checkNode(e.Node, table, currentReturn)
	}
	if err != nil {
		return semantic.TUnresolved, err
	}
	e.Type = ty
	return ty, nil
}

func checkToken(e *semantic.Elem) (semantic.Type, error) {
	switch e.Token.Kind {
	case token.Int:
		return semantic.TInt, nil
	case token.Bool:
		return semantic.TBool, nil
	case token.Str:
		return semantic.TString, nil
	case token.Ident:
		return semantic.TUnresolved, fmt.Errorf("internal error: identifier %q type not resolved by checkToken", e.Token.Ident)
	default:
		return semantic.TUnresolved, fmt.Errorf("internal error: check: unexpected leaf token kind %s", e.Token.Kind)
	}
}

func checkDeclaration(n *semantic.Node, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	initTy, err := checkExprElem(&n.Initializer, table, currentReturn)
	if err != nil {
		return semantic.TUnresolved, err
	}
	table.DefineVar(n.Name, initTy)
	return semantic.TVoid, nil
}

func checkIf(n *semantic.Node, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	condTy, err := checkExprElem(&n.Condition, table, currentReturn)
	if err != nil {
		return semantic.TUnresolved, err
	}
	if condTy != semantic.TBool {
		return semantic.TUnresolved, ccerrors.NewTypeErrorWithTypes(
			n.Condition.Start(), "if condition must be bool", semantic.TBool.String(), condTy.String())
	}
	if _, err := checkNode(n.Body, table, currentReturn); err != nil {
		return semantic.TUnresolved, err
	}
	return semantic.TVoid, nil
}

func checkReturn(n *semantic.Node, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	valTy, err := checkExprElem(&n.Value, table, currentReturn)
	if err != nil {
		return semantic.TUnresolved, err
	}
	if currentReturn == nil {
		return semantic.TUnresolved, ccerrors.NewScopeError(n.Start, "return statement outside of a function")
	}
	if valTy != *currentReturn {
		return semantic.TUnresolved, ccerrors.NewTypeErrorWithTypes(
			n.Value.Start(), "return expression does not match function signature", currentReturn.String(), valTy.String())
	}
	return valTy, nil
}

func checkInvoke(n *semantic.Node, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	sig, ok := table.LookupFunc(n.Name)
	if !ok {
		return semantic.TUnresolved, fmt.Errorf("internal error: function %q type not found; should have been caught in scope resolution", n.Name)
	}
	if len(n.Arguments) != len(sig.Params) {
		return semantic.TUnresolved, ccerrors.NewTypeError(
			n.Start, fmt.Sprintf("argument count mismatch: expected %d, found %d", len(sig.Params), len(n.Arguments)))
	}
	for i := range n.Arguments {
		argTy, err := checkExprElem(&n.Arguments[i], table, currentReturn)
		if err != nil {
			return semantic.TUnresolved, err
		}
		if argTy != sig.Params[i] {
			return semantic.TUnresolved, ccerrors.NewTypeErrorWithTypes(
				n.Arguments[i].Start(), "argument type mismatch", sig.Params[i].String(), argTy.String())
		}
	}
	return sig.Return, nil
}

func checkFunction(n *semantic.Node, table *Table) (semantic.Type, error) {
	var paramTypes []semantic.Type
	if n.Params != nil {
		paramTypes = make([]semantic.Type, len(n.Params.ParamItems))
		for i, p := range n.Params.ParamItems {
			ty, ok := semantic.TypeFromName(p.TypeName)
			if !ok {
				return semantic.TUnresolved, ccerrors.NewTypeError(n.Params.Start, fmt.Sprintf("unknown parameter type %q", p.TypeName))
			}
			paramTypes[i] = ty
			table.DefineVar(p.Name, ty)
		}
	}

	retTy, ok := semantic.TypeFromName(n.ReturnType)
	if !ok {
		return semantic.TUnresolved, ccerrors.NewTypeError(n.Start, fmt.Sprintf("unknown return type %q", n.ReturnType))
	}

	if err := table.DefineFunc(n.Name, FuncSig{Params: paramTypes, Return: retTy}); err != nil {
		return semantic.TUnresolved, err
	}

	if _, err := checkBlock(n.Body, table, &retTy); err != nil {
		return semantic.TUnresolved, err
	}
	return semantic.TVoid, nil
}

func checkBlock(n *semantic.Node, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	for _, stmt := range n.Statements {
		if _, err := checkNode(stmt, table, currentReturn); err != nil {
			return semantic.TUnresolved, err
		}
	}
	return semantic.TVoid, nil
}

func checkExpr(n *semantic.Node, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	leftTy, err := checkExprElem(&n.Left, table, currentReturn)
	if err != nil {
		return semantic.TUnresolved, err
	}
	rightTy, err := checkExprElem(&n.Right, table, currentReturn)
	if err != nil {
		return semantic.TUnresolved, err
	}
	if leftTy != rightTy {
		return semantic.TUnresolved, ccerrors.NewTypeErrorWithTypes(
			n.Right.Start(), "Expression terms not of same type", leftTy.String(), rightTy.String())
	}

	switch n.Op {
	case "==", "!=":
		return semantic.TBool, nil
	case "&&", "||":
		if leftTy != semantic.TBool {
			return semantic.TUnresolved, ccerrors.NewTypeErrorWithTypes(n.Start, "boolean operator requires bool operands", semantic.TBool.String(), leftTy.String())
		}
		return semantic.TBool, nil
	case "+", "-", "*", "/":
		if leftTy != semantic.TInt {
			return semantic.TUnresolved, ccerrors.NewTypeErrorWithTypes(n.Start, "arithmetic operator requires int operands", semantic.TInt.String(), leftTy.String())
		}
		return semantic.TInt, nil
	default:
		return semantic.TUnresolved, fmt.Errorf("internal error: check: unknown binary operator %q", n.Op)
	}
}

func checkUExpr(n *semantic.Node, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	operandTy, err := checkExprElem(&n.Operand, table, currentReturn)
	if err != nil {
		return semantic.TUnresolved, err
	}
	if n.Op != "!" {
		return semantic.TUnresolved, fmt.Errorf("internal error: check: unknown unary operator %q", n.Op)
	}
	if operandTy != semantic.TBool {
		return semantic.TUnresolved, ccerrors.NewTypeErrorWithTypes(n.Start, "unary ! requires a bool operand", semantic.TBool.String(), operandTy.String())
	}
	return semantic.TBool, nil
}

// checkExprElem type-checks an expression Elem, resolving identifier
// leaves against the variable table (spec.md §4.8's "identifier → type from
// the variable table").
func checkExprElem(e *semantic.Elem, table *Table, currentReturn *semantic.Type) (semantic.Type, error) {
	if e.IsToken && e.Token.Kind == token.Ident {
		ty, ok := table.LookupVar(e.Token.Ident)
		if !ok {
			return semantic.TUnresolved, fmt.Errorf("internal error: variable %q type not found; should have been caught in scope resolution", e.Token.Ident)
		}
		e.Type = ty
		return ty, nil
	}
	return checkElem(e, table, currentReturn)
}
