package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine00chang/cilantro/internal/ccerrors"
	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/lex"
	"github.com/shine00chang/cilantro/internal/compiler/parse"
	"github.com/shine00chang/cilantro/internal/compiler/scope"
	"github.com/shine00chang/cilantro/internal/compiler/semantic"
	"github.com/shine00chang/cilantro/internal/compiler/trim"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
)

func extractSource(t *testing.T, src string, libraryNames ...string) []*semantic.Node {
	t.Helper()
	g := grammar.Cilantro()
	table := parse.MustBuildTable(g)
	toks, err := lex.Lex(src)
	require.NoError(t, err)
	roots, err := parse.Parse(g, table, toks, src)
	require.NoError(t, err)

	trimmed := make([]*tree.Node, len(roots))
	for i, r := range roots {
		trimmed[i] = trim.Trim(r).Node
	}
	require.NoError(t, scope.Resolve(trimmed, libraryNames))

	nodes := make([]*semantic.Node, len(trimmed))
	for i, n := range trimmed {
		sn, err := semantic.Extract(n)
		require.NoError(t, err)
		nodes[i] = sn
	}
	return nodes
}

func checkSource(t *testing.T, src string, libraryNames ...string) ([]*semantic.Node, error) {
	t.Helper()
	nodes := extractSource(t, src, libraryNames...)
	return nodes, Check(nodes, NewTable())
}

func Test_Check_declarationAssignsInferredTypeToVariable(t *testing.T) {
	assert := assert.New(t)

	nodes, err := checkSource(t, "let x = 1")
	require.NoError(t, err)
	assert.Equal(semantic.TVoid, nodes[0].Type)
	assert.Equal(semantic.TInt, nodes[0].Initializer.Type)
}

func Test_Check_functionSignatureAndBodyTypeCheck(t *testing.T) {
	assert := assert.New(t)

	nodes, err := checkSource(t, "func add(x: i64, y: i64) -> i64 { return x + y }")
	require.NoError(t, err)
	fn := nodes[0]
	assert.Equal(semantic.TVoid, fn.Type)

	ret := fn.Body.Statements[0]
	assert.Equal(semantic.TInt, ret.Type)
}

func Test_Check_mismatchedReturnTypeIsTypeError(t *testing.T) {
	_, err := checkSource(t, `func f() -> i64 { return true }`)
	require.Error(t, err)
	_, ok := err.(*ccerrors.TypeError)
	assert.True(t, ok)
}

func Test_Check_ifConditionMustBeBool(t *testing.T) {
	_, err := checkSource(t, "func f() -> void { if 1 { let y = 2 } }")
	require.Error(t, err)
	_, ok := err.(*ccerrors.TypeError)
	assert.True(t, ok)
}

func Test_Check_arithmeticOperatorRequiresIntOperands(t *testing.T) {
	_, err := checkSource(t, "let x = true + false")
	require.Error(t, err)
	_, ok := err.(*ccerrors.TypeError)
	assert.True(t, ok)
}

func Test_Check_invokeArgumentCountMismatchIsTypeError(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.DefineFunc("greet@0", FuncSig{Params: []semantic.Type{semantic.TInt}, Return: semantic.TVoid}))

	nodes := extractSource(t, "let x = greet()", "greet")
	require.Len(t, nodes, 1)

	err := Check(nodes, table)
	require.Error(t, err)
	_, ok := err.(*ccerrors.TypeError)
	assert.True(t, ok)
}

func Test_Table_defineFuncRejectsDuplicateNames(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.DefineFunc("f@0", FuncSig{Return: semantic.TVoid}))
	assert.Error(t, table.DefineFunc("f@0", FuncSig{Return: semantic.TVoid}))
}

func Test_Table_lookupVarAndFunc(t *testing.T) {
	assert := assert.New(t)

	table := NewTable()
	table.DefineVar("x@0", semantic.TInt)
	ty, ok := table.LookupVar("x@0")
	assert.True(ok)
	assert.Equal(semantic.TInt, ty)

	_, ok = table.LookupVar("missing@0")
	assert.False(ok)
}
