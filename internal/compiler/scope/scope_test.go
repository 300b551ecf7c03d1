package scope

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine00chang/cilantro/internal/ccerrors"
	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/lex"
	"github.com/shine00chang/cilantro/internal/compiler/parse"
	"github.com/shine00chang/cilantro/internal/compiler/trim"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
)

func resolveSource(t *testing.T, src string, libraryNames ...string) ([]*tree.Node, error) {
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
	return trimmed, Resolve(trimmed, libraryNames)
}

func Test_Resolve_annotatesDeclarationWithItsScopeLevel(t *testing.T) {
	assert := assert.New(t)

	trimmed, err := resolveSource(t, "let x = 1")
	require.NoError(t, err)

	decl := trimmed[0]
	nameTok := decl.Children[0]
	assert.Equal("x@0", nameTok.Token.Ident)
}

func Test_Resolve_functionParamAndBodyShareOneScopeLevel(t *testing.T) {
	assert := assert.New(t)

	trimmed, err := resolveSource(t, "func f(x: i64) -> i64 { let y = x return y }")
	require.NoError(t, err)

	fn := trimmed[0]
	var paramIdent, declIdent string
	for _, c := range fn.Children {
		if !c.IsToken && c.Node.Kind == grammar.NParams {
			paramIdent = c.Node.Children[0].Token.Ident
		}
		if !c.IsToken && c.Node.Kind == grammar.NBlock {
			declIdent = c.Node.Children[0].Node.Children[0].Token.Ident
		}
	}
	assert.Equal("x@1", paramIdent)
	assert.Equal("y@1", declIdent)
}

func Test_Resolve_undeclaredIdentifierIsScopeError(t *testing.T) {
	_, err := resolveSource(t, "let x = y")
	require.Error(t, err)
	_, ok := err.(*ccerrors.ScopeError)
	assert.True(t, ok)
}

func Test_Resolve_redeclarationInSameScopeIsError(t *testing.T) {
	_, err := resolveSource(t, "func f() -> void { let x = 1 let x = 2 }")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "redeclaration"))
}

func Test_Resolve_invokeCalleeResolvedAgainstLibraryNames(t *testing.T) {
	trimmed, err := resolveSource(t, "let x = greet()", "greet")
	require.NoError(t, err)

	decl := trimmed[0]
	invoke := decl.Children[1]
	assert.Equal(t, "greet@0", invoke.Node.Children[0].Token.Ident)
}
