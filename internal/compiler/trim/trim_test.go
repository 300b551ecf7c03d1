package trim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/lex"
	"github.com/shine00chang/cilantro/internal/compiler/parse"
	"github.com/shine00chang/cilantro/internal/compiler/token"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
)

func trimSource(t *testing.T, src string) []tree.Node {
	t.Helper()
	g := grammar.Cilantro()
	table := parse.MustBuildTable(g)
	toks, err := lex.Lex(src)
	require.NoError(t, err)
	roots, err := parse.Parse(g, table, toks, src)
	require.NoError(t, err)

	out := make([]tree.Node, len(roots))
	for i, r := range roots {
		out[i] = *Trim(r).Node
	}
	return out
}

func Test_Trim_declarationDropsKeywordAndAssignTokens(t *testing.T) {
	assert := assert.New(t)

	trimmed := trimSource(t, "let x = 1")
	decl := trimmed[0]
	assert.Equal(grammar.NDeclaration, decl.Kind)
	for _, c := range decl.Children {
		assert.True(!c.IsToken || (c.Token.Kind != token.KwLet && c.Token.Kind != token.Assign))
	}
}

func Test_Trim_expressionWithNoOperatorCollapses(t *testing.T) {
	assert := assert.New(t)

	trimmed := trimSource(t, "let x = 1")
	decl := trimmed[0]
	// the initializer is a bare Int token once the precedence chain
	// collapses away, not a nested Expr/T1/T2/T3 wrapper.
	last := decl.Children[len(decl.Children)-1]
	assert.True(last.IsToken)
	assert.Equal(token.Int, last.Token.Kind)
}

func Test_Trim_argsFlattenIntoOneLevel(t *testing.T) {
	assert := assert.New(t)

	trimmed := trimSource(t, "let x = add(1, 2, 3)")
	decl := trimmed[0]
	invoke := decl.Children[len(decl.Children)-1]
	require.True(t, !invoke.IsToken)
	assert.Equal(grammar.NInvoke, invoke.Node.Kind)

	// the callee name plus the three flattened, spliced-up arguments
	assert.Len(invoke.Node.Children, 4)
}

func Test_Trim_blockAdoptsStatementListDirectly(t *testing.T) {
	assert := assert.New(t)

	trimmed := trimSource(t, "func f() -> void { let x = 1 let y = 2 }")
	fn := trimmed[0]
	assert.Equal(grammar.NFunction, fn.Kind)

	var block *tree.Node
	for i := range fn.Children {
		c := fn.Children[i]
		if !c.IsToken && c.Node.Kind == grammar.NBlock {
			block = c.Node
		}
	}
	require.NotNil(t, block)
	assert.Len(block.Children, 2)
	for _, stmt := range block.Children {
		assert.False(stmt.IsToken)
		assert.Equal(grammar.NDeclaration, stmt.Node.Kind)
	}
}
