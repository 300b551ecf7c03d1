package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/lex"
)

func Test_BuildTable_cilantroGrammarIsConflictFree(t *testing.T) {
	_, err := BuildTable(grammar.Cilantro())
	require.NoError(t, err)
}

func Test_Parse_simpleDeclarationStatement(t *testing.T) {
	assert := assert.New(t)

	g := grammar.Cilantro()
	table := MustBuildTable(g)

	src := "let x = 1 + 2"
	toks, err := lex.Lex(src)
	require.NoError(t, err)

	roots, err := Parse(g, table, toks, src)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(grammar.NStatement, roots[0].Kind)
}

func Test_Parse_functionDefinition(t *testing.T) {
	g := grammar.Cilantro()
	table := MustBuildTable(g)

	src := `func add(x: i64, y: i64) -> i64 { return x + y }`
	toks, err := lex.Lex(src)
	require.NoError(t, err)

	roots, err := Parse(g, table, toks, src)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, grammar.NFunction, roots[0].Kind)
}

func Test_Parse_malformedSourceIsSyntaxError(t *testing.T) {
	g := grammar.Cilantro()
	table := MustBuildTable(g)

	src := "let x ="
	toks, err := lex.Lex(src)
	require.NoError(t, err)

	_, err = Parse(g, table, toks, src)
	require.Error(t, err)
}
