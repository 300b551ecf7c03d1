package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine00chang/cilantro/internal/ccerrors"
	"github.com/shine00chang/cilantro/internal/compiler/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func Test_Lex_declaration(t *testing.T) {
	assert := assert.New(t)

	toks, err := Lex(`let x: i64 = 1 + 2`)
	require.NoError(t, err)

	assert.Equal([]token.Kind{
		token.KwLet, token.Ident, token.Colon, token.TypeLit, token.Assign,
		token.Int, token.Op3, token.Int, token.EOF,
	}, kinds(toks))
}

func Test_Lex_stringLiteralAndComment(t *testing.T) {
	assert := assert.New(t)

	toks, err := Lex("\"hi\" // a comment\ntrue")
	require.NoError(t, err)
	require.Len(t, toks, 3)

	assert.Equal(token.Str, toks[0].Kind)
	assert.Equal("hi", toks[0].StrVal)
	assert.Equal(token.Bool, toks[1].Kind)
	assert.True(toks[1].BoolVal)
}

func Test_Lex_twoCharOperatorsNotSplit(t *testing.T) {
	assert := assert.New(t)

	toks, err := Lex("a == b != c && d || e")
	require.NoError(t, err)

	ops := []string{}
	for _, tk := range toks {
		if tk.Kind == token.Op1 || tk.Kind == token.Op2 {
			ops = append(ops, tk.Op)
		}
	}
	assert.Equal([]string{"==", "!=", "&&", "||"}, ops)
}

func Test_Lex_arrowVsMinus(t *testing.T) {
	assert := assert.New(t)

	toks, err := Lex("a -> b - c")
	require.NoError(t, err)

	assert.Equal(token.Arrow, toks[1].Kind)
	assert.Equal(token.Op3, toks[3].Kind)
}

func Test_Lex_unterminatedStringIsError(t *testing.T) {
	_, err := Lex(`"never closed`)
	require.Error(t, err)
	_, ok := err.(*ccerrors.LexError)
	assert.True(t, ok)
}

func Test_Lex_unrecognisedCharacterIsError(t *testing.T) {
	_, err := Lex("let x = 1 $ 2")
	require.Error(t, err)
	_, ok := err.(*ccerrors.LexError)
	assert.True(t, ok)
}

func Test_Lex_unicodeIdentifierNormalizedToNFC(t *testing.T) {
	assert := assert.New(t)

	// "é" as an "e" + combining acute accent (NFD) versus its precomposed
	// single-rune form (NFC) should lex to the same identifier text.
	decomposed := "café"
	precomposed := "café"

	toks1, err := Lex(decomposed)
	require.NoError(t, err)
	toks2, err := Lex(precomposed)
	require.NoError(t, err)

	assert.Equal(token.Ident, toks1[0].Kind)
	assert.Equal(toks2[0].Ident, toks1[0].Ident)
}

func Test_Lex_integerWithUnderscoreSeparators(t *testing.T) {
	assert := assert.New(t)

	toks, err := Lex("1_000_000")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(int64(1000000), toks[0].IntVal)
}
