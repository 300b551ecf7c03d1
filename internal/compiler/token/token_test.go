package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Kind_humanReturnsKnownName(t *testing.T) {
	assert.Equal(t, "'let'", KwLet.Human())
	assert.Equal(t, "identifier", Ident.Human())
}

func Test_Kind_humanFallsBackForUnknownKind(t *testing.T) {
	unknown := Kind(999)
	assert.Equal(t, "kind(999)", unknown.Human())
	assert.Equal(t, unknown.Human(), unknown.String())
}

func Test_Token_lexemeSelectsPayloadByKind(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("42", Token{Kind: Int, IntVal: 42}.Lexeme())
	assert.Equal("true", Token{Kind: Bool, BoolVal: true}.Lexeme())
	assert.Equal("hi", Token{Kind: Str, StrVal: "hi"}.Lexeme())
	assert.Equal("x", Token{Kind: Ident, Ident: "x"}.Lexeme())
	assert.Equal("i64", Token{Kind: TypeLit, TypeName: "i64"}.Lexeme())
	assert.Equal("+", Token{Kind: Op3, Op: "+"}.Lexeme())
	assert.Equal(ParenL.Human(), Token{Kind: ParenL}.Lexeme())
}

func Test_Token_stringIncludesSpanAndLexeme(t *testing.T) {
	tok := Token{Kind: Ident, Ident: "x", Start: 4, End: 5}
	s := tok.String()
	assert.Contains(t, s, `"x"`)
	assert.Contains(t, s, "[4:5]")
}
