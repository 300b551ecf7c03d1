package ccerrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_LexError_errorAndRenderIncludeOffsetAndMessage(t *testing.T) {
	assert := assert.New(t)

	err := NewLexError(5, "unrecognised character '$'")
	assert.Contains(err.Error(), "byte 5")
	assert.Contains(err.Error(), "unrecognised character")

	rendered := err.Render("let x = 1 $ 2")
	assert.Contains(rendered, "^")
	assert.Contains(rendered, "let x = 1 $ 2")
}

func Test_SyntaxError_renderListsExpectedElements(t *testing.T) {
	assert := assert.New(t)

	err := NewSyntaxError(4, 5, "'='", []string{"identifier", "'('"})
	assert.Contains(err.Error(), "unexpected '='")

	rendered := err.Render("let =")
	assert.Contains(rendered, "identifier")
	assert.Contains(rendered, "'('")
}

func Test_SyntaxError_renderWithNoExpectedOmitsTable(t *testing.T) {
	err := NewSyntaxError(0, 1, "end of input", nil)
	rendered := err.Render("")
	assert.NotContains(t, rendered, "expected one of")
}

func Test_ScopeError_errorAndRender(t *testing.T) {
	assert := assert.New(t)

	err := NewScopeError(8, `undeclared identifier "y"`)
	assert.Contains(err.Error(), "scope error")
	assert.Contains(err.Render(`let x = y`), "^")
}

func Test_TypeError_errorOmitsTypesWhenUnset(t *testing.T) {
	err := NewTypeError(3, "return statement outside of a function")
	assert.Equal(t, `type error at byte 3: return statement outside of a function`, err.Error())
}

func Test_TypeError_errorIncludesExpectedAndFound(t *testing.T) {
	assert := assert.New(t)

	err := NewTypeErrorWithTypes(10, "argument type mismatch", "i64", "bool")
	assert.Contains(err.Error(), "expected i64")
	assert.Contains(err.Error(), "found bool")
	assert.Contains(err.Render("f(true)"), "expected i64")
}

func Test_sourceWindow_clampsOutOfRangeOffsets(t *testing.T) {
	assert := assert.New(t)

	err := NewLexError(1000, "oops")
	rendered := err.Render("short")
	assert.Contains(rendered, "short")
	assert.Contains(rendered, "^")
}
