package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shine00chang/cilantro/internal/compiler/token"
)

func Test_Cilantro_isRootsAsDeclared(t *testing.T) {
	assert := assert.New(t)

	g := Cilantro()
	assert.True(g.IsRoot(NStatement))
	assert.True(g.IsRoot(NFunction))
	assert.True(g.IsRoot(NBlock))
	assert.False(g.IsRoot(NExpr))
}

func Test_Cilantro_followIncludesEOFForRoots(t *testing.T) {
	assert := assert.New(t)

	g := Cilantro()
	assert.True(g.Follow(NStatement)[token.EOF])
}

func Test_Cilantro_productionsForReturnsOnlyMatchingLHS(t *testing.T) {
	assert := assert.New(t)

	g := Cilantro()
	for _, idx := range g.ProductionsFor(NIf) {
		assert.Equal(NIf, g.Productions[idx].LHS)
	}
	assert.NotEmpty(g.ProductionsFor(NIf))
}

func Test_NodeKind_stringIsHumanReadable(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("Declaration", NDeclaration.String())
}

func Test_ElemKind_stringDelegatesByKind(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("Block", Node(NBlock).String())
	assert.Equal(Term(token.KwLet).Token.Human(), Term(token.KwLet).String())
}
