package stdlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine00chang/cilantro/internal/compiler/check"
	"github.com/shine00chang/cilantro/internal/compiler/semantic"
)

func Test_Load_parsesSignatureAndReserveDirectives(t *testing.T) {
	assert := assert.New(t)

	src := `
;;@reserve 64
;;@signature $print_int : void (i64)
(func $print_int (param $x i64)
  nop)
`
	lib, err := Load(src)
	require.NoError(t, err)
	assert.Equal(64, lib.ReservedBytes)
	assert.Equal([]string{"print_int"}, lib.Names())

	sig, ok := lib.Funcs["print_int"]
	require.True(t, ok)
	assert.Equal(semantic.TVoid, sig.Return)
	assert.Equal([]semantic.Type{semantic.TInt}, sig.Params)
}

func Test_Load_defaultsReservedBytesWhenUnset(t *testing.T) {
	lib, err := Load(";;@signature $noop : void ()\n")
	require.NoError(t, err)
	assert.Equal(t, DefaultReservedBytes, lib.ReservedBytes)
}

func Test_Load_duplicateSignatureIsError(t *testing.T) {
	src := ";;@signature $f : void ()\n;;@signature $f : void ()\n"
	_, err := Load(src)
	assert.Error(t, err)
}

func Test_Load_duplicateReserveIsError(t *testing.T) {
	src := ";;@reserve 1\n;;@reserve 2\n"
	_, err := Load(src)
	assert.Error(t, err)
}

func Test_Load_malformedSignatureIsError(t *testing.T) {
	_, err := Load(";;@signature $f void ()\n")
	assert.Error(t, err)
}

func Test_Load_multiParamSignature(t *testing.T) {
	lib, err := Load(";;@signature $add : i64 (i64, i64)\n")
	require.NoError(t, err)
	sig := lib.Funcs["add"]
	assert.Equal(t, []semantic.Type{semantic.TInt, semantic.TInt}, sig.Params)
}

func Test_Library_populateTypeTableKeysByGlobalScope(t *testing.T) {
	lib, err := Load(";;@signature $greet : void ()\n")
	require.NoError(t, err)

	table := check.NewTable()
	require.NoError(t, lib.PopulateTypeTable(table))

	sig, ok := table.LookupFunc("greet@0")
	assert.True(t, ok)
	assert.Equal(t, semantic.TVoid, sig.Return)
}
