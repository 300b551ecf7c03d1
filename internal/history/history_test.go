package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Record_and_Recent(t *testing.T) {
	assert := assert.New(t)

	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	hash := HashSource("let a = 1")

	rec, err := store.Record(ctx, hash, true, "")
	require.NoError(t, err)
	assert.Equal(hash, rec.SourceHash)
	assert.True(rec.Success)

	_, err = store.Record(ctx, HashSource("let a = @"), false, "LexError: unrecognised character")
	require.NoError(t, err)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.False(recent[0].Success)
	assert.Equal("LexError: unrecognised character", recent[0].Diagnostic)
}

func Test_HashSource_isDeterministic(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(HashSource("abc"), HashSource("abc"))
	assert.NotEqual(HashSource("abc"), HashSource("abcd"))
}
