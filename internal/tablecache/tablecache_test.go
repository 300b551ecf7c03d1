package tablecache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dekarrin/rezi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/parse"
)

func Test_SaveLoad_roundTrip(t *testing.T) {
	assert := assert.New(t)

	table := parse.MustBuildTable(grammar.Cilantro())

	path := filepath.Join(t.TempDir(), "table.rezi")
	require.NoError(t, Save(path, table))

	loaded, ok, err := Load(path)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(len(table), len(loaded))
	for i := range table {
		assert.Equal(table[i], loaded[i])
	}
}

func Test_Load_missingFileIsCacheMiss(t *testing.T) {
	assert := assert.New(t)

	_, ok, err := Load(filepath.Join(t.TempDir(), "nope.rezi"))
	require.NoError(t, err)
	assert.False(ok)
}

func Test_Load_staleVersionIsCacheMiss(t *testing.T) {
	assert := assert.New(t)

	table := parse.MustBuildTable(grammar.Cilantro())
	doc := toDocument(table)
	doc.Version = Version + 1

	path := filepath.Join(t.TempDir(), "table.rezi")
	require.NoError(t, os.WriteFile(path, rezi.EncBinary(&doc), 0644))

	_, ok, err := Load(path)
	require.NoError(t, err)
	assert.False(ok)
}
