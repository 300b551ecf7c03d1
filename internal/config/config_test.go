package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_missingFileReturnsDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "cilantro.toml"))
	require.NoError(t, err)

	assert.Equal(Default(), cfg)
}

func Test_Load_overridesDefaults(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "cilantro.toml")
	contents := "library = \"vendor/lib.wat\"\nout_dir = \"build\"\nreserve_bytes = 64\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal("vendor/lib.wat", cfg.Library)
	assert.Equal("build", cfg.OutDir)
	assert.Equal(64, cfg.ReserveBytes)
}

func Test_Validate_rejectsNegativeReserve(t *testing.T) {
	cfg := Default()
	cfg.ReserveBytes = -1

	assert.Error(t, cfg.Validate())
}
