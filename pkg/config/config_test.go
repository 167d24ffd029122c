package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecTable(t *testing.T) {
	opts := Default()
	assert.Equal(t, uint32(32768), opts.MaxReadSetSize)
	assert.Equal(t, uint32(8192), opts.MaxWriteSetSize)
	assert.Equal(t, uint32(4096), opts.MaxLockFreeWriteSetSize)
	assert.Equal(t, uint32(2), opts.LocalWorkMemorySizeMB)
	assert.Equal(t, uint32(20), opts.EpochAdvanceIntervalMS)
	assert.Equal(t, uint64(524288), opts.LogBufferKB)
	assert.False(t, opts.NullLogDevice)
	assert.NotEmpty(t, opts.InstanceID)
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("null_log_device: true\nmax_read_set_size: 100\n"), 0o644))

	opts, err := Load(path)
	require.NoError(t, err)
	assert.True(t, opts.NullLogDevice)
	assert.Equal(t, uint32(100), opts.MaxReadSetSize)
	// Untouched fields keep their defaults.
	assert.Equal(t, uint32(8192), opts.MaxWriteSetSize)
}
