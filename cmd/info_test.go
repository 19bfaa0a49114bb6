package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMetadataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, writeMetadataFile(path, []byte(`{"id":"dQw4w9WgXcQ"}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"dQw4w9WgXcQ"}`, string(data))
}

func TestWriteMetadataFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "metadata.json")

	err := writeMetadataFile(path, []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "writing metadata file")
}
