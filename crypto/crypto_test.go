package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashFile(t *testing.T) {
	directory, err := os.MkdirTemp("", "notion-tools-")
	assert.NoError(t, err)

	defer func() {
		_ = os.RemoveAll(directory)
	}()

	filePath := filepath.Join(directory, "file.md")
	assert.NoError(t, os.WriteFile(filePath, []byte("# Home\n"), 0600))

	first, err := HashFile(filePath)
	assert.NoError(t, err)
	assert.NotEmpty(t, first)

	// Hashing is deterministic
	again, err := HashFile(filePath)
	assert.NoError(t, err)
	assert.Equal(t, first, again)

	// Different content, different digest
	otherPath := filepath.Join(directory, "other.md")
	assert.NoError(t, os.WriteFile(otherPath, []byte("# Other\n"), 0600))

	other, err := HashFile(otherPath)
	assert.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile("no-such-file.md")
	assert.Error(t, err)
}
