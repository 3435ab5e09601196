package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConfigFile(t *testing.T) {
	directory, err := os.MkdirTemp("", "notion-tools-")
	assert.NoError(t, err)

	defer func() {
		_ = os.RemoveAll(directory)
	}()

	configPath := filepath.Join(directory, "config.yaml")
	data := `debug: true
log_file_path: notion-tools.log
db_path: notion-tools.db
batch_size: 250
file_names_to_ignore:
  - .DS_Store
folder_names_to_ignore:
  - __MACOSX
`
	assert.NoError(t, os.WriteFile(configPath, []byte(data), 0600))

	config, err := parseConfigFile(configPath)
	assert.NoError(t, err)

	assert.True(t, config.IsDebug)
	assert.Equal(t, "notion-tools.log", config.LogFilePath)
	assert.Equal(t, "notion-tools.db", config.DBPath)
	assert.EqualValues(t, 250, config.BatchSize)
	assert.Equal(t, []string{".DS_Store"}, config.FileNamesToIgnore)
	assert.Equal(t, []string{"__MACOSX"}, config.FolderNamesToIgnore)
}

func TestParseConfigFileRejectsInvalidConfig(t *testing.T) {
	directory, err := os.MkdirTemp("", "notion-tools-")
	assert.NoError(t, err)

	defer func() {
		_ = os.RemoveAll(directory)
	}()

	configPath := filepath.Join(directory, "config.yaml")
	assert.NoError(t, os.WriteFile(configPath, []byte("db_path: notion-tools.db\n"), 0600))

	_, err = parseConfigFile(configPath)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := &Config{
		LogFilePath: "notion-tools.log",
		DBPath:      "notion-tools.db",
		BatchSize:   100,
	}
	assert.NoError(t, valid.Validate())

	missingBatchSize := &Config{
		LogFilePath: "notion-tools.log",
		DBPath:      "notion-tools.db",
	}
	assert.Error(t, missingBatchSize.Validate())
}
