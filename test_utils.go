package main

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"notion-tools/config"
	"notion-tools/models"

	"github.com/stretchr/testify/assert"
)

func testConfig() *config.Config {
	return &config.Config{
		BatchSize:           5,
		FileNamesToIgnore:   []string{".DS_Store"},
		FolderNamesToIgnore: []string{"__MACOSX"},
	}
}

func createEmptyTempTestDataPath(t *testing.T) string {
	tempTestDataPath, err := os.MkdirTemp("", "notion-tools-")
	assert.NoError(t, err)

	tempTestDataAbsolutePath, err := filepath.Abs(tempTestDataPath)
	assert.NoError(t, err)

	t.Cleanup(func() {
		_ = os.RemoveAll(tempTestDataAbsolutePath)
	})

	return tempTestDataAbsolutePath
}

func newTestConversion(t *testing.T) *Conversion {
	ctx := &Context{
		Config: testConfig(),
		DB:     testDB(),
	}

	rootPath := createEmptyTempTestDataPath(t)

	run := &models.Run{
		OutputPath: rootPath,
	}

	result := ctx.DB.Create(run)
	assert.NoError(t, result.Error)

	return &Conversion{
		ctx:      ctx,
		run:      run,
		rootPath: rootPath,
	}
}

func writeTestFile(t *testing.T, c *Conversion, relativePath, content string) {
	absolutePath := c.absolutePath(relativePath)

	err := os.MkdirAll(filepath.Dir(absolutePath), 0700)
	assert.NoError(t, err)

	err = os.WriteFile(absolutePath, []byte(content), 0600)
	assert.NoError(t, err)
}

func readTestFile(t *testing.T, c *Conversion, relativePath string) string {
	data, err := os.ReadFile(c.absolutePath(relativePath))
	assert.NoError(t, err)

	return string(data)
}

// createTestZip writes a zip archive holding the given path-to-content
// entries and returns its absolute path.
func createTestZip(t *testing.T, entries map[string][]byte) string {
	archivePath := filepath.Join(createEmptyTempTestDataPath(t), "export.zip")

	archive, err := os.Create(archivePath)
	assert.NoError(t, err)

	writer := zip.NewWriter(archive)

	for entryPath, content := range entries {
		entry, err := writer.Create(entryPath)
		assert.NoError(t, err)

		_, err = entry.Write(content)
		assert.NoError(t, err)
	}

	assert.NoError(t, writer.Close())
	assert.NoError(t, archive.Close())

	return archivePath
}

func crawlTestTree(t *testing.T, c *Conversion) {
	assert.NoError(t, c.Crawl())
}

func findTestEntry(t *testing.T, c *Conversion, originalPath string) *models.Entry {
	var entry models.Entry
	result := c.ctx.DB.
		Where("run_id = ? AND original_path = ?", c.run.ID, originalPath).
		First(&entry)
	assert.NoError(t, result.Error)

	return &entry
}
