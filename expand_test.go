package main

import (
	"archive/zip"
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandArchive(t *testing.T) {
	c := newTestConversion(t)

	archivePath := createTestZip(t, map[string][]byte{
		"Export-aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/Home.md":         []byte("# Home\n"),
		"Export-aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/Docs/Notes.md":   []byte("# Notes\n"),
		"Export-aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/Docs/image.png": {0x89, 0x50, 0x4E, 0x47},
	})

	assert.NoError(t, c.ExpandArchive(archivePath))

	assert.True(t, IsFile(c.absolutePath("Export-aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/Home.md")))
	assert.True(t, IsFile(c.absolutePath("Export-aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/Docs/Notes.md")))
	assert.Equal(t, "# Notes\n", readTestFile(t, c, "Export-aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/Docs/Notes.md"))
}

func TestExpandArchiveMultiPart(t *testing.T) {
	c := newTestConversion(t)

	archivePath := createTestZip(t, map[string][]byte{
		"Part-1.zip": buildZipBytes(t, "Inner/Page.md", "# Page\n"),
		"Part-2.zip": buildZipBytes(t, "Inner/Other.md", "# Other\n"),
	})

	assert.NoError(t, c.ExpandArchive(archivePath))

	// A pure zip-of-zips expands in place and the parts are removed
	assert.True(t, IsFile(c.absolutePath("Inner/Page.md")))
	assert.True(t, IsFile(c.absolutePath("Inner/Other.md")))
	assert.False(t, pathExists(c.absolutePath("Part-1.zip")))
	assert.False(t, pathExists(c.absolutePath("Part-2.zip")))
}

func TestExpandArchiveKeepsAttachedZipAssets(t *testing.T) {
	c := newTestConversion(t)

	backup := buildZipBytes(t, "backup/data.txt", "precious\n")

	archivePath := createTestZip(t, map[string][]byte{
		"Home.md":           []byte("# Home\n\n[backup](assets/backup.zip)\n"),
		"assets/backup.zip": backup,
	})

	assert.NoError(t, c.ExpandArchive(archivePath))

	// Zip files attached as content survive verbatim
	assert.True(t, IsFile(c.absolutePath("Home.md")))
	assert.True(t, IsFile(c.absolutePath("assets/backup.zip")))
	assert.False(t, pathExists(c.absolutePath("assets/backup")))
	assert.Equal(t, string(backup), readTestFile(t, c, "assets/backup.zip"))
}

func buildZipBytes(t *testing.T, entryPath, content string) []byte {
	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)

	entry, err := writer.Create(entryPath)
	assert.NoError(t, err)

	_, err = entry.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	return buffer.Bytes()
}

func TestExpandArchiveCorrupt(t *testing.T) {
	c := newTestConversion(t)

	archivePath := c.absolutePath("broken.zip")
	assert.NoError(t, os.WriteFile(archivePath, []byte("this is not a zip"), 0600))

	err := c.ExpandArchive(archivePath)
	assert.ErrorIs(t, err, ErrCorruptArchive)
	assert.ErrorContains(t, err, "broken.zip")
}
