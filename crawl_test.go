package main

import (
	"testing"

	"notion-tools/models"

	"github.com/stretchr/testify/assert"
)

func TestCrawl(t *testing.T) {
	c := newTestConversion(t)

	writeTestFile(t, c, "Home.md", "# Home\n")
	writeTestFile(t, c, "Docs/Notes.md", "# Notes\n")
	writeTestFile(t, c, "Docs/Sub/Deep.md", "# Deep\n")
	writeTestFile(t, c, ".DS_Store", "junk")
	writeTestFile(t, c, "__MACOSX/resource", "junk")

	assert.NoError(t, c.Crawl())

	var entries []models.Entry
	assert.NoError(t, c.ctx.DB.Where("run_id = ?", c.run.ID).Order("id").Find(&entries).Error)

	// Ignored files and folders never enter the catalog
	paths := make(map[string]models.Entry, len(entries))

	for _, entry := range entries {
		paths[entry.OriginalPath] = entry
	}

	assert.Len(t, entries, 5)
	assert.NotContains(t, paths, ".DS_Store")
	assert.NotContains(t, paths, "__MACOSX")
	assert.NotContains(t, paths, "__MACOSX/resource")

	assert.False(t, paths["Home.md"].IsDir)
	assert.Nil(t, paths["Home.md"].ParentID)
	assert.EqualValues(t, 1, paths["Home.md"].Level)

	docs := paths["Docs"]
	assert.True(t, docs.IsDir)
	assert.EqualValues(t, 1, docs.Level)

	notes := paths["Docs/Notes.md"]
	assert.NotNil(t, notes.ParentID)
	assert.Equal(t, docs.ID, *notes.ParentID)
	assert.EqualValues(t, 2, notes.Level)

	deep := paths["Docs/Sub/Deep.md"]
	assert.EqualValues(t, 3, deep.Level)
	assert.NotNil(t, deep.ParentID)
	assert.Equal(t, paths["Docs/Sub"].ID, *deep.ParentID)
}
