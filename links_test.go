package main

import (
	"strings"
	"testing"

	"notion-tools/models"

	"github.com/stretchr/testify/assert"
)

func TestRewriteLinkTarget(t *testing.T) {
	c := newTestConversion(t)

	renameMap := map[string]string{
		"Docs " + testNotionID:                                          "Docs",
		"Docs " + testNotionID + "/Sub Page " + strings.Repeat("a", 32) + ".md": "Docs/Sub Page.md",
		"Docs " + testNotionID + "/image.png":                           "Docs/image.png",
	}

	target, ok := c.rewriteLinkTarget("Sub%20Page%20"+strings.Repeat("a", 32)+".md", "Docs "+testNotionID, "Docs", renameMap)
	assert.True(t, ok)
	assert.Equal(t, "Sub%20Page.md", target)

	// A sibling link from the root
	target, ok = c.rewriteLinkTarget("Docs%20"+testNotionID+"/image.png", ".", ".", renameMap)
	assert.True(t, ok)
	assert.Equal(t, "Docs/image.png", target)

	// Anchors survive the rewrite
	target, ok = c.rewriteLinkTarget("Sub%20Page%20"+strings.Repeat("a", 32)+".md#section", "Docs "+testNotionID, "Docs", renameMap)
	assert.True(t, ok)
	assert.Equal(t, "Sub%20Page.md#section", target)
}

func TestRewriteLinkTargetSkips(t *testing.T) {
	c := newTestConversion(t)
	renameMap := map[string]string{"Page.md": "Page.md"}

	_, ok := c.rewriteLinkTarget("https://example.com/page", ".", ".", renameMap)
	assert.False(t, ok)

	_, ok = c.rewriteLinkTarget("http://example.com", ".", ".", renameMap)
	assert.False(t, ok)

	_, ok = c.rewriteLinkTarget("mailto:someone@example.com", ".", ".", renameMap)
	assert.False(t, ok)

	_, ok = c.rewriteLinkTarget("#heading", ".", ".", renameMap)
	assert.False(t, ok)

	// Targets outside the rename map pass through
	_, ok = c.rewriteLinkTarget("Missing.md", ".", ".", renameMap)
	assert.False(t, ok)

	// Unchanged targets report no rewrite
	_, ok = c.rewriteLinkTarget("Page.md", ".", ".", renameMap)
	assert.False(t, ok)
}

func TestRewriteLinks(t *testing.T) {
	c := newTestConversion(t)

	pageOriginal := "Notes " + testNotionID + ".md"
	targetOriginal := "Target " + strings.Repeat("a", 32) + ".md"

	content := "# Notes\n\n" +
		"See [the target](Target%20" + strings.Repeat("a", 32) + ".md) for details.\n" +
		"External [site](https://example.com) stays.\n\n" +
		"[ref]: Target%20" + strings.Repeat("a", 32) + ".md\n"

	writeTestFile(t, c, pageOriginal, content)
	writeTestFile(t, c, targetOriginal, "# Target\n")
	crawlTestTree(t, c)

	assert.NoError(t, c.NormalizePaths())
	assert.NoError(t, c.CommitRenameMap())
	assert.NoError(t, c.RewriteLinks())

	rewritten := readTestFile(t, c, "Notes.md")
	assert.Contains(t, rewritten, "[the target](Target.md)")
	assert.Contains(t, rewritten, "[site](https://example.com)")
	assert.Contains(t, rewritten, "[ref]: Target.md")
	assert.NotContains(t, rewritten, strings.Repeat("a", 32))
	assert.EqualValues(t, 2, c.run.LinksUpdated)
}

func TestRewriteLinksAcrossFolders(t *testing.T) {
	c := newTestConversion(t)

	writeTestFile(t, c, "Docs "+testNotionID+"/Page "+strings.Repeat("a", 32)+".md",
		"[up](../Top%20"+strings.Repeat("b", 32)+".md)\n")
	writeTestFile(t, c, "Top "+strings.Repeat("b", 32)+".md", "# Top\n")
	crawlTestTree(t, c)

	assert.NoError(t, c.NormalizePaths())
	assert.NoError(t, c.CommitRenameMap())
	assert.NoError(t, c.RewriteLinks())

	rewritten := readTestFile(t, c, "Docs/Page.md")
	assert.Contains(t, rewritten, "[up](../Top.md)")
}

func TestRewriteLinksCountsOnlyChangedFiles(t *testing.T) {
	c := newTestConversion(t)

	writeTestFile(t, c, "Plain.md", "No links here.\n")
	crawlTestTree(t, c)

	assert.NoError(t, c.CommitRenameMap())
	assert.NoError(t, c.RewriteLinks())

	assert.Zero(t, c.run.LinksUpdated)
	assert.Equal(t, "No links here.\n", readTestFile(t, c, "Plain.md"))

	var entries []models.Entry
	assert.NoError(t, c.ctx.DB.Where("run_id = ?", c.run.ID).Find(&entries).Error)
	assert.Len(t, entries, 1)
}
