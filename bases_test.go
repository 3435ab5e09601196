package main

import (
	"strings"
	"testing"

	"notion-tools/models"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

type baseDocument struct {
	Filters struct {
		And []string `yaml:"and"`
	} `yaml:"filters"`
	Views []struct {
		Type  string   `yaml:"type"`
		Name  string   `yaml:"name"`
		Order []string `yaml:"order"`
	} `yaml:"views"`
}

func TestRenderBase(t *testing.T) {
	database := &models.Database{
		Name: "Tasks",
		Keys: []models.DatabaseKey{
			{Position: 0, Name: "Status"},
			{Position: 1, Name: "Due Date"},
		},
	}

	rendered, err := renderBase(database, "Projects/Tasks")
	assert.NoError(t, err)

	var document baseDocument
	assert.NoError(t, yaml.Unmarshal(rendered, &document))

	assert.Equal(t, []string{`file.inFolder("Projects/Tasks")`, `file.ext == "md"`}, document.Filters.And)

	assert.Len(t, document.Views, 1)
	assert.Equal(t, "table", document.Views[0].Type)
	assert.Equal(t, "Tasks", document.Views[0].Name)
	assert.Equal(t, []string{"file.name", "Status", "Due Date"}, document.Views[0].Order)
}

func TestGenerateBases(t *testing.T) {
	c := newTestConversion(t)

	writeTestFile(t, c, "Tasks "+testNotionID+"/Task One "+strings.Repeat("a", 32)+".md", "# Task One\n\nStatus: Done\n")
	writeTestFile(t, c, "Tasks "+testNotionID+".csv", "Name,Status\nTask One,Done\n")
	crawlTestTree(t, c)

	assert.NoError(t, c.ResolveDatabases())
	assert.NoError(t, c.SynthesizeFrontmatter())
	assert.NoError(t, c.NormalizePaths())
	assert.NoError(t, c.CommitRenameMap())
	assert.NoError(t, c.GenerateBases())

	assert.EqualValues(t, 1, c.run.BasesCreated)
	assert.True(t, IsFile(c.absolutePath("Tasks.base")))

	var document baseDocument
	assert.NoError(t, yaml.Unmarshal([]byte(readTestFile(t, c, "Tasks.base")), &document))

	assert.Equal(t, []string{`file.inFolder("Tasks")`, `file.ext == "md"`}, document.Filters.And)
	assert.Len(t, document.Views, 1)
	assert.Equal(t, "Tasks", document.Views[0].Name)
	assert.Equal(t, []string{"file.name", "Status"}, document.Views[0].Order)
}

func TestGenerateBasesSkipsWhenFolderIsMissing(t *testing.T) {
	c := newTestConversion(t)

	writeTestFile(t, c, "Tasks "+testNotionID+"/Task One.md", "# Task One\n")
	writeTestFile(t, c, "Tasks "+testNotionID+".csv", "Name,Status\nTask One,Done\n")
	crawlTestTree(t, c)

	assert.NoError(t, c.ResolveDatabases())

	// No rename map committed: nothing resolvable, nothing written
	assert.NoError(t, c.GenerateBases())
	assert.Zero(t, c.run.BasesCreated)
}
