package main

import (
	"log"
	"os"
	"path"

	"notion-tools/models"
	"notion-tools/utils"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// GenerateBases writes an Obsidian base file next to each database's CSV: a
// table view over the database folder with the frontmatter keys as columns.
// This stage runs after the rename map commit, so folder and CSV positions
// come from final paths.
func (c *Conversion) GenerateBases() error {
	var databases []models.Database
	result := c.ctx.DB.
		Preload("FolderEntry").
		Preload("CompleteCSV").
		Preload("Keys", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("run_id = ?", c.run.ID).
		Order("id").
		Find(&databases)

	if result.Error != nil {
		return result.Error
	}

	if len(databases) == 0 {
		return nil
	}

	renameMap, err := c.loadRenameMap()

	if err != nil {
		return err
	}

	created := int64(0)

	for i := range databases {
		database := &databases[i]
		folderFinalPath, folderFound := renameMap[database.FolderEntry.OriginalPath]

		if !folderFound || database.CompleteCSV == nil {
			log.Printf("Skipping base for database \"%s\": folder or CSV is missing", database.Name)
			continue
		}

		csvFinalPath, csvFound := renameMap[database.CompleteCSV.OriginalPath]

		if !csvFound {
			log.Printf("Skipping base for database \"%s\": CSV is missing from the rename map", database.Name)
			continue
		}

		rendered, err := renderBase(database, folderFinalPath)

		if err != nil {
			return err
		}

		directory := path.Dir(csvFinalPath)

		if directory == "." {
			directory = ""
		}

		baseName := resolveConflictName(c.absolutePath(directory), database.Name+".base")
		err = os.WriteFile(c.absolutePath(joinRelative(directory, baseName)), rendered, 0600)

		if err != nil {
			return err
		}

		created++
	}

	c.run.BasesCreated = created
	utils.ConsoleAndLogPrintf("Created %s", utils.Pluralize("base", created))
	return nil
}

// renderBase builds the base document: filter on the database folder plus the
// md extension, one table view ordered by file name then the observed
// frontmatter keys.
func renderBase(database *models.Database, folderFinalPath string) ([]byte, error) {
	scalar := func(value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	}

	// Filter expressions stay plain scalars so the emitted base reads the way
	// Obsidian writes them.
	filters := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		scalar("and"),
		{Kind: yaml.SequenceNode, Content: []*yaml.Node{
			scalar(`file.inFolder("` + folderFinalPath + `")`),
			scalar(`file.ext == "md"`),
		}},
	}}

	order := &yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{scalar("file.name")}}

	for _, key := range database.Keys {
		order.Content = append(order.Content, scalar(key.Name))
	}

	view := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		scalar("type"), scalar("table"),
		scalar("name"), scalar(database.Name),
		scalar("order"), order,
	}}

	document := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		scalar("filters"), filters,
		scalar("views"), {Kind: yaml.SequenceNode, Content: []*yaml.Node{view}},
	}}

	return yaml.Marshal(document)
}
