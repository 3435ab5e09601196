package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"notion-tools/models"
	"notion-tools/utils"
)

// csvPair groups the two CSV files Notion exports for one database:
// "<base>_all.csv" holds every row, "<base>.csv" only the rows of the
// exported view. The base still carries the Notion ID at this stage.
type csvPair struct {
	base  string
	all   *models.Entry
	plain *models.Entry
}

// ResolveDatabases identifies which CSVs are Notion database tables,
// associates each with its sibling content folder, records the schema, and
// deduplicates filtered/complete pairs. This stage runs against original
// paths: folder association relies on the embedded IDs that the normalizer
// strips later.
func (c *Conversion) ResolveDatabases() error {
	var csvEntries []models.Entry
	result := c.ctx.DB.
		Where("run_id = ? AND is_dir = ? AND name LIKE ?", c.run.ID, false, "%.csv").
		Order("id").
		Find(&csvEntries)

	if result.Error != nil {
		return result.Error
	}

	if len(csvEntries) == 0 {
		return nil
	}

	databaseCount := int64(0)

	for _, pair := range groupCSVPairs(csvEntries) {
		database, err := c.resolveDatabase(pair)

		if err != nil {
			return err
		}

		if database != nil {
			databaseCount++
		}
	}

	utils.ConsoleAndLogPrintf("Resolved %s", utils.Pluralize("database", databaseCount))
	return nil
}

func groupCSVPairs(csvEntries []models.Entry) []*csvPair {
	var pairs []*csvPair
	index := map[string]*csvPair{}

	for i := range csvEntries {
		entry := &csvEntries[i]
		stem, _ := splitExtension(entry.Name)
		base := strings.TrimSuffix(stem, "_all")

		key := "\x00" + base

		if entry.ParentID != nil {
			key = fmt.Sprint(*entry.ParentID) + key
		}

		pair := index[key]

		if pair == nil {
			pair = &csvPair{base: base}
			index[key] = pair
			pairs = append(pairs, pair)
		}

		if strings.HasSuffix(stem, "_all") {
			pair.all = entry
		} else {
			pair.plain = entry
		}
	}

	return pairs
}

func (c *Conversion) resolveDatabase(pair *csvPair) (*models.Database, error) {
	schemaSource := pair.all

	if schemaSource == nil {
		schemaSource = pair.plain
	}

	columns, err := readCSVHeader(c.absolutePath(schemaSource.OriginalPath))

	if err != nil {
		log.Printf("Skipping unreadable CSV \"%s\": %v", schemaSource.OriginalPath, err)
	}

	// A CSV is a database table when its first header column is "Name".
	// Anything else (Stripe exports and the like) is ordinary content.
	isDatabase := err == nil && len(columns) > 0 && strings.EqualFold(strings.TrimSpace(columns[0]), "Name")

	// The _all duplicate is dropped whether or not the CSV qualifies as a
	// database, unless the caller asked to keep both variants.
	complete, filtered := pair.all, pair.plain

	if pair.all == nil {
		complete, filtered = pair.plain, nil
	}

	if !c.run.KeepAllCSV && pair.all != nil {
		err = c.deduplicateCSVPair(pair)

		if err != nil {
			return nil, err
		}
	}

	if !isDatabase {
		return nil, nil
	}

	folder, err := c.findDatabaseFolder(schemaSource, pair.base)

	if err != nil {
		return nil, err
	}

	if folder == nil {
		log.Printf("No content folder matches database CSV \"%s\"", schemaSource.OriginalPath)
		return nil, nil
	}

	database := &models.Database{
		RunID:         c.run.ID,
		Name:          cleanStem(pair.base),
		FolderEntryID: folder.ID,
		CompleteCSVID: &complete.ID,
	}

	if filtered != nil {
		database.FilteredCSVID = &filtered.ID
	}

	for position, column := range columns {
		trimmed := strings.TrimSpace(column)

		if trimmed == "" {
			continue
		}

		database.Columns = append(database.Columns, models.DatabaseColumn{
			Position: position,
			Name:     trimmed,
		})
	}

	result := c.ctx.DB.Create(database)
	return database, result.Error
}

// deduplicateCSVPair deletes the filtered CSV and renames the complete one to
// take its place, dropping the _all suffix.
func (c *Conversion) deduplicateCSVPair(pair *csvPair) error {
	if pair.plain != nil {
		err := os.Remove(c.absolutePath(pair.plain.OriginalPath))

		if err != nil {
			return err
		}

		result := c.ctx.DB.Delete(pair.plain)

		if result.Error != nil {
			return result.Error
		}

		c.run.CSVsDeduped++
	}

	directory := path.Dir(pair.all.OriginalPath)

	if directory == "." {
		directory = ""
	}

	newName := resolveConflictName(c.absolutePath(directory), pair.base+".csv")
	err := c.movePath(pair.all.OriginalPath, joinRelative(directory, newName))

	if err != nil {
		return err
	}

	pair.all.Name = newName
	result := c.ctx.DB.Save(pair.all)
	return result.Error
}

// findDatabaseFolder locates the sibling folder holding the database's entry
// files. The CSV and the folder share the same embedded Notion ID; a cleaned
// stem comparison covers exports where the CSV name carries no ID.
func (c *Conversion) findDatabaseFolder(csvEntry *models.Entry, base string) (*models.Entry, error) {
	query := c.ctx.DB.Where("run_id = ? AND is_dir = ?", c.run.ID, true)

	if csvEntry.ParentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *csvEntry.ParentID)
	}

	var siblings []models.Entry
	result := query.Order("id").Find(&siblings)

	if result.Error != nil {
		return nil, result.Error
	}

	if embeddedID := embeddedIDFromStem(base); embeddedID != "" {
		for i := range siblings {
			if EmbeddedID(siblings[i].Name) == embeddedID {
				return &siblings[i], nil
			}
		}
	}

	cleanedBase := stripIDFromStem(base)

	for i := range siblings {
		if stripIDFromStem(siblings[i].Name) == cleanedBase {
			return &siblings[i], nil
		}
	}

	return nil, nil
}

func readCSVHeader(csvAbsolutePath string) ([]string, error) {
	file, err := os.Open(filepath.Clean(csvAbsolutePath))

	if err != nil {
		return nil, err
	}

	defer file.Close()

	reader := bufio.NewReader(file)

	// Notion CSV exports start with a UTF-8 byte-order mark
	if bom, err := reader.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = reader.Discard(3)
	}

	records := csv.NewReader(reader)
	records.FieldsPerRecord = -1

	return records.Read()
}

func cleanStem(stem string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(stripIDFromStem(stem), "%20", " "))

	if cleaned == "" {
		return stem
	}

	return cleaned
}

func joinRelative(directory, name string) string {
	if directory == "" || directory == "." {
		return name
	}

	return directory + "/" + name
}
