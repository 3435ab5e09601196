package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"notion-tools/crypto"
	"notion-tools/models"
	"notion-tools/utils"

	"github.com/dustin/go-humanize"
	"gorm.io/gorm"
)

type ConvertOptions struct {
	KeepAllCSV      bool
	SkipFrontmatter bool
}

// Conversion carries the state of one pipeline run: the run ledger row, the
// output root, and the trail of physical moves. The trail is composed into
// the rename map once the path normalizer has committed; until then no stage
// may depend on final paths.
type Conversion struct {
	ctx      *Context
	run      *models.Run
	rootPath string
	trail    []renameStep
}

type renameStep struct {
	fromPath string
	toPath   string
}

// Convert runs the whole pipeline against a Notion export archive. Stages are
// strictly sequential; each commits its file-system side effects before the
// next begins. Only archive-level failures abort the run.
func (ctx *Context) Convert(archivePath, outputPath string, options ConvertOptions) error {
	archiveAbsolutePath, err := filepath.Abs(archivePath)

	if err != nil || !IsFile(archiveAbsolutePath) {
		return ErrCouldNotResolvePath
	}

	outputAbsolutePath, err := filepath.Abs(outputPath)

	if err != nil {
		return ErrCouldNotResolvePath
	}

	err = ensureEmptyOutputPath(outputAbsolutePath)

	if err != nil {
		return err
	}

	archiveHash, err := crypto.HashFile(archiveAbsolutePath)

	if err != nil {
		return err
	}

	run := &models.Run{
		ArchivePath:     archiveAbsolutePath,
		ArchiveHash:     archiveHash,
		OutputPath:      outputAbsolutePath,
		KeepAllCSV:      options.KeepAllCSV,
		SkipFrontmatter: options.SkipFrontmatter,
	}

	result := ctx.DB.Create(run)

	if result.Error != nil {
		return result.Error
	}

	conversion := &Conversion{
		ctx:      ctx,
		run:      run,
		rootPath: outputAbsolutePath,
	}

	utils.ConsoleAndLogPrintf("Expanding \"%s\" to \"%s\"", filepath.Base(archiveAbsolutePath), outputAbsolutePath)

	err = conversion.ExpandArchive(archiveAbsolutePath)

	if err != nil {
		return err
	}

	err = conversion.Crawl()

	if err != nil {
		return err
	}

	err = conversion.ResolveDatabases()

	if err != nil {
		return err
	}

	if !options.SkipFrontmatter {
		err = conversion.SynthesizeFrontmatter()

		if err != nil {
			return err
		}
	}

	err = conversion.NormalizePaths()

	if err != nil {
		return err
	}

	err = conversion.CommitRenameMap()

	if err != nil {
		return err
	}

	err = conversion.RewriteLinks()

	if err != nil {
		return err
	}

	if !options.SkipFrontmatter {
		err = conversion.GenerateBases()

		if err != nil {
			return err
		}
	}

	result = ctx.DB.Save(run)

	if result.Error != nil {
		return result.Error
	}

	return conversion.printSummary()
}

// The output directory is created if absent and must not already contain
// unrelated content. We never silently overwrite.
func ensureEmptyOutputPath(outputAbsolutePath string) error {
	if IsFile(outputAbsolutePath) {
		return ErrOutputPathNotEmpty
	}

	if !IsDir(outputAbsolutePath) {
		return os.MkdirAll(outputAbsolutePath, 0700)
	}

	existing, err := os.ReadDir(outputAbsolutePath)

	if err != nil {
		return err
	}

	if len(existing) > 0 {
		return ErrOutputPathNotEmpty
	}

	return nil
}

func (c *Conversion) absolutePath(relativePath string) string {
	return filepath.Join(c.rootPath, filepath.FromSlash(relativePath))
}

// movePath renames a path on disk and records the step so the rename map can
// later be composed from the trail.
func (c *Conversion) movePath(fromRelativePath, toRelativePath string) error {
	err := os.Rename(c.absolutePath(fromRelativePath), c.absolutePath(toRelativePath))

	if err != nil {
		return err
	}

	c.trail = append(c.trail, renameStep{fromPath: fromRelativePath, toPath: toRelativePath})
	return nil
}

// currentPath applies the trail recorded so far to an original path.
func (c *Conversion) currentPath(originalPath string) string {
	current := originalPath

	for _, step := range c.trail {
		if current == step.fromPath {
			current = step.toPath
		} else if strings.HasPrefix(current, step.fromPath+"/") {
			current = step.toPath + current[len(step.fromPath):]
		}
	}

	return current
}

// CommitRenameMap writes the finalized original-to-final path mapping for
// every surviving entry, plus alias rows pointing deleted filtered CSVs at
// their surviving complete CSV. The map must be injective over surviving
// entries; from here on it is consumed read-only.
func (c *Conversion) CommitRenameMap() error {
	var entries []models.Entry
	result := c.ctx.DB.Where("run_id = ?", c.run.ID).Find(&entries)

	if result.Error != nil {
		return result.Error
	}

	renames := make([]models.Rename, 0, len(entries))
	claimed := make(map[string]string, len(entries))

	for _, entry := range entries {
		finalPath := c.currentPath(entry.OriginalPath)

		if previous, taken := claimed[finalPath]; taken {
			return fmt.Errorf("rename map is not injective: \"%s\" and \"%s\" both map to \"%s\"", previous, entry.OriginalPath, finalPath)
		}

		claimed[finalPath] = entry.OriginalPath

		renames = append(renames, models.Rename{
			RunID:        c.run.ID,
			OriginalPath: entry.OriginalPath,
			FinalPath:    finalPath,
		})
	}

	var databases []models.Database
	result = c.ctx.DB.
		Preload("CompleteCSV").
		Preload("FilteredCSV", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("run_id = ?", c.run.ID).
		Find(&databases)

	if result.Error != nil {
		return result.Error
	}

	for _, database := range databases {
		if database.FilteredCSV == nil || database.CompleteCSV == nil || !database.FilteredCSV.DeletedAt.Valid {
			continue
		}

		renames = append(renames, models.Rename{
			RunID:        c.run.ID,
			OriginalPath: database.FilteredCSV.OriginalPath,
			FinalPath:    c.currentPath(database.CompleteCSV.OriginalPath),
		})
	}

	if len(renames) == 0 {
		return nil
	}

	result = c.ctx.DB.CreateInBatches(renames, int(c.ctx.Config.BatchSize))
	return result.Error
}

func (c *Conversion) loadRenameMap() (map[string]string, error) {
	var renames []models.Rename
	result := c.ctx.DB.Where("run_id = ?", c.run.ID).Find(&renames)

	if result.Error != nil {
		return nil, result.Error
	}

	renameMap := make(map[string]string, len(renames))

	for _, rename := range renames {
		renameMap[rename.OriginalPath] = rename.FinalPath
	}

	return renameMap, nil
}

func (c *Conversion) printSummary() error {
	var markdownCount, csvCount, baseCount, otherCount, folderCount int64

	err := filepath.WalkDir(c.rootPath, func(thisPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if thisPath == c.rootPath {
			return nil
		}

		if d.IsDir() {
			folderCount++
			return nil
		}

		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".md":
			markdownCount++
		case ".csv":
			csvCount++
		case ".base":
			baseCount++
		default:
			otherCount++
		}

		return nil
	})

	if err != nil {
		return err
	}

	fmt.Println()
	utils.PrintFormattedTitle("Conversion complete")
	utils.ConsoleAndLogPrintf("Output:             %s", c.rootPath)
	utils.ConsoleAndLogPrintf("Markdown files:     %s", humanize.Comma(markdownCount))
	utils.ConsoleAndLogPrintf("CSV files:          %s", humanize.Comma(csvCount))
	utils.ConsoleAndLogPrintf("Base files:         %s", humanize.Comma(baseCount))
	utils.ConsoleAndLogPrintf("Other files:        %s", humanize.Comma(otherCount))
	utils.ConsoleAndLogPrintf("Folders:            %s", humanize.Comma(folderCount))
	utils.ConsoleAndLogPrintf("ID folders removed: %s", humanize.Comma(c.run.FoldersCollapsed))
	utils.ConsoleAndLogPrintf("Names cleaned:      %s, %s", utils.Pluralize("file", c.run.FilesCleaned), utils.Pluralize("folder", c.run.FoldersCleaned))
	utils.ConsoleAndLogPrintf("CSVs deduplicated:  %s", humanize.Comma(c.run.CSVsDeduped))
	utils.ConsoleAndLogPrintf("Frontmatter added:  %s", humanize.Comma(c.run.FrontmatterAdded))
	utils.ConsoleAndLogPrintf("Links updated:      %s", humanize.Comma(c.run.LinksUpdated))
	utils.ConsoleAndLogPrintf("Bases created:      %s", humanize.Comma(c.run.BasesCreated))
	return nil
}
