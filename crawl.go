package main

import (
	"io/fs"
	"path/filepath"
	"strings"

	"notion-tools/models"
	"notion-tools/utils"

	"gorm.io/gorm"
)

// Crawl records every file and folder of the expanded tree as a catalog
// entry. The original paths captured here form the domain of the rename map;
// every later stage works against this inventory rather than re-walking the
// disk.
func (c *Conversion) Crawl() error {
	parents := map[string]*models.Entry{}
	folderCount := int64(0)
	fileCount := int64(0)

	err := c.ctx.DB.Transaction(func(tx *gorm.DB) error {
		return filepath.WalkDir(c.rootPath, func(thisPath string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if thisPath == c.rootPath {
				return nil
			}

			relativePath, err := filepath.Rel(c.rootPath, thisPath)

			if err != nil {
				return err
			}

			relativePath = filepath.ToSlash(relativePath)

			var parentID *uint

			if parent := parents[filepath.Dir(thisPath)]; parent != nil {
				parentID = &parent.ID
			}

			level := uint(strings.Count(relativePath, "/") + 1)

			if d.IsDir() {
				if utils.IsInArray(d.Name(), c.ctx.Config.FolderNamesToIgnore) {
					return filepath.SkipDir
				}

				entry := &models.Entry{
					RunID:        c.run.ID,
					ParentID:     parentID,
					OriginalPath: relativePath,
					Name:         d.Name(),
					IsDir:        true,
					Level:        level,
				}

				result := tx.Create(entry)

				if result.Error != nil {
					return result.Error
				}

				parents[thisPath] = entry
				folderCount++
				return nil
			}

			if utils.IsInArray(d.Name(), c.ctx.Config.FileNamesToIgnore) {
				return nil
			}

			result := tx.Create(&models.Entry{
				RunID:        c.run.ID,
				ParentID:     parentID,
				OriginalPath: relativePath,
				Name:         d.Name(),
				IsDir:        false,
				Level:        level,
			})

			if result.Error != nil {
				return result.Error
			}

			fileCount++
			return nil
		})
	})

	if err == nil {
		utils.ConsoleAndLogPrintf("Found %s and %s", utils.Pluralize("folder", folderCount), utils.Pluralize("file", fileCount))
	}

	return err
}
