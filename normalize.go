package main

import (
	"os"
	"path"
	"sort"
	"strings"

	"notion-tools/models"
	"notion-tools/utils"

	"github.com/schollz/progressbar/v3"
)

// NormalizePaths reshapes the extracted tree into vault-friendly form:
// the Export-<UUID> wrapper is flattened away, index.html artifacts are
// removed, pure-ID intermediate folders are collapsed, and every remaining
// name loses its Notion ID suffix. All moves go through movePath so the
// rename map can be committed afterwards.
func (c *Conversion) NormalizePaths() error {
	err := c.flattenWrapper()

	if err != nil {
		return err
	}

	err = c.removeArtifacts()

	if err != nil {
		return err
	}

	err = c.collapseIDFolders()

	if err != nil {
		return err
	}

	return c.cleanEntryNames()
}

// flattenWrapper hoists the contents of Notion's Export-<UUID> wrapper folder
// to the root, then flattens a remaining sole top-level folder: some exports
// nest the workspace folder inside the wrapper, and some ship it without any
// wrapper at all.
func (c *Conversion) flattenWrapper() error {
	folder, err := c.soleTopLevelFolder()

	if err != nil {
		return err
	}

	if folder != nil && IsExportWrapper(folder.Name) {
		err = c.collapseFolder(folder)

		if err != nil {
			return err
		}

		folder, err = c.soleTopLevelFolder()

		if err != nil {
			return err
		}
	}

	if folder == nil {
		return nil
	}

	return c.collapseFolder(folder)
}

// soleTopLevelFolder returns the root's only child when that child is a
// folder, otherwise nil.
func (c *Conversion) soleTopLevelFolder() (*models.Entry, error) {
	var topLevel []models.Entry
	result := c.ctx.DB.
		Where("run_id = ? AND parent_id IS NULL", c.run.ID).
		Order("id").
		Find(&topLevel)

	if result.Error != nil {
		return nil, result.Error
	}

	if len(topLevel) != 1 || !topLevel[0].IsDir {
		return nil, nil
	}

	return &topLevel[0], nil
}

// collapseFolder moves every child of the folder up one level and removes the
// folder itself. Children are read from disk rather than the catalog so
// ignored files move too. Hoisted names go through conflict resolution and
// catalog children are reparented to the folder's own parent.
func (c *Conversion) collapseFolder(folder *models.Entry) error {
	folderRelativePath := c.currentPath(folder.OriginalPath)
	parentRelativePath := path.Dir(folderRelativePath)

	if parentRelativePath == "." {
		parentRelativePath = ""
	}

	children, err := os.ReadDir(c.absolutePath(folderRelativePath))

	if err != nil {
		return err
	}

	for _, child := range children {
		newName := resolveConflictName(c.absolutePath(parentRelativePath), child.Name())
		err = c.movePath(joinRelative(folderRelativePath, child.Name()), joinRelative(parentRelativePath, newName))

		if err != nil {
			return err
		}
	}

	err = os.Remove(c.absolutePath(folderRelativePath))

	if err != nil {
		return err
	}

	// Hoisted children belong to the folder's parent now
	result := c.ctx.DB.Model(&models.Entry{}).
		Where("run_id = ? AND parent_id = ?", c.run.ID, folder.ID).
		Update("parent_id", folder.ParentID)

	if result.Error != nil {
		return result.Error
	}

	result = c.ctx.DB.Delete(folder)
	return result.Error
}

// removeArtifacts deletes the index.html Notion writes at the export root. It
// is export chrome, not content.
func (c *Conversion) removeArtifacts() error {
	var candidates []models.Entry
	result := c.ctx.DB.
		Where("run_id = ? AND is_dir = ? AND name = ?", c.run.ID, false, "index.html").
		Find(&candidates)

	if result.Error != nil {
		return result.Error
	}

	for i := range candidates {
		if c.currentPath(candidates[i].OriginalPath) != "index.html" {
			continue
		}

		err := os.Remove(c.absolutePath("index.html"))

		if err != nil {
			return err
		}

		result = c.ctx.DB.Delete(&candidates[i])

		if result.Error != nil {
			return result.Error
		}
	}

	return nil
}

// collapseIDFolders removes intermediate folders whose name is nothing but a
// hex ID, hoisting their contents. Collapsing can expose new pure-ID folders
// underneath, so the scan repeats until a pass finds none. Deeper folders
// collapse first so a parent collapse never invalidates a pending child path.
func (c *Conversion) collapseIDFolders() error {
	collapsed := int64(0)

	for {
		var folders []models.Entry
		result := c.ctx.DB.
			Where("run_id = ? AND is_dir = ?", c.run.ID, true).
			Order("id").
			Find(&folders)

		if result.Error != nil {
			return result.Error
		}

		var pureID []models.Entry

		for _, folder := range folders {
			if IsPureIDName(folder.Name) {
				pureID = append(pureID, folder)
			}
		}

		if len(pureID) == 0 {
			break
		}

		sort.SliceStable(pureID, func(i, j int) bool {
			return strings.Count(c.currentPath(pureID[i].OriginalPath), "/") > strings.Count(c.currentPath(pureID[j].OriginalPath), "/")
		})

		for i := range pureID {
			err := c.collapseFolder(&pureID[i])

			if err != nil {
				return err
			}

			collapsed++
		}
	}

	c.run.FoldersCollapsed = collapsed

	if collapsed > 0 {
		utils.ConsoleAndLogPrintf("Collapsed %s", utils.Pluralize("ID folder", collapsed))
	}

	return nil
}

// cleanEntryNames strips the Notion ID suffix from every surviving entry.
// Deepest entries rename first so a parent rename never happens under a child
// still waiting for its own.
func (c *Conversion) cleanEntryNames() error {
	var entries []models.Entry
	result := c.ctx.DB.Where("run_id = ?", c.run.ID).Order("id").Find(&entries)

	if result.Error != nil {
		return result.Error
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return strings.Count(c.currentPath(entries[i].OriginalPath), "/") > strings.Count(c.currentPath(entries[j].OriginalPath), "/")
	})

	utils.ConsoleAndLogPrintf("Cleaning %s", utils.Pluralize("name", int64(len(entries))))
	bar := progressbar.Default(int64(len(entries)))

	filesCleaned := int64(0)
	foldersCleaned := int64(0)

	for i := range entries {
		entry := &entries[i]
		entryRelativePath := c.currentPath(entry.OriginalPath)
		cleanedName := CleanName(path.Base(entryRelativePath))

		if cleanedName == path.Base(entryRelativePath) {
			_ = bar.Add(1)
			continue
		}

		directory := path.Dir(entryRelativePath)

		if directory == "." {
			directory = ""
		}

		newName := resolveConflictName(c.absolutePath(directory), cleanedName)
		err := c.movePath(entryRelativePath, joinRelative(directory, newName))

		if err != nil {
			return err
		}

		entry.Name = newName
		result = c.ctx.DB.Save(entry)

		if result.Error != nil {
			return result.Error
		}

		if entry.IsDir {
			foldersCleaned++
		} else {
			filesCleaned++
		}

		_ = bar.Add(1)
	}

	c.run.FilesCleaned = filesCleaned
	c.run.FoldersCleaned = foldersCleaned
	utils.ConsoleAndLogPrintf("Cleaned %s and %s", utils.Pluralize("file name", filesCleaned), utils.Pluralize("folder name", foldersCleaned))
	return nil
}
