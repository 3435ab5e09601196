package main

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"notion-tools/models"
	"notion-tools/utils"

	"github.com/schollz/progressbar/v3"
	"gorm.io/gorm"
)

var (
	inlineLinkPattern    = regexp.MustCompile(`(\[[^\]]*\]\()([^)]+)(\))`)
	referenceLinkPattern = regexp.MustCompile(`(?m)^(\[[^\]]+\]:[ \t]+)(\S+)`)
)

// Link targets with these prefixes are never rewritten.
var skipTargetPrefixes = []string{"http://", "https://", "mailto:", "#"}

// RewriteLinks updates every Markdown link whose target resolves to a moved
// entry. Markdown files were written before any renaming, so targets resolve
// against each file's original directory and are re-emitted relative to its
// final one. External URLs and pure anchors pass through untouched.
func (c *Conversion) RewriteLinks() error {
	renameMap, err := c.loadRenameMap()

	if err != nil {
		return err
	}

	var total int64
	result := c.ctx.DB.Model(&models.Entry{}).
		Where("run_id = ? AND is_dir = ? AND name LIKE ?", c.run.ID, false, "%.md").
		Count(&total)

	if result.Error != nil {
		return result.Error
	}

	if total == 0 {
		return nil
	}

	utils.ConsoleAndLogPrintf("Rewriting links in %s", utils.Pluralize("file", total))
	bar := progressbar.Default(total)

	updated := int64(0)

	var entries []models.Entry
	result = c.ctx.DB.
		Where("run_id = ? AND is_dir = ? AND name LIKE ?", c.run.ID, false, "%.md").
		FindInBatches(&entries, int(c.ctx.Config.BatchSize), func(tx *gorm.DB, batch int) error {
			for i := range entries {
				changed, err := c.rewriteFileLinks(&entries[i], renameMap)

				if err != nil {
					return err
				}

				updated += changed
				_ = bar.Add(1)
			}

			return nil
		})

	if result.Error != nil {
		return result.Error
	}

	c.run.LinksUpdated = updated
	utils.ConsoleAndLogPrintf("Updated %s", utils.Pluralize("link", updated))
	return nil
}

func (c *Conversion) rewriteFileLinks(entry *models.Entry, renameMap map[string]string) (int64, error) {
	finalPath, found := renameMap[entry.OriginalPath]

	if !found {
		return 0, nil
	}

	absolutePath := c.absolutePath(finalPath)
	data, err := os.ReadFile(absolutePath)

	if err != nil {
		return 0, err
	}

	originalDirectory := path.Dir(entry.OriginalPath)
	finalDirectory := path.Dir(finalPath)
	changed := int64(0)

	rewrite := func(target string) string {
		newTarget, ok := c.rewriteLinkTarget(target, originalDirectory, finalDirectory, renameMap)

		if ok {
			changed++
			return newTarget
		}

		return target
	}

	content := inlineLinkPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := inlineLinkPattern.FindStringSubmatch(match)
		return parts[1] + rewrite(parts[2]) + parts[3]
	})

	content = referenceLinkPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := referenceLinkPattern.FindStringSubmatch(match)
		return parts[1] + rewrite(parts[2])
	})

	if changed == 0 {
		return 0, nil
	}

	return changed, os.WriteFile(absolutePath, []byte(content), 0600)
}

// rewriteLinkTarget maps one link target through the rename map. The target is
// resolved against the file's original directory, looked up, then re-expressed
// relative to the file's final directory with each segment percent-encoded.
func (c *Conversion) rewriteLinkTarget(target, originalDirectory, finalDirectory string, renameMap map[string]string) (string, bool) {
	for _, prefix := range skipTargetPrefixes {
		if strings.HasPrefix(target, prefix) {
			return "", false
		}
	}

	targetPath, anchor, hasAnchor := strings.Cut(target, "#")
	decoded, err := url.PathUnescape(targetPath)

	if err != nil {
		return "", false
	}

	resolved := path.Join(originalDirectory, decoded)
	mapped, found := renameMap[resolved]

	if !found {
		return "", false
	}

	relative, err := filepath.Rel(filepath.FromSlash(finalDirectory), filepath.FromSlash(mapped))

	if err != nil {
		return "", false
	}

	newTarget := encodePathSegments(filepath.ToSlash(relative))

	if hasAnchor {
		newTarget += "#" + anchor
	}

	if newTarget == target {
		return "", false
	}

	return newTarget, true
}

func encodePathSegments(slashPath string) string {
	segments := strings.Split(slashPath, "/")

	for i, segment := range segments {
		if segment == ".." || segment == "." {
			continue
		}

		segments[i] = url.PathEscape(segment)
	}

	return strings.Join(segments, "/")
}
