package main

import (
	"bytes"
	"log"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"

	"notion-tools/models"
	"notion-tools/utils"

	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// propertyBlock is the structured form of the "Key: Value" lines Notion
// writes at the top of database entry files. Keys are normalized and unique;
// their order matches the original property lines.
type propertyBlock struct {
	Title  string
	Keys   []string
	Values map[string]string
}

// SynthesizeFrontmatter rewrites every Markdown file directly inside a
// resolved database folder so its property block becomes YAML frontmatter.
// This stage runs on original paths: the folder association from the schema
// resolver was computed against original IDs, before any renaming.
func (c *Conversion) SynthesizeFrontmatter() error {
	var databases []models.Database
	result := c.ctx.DB.Where("run_id = ?", c.run.ID).Order("id").Find(&databases)

	if result.Error != nil {
		return result.Error
	}

	if len(databases) == 0 {
		return nil
	}

	type databaseFiles struct {
		database *models.Database
		files    []models.Entry
	}

	var work []databaseFiles
	total := int64(0)

	for i := range databases {
		var files []models.Entry
		result = c.ctx.DB.
			Where("run_id = ? AND parent_id = ? AND is_dir = ? AND name LIKE ?", c.run.ID, databases[i].FolderEntryID, false, "%.md").
			Order("id").
			Find(&files)

		if result.Error != nil {
			return result.Error
		}

		work = append(work, databaseFiles{database: &databases[i], files: files})
		total += int64(len(files))
	}

	if total == 0 {
		return nil
	}

	utils.ConsoleAndLogPrintf("Adding frontmatter to %s in %s", utils.Pluralize("file", total), utils.Pluralize("database", int64(len(databases))))
	bar := progressbar.Default(total)

	converted := int64(0)

	for _, batch := range work {
		seen := map[string]bool{}
		var keys []string

		for _, file := range batch.files {
			added, fileKeys, err := c.synthesizeFile(&file)

			if err != nil {
				log.Printf("Skipping \"%s\": %v", file.OriginalPath, err)
			} else if added {
				converted++

				for _, key := range fileKeys {
					if !seen[key] {
						seen[key] = true
						keys = append(keys, key)
					}
				}
			}

			_ = bar.Add(1)
		}

		if len(keys) == 0 {
			continue
		}

		databaseKeys := make([]models.DatabaseKey, len(keys))

		for position, key := range keys {
			databaseKeys[position] = models.DatabaseKey{
				DatabaseID: batch.database.ID,
				Position:   position,
				Name:       key,
			}
		}

		result = c.ctx.DB.CreateInBatches(databaseKeys, int(c.ctx.Config.BatchSize))

		if result.Error != nil {
			return result.Error
		}
	}

	c.run.FrontmatterAdded = converted
	return nil
}

func (c *Conversion) synthesizeFile(file *models.Entry) (bool, []string, error) {
	absolutePath := c.absolutePath(file.OriginalPath)
	data, err := os.ReadFile(absolutePath)

	if err != nil {
		return false, nil, err
	}

	block, body := parsePropertyBlock(string(data))

	if len(block.Keys) == 0 {
		return false, nil, nil
	}

	rendered, err := renderFrontmatter(block)

	if err != nil {
		return false, nil, err
	}

	err = os.WriteFile(absolutePath, append(rendered, body...), 0600)

	if err != nil {
		return false, nil, err
	}

	return true, block.Keys, nil
}

// Parser states: the scanner stays in the header while consecutive lines
// match "Key: Value" and drops to the body at the first line that does not,
// blank lines and headings included.
const (
	inHeader = iota
	inBody
)

// parsePropertyBlock splits a database entry file into its leading property
// block and the residual body. An optional "# Title" heading (with blank
// lines after it) precedes the properties; the title becomes the frontmatter
// title field.
func parsePropertyBlock(text string) (*propertyBlock, string) {
	block := &propertyBlock{Values: map[string]string{}}
	lines := strings.Split(text, "\n")
	index := 0

	if index < len(lines) && strings.HasPrefix(lines[index], "# ") {
		block.Title = strings.TrimSpace(lines[index][2:])
		index++

		for index < len(lines) && strings.TrimSpace(lines[index]) == "" {
			index++
		}
	}

	state := inHeader
	bodyStart := len(lines)

	for index < len(lines) && state == inHeader {
		key, value, ok := matchPropertyLine(lines[index])

		if !ok {
			state = inBody
			bodyStart = index
			break
		}

		normalizedKey := stripDecorativeGlyphs(key)

		if normalizedKey == "" {
			log.Printf("Dropping property %q: key is empty once decorative glyphs are removed", key)
		} else if _, exists := block.Values[normalizedKey]; exists {
			log.Printf("Duplicate frontmatter key %q: keeping the first occurrence", normalizedKey)
		} else {
			block.Keys = append(block.Keys, normalizedKey)
			block.Values[normalizedKey] = normalizeDateValue(value)
		}

		index++
	}

	body := strings.Join(lines[bodyStart:], "\n")
	return block, strings.TrimLeft(body, "\n")
}

// matchPropertyLine matches "Key: Value": a non-empty key, a colon-space
// separator, a possibly-empty value. Headings never match.
func matchPropertyLine(line string) (string, string, bool) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}

	key, value, found := strings.Cut(trimmed, ": ")

	if !found {
		if !strings.HasSuffix(trimmed, ":") {
			return "", "", false
		}

		key, value = strings.TrimSuffix(trimmed, ":"), ""
	}

	key = strings.TrimSpace(key)

	if key == "" {
		return "", "", false
	}

	return key, strings.TrimSpace(value), true
}

// stripDecorativeGlyphs removes emoji and other decorative symbols Notion
// users put in property names, then collapses the leftover whitespace.
// Values are never touched.
func stripDecorativeGlyphs(s string) string {
	var builder strings.Builder

	for _, r := range s {
		switch {
		case unicode.In(r, unicode.So, unicode.Sk):
		case r >= 0x1F000 && r <= 0x1FFFF: // supplemental symbols and emoticons
		case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		case r == 0x200D: // zero-width joiner
		default:
			builder.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(builder.String()), " ")
}

// Long-form date layouts Notion writes into property values.
var notionDateLayouts = []struct {
	layout  string
	hasTime bool
}{
	{"January 2, 2006 3:04 PM", true},
	{"January 2, 2006 3:04:05 PM", true},
	{"January 2, 2006", false},
	{"Jan 2, 2006 3:04 PM", true},
	{"Jan 2, 2006", false},
}

// normalizeDateValue rewrites a recognized long-form date into ISO 8601.
// Unrecognized values pass through verbatim.
func normalizeDateValue(value string) string {
	trimmed := strings.TrimSpace(value)

	for _, format := range notionDateLayouts {
		parsed, err := time.Parse(format.layout, trimmed)

		if err != nil {
			continue
		}

		if format.hasTime {
			return parsed.Format("2006-01-02T15:04:05")
		}

		return parsed.Format("2006-01-02")
	}

	return value
}

var isoDateValue = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2})?$`)

// renderFrontmatter emits the delimited YAML block. Key order is preserved
// via an explicit mapping node; dates stay plain so Obsidian treats them as
// dates, everything else is double-quoted.
func renderFrontmatter(block *propertyBlock) ([]byte, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}

	appendPair := func(key, value string, style yaml.Style) {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value, Style: style},
		)
	}

	if block.Title != "" {
		appendPair("title", block.Title, yaml.DoubleQuotedStyle)
	}

	for _, key := range block.Keys {
		value := block.Values[key]
		style := yaml.DoubleQuotedStyle

		if isoDateValue.MatchString(value) {
			style = 0
		}

		appendPair(key, value, style)
	}

	encoded, err := yaml.Marshal(mapping)

	if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	buffer.WriteString("---\n")
	buffer.Write(encoded)
	buffer.WriteString("---\n\n")
	return buffer.Bytes(), nil
}
