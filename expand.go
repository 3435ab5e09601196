package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"notion-tools/utils"
)

// ExpandArchive unpacks the export into the output root. Notion wraps large
// exports in a zip-of-zips with Part-N.zip children; when the expanded root
// holds nothing but archives they are expanded in place and deleted, repeating
// until real content appears. Zip files attached as page content sit beside
// other files and are left untouched. Expansion is all-or-nothing; a corrupt
// archive aborts the run with the offending path.
func (c *Conversion) ExpandArchive(archiveAbsolutePath string) error {
	err := extractZip(archiveAbsolutePath, c.rootPath)

	if err != nil {
		return err
	}

	for {
		partArchives, err := findPartArchives(c.rootPath)

		if err != nil {
			return err
		}

		if len(partArchives) == 0 {
			return nil
		}

		utils.ConsoleAndLogPrintf("Expanding %s", utils.Pluralize("nested archive", int64(len(partArchives))))

		for _, partArchivePath := range partArchives {
			err = extractZip(partArchivePath, c.rootPath)

			if err != nil {
				return err
			}

			err = os.Remove(partArchivePath)

			if err != nil {
				return err
			}
		}
	}
}

// findPartArchives returns the root's archives when the root holds nothing
// else. A root mixing archives with ordinary content is already expanded
// content, and its zips are attachments.
func findPartArchives(rootPath string) ([]string, error) {
	children, err := os.ReadDir(rootPath)

	if err != nil {
		return nil, err
	}

	var archives []string

	for _, child := range children {
		if child.IsDir() || !strings.EqualFold(filepath.Ext(child.Name()), ".zip") {
			return nil, nil
		}

		archives = append(archives, filepath.Join(rootPath, child.Name()))
	}

	// Part-1.zip, Part-2.zip, ... in order
	sort.Strings(archives)
	return archives, nil
}

func extractZip(archivePath, destinationPath string) error {
	reader, err := zip.OpenReader(archivePath)

	if err != nil {
		return fmt.Errorf("%w \"%s\": %v", ErrCorruptArchive, archivePath, err)
	}

	defer reader.Close()

	for _, entry := range reader.File {
		err = extractZipEntry(entry, destinationPath)

		if err != nil {
			return fmt.Errorf("%w \"%s\": %v", ErrCorruptArchive, archivePath, err)
		}
	}

	return nil
}

func extractZipEntry(entry *zip.File, destinationPath string) error {
	entryPath := filepath.Join(destinationPath, filepath.FromSlash(entry.Name))

	// Zip-slip guard: entries must stay inside the destination
	if !strings.HasPrefix(entryPath, filepath.Clean(destinationPath)+string(os.PathSeparator)) {
		return fmt.Errorf("entry \"%s\" escapes the destination", entry.Name)
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(entryPath, 0700)
	}

	err := os.MkdirAll(filepath.Dir(entryPath), 0700)

	if err != nil {
		return err
	}

	source, err := entry.Open()

	if err != nil {
		return err
	}

	defer source.Close()

	destination, err := os.OpenFile(entryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)

	if err != nil {
		return err
	}

	_, err = io.Copy(destination, source)

	if err != nil {
		_ = destination.Close()
		return err
	}

	return destination.Close()
}
