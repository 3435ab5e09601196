package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

func IsDir(path string) bool {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return true
	}

	return false
}

func IsFile(path string) bool {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return true
	}

	return false
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// resolveConflictName returns name, or a " (N)"-suffixed variant if the name
// is already taken in the directory. Data is never silently overwritten.
func resolveConflictName(directoryAbsolutePath, name string) string {
	if !pathExists(filepath.Join(directoryAbsolutePath, name)) {
		return name
	}

	stem, extension := splitExtension(name)

	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, counter, extension)

		if !pathExists(filepath.Join(directoryAbsolutePath, candidate)) {
			log.Printf("Name conflict in \"%s\": using \"%s\" instead of \"%s\"", directoryAbsolutePath, candidate, name)
			return candidate
		}
	}
}
