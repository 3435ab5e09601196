package main

import (
	"regexp"
	"strings"
)

// Notion appends a 32-char hex ID to every exported file and folder name,
// e.g. "Home e82f1f46f47e4859aef48d9da4875832.md". Some intermediate folders
// are nothing but an ID, and the whole export sits in an Export-<UUID>
// wrapper folder.
var (
	notionIDSuffix = regexp.MustCompile(`(?i) ?[0-9a-f]{32}$`)
	pureHexName    = regexp.MustCompile(`(?i)^[0-9a-f]{32}$`)
	exportWrapper  = regexp.MustCompile(`(?i)^Export-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// StripNotionID removes trailing hex ID tokens from a name, preserving the
// file extension. A name that would clean to nothing is returned unchanged.
func StripNotionID(name string) string {
	stem, extension := splitExtension(name)
	cleaned := stripIDFromStem(stem)

	if cleaned == "" {
		return name
	}

	return cleaned + extension
}

func stripIDFromStem(stem string) string {
	for {
		next := strings.TrimSpace(notionIDSuffix.ReplaceAllString(stem, ""))

		if next == stem {
			return stem
		}

		stem = next
	}
}

// CleanName strips the Notion ID and normalises leftover URL encoding.
func CleanName(name string) string {
	cleaned := strings.ReplaceAll(StripNotionID(name), "%20", " ")
	return strings.TrimSpace(cleaned)
}

// EmbeddedID returns the lower-cased hex ID token embedded in a name stem, or
// an empty string if there is none.
func EmbeddedID(name string) string {
	stem, _ := splitExtension(name)
	return embeddedIDFromStem(stem)
}

func embeddedIDFromStem(stem string) string {
	match := notionIDSuffix.FindString(stem)

	if match == "" {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(match))
}

// IsPureIDName reports whether a name is only a hex ID with no readable text.
func IsPureIDName(name string) bool {
	return pureHexName.MatchString(name)
}

// IsExportWrapper reports whether a folder name is Notion's top-level
// Export-<UUID> wrapper.
func IsExportWrapper(name string) bool {
	return exportWrapper.MatchString(name)
}

func splitExtension(name string) (string, string) {
	dot := strings.LastIndex(name, ".")

	if dot <= 0 {
		return name, ""
	}

	return name[:dot], name[dot:]
}
