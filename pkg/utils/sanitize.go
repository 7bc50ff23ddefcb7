package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

// --- Filename Sanitization ---
var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`) // Characters invalid in Windows/Unix filenames
var consecutiveUnderscores = regexp.MustCompile(`_+`)                  // Pattern to replace multiple underscores with one
var trailingExtension = regexp.MustCompile(`\.[^/.]+$`)                // Last extension of a base name
const maxFilenameLength = 100                                          // Max length for sanitized filenames

// MarkdownExtensions lists the upload extensions accepted by the navigator.
var MarkdownExtensions = []string{".md", ".markdown"}

// SanitizeFilename cleans a string to be safe for use as a filename component
func SanitizeFilename(name string) string {
	sanitized := invalidFilenameChars.ReplaceAllString(name, "_")
	sanitized = consecutiveUnderscores.ReplaceAllString(sanitized, "_")
	sanitized = strings.Trim(sanitized, "_ ")

	if len(sanitized) > maxFilenameLength {
		sanitized = sanitized[:maxFilenameLength]
		sanitized = strings.Trim(sanitized, "_ ")
	}

	if sanitized == "" {
		sanitized = "untitled"
	}
	return sanitized
}

// ExportFilename returns the download name for a document: its sanitized name with a .md extension.
func ExportFilename(documentName string) string {
	return SanitizeFilename(documentName) + ".md"
}

// IsMarkdownFile reports whether name ends in one of MarkdownExtensions (case-sensitive, as uploads are matched).
func IsMarkdownFile(name string) bool {
	for _, ext := range MarkdownExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// TrimExtension drops directory components and the last extension from a file name.
// "docs/Guide.md" -> "Guide", "notes.v2.markdown" -> "notes.v2".
func TrimExtension(name string) string {
	base := filepath.Base(filepath.ToSlash(name))
	if base == "." || base == "/" {
		return ""
	}
	return trailingExtension.ReplaceAllString(base, "")
}
