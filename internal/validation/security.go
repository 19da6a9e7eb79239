// Package validation provides input checks shared by configuration and the
// command line: path safety, file extensions, base URLs and locale codes.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// ValidatePath rejects empty paths, traversal and shell metacharacters.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fmt.Errorf("path traversal detected: %s", path)
		}
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">", "\x00"}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains dangerous character: %q", char)
		}
	}

	return nil
}

// ValidateFileExtension validates file extensions against an allowlist
func ValidateFileExtension(filename string, allowedExtensions []string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("file must have an extension")
	}

	for _, allowed := range allowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}

	return fmt.Errorf("file extension '%s' is not allowed", ext)
}

// ValidateLocale checks that locale is a well-formed BCP 47 tag such as "en",
// "pt-BR" or "zh_Hant".
func ValidateLocale(locale string) error {
	if locale == "" {
		return fmt.Errorf("locale cannot be empty")
	}
	if _, err := language.Parse(strings.ReplaceAll(locale, "_", "-")); err != nil {
		return fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return nil
}
