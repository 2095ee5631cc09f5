package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// identRegex matches a single namespace segment or unit name.
var identRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ValidateIdentifier checks a single segment of a fully-qualified unit name.
func ValidateIdentifier(s string) error {
	if s == "" {
		return New(ErrCodeInvalidUnit, "empty name segment")
	}
	if !identRegex.MatchString(s) {
		return New(ErrCodeInvalidUnit, "invalid name segment: %q", s)
	}
	return nil
}

// ValidateUnitName validates a fully-qualified, dot-separated unit name such
// as "com.example.Main". A name without dots lives in the root namespace.
//
// The validation rules are intentionally conservative:
//   - No empty names or empty segments ("a..B", ".B", "a.")
//   - Every segment is an identifier (letters, digits, '_' and '$', not starting with a digit)
//   - Maximum length of 256 characters
func ValidateUnitName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidUnit, "unit name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidUnit, "unit name too long (max 256 characters)")
	}
	for _, seg := range strings.Split(name, ".") {
		if err := ValidateIdentifier(seg); err != nil {
			return Wrap(ErrCodeInvalidUnit, err, "invalid unit name %q", name)
		}
	}
	return nil
}

// ValidatePath validates a file path relative to a search-path root.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateSuffix checks a file suffix such as ".java" or ".class".
func ValidateSuffix(suffix string) error {
	if len(suffix) < 2 || suffix[0] != '.' {
		return New(ErrCodeInvalidConfig, "suffix must start with '.' and be non-empty: %q", suffix)
	}
	if strings.ContainsAny(suffix[1:], "./\\") {
		return New(ErrCodeInvalidConfig, "suffix cannot contain separators: %q", suffix)
	}
	return nil
}
