package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxSearchLength bounds search terms accepted from the API and the TUI.
const maxSearchLength = 128

// ValidateSavePath validates the path of a game save database.
//
// The path must be non-empty, free of control characters and carry a
// database extension (.db, .sqlite or .sqlite3). Existence is checked by the
// caller when the file is opened.
func ValidateSavePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "save path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "save path contains invalid characters")
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return nil
	default:
		return New(ErrCodeInvalidPath, "save path must end in .db, .sqlite or .sqlite3: %q", filepath.Base(path))
	}
}

// ValidateSearchTerm validates a free-text system search term.
// Empty terms are valid; they simply match nothing.
func ValidateSearchTerm(term string) error {
	if len(term) > maxSearchLength {
		return New(ErrCodeInvalidInput, "search term too long (max %d characters)", maxSearchLength)
	}
	for _, r := range term {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search term contains invalid control characters")
		}
	}
	return nil
}

// ValidateID validates a positive database identifier such as a game,
// race or system id.
func ValidateID(kind string, id int64) error {
	if id <= 0 {
		return New(ErrCodeInvalidInput, "%s id must be positive, got %d", kind, id)
	}
	return nil
}
