package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateDatasetPath validates a user-supplied dataset or save directory
// path for safety. It rejects values that could be used for path traversal
// or injection.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - No parent directory traversal after cleaning
//   - Maximum length of 4096 characters
func ValidateDatasetPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "path too long (max 4096 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	if strings.Contains(path, "\x00") {
		return New(ErrCodeInvalidPath, "path contains a null byte")
	}

	cleaned := filepath.Clean(path)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path escapes the working directory")
	}

	return nil
}

// ValidateLabelFilename validates a label filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateLabelFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "label filename cannot be empty")
	}

	if filepath.Base(filename) != filename {
		return New(ErrCodeInvalidInput, "label filename must not contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidInput, "label filename must not be hidden")
	}

	if !strings.HasSuffix(filename, ".txt") {
		return New(ErrCodeInvalidInput, "label filename must end in .txt")
	}

	return nil
}
