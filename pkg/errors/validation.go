package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxFilenameLength bounds filename hints accepted from untrusted callers.
const maxFilenameLength = 255

// ValidateFilename validates a filename hint supplied with uploaded content.
// The hint only steers format detection, so it must be a plain basename.
//
// Validation rules:
//   - Maximum length of 255 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//
// An empty filename is valid: detection then relies on content alone.
func ValidateFilename(name string) error {
	if name == "" {
		return nil
	}
	if len(name) > maxFilenameLength {
		return New(ErrCodeInvalidPath, "filename too long (max %d characters)", maxFilenameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "filename cannot be %q", name)
	}
	return nil
}

// ValidateDiagramID validates the identifier of a stored diagram.
// Identifiers are canonical UUID strings.
func ValidateDiagramID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "diagram id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid diagram id %q", id)
	}
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidInput, "diagram id must be in canonical form: %q", id)
	}
	return nil
}
