package upload

import (
	"path/filepath"
	"regexp"
	"strings"
)

const maxFileNameLength = 255

// Windows device names are reserved on several target filesystems; a file
// named CON or LPT1 cannot be created there regardless of extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

var illegalChars = `<>:"/\|?*`

// ValidateFileName checks a user-supplied display name before sanitization.
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "fileName", Message: "file name must not be empty"}
	}
	if len(name) > maxFileNameLength {
		return &ValidationError{Field: "fileName", Message: "file name exceeds 255 characters"}
	}
	if strings.ContainsAny(name, illegalChars) {
		return &ValidationError{Field: "fileName", Message: `file name contains illegal characters (<>:"/\|?*)`}
	}
	for _, r := range name {
		if r < 0x20 {
			return &ValidationError{Field: "fileName", Message: "file name contains control characters"}
		}
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if reservedNames[strings.ToUpper(strings.TrimSpace(stem))] {
		return &ValidationError{Field: "fileName", Message: "file name is a reserved device name"}
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
var repeatedSeparators = regexp.MustCompile(`_+`)

// SanitizeFileName turns a display name into a storage-safe key component.
// The original extension survives lowercased; everything else collapses to
// [a-zA-Z0-9_-]. The function is deterministic and idempotent.
func SanitizeFileName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))

	base = unsafeChars.ReplaceAllString(base, "_")
	base = repeatedSeparators.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")
	if base == "" {
		base = "file"
	}
	return base + ext
}
