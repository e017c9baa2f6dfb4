package upload

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abune-media/media-service/internal/models"
)

// MaxUploadSize caps every category at 5GB.
const MaxUploadSize = 5 << 30

// ValidationError is a client error; Accepted lists the formats the category
// allows so the message names the violated constraint.
type ValidationError struct {
	Field    string
	Message  string
	Accepted []string
}

func (e *ValidationError) Error() string {
	if len(e.Accepted) > 0 {
		return fmt.Sprintf("%s: %s (accepted: %s)", e.Field, e.Message, strings.Join(e.Accepted, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var allowedExtensions = map[models.MediaCategory][]string{
	models.CategoryBook:  {".pdf", ".epub", ".mobi", ".txt", ".doc", ".docx"},
	models.CategoryVideo: {".mp4", ".avi", ".mov", ".mkv", ".webm"},
	models.CategoryAudio: {".mp3", ".wav", ".ogg", ".m4a", ".aac"},
	models.CategoryOther: {".jpg", ".jpeg", ".png", ".gif", ".webp", ".pdf", ".txt", ".zip"},
}

// AcceptedExtensions returns the sorted allowlist for a category.
func AcceptedExtensions(category models.MediaCategory) []string {
	exts := append([]string(nil), allowedExtensions[category]...)
	sort.Strings(exts)
	return exts
}

// ValidateFile checks the upload against its category's constraints before
// any byte is stored.
func ValidateFile(category models.MediaCategory, ext string, size int64) error {
	ext = strings.ToLower(ext)

	if size <= 0 {
		return &ValidationError{Field: "file", Message: "file is empty"}
	}
	if size > MaxUploadSize {
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file size %d exceeds the %d byte limit", size, int64(MaxUploadSize)),
		}
	}

	exts, ok := allowedExtensions[category]
	if !ok {
		return &ValidationError{Field: "mediaType", Message: fmt.Sprintf("unknown category %q", category)}
	}
	for _, allowed := range exts {
		if ext == allowed {
			return nil
		}
	}
	return &ValidationError{
		Field:    "file",
		Message:  fmt.Sprintf("extension %q is not allowed for %s uploads", ext, category),
		Accepted: AcceptedExtensions(category),
	}
}
