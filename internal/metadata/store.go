package metadata

import (
	"errors"

	"github.com/abune-media/media-service/internal/models"
)

// ErrNotFound means no active MediaObject exists for the key.
var ErrNotFound = errors.New("media object not found")

// Store persists MediaObject records. The bytes themselves live in whichever
// storage backend the record names; this is the only durable state the
// service owns.
type Store interface {
	Save(obj models.MediaObject) error
	// GetByKey returns the record for an object key, active or not; callers
	// that serve bytes must check IsActive. Soft-deleted records are not the
	// same as missing ones: a missing record triggers backend probing, an
	// inactive one must not.
	GetByKey(objectKey string) (models.MediaObject, error)
	// ListByFolder returns active records for a folder, newest first.
	// An empty folderID lists everything.
	ListByFolder(folderID string, limit, offset int) ([]models.MediaObject, error)
	// SoftDelete flips isActive off; the backend object is untouched.
	SoftDelete(objectKey string) error
	// Delete removes the record permanently.
	Delete(objectKey string) error
	// UpdateScanStatus records the ClamAV verdict for an object.
	UpdateScanStatus(objectKey, status string) error
}
