package models

// StorageBackend identifies which backend holds the bytes of a MediaObject.
// It is set once at upload time and never changes; moving an object between
// backends means creating a new MediaObject.
type StorageBackend string

const (
	BackendMinio StorageBackend = "minio"
	BackendLocal StorageBackend = "local"
)

// MediaCategory classifies an uploaded file for validation and delivery.
type MediaCategory string

const (
	CategoryBook  MediaCategory = "book"
	CategoryVideo MediaCategory = "video"
	CategoryAudio MediaCategory = "audio"
	CategoryOther MediaCategory = "other"
)

// MediaObject is the metadata record for one stored file. SizeBytes always
// reflects the bytes actually stored, so for a transcoded video it is the
// transcoder's output size, not the upload size.
type MediaObject struct {
	ID            string         `json:"id"`
	DisplayName   string         `json:"display_name"`
	Description   string         `json:"description,omitempty"`
	ObjectKey     string         `json:"object_key"`
	Backend       StorageBackend `json:"backend"`
	SizeBytes     int64          `json:"size_bytes"`
	ContentType   string         `json:"content_type"`
	Category      MediaCategory  `json:"category"`
	OwnerFolderID string         `json:"owner_folder_id"`
	UploadedBy    string         `json:"uploaded_by"`
	AbuneID       string         `json:"abune_id"`
	UploadedAt    int64          `json:"uploaded_at"`
	LastModified  int64          `json:"last_modified"`
	IsActive      bool           `json:"is_active"`
	ScanStatus    string         `json:"scan_status,omitempty"`
}

// CategoryFromString maps the client-supplied mediaType field to a category.
func CategoryFromString(s string) MediaCategory {
	switch s {
	case "book", "document", "pdf":
		return CategoryBook
	case "video":
		return CategoryVideo
	case "audio", "music":
		return CategoryAudio
	default:
		return CategoryOther
	}
}
