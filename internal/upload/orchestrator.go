package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abune-media/media-service/internal/metadata"
	"github.com/abune-media/media-service/internal/models"
	"github.com/abune-media/media-service/internal/storage"
	"github.com/abune-media/media-service/internal/transcode"
)

// Request carries one upload through the orchestrator. Content is read once;
// the orchestrator spools it so the backend fallback can replay the full
// bytes.
type Request struct {
	Content     io.Reader
	Size        int64
	FileName    string // original upload filename
	CustomName  string // optional user-chosen display name
	Description string
	ContentType string
	Category    models.MediaCategory
	Profile     transcode.Profile
	FolderID    string
	UploadedBy  string
	AbuneID     string
}

// Uploader composes validation, sanitization, compression, backend-fallback
// storage and metadata persistence. Metadata is written last: a failure in
// any earlier step leaves no record behind.
type Uploader struct {
	Backends   *storage.Fallback
	Store      metadata.Store
	Transcoder transcode.Transcoder
	TempDir    string
	// OnUploaded runs after a successful upload (event publishing, virus
	// scan hand-off). It must not block the response for long.
	OnUploaded func(obj models.MediaObject)
}

// Upload runs the full sequence and returns the persisted MediaObject.
func (u *Uploader) Upload(ctx context.Context, req Request) (models.MediaObject, error) {
	displayName := req.FileName
	if req.CustomName != "" {
		if err := ValidateFileName(req.CustomName); err != nil {
			return models.MediaObject{}, err
		}
		// A custom name may omit the extension; the stored key keeps the
		// original one either way.
		if filepath.Ext(req.CustomName) == "" {
			displayName = req.CustomName + strings.ToLower(filepath.Ext(req.FileName))
		} else {
			displayName = req.CustomName
		}
	}

	ext := strings.ToLower(filepath.Ext(displayName))
	if err := ValidateFile(req.Category, ext, req.Size); err != nil {
		return models.MediaObject{}, err
	}

	// Browsers often send a generic part content type; the extension is a
	// better signal once validation has accepted it.
	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = ContentTypeForExtension(ext)
	}

	// Spool the upload so both fallback attempts and the transcoder see a
	// seekable, fully-buffered stream.
	spool, err := u.spool(req.Content)
	if err != nil {
		return models.MediaObject{}, err
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	size := req.Size
	suffix := ""

	if req.Category == models.CategoryVideo && req.Profile.NeedsCompression(size) {
		result, err := u.Transcoder.Compress(ctx, spool, req.Profile)
		if err != nil {
			return models.MediaObject{}, err
		}

		compressed, err := u.spool(result.Output)
		result.Output.Close()
		if err != nil {
			return models.MediaObject{}, err
		}
		spool.Close()
		os.Remove(spool.Name())
		spool = compressed

		size = result.SizeBytes
		contentType = result.ContentType
		suffix = result.NameSuffix
		ext = ".mp4"
		log.Printf("[Upload] transcoded %s with profile %s: %d -> %d bytes",
			displayName, req.Profile.Name, req.Size, size)
	}

	id := uuid.New().String()
	sanitized := SanitizeFileName(displayName)
	base := strings.TrimSuffix(sanitized, filepath.Ext(sanitized))
	objectKey := fmt.Sprintf("%s_%s%s%s", id, base, suffix, ext)

	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return models.MediaObject{}, fmt.Errorf("failed to rewind spool: %v", err)
	}

	backend, err := u.Backends.Upload(ctx, spool, size, objectKey, contentType)
	if err != nil {
		return models.MediaObject{}, err
	}

	now := time.Now().Unix()
	obj := models.MediaObject{
		ID:            id,
		DisplayName:   displayName,
		Description:   req.Description,
		ObjectKey:     objectKey,
		Backend:       backend,
		SizeBytes:     size,
		ContentType:   contentType,
		Category:      req.Category,
		OwnerFolderID: req.FolderID,
		UploadedBy:    req.UploadedBy,
		AbuneID:       req.AbuneID,
		UploadedAt:    now,
		LastModified:  now,
		IsActive:      true,
	}

	if err := u.Store.Save(obj); err != nil {
		// Don't leave an orphaned object behind a missing record.
		if b, ok := u.Backends.Get(backend); ok {
			if delErr := b.Delete(ctx, objectKey); delErr != nil {
				log.Printf("[Upload] warning: failed to clean up object after metadata failure: %v", delErr)
			}
		}
		return models.MediaObject{}, fmt.Errorf("failed to save media metadata: %v", err)
	}

	if u.OnUploaded != nil {
		u.OnUploaded(obj)
	}
	return obj, nil
}

func (u *Uploader) spool(r io.Reader) (*os.File, error) {
	dir := u.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "upload-*.spool")
	if err != nil {
		return nil, fmt.Errorf("failed to create upload spool: %v", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to spool upload: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to rewind upload spool: %v", err)
	}
	return f, nil
}

// ContentTypeForExtension maps common media extensions to MIME types.
func ContentTypeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".epub":
		return "application/epub+zip"
	case ".txt":
		return "text/plain"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".avi":
		return "video/x-msvideo"
	case ".mov":
		return "video/quicktime"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	case ".aac":
		return "audio/aac"
	default:
		return "application/octet-stream"
	}
}
