package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abune-media/media-service/internal/delivery"
	"github.com/abune-media/media-service/internal/metadata"
	"github.com/abune-media/media-service/internal/models"
	"github.com/abune-media/media-service/internal/storage"
	"github.com/abune-media/media-service/internal/transcode"
	"github.com/abune-media/media-service/internal/upload"
)

// MediaHandler serves the media delivery endpoints.
type MediaHandler struct {
	Backends *storage.Fallback
	Store    metadata.Store
	Uploader *upload.Uploader
}

func NewMediaHandler(backends *storage.Fallback, store metadata.Store, uploader *upload.Uploader) *MediaHandler {
	return &MediaHandler{Backends: backends, Store: store, Uploader: uploader}
}

// HealthCheck reports liveness plus per-backend reachability for backends
// that expose a connection check.
func (h *MediaHandler) HealthCheck(c *gin.Context) {
	backends := gin.H{}
	for _, b := range h.Backends.Backends() {
		status := "ok"
		if checker, ok := b.(interface{ CheckConnection(context.Context) error }); ok {
			if err := checker.CheckConnection(c.Request.Context()); err != nil {
				status = "unreachable"
			}
		}
		backends[string(b.Name())] = status
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backends": backends})
}

// Stream handlers; one per delivery strategy. All serve identical bytes and
// differ only in framing, so they share serveMedia.

func (h *MediaHandler) StreamDirect(c *gin.Context) {
	h.serveMedia(c, delivery.StrategyDirect, 0, false)
}

func (h *MediaHandler) StreamChunked(c *gin.Context) {
	h.serveMedia(c, delivery.StrategyChunked, queryInt(c, "chunkSize"), false)
}

func (h *MediaHandler) StreamPaginated(c *gin.Context) {
	h.serveMedia(c, delivery.StrategyPaginated, queryInt(c, "chunkSize"), false)
}

func (h *MediaHandler) StreamBuffered(c *gin.Context) {
	h.serveMedia(c, delivery.StrategyBuffered, queryInt(c, "bufferSize"), false)
}

func (h *MediaHandler) Download(c *gin.Context) {
	h.serveMedia(c, delivery.StrategyDirect, 0, true)
}

func queryInt(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (h *MediaHandler) serveMedia(c *gin.Context, strategy delivery.Strategy, sizeParam int64, attachment bool) {
	key := c.Param("key")

	obj, err := h.Store.GetByKey(key)
	if err != nil && !errors.Is(err, metadata.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up media object"})
		return
	}
	if err == nil && !obj.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "media object not found"})
		return
	}

	// Metadata names the backend; without a record, probe both.
	recorded := obj.Backend
	src, total, backend, err := h.Backends.Open(c.Request.Context(), key, recorded)
	if errors.Is(err, storage.ErrObjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "media object not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage backend unavailable"})
		return
	}
	defer src.Close()

	if obj.SizeBytes > 0 {
		total = obj.SizeBytes
	}

	rng, err := delivery.ParseRange(c.GetHeader("Range"), total)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := delivery.Plan(strategy, rng, total, sizeParam)

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	for name, values := range delivery.Headers(plan, contentType, obj.DisplayName, attachment) {
		for _, v := range values {
			c.Header(name, v)
		}
	}
	c.Status(plan.Status())

	if err := delivery.Write(c.Request.Context(), c.Writer, src, plan); err != nil {
		// Headers are gone; all we can do is stop and log.
		log.Printf("[Media] stream aborted key=%s backend=%s strategy=%s: %v", key, backend, strategy, err)
	}
}

func (h *MediaHandler) GetInfo(c *gin.Context) {
	obj, err := h.Store.GetByKey(c.Param("key"))
	if errors.Is(err, metadata.ErrNotFound) || (err == nil && !obj.IsActive) {
		c.JSON(http.StatusNotFound, gin.H{"error": "media object not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up media object"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": obj})
}

func (h *MediaHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if err != nil || pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}

	objects, err := h.Store.ListByFolder(c.Query("folderId"), pageSize, (page-1)*pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list media objects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"media":    objects,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (h *MediaHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	folderID := c.PostForm("folderId")
	if folderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folderId is required"})
		return
	}

	profile := transcode.DefaultProfile()
	if name := c.PostForm("profile"); name != "" {
		profile, err = transcode.ProfileByName(name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	uploadedBy, _ := c.Get("user_id")
	userID, _ := uploadedBy.(string)

	obj, err := h.Uploader.Upload(c.Request.Context(), upload.Request{
		Content:     file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		CustomName:  c.PostForm("fileName"),
		Description: c.PostForm("description"),
		ContentType: fileHeader.Header.Get("Content-Type"),
		Category:    models.CategoryFromString(c.PostForm("mediaType")),
		Profile:     profile,
		FolderID:    folderID,
		UploadedBy:  userID,
		AbuneID:     c.PostForm("abuneId"),
	})
	if err != nil {
		var verr *upload.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		case errors.Is(err, transcode.ErrTranscodeFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "video transcoding failed"})
		case errors.Is(err, storage.ErrAllBackendsFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage backends unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":          obj.ObjectKey,
		"display_name": obj.DisplayName,
		"size_bytes":   obj.SizeBytes,
		"content_type": obj.ContentType,
		"backend":      obj.Backend,
		"download_url": fmt.Sprintf("/api/media/%s/download", obj.ObjectKey),
	})
}

// Delete soft-deletes the metadata record first, then attempts backend
// removal best-effort. The two steps are reported independently; there is no
// transaction between them.
func (h *MediaHandler) Delete(c *gin.Context) {
	key := c.Param("key")

	obj, err := h.Store.GetByKey(key)
	if errors.Is(err, metadata.ErrNotFound) || (err == nil && !obj.IsActive) {
		c.JSON(http.StatusNotFound, gin.H{"error": "media object not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up media object"})
		return
	}

	if err := h.Store.SoftDelete(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete media metadata"})
		return
	}

	results := h.Backends.Delete(c.Request.Context(), key, obj.Backend)
	removed, failed := summarizeDeletes(results)

	// "Already absent" is fine; every backend erroring is not. The metadata
	// is soft-deleted either way, so the client sees which step failed.
	if !removed && failed == len(results) && failed > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":            "failed to remove media bytes from any backend",
			"key":              key,
			"metadata_deleted": true,
			"backends":         results,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "media object deleted",
		"key":             key,
		"backend_deleted": removed,
		"backends":        results,
	})
}

func summarizeDeletes(results []storage.DeleteResult) (removed bool, failed int) {
	for _, r := range results {
		if r.Deleted {
			removed = true
		}
		if r.Error != "" {
			failed++
		}
	}
	return removed, failed
}

// PermanentDelete removes the metadata record and the backend object for
// good. Works on soft-deleted records too.
func (h *MediaHandler) PermanentDelete(c *gin.Context) {
	key := c.Param("key")

	obj, err := h.Store.GetByKey(key)
	if errors.Is(err, metadata.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "media object not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up media object"})
		return
	}

	results := h.Backends.Delete(c.Request.Context(), key, obj.Backend)
	removed, failed := summarizeDeletes(results)

	// Keep the record when no backend could be reached so the delete can be
	// retried; removing it would orphan the bytes.
	if !removed && failed == len(results) && failed > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "failed to remove media bytes from any backend",
			"key":      key,
			"backends": results,
		})
		return
	}

	if err := h.Store.Delete(key); err != nil && !errors.Is(err, metadata.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete media metadata"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "media object permanently deleted",
		"key":             key,
		"backend_deleted": removed,
		"backends":        results,
	})
}
