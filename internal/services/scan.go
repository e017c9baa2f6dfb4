package services

import (
	"context"
	"io"
	"log"
	"os"

	clamd "github.com/dutchcoders/go-clamd"

	"github.com/abune-media/media-service/internal/metadata"
	"github.com/abune-media/media-service/internal/models"
	"github.com/abune-media/media-service/internal/storage"
)

// ScanObject downloads a stored object, runs it through ClamAV and records
// the verdict. Infected objects are removed from their backend and their
// metadata flagged. Meant to run in a goroutine after upload.
func ScanObject(backends *storage.Fallback, store metadata.Store, obj models.MediaObject, clamAvURL string) {
	ctx := context.Background()

	rc, _, _, err := backends.Open(ctx, obj.ObjectKey, obj.Backend)
	if err != nil {
		log.Printf("[Scan] failed to open %s for scanning: %v", obj.ObjectKey, err)
		return
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "scan-*.bin")
	if err != nil {
		log.Printf("[Scan] failed to create temp file: %v", err)
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		log.Printf("[Scan] failed to spool %s: %v", obj.ObjectKey, err)
		return
	}
	tmp.Close()

	c := clamd.NewClamd(clamAvURL)
	response, err := c.ScanFile(tmp.Name())
	if err != nil {
		log.Printf("[Scan] scan failed for %s: %v", obj.ObjectKey, err)
		return
	}

	status := "clean"
	for res := range response {
		if res.Status == clamd.RES_FOUND {
			log.Printf("[Scan] virus detected in %s: %s", obj.ObjectKey, res.Description)
			status = "infected"

			if b, ok := backends.Get(obj.Backend); ok {
				if err := b.Delete(ctx, obj.ObjectKey); err != nil {
					log.Printf("[Scan] failed to delete infected object: %v", err)
				}
			}
			if err := store.SoftDelete(obj.ObjectKey); err != nil {
				log.Printf("[Scan] failed to deactivate infected object: %v", err)
			}
		}
	}

	if err := store.UpdateScanStatus(obj.ObjectKey, status); err != nil {
		log.Printf("[Scan] failed to update scan status: %v", err)
	} else {
		log.Printf("[Scan] finished for %s: %s", obj.ObjectKey, status)
	}
}
