package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/abune-media/media-service/internal/models"
)

// FileStore implements Store on a JSON file. It backs development setups and
// tests where Postgres is not configured; writes go through a temp file and
// rename so the file is never left half-written.
type FileStore struct {
	path string
	mu   sync.RWMutex
	objs map[string]models.MediaObject // keyed by object key
}

// NewFileStore loads existing records from path, starting empty when the
// file does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, objs: make(map[string]models.MediaObject)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %v", err)
	}
	if err := json.Unmarshal(data, &s.objs); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file: %v", err)
	}
	return s, nil
}

// saveToFile writes the current records to disk. Callers hold the lock.
func (s *FileStore) saveToFile() error {
	data, err := json.MarshalIndent(s.objs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %v", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %v", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to rename metadata file: %v", err)
	}
	return nil
}

func (s *FileStore) Save(obj models.MediaObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.objs[obj.ObjectKey]
	s.objs[obj.ObjectKey] = obj
	if err := s.saveToFile(); err != nil {
		// Keep memory and disk consistent.
		if had {
			s.objs[obj.ObjectKey] = prev
		} else {
			delete(s.objs, obj.ObjectKey)
		}
		return err
	}
	return nil
}

func (s *FileStore) GetByKey(objectKey string) (models.MediaObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objs[objectKey]
	if !ok {
		return models.MediaObject{}, ErrNotFound
	}
	return obj, nil
}

func (s *FileStore) ListByFolder(folderID string, limit, offset int) ([]models.MediaObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects := make([]models.MediaObject, 0, len(s.objs))
	for _, obj := range s.objs {
		if !obj.IsActive {
			continue
		}
		if folderID != "" && obj.OwnerFolderID != folderID {
			continue
		}
		objects = append(objects, obj)
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].UploadedAt > objects[j].UploadedAt
	})

	if offset >= len(objects) {
		return nil, nil
	}
	objects = objects[offset:]
	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}
	return objects, nil
}

func (s *FileStore) SoftDelete(objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objs[objectKey]
	if !ok || !obj.IsActive {
		return ErrNotFound
	}
	obj.IsActive = false
	obj.LastModified = time.Now().Unix()
	s.objs[objectKey] = obj
	return s.saveToFile()
}

func (s *FileStore) Delete(objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objs[objectKey]; !ok {
		return ErrNotFound
	}
	delete(s.objs, objectKey)
	return s.saveToFile()
}

func (s *FileStore) UpdateScanStatus(objectKey, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objs[objectKey]
	if !ok {
		return ErrNotFound
	}
	obj.ScanStatus = status
	obj.LastModified = time.Now().Unix()
	s.objs[objectKey] = obj
	return s.saveToFile()
}
