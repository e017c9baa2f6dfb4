package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/abune-media/media-service/internal/models"
)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, verifies the connection and creates the table.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := &PostgresStore{db: db}
	if err := p.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	log.Println("[Postgres] connected successfully")
	return p, nil
}

func (p *PostgresStore) createTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS media_objects (
        id UUID PRIMARY KEY,
        display_name VARCHAR(255) NOT NULL,
        description TEXT DEFAULT '',
        object_key VARCHAR(500) NOT NULL,
        backend VARCHAR(20) NOT NULL,
        size_bytes BIGINT NOT NULL,
        content_type VARCHAR(100) NOT NULL,
        category VARCHAR(20) NOT NULL,
        owner_folder_id VARCHAR(100),
        uploaded_by VARCHAR(100),
        abune_id VARCHAR(100),
        uploaded_at BIGINT NOT NULL,
        last_modified BIGINT NOT NULL,
        is_active BOOLEAN NOT NULL DEFAULT true,
        scan_status VARCHAR(20) DEFAULT '',
        UNIQUE (object_key, backend)
    );

    CREATE INDEX IF NOT EXISTS idx_media_objects_key ON media_objects(object_key);
    CREATE INDEX IF NOT EXISTS idx_media_objects_folder ON media_objects(owner_folder_id, uploaded_at DESC);
    `
	_, err := p.db.Exec(query)
	return err
}

func (p *PostgresStore) Save(obj models.MediaObject) error {
	query := `
    INSERT INTO media_objects (id, display_name, description, object_key, backend, size_bytes, content_type,
        category, owner_folder_id, uploaded_by, abune_id, uploaded_at, last_modified, is_active, scan_status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    ON CONFLICT (id) DO UPDATE SET
        display_name = EXCLUDED.display_name,
        description = EXCLUDED.description,
        size_bytes = EXCLUDED.size_bytes,
        content_type = EXCLUDED.content_type,
        last_modified = EXCLUDED.last_modified,
        is_active = EXCLUDED.is_active,
        scan_status = EXCLUDED.scan_status
    `
	_, err := p.db.Exec(query,
		obj.ID, obj.DisplayName, obj.Description, obj.ObjectKey, string(obj.Backend), obj.SizeBytes,
		obj.ContentType, string(obj.Category), obj.OwnerFolderID, obj.UploadedBy,
		obj.AbuneID, obj.UploadedAt, obj.LastModified, obj.IsActive, obj.ScanStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to save media object: %v", err)
	}
	return nil
}

const selectColumns = `id, display_name, description, object_key, backend, size_bytes, content_type,
    category, owner_folder_id, uploaded_by, abune_id, uploaded_at, last_modified, is_active, scan_status`

func scanObject(row interface{ Scan(...interface{}) error }) (models.MediaObject, error) {
	var obj models.MediaObject
	var backend, category string
	err := row.Scan(&obj.ID, &obj.DisplayName, &obj.Description, &obj.ObjectKey, &backend, &obj.SizeBytes,
		&obj.ContentType, &category, &obj.OwnerFolderID, &obj.UploadedBy, &obj.AbuneID,
		&obj.UploadedAt, &obj.LastModified, &obj.IsActive, &obj.ScanStatus)
	if err != nil {
		return models.MediaObject{}, err
	}
	obj.Backend = models.StorageBackend(backend)
	obj.Category = models.MediaCategory(category)
	return obj, nil
}

func (p *PostgresStore) GetByKey(objectKey string) (models.MediaObject, error) {
	query := fmt.Sprintf(`SELECT %s FROM media_objects WHERE object_key = $1`, selectColumns)
	obj, err := scanObject(p.db.QueryRow(query, objectKey))
	if err == sql.ErrNoRows {
		return models.MediaObject{}, ErrNotFound
	}
	if err != nil {
		return models.MediaObject{}, fmt.Errorf("failed to get media object: %v", err)
	}
	return obj, nil
}

func (p *PostgresStore) ListByFolder(folderID string, limit, offset int) ([]models.MediaObject, error) {
	query := fmt.Sprintf(`SELECT %s FROM media_objects
        WHERE is_active = true AND ($1 = '' OR owner_folder_id = $1)
        ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3`, selectColumns)
	rows, err := p.db.Query(query, folderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list media objects: %v", err)
	}
	defer rows.Close()

	var objects []models.MediaObject
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media object: %v", err)
		}
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

func (p *PostgresStore) SoftDelete(objectKey string) error {
	res, err := p.db.Exec(
		`UPDATE media_objects SET is_active = false, last_modified = $2 WHERE object_key = $1 AND is_active = true`,
		objectKey, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete media object: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Delete(objectKey string) error {
	res, err := p.db.Exec(`DELETE FROM media_objects WHERE object_key = $1`, objectKey)
	if err != nil {
		return fmt.Errorf("failed to delete media object: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) UpdateScanStatus(objectKey, status string) error {
	_, err := p.db.Exec(
		`UPDATE media_objects SET scan_status = $2, last_modified = $3 WHERE object_key = $1`,
		objectKey, status, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to update scan status: %v", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
