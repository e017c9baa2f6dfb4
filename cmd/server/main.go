package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/abune-media/media-service/cmd/middleware"
	"github.com/abune-media/media-service/internal/api"
	"github.com/abune-media/media-service/internal/api/handlers"
	"github.com/abune-media/media-service/internal/configuration"
	"github.com/abune-media/media-service/internal/metadata"
	"github.com/abune-media/media-service/internal/models"
	"github.com/abune-media/media-service/internal/services"
	"github.com/abune-media/media-service/internal/storage"
	"github.com/abune-media/media-service/internal/transcode"
	"github.com/abune-media/media-service/internal/upload"
)

func main() {
	cfg := configuration.Load()

	tracer.Start(tracer.WithService("media-service"))
	defer tracer.Stop()

	// Storage backends: object store first, filesystem fallback. A dead
	// object store at startup is not fatal; uploads land on the fallback.
	local, err := storage.NewLocalBackend(cfg.LocalDir)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}

	var ordered []storage.Backend
	minioBackend, err := storage.NewMinioBackend(
		cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
		cfg.MinIO.BucketName, cfg.MinIO.UseSSL,
	)
	if err != nil {
		log.Printf("Warning: object store unavailable, using local storage only: %v", err)
	} else {
		ordered = append(ordered, minioBackend)
	}
	ordered = append(ordered, local)
	backends := storage.NewFallback(ordered...)

	// Metadata store: Postgres when configured, JSON file otherwise.
	var store metadata.Store
	if cfg.Database.Host != "" {
		pg, err := metadata.NewPostgresStore(cfg.Database.ConnectionString())
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pg.Close()
		store = pg
	} else {
		fs, err := metadata.NewFileStore(cfg.MetadataFile)
		if err != nil {
			log.Fatalf("Failed to initialize metadata store: %v", err)
		}
		log.Println("Using JSON file metadata store (no DB_HOST configured)")
		store = fs
	}

	if cfg.NATSURL != "" {
		if _, _, err := services.ConnectNATS(cfg.NATSURL); err != nil {
			log.Printf("Warning: NATS unavailable, events disabled: %v", err)
		}
	}

	uploader := &upload.Uploader{
		Backends:   backends,
		Store:      store,
		Transcoder: transcode.NewFFmpegTranscoder(cfg.Transcoder.Binary, cfg.Transcoder.TempDir, cfg.Transcoder.Timeout, cfg.Transcoder.MaxConcurrent),
		OnUploaded: func(obj models.MediaObject) {
			if cfg.NATSURL != "" {
				event := map[string]interface{}{
					"action":      "uploaded",
					"object_key":  obj.ObjectKey,
					"category":    obj.Category,
					"size_bytes":  obj.SizeBytes,
					"backend":     obj.Backend,
					"abune_id":    obj.AbuneID,
					"uploaded_at": obj.UploadedAt,
				}
				if err := services.PublishEvent("media.uploaded", event); err != nil {
					log.Printf("warning: failed to publish media.uploaded event: %v", err)
				}
			}
			if cfg.CLAMAVURL != "" {
				go services.ScanObject(backends, store, obj, cfg.CLAMAVURL)
			}
		},
	}

	authRequired := middleware.NoAuth()
	if cfg.OIDCIssuer != "" {
		if err := middleware.InitAuth(cfg.OIDCIssuer); err != nil {
			log.Fatalf("Failed to initialize OIDC auth: %v", err)
		}
		authRequired = middleware.RequireAuth()
	}

	setupGracefulShutdown()

	r := gin.Default()
	r.Use(gintrace.Middleware("media-service"))
	api.RegisterRoutes(r, handlers.NewMediaHandler(backends, store, uploader), authRequired)

	log.Printf("Server starting on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		os.Exit(0)
	}()
}
