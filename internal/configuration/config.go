package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Server     ServerConfig
	Transcoder TranscoderConfig
	NATSURL    string
	CLAMAVURL  string
	OIDCIssuer string
	// LocalDir is the filesystem fallback backend's base directory.
	LocalDir string
	// MetadataFile backs the JSON metadata store when DB_HOST is unset.
	MetadataFile string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
}

type ServerConfig struct {
	Port string
}

type TranscoderConfig struct {
	Binary        string
	TempDir       string
	Timeout       time.Duration
	MaxConcurrent int
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "mediauser"),
			Password: getEnv("DB_PASSWORD", "mediapassword"),
			DBName:   getEnv("DB_NAME", "mediaservice"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		MinIO: MinIOConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName: getEnv("MINIO_BUCKET", "media"),
			UseSSL:     getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Transcoder: TranscoderConfig{
			Binary:        getEnv("FFMPEG_BINARY", "ffmpeg"),
			TempDir:       getEnv("TRANSCODE_TEMP_DIR", ""),
			Timeout:       getEnvDuration("TRANSCODE_TIMEOUT", 30*time.Minute),
			MaxConcurrent: getEnvInt("TRANSCODE_MAX_CONCURRENT", 2),
		},
		NATSURL:      getEnv("NATS_URL", ""),
		CLAMAVURL:    getEnv("CLAMAV_URL", ""),
		OIDCIssuer:   getEnv("KEYCLOAK_URL", ""),
		LocalDir:     getEnv("LOCAL_STORAGE_DIR", "./media-storage"),
		MetadataFile: getEnv("METADATA_FILE", "media_metadata.json"),
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
