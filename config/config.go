package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Env        string
	Database   DatabaseConfig
	CORS       CORSConfig
	Ingest     IngestConfig
	Storage    StorageConfig
	Events     EventsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// CORSConfig lists the browser origins allowed to call the API.
// AllowedOriginSuffixes match any subdomain, e.g. ".uvify.app" allows
// https://dash.uvify.app.
type CORSConfig struct {
	AllowedOrigins        []string
	AllowedOriginSuffixes []string
}

// IngestConfig holds settings for the device ingestion path.
// DefaultUserID owns readings submitted without a user in the path
// (single-device deployments).
type IngestConfig struct {
	DefaultUserID int
}

type StorageConfig struct {
	// Backend selects the profile image store: "minio", "gcs" or "none".
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

type EventsConfig struct {
	// Backend selects the reading event broker: "pubsub", "rabbitmq" or "none".
	Backend  string
	Topic    string
	PubSub   PubSubConfig
	RabbitMQ RabbitMQConfig
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

type RabbitMQConfig struct {
	URL          string
	QueueDurable bool
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "uvify"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "uvify_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 4000),
		Env:        getEnv("ENV", "prod"),
		Database:   dbConfig,
		CORS: CORSConfig{
			AllowedOrigins:        getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			AllowedOriginSuffixes: getEnvList("CORS_ALLOWED_ORIGIN_SUFFIXES", ""),
		},
		Ingest: IngestConfig{
			DefaultUserID: getEnvInt("INGEST_DEFAULT_USER_ID", 1),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "none"),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "uvify-profile-images"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
		Events: EventsConfig{
			Backend: getEnv("EVENTS_BACKEND", "none"),
			Topic:   getEnv("EVENTS_TOPIC", "uv-readings"),
			PubSub: PubSubConfig{
				ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			},
			RabbitMQ: RabbitMQConfig{
				URL:          getEnv("RABBITMQ_URL", ""),
				QueueDurable: getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
