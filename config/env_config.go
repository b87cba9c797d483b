package config

import (
	"os"
	"strconv"
	"strings"
)

type EnvConfig struct {
	Postgres struct {
		Host     string
		Database string
		Username string
		Password string
		Port     string
	}
	Redis struct {
		Password string
		Database int
		Host     string
		Port     string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
		UseSSL       bool
	}
	Upload struct {
		Bucket               string
		DefaultURLExpiration int // seconds
		MaxGrantExpiration   int // cap for direct-upload grants, seconds
	}
	JWT struct {
		SecretKey string
	}
	CORS struct {
		AllowDomains string
	}
	Telemetry struct {
		OTLPEndpoint string
		ServiceName  string
	}
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.Host = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}

	// Redis
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.Host = os.Getenv("REDIS_HOST")
	config.Redis.Port = os.Getenv("REDIS_PORT")
	if config.Redis.Port == "" {
		config.Redis.Port = "6379"
	}

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	// MinIO
	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")
	config.Minio.UseSSL = strings.EqualFold(os.Getenv("MINIO_USE_SSL"), "true")

	// Upload
	config.Upload.Bucket = os.Getenv("FILE_BUCKET_NAME")
	if val := os.Getenv("DEFAULT_URL_EXPIRATION"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil && seconds > 0 {
			config.Upload.DefaultURLExpiration = seconds
		}
	}
	if config.Upload.DefaultURLExpiration == 0 {
		config.Upload.DefaultURLExpiration = 3600
	}
	if val := os.Getenv("MAX_UPLOAD_GRANT_EXPIRATION"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil && seconds > 0 {
			config.Upload.MaxGrantExpiration = seconds
		}
	}
	if config.Upload.MaxGrantExpiration == 0 {
		config.Upload.MaxGrantExpiration = 900
	}

	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	// OpenTelemetry
	otlpEndpoint := os.Getenv("OTLP_ENDPOINT")
	// Strip the protocol, the OTLP client expects a bare host
	otlpEndpoint = strings.TrimPrefix(otlpEndpoint, "https://")
	otlpEndpoint = strings.TrimPrefix(otlpEndpoint, "http://")
	config.Telemetry.OTLPEndpoint = otlpEndpoint
	config.Telemetry.ServiceName = os.Getenv("OTEL_SERVICE_NAME")
	if config.Telemetry.ServiceName == "" {
		config.Telemetry.ServiceName = "filevault"
	}

	return &config
}
