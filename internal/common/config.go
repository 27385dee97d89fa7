package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/cv-parser/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Kafka    KafkaConfig
	Worker   WorkerConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// LLMConfig holds completion-service configuration
type LLMConfig struct {
	Provider      string
	BaseURL       string
	APIKey        string
	GeminiAPIKey  string
	Model         string
	Temperature   float32
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

// StorageConfig selects and configures the content store.
type StorageConfig struct {
	Backend        string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	Bucket         string
}

// KafkaConfig holds broker and topic names.
type KafkaConfig struct {
	Brokers        []string
	EmbeddingTopic string
	ParseTopic     string
	GroupID        string
}

// WorkerConfig sizes the queued-mode worker pool.
type WorkerConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables. A .env file in the
// working directory is read first when present; real env vars win.
func LoadConfig() *Config {
	_ = godotenv.Load()

	provider := strings.ToLower(getEnv("LLM_PROVIDER", constants.ProviderOpenAI))
	model := getEnv("LLM_MODEL", "")
	if model == "" {
		model = constants.DefaultLLMModel
		if provider == constants.ProviderGemini {
			model = constants.DefaultGeminiModel
		}
	}
	backend := constants.NormalizeBackend(getEnv("STORAGE_BACKEND", constants.StorageMinIO))
	bucket := getEnv("MINIO_CV_BUCKET", "")
	if backend == constants.StorageGCS {
		bucket = getEnv("GCS_BUCKET", bucket)
	}

	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":50051"),
		},
		LLM: LLMConfig{
			Provider:      provider,
			BaseURL:       getEnv("LLM_BASE_URL", constants.DefaultLLMBaseURL),
			APIKey:        getEnv("LLM_API_KEY", os.Getenv("GROQ_API_KEY")),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:         model,
			Temperature:   getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			RetryAttempts: getEnvAsInt("LLM_RETRY_ATTEMPTS", 1),
			RetryBackoff:  getEnvAsDuration("LLM_RETRY_BACKOFF", 2*time.Second),
		},
		Storage: StorageConfig{
			Backend:        backend,
			MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
			MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
			MinIOUseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			Bucket:         bucket,
		},
		Kafka: KafkaConfig{
			Brokers:        getEnvAsList("KAFKA_BROKERS", []string{"kafka1:9092", "kafka2:9092"}),
			EmbeddingTopic: getEnv("KAFKA_EMBEDDING_TOPIC", constants.TopicEmbeddingGeneration),
			ParseTopic:     getEnv("KAFKA_PARSE_TOPIC", constants.TopicParseRequests),
			GroupID:        getEnv("KAFKA_GROUP_ID", constants.DefaultConsumerGroup),
		},
		Worker: WorkerConfig{
			Workers:    getEnvAsInt("WORKERS", 4),
			QueueSize:  getEnvAsInt("QUEUE_SIZE", 256),
			JobTimeout: getEnvAsDuration("JOB_TIMEOUT", 3*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case constants.ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return NewAppError(CodeConfig, "LLM_API_KEY (or GROQ_API_KEY) is required", ErrInvalidInput)
		}
	case constants.ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError(CodeConfig, "GEMINI_API_KEY is required", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, "unknown LLM_PROVIDER "+c.LLM.Provider, ErrInvalidInput)
	}
	switch c.Storage.Backend {
	case constants.StorageMinIO:
		if c.Storage.MinIOEndpoint == "" {
			return NewAppError(CodeConfig, "MINIO_ENDPOINT is required", ErrInvalidInput)
		}
	case constants.StorageGCS:
	default:
		return NewAppError(CodeConfig, "unknown STORAGE_BACKEND "+c.Storage.Backend, ErrInvalidInput)
	}
	if c.Storage.Bucket == "" {
		return NewAppError(CodeConfig, "MINIO_CV_BUCKET (or GCS_BUCKET) is required", ErrInvalidInput)
	}
	if len(c.Kafka.Brokers) == 0 {
		return NewAppError(CodeConfig, "KAFKA_BROKERS is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}
