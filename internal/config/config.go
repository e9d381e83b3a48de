package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgRetry "github.com/physical-ai/chatbot-backend/internal/pkg/retry"
)

// Config holds the application configuration. It is built once at
// process start and handed to component constructors; nothing reads
// the environment after this point.
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	EmbeddingConnectorCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`
	VectorIndexCfg        VectorIndexConfig        `envPrefix:"VECTOR_"`
	LLMConnectorCfg       LLMConnectorConfig       `envPrefix:"LLM_"`

	// Query pipeline configuration
	QueryCfg QueryConfig `envPrefix:"QUERY_"`

	// Ingestion configuration
	IngestCfg IngestConfig `envPrefix:"INGEST_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// EmbeddingConnectorConfig configures the embedding provider gateway.
type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Model         string        `env:"MODEL" envDefault:"embed-english-v3.0"`
	MaxBatchSize  int           `env:"MAX_BATCH_SIZE" envDefault:"96"`
	QueryCacheTTL time.Duration `env:"QUERY_CACHE_TTL" envDefault:"5m"`
}

// VectorIndexConfig configures the vector similarity store adapter.
type VectorIndexConfig struct {
	HTTPClientConfig
	Collection string               `env:"COLLECTION" envDefault:"textbook_embeddings_v3"`
	VectorSize int                  `env:"SIZE" envDefault:"1024"`
	Distance   string               `env:"DISTANCE" envDefault:"Cosine"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// LLMConnectorConfig configures the generative model service.
type LLMConnectorConfig struct {
	HTTPClientConfig
	Model string `env:"MODEL,notEmpty"`
}

// QueryConfig holds the query pipeline tuning knobs. The confidence
// threshold is a calibration parameter tied to the embedding provider's
// score distribution, not a universal constant.
type QueryConfig struct {
	TopK                int     `env:"TOP_K" envDefault:"3"`
	ConfidenceThreshold float64 `env:"CONFIDENCE_THRESHOLD" envDefault:"0.15"`
}

// IngestConfig holds the ingestion windowing and size limits.
type IngestConfig struct {
	ChunkSize    int   `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int   `env:"CHUNK_OVERLAP" envDefault:"100"`
	MaxTextLen   int   `env:"MAX_TEXT_LEN" envDefault:"20000"`
	MaxPDFBytes  int64 `env:"MAX_PDF_BYTES" envDefault:"26214400"` // 25 MiB
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"10s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}
	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.QueryCfg.TopK < 1 || cfg.QueryCfg.TopK > 20 {
		return fmt.Errorf("QUERY_TOP_K must be between 1 and 20, got %d", cfg.QueryCfg.TopK)
	}
	if cfg.QueryCfg.ConfidenceThreshold < 0 {
		return fmt.Errorf("QUERY_CONFIDENCE_THRESHOLD must not be negative, got %f", cfg.QueryCfg.ConfidenceThreshold)
	}
	if cfg.EmbeddingConnectorCfg.MaxBatchSize < 1 {
		return fmt.Errorf("EMBEDDING_MAX_BATCH_SIZE must be positive, got %d", cfg.EmbeddingConnectorCfg.MaxBatchSize)
	}
	if cfg.VectorIndexCfg.VectorSize < 1 {
		return fmt.Errorf("VECTOR_SIZE must be positive, got %d", cfg.VectorIndexCfg.VectorSize)
	}
	if cfg.IngestCfg.ChunkSize < 1 {
		return fmt.Errorf("INGEST_CHUNK_SIZE must be positive, got %d", cfg.IngestCfg.ChunkSize)
	}
	if cfg.IngestCfg.ChunkOverlap < 0 || cfg.IngestCfg.ChunkOverlap >= cfg.IngestCfg.ChunkSize {
		return fmt.Errorf("INGEST_CHUNK_OVERLAP must be between 0 and INGEST_CHUNK_SIZE(%d), got %d", cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap)
	}
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
