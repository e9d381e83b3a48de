package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	retrygo "github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/api"
	chatbotapi "github.com/physical-ai/chatbot-backend/internal/api/chatbot"
	ingestionapi "github.com/physical-ai/chatbot-backend/internal/api/ingestion"
	"github.com/physical-ai/chatbot-backend/internal/config"
	"github.com/physical-ai/chatbot-backend/internal/entity"
	"github.com/physical-ai/chatbot-backend/internal/integration/embedding"
	"github.com/physical-ai/chatbot-backend/internal/integration/llm"
	"github.com/physical-ai/chatbot-backend/internal/integration/vectorindex"
	"github.com/physical-ai/chatbot-backend/internal/pkg/chunker"
	"github.com/physical-ai/chatbot-backend/internal/pkg/validator"
	"github.com/physical-ai/chatbot-backend/internal/repository"
	"github.com/physical-ai/chatbot-backend/internal/usecase/ingest"
	"github.com/physical-ai/chatbot-backend/internal/usecase/query"
)

// Connector shapes shared by the real and mock implementations.
type embeddingGateway interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type vectorIndex interface {
	EnsureCollection(ctx context.Context, name string, dimension int, distance string) error
	UpsertPoints(ctx context.Context, collection string, points []entity.VectorPoint) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]entity.SearchHit, error)
}

type llmService interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteStream(ctx context.Context, prompt string) (entity.TokenStream, error)
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	contentRepo := repository.NewContentPostgres(db)
	interactionRepo := repository.NewInteractionPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var embedder embeddingGateway
	var index vectorIndex
	var llmConnector llmService

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector(cfg.VectorIndexCfg.VectorSize)
		index = vectorindex.NewMockConnector()
		llmConnector = llm.NewMockConnector()
	} else {
		logger.Info("Using real connectors for external services")
		embedder = embedding.NewConnector(cfg.EmbeddingConnectorCfg, logger)
		index = vectorindex.NewConnector(cfg.VectorIndexCfg, logger)
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	}

	// Make sure the vector collection exists before serving traffic.
	// The index may still be starting alongside this process, so retry.
	err = retrygo.Do(
		func() error {
			return index.EnsureCollection(ctx,
				cfg.VectorIndexCfg.Collection,
				cfg.VectorIndexCfg.VectorSize,
				cfg.VectorIndexCfg.Distance,
			)
		},
		append(cfg.VectorIndexCfg.Retry.ToRetryOptions(), retrygo.Context(ctx))...,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure vector collection: %w", err)
	}
	logger.Info("Vector collection ready", zap.String("collection", cfg.VectorIndexCfg.Collection))

	// Initialize validators
	reqValidator := validator.New(cfg.IngestCfg.MaxTextLen, cfg.IngestCfg.MaxPDFBytes)
	logger.Info("Validators initialized")

	// Initialize use cases
	writer := ingest.NewDualStoreWriter(
		index,
		contentRepo,
		cfg.VectorIndexCfg.Collection,
		cfg.VectorIndexCfg.VectorSize,
		cfg.VectorIndexCfg.Distance,
	)
	textChunker := chunker.New(cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap)
	ingestUC := ingest.NewUsecase(embedder, writer, textChunker)

	retrieval := query.NewRetrievalService(embedder, index, cfg.VectorIndexCfg.Collection, cfg.QueryCfg.TopK)
	generation := query.NewGenerationService(llmConnector)
	queryUC := query.NewUsecase(retrieval, generation, cfg.QueryCfg.ConfidenceThreshold)
	logger.Info("Use cases initialized")

	// Setup API handlers
	chatbotHandler := chatbotapi.NewHandler(queryUC, interactionRepo, reqValidator)
	ingestionHandler := ingestionapi.NewHandler(ingestUC, contentRepo, cfg.IngestCfg, reqValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatbotHandler, ingestionHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server. No write deadline: streamed answers hold the
	// response open for as long as generation runs.
	server := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}
