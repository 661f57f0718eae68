package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/knowyourdocs/docchat/internal/chunker"
	"github.com/knowyourdocs/docchat/internal/config"
	"github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/domain/ingest"
	"github.com/knowyourdocs/docchat/internal/domain/rag"
	"github.com/knowyourdocs/docchat/internal/infrastructure/database"
	"github.com/knowyourdocs/docchat/internal/infrastructure/embedding"
	"github.com/knowyourdocs/docchat/internal/infrastructure/extractor"
	"github.com/knowyourdocs/docchat/internal/infrastructure/generation"
	"github.com/knowyourdocs/docchat/internal/infrastructure/logger"
	conversationrepo "github.com/knowyourdocs/docchat/internal/infrastructure/repository/conversation"
	documentrepo "github.com/knowyourdocs/docchat/internal/infrastructure/repository/document"
	queryrepo "github.com/knowyourdocs/docchat/internal/infrastructure/repository/queryrecord"
	"github.com/knowyourdocs/docchat/internal/infrastructure/vectorindex/qdrant"
	"github.com/knowyourdocs/docchat/internal/interfaces/httpserver"
)

// Application bundles the long-running parts of the service.
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

// NewApplication wires the HTTP server into the application shell.
func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

// Start blocks until the server exits or the context is cancelled.
func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	embedder := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	generator := generation.NewClient(cfg.GenerationBaseURL, cfg.GenerationAPIKey, cfg.GenerationModel)
	index := qdrant.NewIndex(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection, cfg.QdrantTimeout)

	if err := index.EnsureReady(ctx, cfg.EmbeddingDimension); err != nil {
		log.Fatal().Err(err).Msg("prepare vector index")
	}

	conversationService := conversation.NewService(
		conversationrepo.NewRepository(db),
		documentrepo.NewRepository(db),
		queryrepo.NewRepository(db),
		log,
	)
	splitter := chunker.New(
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
	)
	ingestService := ingest.NewService(
		extractor.New(),
		splitter,
		embedder,
		index,
		conversationService,
		cfg.EmbedBatchSize,
		cfg.EmbedConcurrent,
		log,
	)
	ragService := rag.NewService(embedder, index, generator, conversationService, cfg.RetrievalTopK, log)

	httpServer := httpserver.New(cfg, log, ingestService, ragService, conversationService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
