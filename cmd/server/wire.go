//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/knowyourdocs/docchat/internal/chunker"
	"github.com/knowyourdocs/docchat/internal/config"
	conversationDomain "github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/domain/ingest"
	"github.com/knowyourdocs/docchat/internal/domain/llm"
	"github.com/knowyourdocs/docchat/internal/domain/rag"
	"github.com/knowyourdocs/docchat/internal/domain/vector"
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

var pipelineSet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversationDomain.Repository), new(*conversationrepo.Repository)),
	documentrepo.NewRepository,
	wire.Bind(new(conversationDomain.DocumentRepository), new(*documentrepo.Repository)),
	queryrepo.NewRepository,
	wire.Bind(new(conversationDomain.QueryRepository), new(*queryrepo.Repository)),
	conversationDomain.NewService,
	newEmbeddingClient,
	wire.Bind(new(vector.Embedder), new(*embedding.Client)),
	newQdrantIndex,
	wire.Bind(new(vector.Index), new(*qdrant.Index)),
	newGenerationClient,
	wire.Bind(new(llm.Generator), new(*generation.Client)),
	extractor.New,
	wire.Bind(new(ingest.TextExtractor), new(*extractor.Extractor)),
	newChunker,
	wire.Bind(new(ingest.Chunker), new(*chunker.RecursiveSplitter)),
	newIngestService,
	newRAGService,
)

// BuildApplication assembles the service with Wire.
func BuildApplication() (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newGormDB,
		pipelineSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newGormDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(context.Background(), db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newEmbeddingClient(cfg *config.Config) *embedding.Client {
	return embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
}

func newGenerationClient(cfg *config.Config) *generation.Client {
	return generation.NewClient(cfg.GenerationBaseURL, cfg.GenerationAPIKey, cfg.GenerationModel)
}

func newQdrantIndex(cfg *config.Config) *qdrant.Index {
	return qdrant.NewIndex(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection, cfg.QdrantTimeout)
}

func newChunker(cfg *config.Config) *chunker.RecursiveSplitter {
	return chunker.New(
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
	)
}

func newIngestService(
	textExtractor ingest.TextExtractor,
	splitter ingest.Chunker,
	embedder vector.Embedder,
	index vector.Index,
	conversations *conversationDomain.Service,
	cfg *config.Config,
	log zerolog.Logger,
) *ingest.Service {
	return ingest.NewService(textExtractor, splitter, embedder, index, conversations, cfg.EmbedBatchSize, cfg.EmbedConcurrent, log)
}

func newRAGService(
	embedder vector.Embedder,
	index vector.Index,
	generator llm.Generator,
	conversations *conversationDomain.Service,
	cfg *config.Config,
	log zerolog.Logger,
) *rag.Service {
	return rag.NewService(embedder, index, generator, conversations, cfg.RetrievalTopK, log)
}
