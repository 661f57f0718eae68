// Package ingest runs the document ingestion pipeline: extract text, chunk
// it, embed the chunks, and upsert them into the vector index.
package ingest

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/domain/vector"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// TextExtractor converts an uploaded binary file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, buf []byte, fileName string) (string, error)
}

// Chunker produces the ordered, overlapping chunk sequence for a text.
type Chunker interface {
	Split(text string) []string
}

// Params describes one upload. ConversationID may be empty; the conversation
// is then created lazily with the file name as its title.
type Params struct {
	OwnerID        string
	ConversationID string
	FileName       string
	FileBuffer     []byte
}

// Result reports a completed ingestion.
type Result struct {
	Conversation    *conversation.Conversation
	Created         bool
	Document        *conversation.Document
	ChunksProcessed int
}

// Service is the ingestion pipeline.
type Service struct {
	extractor     TextExtractor
	chunker       Chunker
	embedder      vector.Embedder
	index         vector.Index
	conversations *conversation.Service
	batchSize     int
	concurrency   int
	log           zerolog.Logger
}

// NewService builds the ingestion service. batchSize and concurrency bound
// the embedding calls per upload.
func NewService(
	extractor TextExtractor,
	chunker Chunker,
	embedder vector.Embedder,
	index vector.Index,
	conversations *conversation.Service,
	batchSize int,
	concurrency int,
	log zerolog.Logger,
) *Service {
	if batchSize <= 0 {
		batchSize = 32
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{
		extractor:     extractor,
		chunker:       chunker,
		embedder:      embedder,
		index:         index,
		conversations: conversations,
		batchSize:     batchSize,
		concurrency:   concurrency,
		log:           log,
	}
}

// Ingest runs the full pipeline for one upload. Chunk order is preserved
// end-to-end: slice position, metadata chunk index, and upsert order all
// agree, so the original document order is reconstructable.
func (s *Service) Ingest(ctx context.Context, params Params) (*Result, error) {
	if strings.TrimSpace(params.OwnerID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "ownerId is missing", nil)
	}
	if len(params.FileBuffer) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "file is missing", nil)
	}

	conv, created, err := s.conversations.Ensure(ctx, params.OwnerID, params.ConversationID, params.FileName)
	if err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, params.FileBuffer, params.FileName)
	if err != nil {
		return nil, err
	}

	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExtraction, "document produced no chunks", nil)
	}

	embeddings, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	records := make([]vector.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vector.Record{
			// UUIDs: Qdrant accepts only unsigned integers or UUIDs as
			// point IDs, and random IDs keep concurrent uploads of
			// identically named files from colliding.
			ID:        uuid.NewString(),
			Embedding: embeddings[i],
			Metadata: vector.Metadata{
				ChunkText:      chunk,
				FileName:       params.FileName,
				OwnerID:        params.OwnerID,
				ConversationID: conv.PublicID,
				ChunkIndex:     i,
			},
		}
	}

	if err := s.index.Upsert(ctx, records); err != nil {
		return nil, err
	}

	doc, err := s.conversations.SaveDocument(ctx, conv, params.FileName)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("conversation_id", conv.PublicID).
		Str("file_name", params.FileName).
		Int("chunks", len(chunks)).
		Msg("document ingested")

	return &Result{
		Conversation:    conv,
		Created:         created,
		Document:        doc,
		ChunksProcessed: len(chunks),
	}, nil
}

// embedChunks embeds batches concurrently while keeping result order aligned
// with chunk order.
func (s *Service) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	embeddings := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		start, end := start, end
		g.Go(func() error {
			vectors, err := s.embedder.Embed(gctx, chunks[start:end], vector.InputTypePassage)
			if err != nil {
				return err
			}
			copy(embeddings[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}
