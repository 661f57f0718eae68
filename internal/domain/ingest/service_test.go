package ingest

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowyourdocs/docchat/internal/chunker"
	"github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/domain/vector"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, buf []byte, fileName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string, inputType vector.InputType) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if inputType != vector.InputTypePassage {
		panic("ingestion must embed with passage input type")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1, 0}
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

type capturingIndex struct {
	mu      sync.Mutex
	records []vector.Record
}

func (c *capturingIndex) EnsureReady(ctx context.Context, dimension int) error { return nil }

func (c *capturingIndex) Upsert(ctx context.Context, records []vector.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, records...)
	return nil
}

func (c *capturingIndex) Search(ctx context.Context, queryVector []float32, topK int, filter vector.Filter) ([]vector.Hit, error) {
	return nil, nil
}

type memConversationRepo struct {
	seq   uint
	items map[string]*conversation.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{items: make(map[string]*conversation.Conversation)}
}

func (r *memConversationRepo) Create(ctx context.Context, conv *conversation.Conversation) error {
	r.seq++
	conv.ID = r.seq
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt
	stored := *conv
	r.items[conv.PublicID] = &stored
	return nil
}

func (r *memConversationRepo) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	if conv, ok := r.items[publicID]; ok {
		found := *conv
		return &found, nil
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "conversation not found: "+publicID, nil)
}

func (r *memConversationRepo) ListByOwner(ctx context.Context, ownerID string) ([]*conversation.Conversation, error) {
	var result []*conversation.Conversation
	for _, conv := range r.items {
		if conv.OwnerID == ownerID {
			found := *conv
			result = append(result, &found)
		}
	}
	return result, nil
}

type memDocumentRepo struct {
	docs []conversation.Document
}

func (r *memDocumentRepo) Create(ctx context.Context, doc *conversation.Document) error {
	doc.ID = uint(len(r.docs) + 1)
	doc.CreatedAt = time.Now()
	r.docs = append(r.docs, *doc)
	return nil
}

func (r *memDocumentRepo) ListByConversation(ctx context.Context, conversationID uint) ([]conversation.Document, error) {
	var result []conversation.Document
	for _, doc := range r.docs {
		if doc.ConversationID == conversationID {
			result = append(result, doc)
		}
	}
	return result, nil
}

type memQueryRepo struct {
	records []conversation.QueryRecord
}

func (r *memQueryRepo) Create(ctx context.Context, record *conversation.QueryRecord) error {
	record.ID = uint(len(r.records) + 1)
	record.CreatedAt = time.Now()
	r.records = append(r.records, *record)
	return nil
}

func (r *memQueryRepo) ListByConversation(ctx context.Context, conversationID uint) ([]conversation.QueryRecord, error) {
	var result []conversation.QueryRecord
	for _, record := range r.records {
		if record.ConversationID == conversationID {
			result = append(result, record)
		}
	}
	return result, nil
}

type fixture struct {
	service  *Service
	index    *capturingIndex
	embedder *fakeEmbedder
	docs     *memDocumentRepo
	convs    *conversation.Service
}

func newFixture(t *testing.T, text string) *fixture {
	t.Helper()

	docs := &memDocumentRepo{}
	convService := conversation.NewService(newMemConversationRepo(), docs, &memQueryRepo{}, zerolog.Nop())
	embedder := &fakeEmbedder{}
	index := &capturingIndex{}
	splitter := chunker.New(chunker.WithChunkSize(100), chunker.WithOverlap(20))

	return &fixture{
		service:  NewService(&fakeExtractor{text: text}, splitter, embedder, index, convService, 2, 2, zerolog.Nop()),
		index:    index,
		embedder: embedder,
		docs:     docs,
		convs:    convService,
	}
}

func TestIngestValidation(t *testing.T) {
	f := newFixture(t, "hello world")
	ctx := context.Background()

	_, err := f.service.Ingest(ctx, Params{FileName: "a.txt", FileBuffer: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeValidation, platformerrors.TypeOf(err))

	_, err = f.service.Ingest(ctx, Params{OwnerID: "user-1", FileName: "a.txt"})
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeValidation, platformerrors.TypeOf(err))
}

func TestIngestCreatesConversationTitledAfterFile(t *testing.T) {
	f := newFixture(t, "hello world")
	ctx := context.Background()

	result, err := f.service.Ingest(ctx, Params{
		OwnerID:    "user-1",
		FileName:   "handbook.pdf",
		FileBuffer: []byte("raw bytes"),
	})
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, "handbook.pdf", result.Conversation.Title)
	assert.Equal(t, "user-1", result.Conversation.OwnerID)
	require.Len(t, f.docs.docs, 1)
	assert.Equal(t, "handbook.pdf", f.docs.docs[0].FileName)
}

func TestIngestReusesExistingConversation(t *testing.T) {
	f := newFixture(t, "hello world")
	ctx := context.Background()

	conv, err := f.convs.Create(ctx, "user-1", "existing chat")
	require.NoError(t, err)

	result, err := f.service.Ingest(ctx, Params{
		OwnerID:        "user-1",
		ConversationID: conv.PublicID,
		FileName:       "second.txt",
		FileBuffer:     []byte("raw bytes"),
	})
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, conv.PublicID, result.Conversation.PublicID)
	assert.Equal(t, "existing chat", result.Conversation.Title)
}

func TestIngestPreservesChunkOrderAcrossBatches(t *testing.T) {
	// Long enough for several chunks with batch size 2 and two workers.
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Sentence number fills the chunk with text. ")
	}
	f := newFixture(t, b.String())
	ctx := context.Background()

	result, err := f.service.Ingest(ctx, Params{
		OwnerID:    "user-1",
		FileName:   "long.txt",
		FileBuffer: []byte("raw bytes"),
	})
	require.NoError(t, err)
	require.Greater(t, result.ChunksProcessed, 4)
	require.Len(t, f.index.records, result.ChunksProcessed)
	assert.Greater(t, f.embedder.calls, 1)

	for i, rec := range f.index.records {
		assert.Equal(t, i, rec.Metadata.ChunkIndex)
		assert.Equal(t, "user-1", rec.Metadata.OwnerID)
		assert.Equal(t, result.Conversation.PublicID, rec.Metadata.ConversationID)
		assert.Equal(t, "long.txt", rec.Metadata.FileName)
		assert.NotEmpty(t, rec.Metadata.ChunkText)
		// Embedding must belong to this chunk, not a reordered batch.
		assert.Equal(t, float32(len(rec.Metadata.ChunkText)), rec.Embedding[0])
	}
}

func TestIngestAssignsUniqueUUIDPointIDs(t *testing.T) {
	// Qdrant rejects any point ID that is not an unsigned integer or a UUID.
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("Sentence number fills the chunk with text. ")
	}
	f := newFixture(t, b.String())

	result, err := f.service.Ingest(context.Background(), Params{
		OwnerID:    "user-1",
		FileName:   "ids.txt",
		FileBuffer: []byte("raw bytes"),
	})
	require.NoError(t, err)
	require.Greater(t, result.ChunksProcessed, 1)

	seen := make(map[string]bool, len(f.index.records))
	for _, rec := range f.index.records {
		_, err := uuid.Parse(rec.ID)
		require.NoError(t, err, "record ID %q is not a UUID", rec.ID)
		assert.False(t, seen[rec.ID], "duplicate record ID %q", rec.ID)
		seen[rec.ID] = true
	}
}

func TestIngestSurfacesExtractionFailure(t *testing.T) {
	f := newFixture(t, "")
	f.service.extractor = &fakeExtractor{
		err: platformerrors.NewError(context.Background(), platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExtraction, "no text", nil),
	}

	_, err := f.service.Ingest(context.Background(), Params{
		OwnerID:    "user-1",
		FileName:   "broken.pdf",
		FileBuffer: []byte("raw bytes"),
	})
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeExtraction, platformerrors.TypeOf(err))
	assert.Empty(t, f.index.records)
}
