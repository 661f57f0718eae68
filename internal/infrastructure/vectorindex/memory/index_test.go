package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowyourdocs/docchat/internal/domain/vector"
)

func record(id, owner, conv string, chunkIndex int, embedding []float32) vector.Record {
	return vector.Record{
		ID:        id,
		Embedding: embedding,
		Metadata: vector.Metadata{
			ChunkText:      "chunk " + id,
			FileName:       "doc.txt",
			OwnerID:        owner,
			ConversationID: conv,
			ChunkIndex:     chunkIndex,
		},
	}
}

func TestSearchOrdersByCosineSimilarity(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()

	require.NoError(t, idx.Upsert(ctx, []vector.Record{
		record("a", "user-1", "conv-1", 0, []float32{1, 0, 0}),
		record("b", "user-1", "conv-1", 1, []float32{0.9, 0.1, 0}),
		record("c", "user-1", "conv-1", 2, []float32{0, 1, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2, vector.Filter{
		OwnerID:        "user-1",
		ConversationID: "conv-1",
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "b", hits[1].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSearchNeverCrossesScope(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()

	require.NoError(t, idx.Upsert(ctx, []vector.Record{
		record("mine", "user-1", "conv-1", 0, []float32{1, 0}),
		record("other-owner", "user-2", "conv-1", 0, []float32{1, 0}),
		record("other-conv", "user-1", "conv-2", 0, []float32{1, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, vector.Filter{
		OwnerID:        "user-1",
		ConversationID: "conv-1",
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "mine", hits[0].ID)
}

func TestSearchRequiresFullScope(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()

	_, err := idx.Search(ctx, []float32{1, 0}, 5, vector.Filter{OwnerID: "user-1"})
	require.Error(t, err)

	_, err = idx.Search(ctx, []float32{1, 0}, 5, vector.Filter{ConversationID: "conv-1"})
	require.Error(t, err)
}

func TestUpsertLastWriteWins(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()

	require.NoError(t, idx.Upsert(ctx, []vector.Record{
		record("a", "user-1", "conv-1", 0, []float32{1, 0}),
	}))
	updated := record("a", "user-1", "conv-1", 0, []float32{0, 1})
	updated.Metadata.ChunkText = "updated"
	require.NoError(t, idx.Upsert(ctx, []vector.Record{updated}))

	assert.Equal(t, 1, idx.Len())

	hits, err := idx.Search(ctx, []float32{0, 1}, 1, vector.Filter{
		OwnerID:        "user-1",
		ConversationID: "conv-1",
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "updated", hits[0].Metadata.ChunkText)
}

func TestSearchEmptyScopeReturnsNoHits(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()

	hits, err := idx.Search(ctx, []float32{1, 0}, 5, vector.Filter{
		OwnerID:        "user-1",
		ConversationID: "conv-1",
	})
	require.NoError(t, err)
	assert.Empty(t, hits)
}
