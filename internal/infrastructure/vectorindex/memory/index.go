// Package memory is an in-process vector index for tests and local runs
// without a Qdrant instance. Brute-force cosine over a map; not meant for
// large corpora.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/knowyourdocs/docchat/internal/domain/vector"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// Index keeps all records in memory.
type Index struct {
	mu      sync.RWMutex
	records map[string]vector.Record
}

// NewIndex builds an empty in-memory index.
func NewIndex() *Index {
	return &Index{records: make(map[string]vector.Record)}
}

// EnsureReady is a no-op; the map is always ready.
func (i *Index) EnsureReady(ctx context.Context, dimension int) error {
	return nil
}

// Upsert stores records, last write wins per ID.
func (i *Index) Upsert(ctx context.Context, records []vector.Record) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, rec := range records {
		i.records[rec.ID] = rec
	}
	return nil
}

// Len reports how many records are stored.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.records)
}

// Search scans every record in the filter scope and returns the topK by
// cosine similarity, best first.
func (i *Index) Search(ctx context.Context, queryVector []float32, topK int, filter vector.Filter) ([]vector.Hit, error) {
	if filter.OwnerID == "" || filter.ConversationID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVectorIndex, "search filter requires owner and conversation", nil)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]vector.Hit, 0)
	for _, rec := range i.records {
		if rec.Metadata.OwnerID != filter.OwnerID || rec.Metadata.ConversationID != filter.ConversationID {
			continue
		}
		hits = append(hits, vector.Hit{
			ID:       rec.ID,
			Score:    cosine(queryVector, rec.Embedding),
			Metadata: rec.Metadata,
		})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for idx := range a {
		dot += float64(a[idx]) * float64(b[idx])
		normA += float64(a[idx]) * float64(a[idx])
		normB += float64(b[idx]) * float64(b[idx])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
