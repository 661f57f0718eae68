// Package qdrant implements the vector index on a Qdrant collection over its
// HTTP API.
package qdrant

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/knowyourdocs/docchat/internal/domain/vector"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

const (
	payloadChunkText      = "chunk_text"
	payloadFileName       = "file_name"
	payloadOwnerID        = "owner_id"
	payloadConversationID = "conversation_id"
	payloadChunkIndex     = "chunk_index"
)

// Index stores and searches chunk vectors in one Qdrant collection.
type Index struct {
	httpClient *resty.Client
	collection string
}

// NewIndex builds a Qdrant-backed index.
func NewIndex(baseURL, apiKey, collection string, timeout time.Duration) *Index {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)
	if apiKey != "" {
		httpClient.SetHeader("api-key", apiKey)
	}
	return &Index{httpClient: httpClient, collection: collection}
}

type collectionConfig struct {
	Vectors struct {
		Size     int    `json:"size"`
		Distance string `json:"distance"`
	} `json:"vectors"`
}

type pointPayload map[string]any

type upsertPoint struct {
	ID      string       `json:"id"`
	Vector  []float32    `json:"vector"`
	Payload pointPayload `json:"payload"`
}

type searchCondition struct {
	Key   string `json:"key"`
	Match struct {
		Value string `json:"value"`
	} `json:"match"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
	Filter      struct {
		Must []searchCondition `json:"must"`
	} `json:"filter"`
}

type searchResponse struct {
	Result []struct {
		ID      string       `json:"id"`
		Score   float32      `json:"score"`
		Payload pointPayload `json:"payload"`
	} `json:"result"`
}

func (i *Index) indexErr(ctx context.Context, msg string, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeVectorIndex, msg, err)
}

// EnsureReady creates the collection if it does not exist yet and verifies
// the server responds. Call once at startup; searches against a missing
// collection would otherwise fail per request.
func (i *Index) EnsureReady(ctx context.Context, dimension int) error {
	resp, err := i.httpClient.R().
		SetContext(ctx).
		Get("/collections/" + i.collection)
	if err != nil {
		return i.indexErr(ctx, "vector index is unreachable", err)
	}
	if resp.StatusCode() == http.StatusOK {
		return nil
	}
	if resp.StatusCode() != http.StatusNotFound {
		return i.indexErr(ctx,
			fmt.Sprintf("vector index returned %d: %s", resp.StatusCode(), resp.String()), nil)
	}

	var cfg collectionConfig
	cfg.Vectors.Size = dimension
	cfg.Vectors.Distance = "Cosine"

	resp, err = i.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(cfg).
		Put("/collections/" + i.collection)
	if err != nil {
		return i.indexErr(ctx, "failed to create vector collection", err)
	}
	if resp.IsError() {
		return i.indexErr(ctx,
			fmt.Sprintf("failed to create vector collection (%d): %s", resp.StatusCode(), resp.String()), nil)
	}
	return nil
}

// Upsert writes records with wait=true so a subsequent search sees them.
func (i *Index) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]upsertPoint, len(records))
	for idx, rec := range records {
		points[idx] = upsertPoint{
			ID:     rec.ID,
			Vector: rec.Embedding,
			Payload: pointPayload{
				payloadChunkText:      rec.Metadata.ChunkText,
				payloadFileName:       rec.Metadata.FileName,
				payloadOwnerID:        rec.Metadata.OwnerID,
				payloadConversationID: rec.Metadata.ConversationID,
				payloadChunkIndex:     rec.Metadata.ChunkIndex,
			},
		}
	}

	resp, err := i.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("wait", "true").
		SetBody(map[string]any{"points": points}).
		Put("/collections/" + i.collection + "/points")
	if err != nil {
		return i.indexErr(ctx, "vector upsert failed", err)
	}
	if resp.IsError() {
		return i.indexErr(ctx,
			fmt.Sprintf("vector upsert returned %d: %s", resp.StatusCode(), resp.String()), nil)
	}
	return nil
}

// Search returns the topK nearest records restricted to the filter scope.
// Both owner and conversation conditions are always sent; an unscoped search
// would leak chunks across tenants.
func (i *Index) Search(ctx context.Context, queryVector []float32, topK int, filter vector.Filter) ([]vector.Hit, error) {
	if filter.OwnerID == "" || filter.ConversationID == "" {
		return nil, i.indexErr(ctx, "search filter requires owner and conversation", nil)
	}

	req := searchRequest{
		Vector:      queryVector,
		Limit:       topK,
		WithPayload: true,
	}
	owner := searchCondition{Key: payloadOwnerID}
	owner.Match.Value = filter.OwnerID
	conv := searchCondition{Key: payloadConversationID}
	conv.Match.Value = filter.ConversationID
	req.Filter.Must = []searchCondition{owner, conv}

	var result searchResponse
	resp, err := i.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post("/collections/" + i.collection + "/points/search")
	if err != nil {
		return nil, i.indexErr(ctx, "vector search failed", err)
	}
	if resp.IsError() {
		return nil, i.indexErr(ctx,
			fmt.Sprintf("vector search returned %d: %s", resp.StatusCode(), resp.String()), nil)
	}

	hits := make([]vector.Hit, 0, len(result.Result))
	for _, point := range result.Result {
		hits = append(hits, vector.Hit{
			ID:    point.ID,
			Score: point.Score,
			Metadata: vector.Metadata{
				ChunkText:      payloadString(point.Payload, payloadChunkText),
				FileName:       payloadString(point.Payload, payloadFileName),
				OwnerID:        payloadString(point.Payload, payloadOwnerID),
				ConversationID: payloadString(point.Payload, payloadConversationID),
				ChunkIndex:     payloadInt(point.Payload, payloadChunkIndex),
			},
		})
	}
	return hits, nil
}

func payloadString(p pointPayload, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func payloadInt(p pointPayload, key string) int {
	// JSON numbers decode as float64.
	if v, ok := p[key].(float64); ok {
		return int(v)
	}
	return 0
}
