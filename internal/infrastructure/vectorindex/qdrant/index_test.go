package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowyourdocs/docchat/internal/domain/vector"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

func TestEnsureReadyCreatesMissingCollection(t *testing.T) {
	var createdBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/docs":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&createdBody))
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	idx := NewIndex(server.URL, "", "docs", time.Second)
	require.NoError(t, idx.EnsureReady(context.Background(), 1024))

	vectors, ok := createdBody["vectors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1024), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestEnsureReadySkipsExistingCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	idx := NewIndex(server.URL, "", "docs", time.Second)
	require.NoError(t, idx.EnsureReady(context.Background(), 1024))
}

func TestUpsertWaitsAndCarriesPayload(t *testing.T) {
	var query string
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/docs/points", r.URL.Path)
		query = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	idx := NewIndex(server.URL, "", "docs", time.Second)
	err := idx.Upsert(context.Background(), []vector.Record{{
		ID:        "6f1c2a34-9d0b-4c57-8a21-3e5f7b9d1c02",
		Embedding: []float32{1, 0},
		Metadata: vector.Metadata{
			ChunkText:      "a chunk",
			FileName:       "doc.txt",
			OwnerID:        "user-1",
			ConversationID: "conv-1",
			ChunkIndex:     3,
		},
	}})
	require.NoError(t, err)

	assert.Equal(t, "wait=true", query)
	points, ok := body["points"].([]any)
	require.True(t, ok)
	require.Len(t, points, 1)
	point := points[0].(map[string]any)
	assert.Equal(t, "6f1c2a34-9d0b-4c57-8a21-3e5f7b9d1c02", point["id"])
	payload := point["payload"].(map[string]any)
	assert.Equal(t, "a chunk", payload["chunk_text"])
	assert.Equal(t, "user-1", payload["owner_id"])
	assert.Equal(t, "conv-1", payload["conversation_id"])
	assert.Equal(t, float64(3), payload["chunk_index"])
}

func TestSearchSendsScopedFilter(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/docs/points/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"id":    "a4e3b6d8-1f20-4b9c-9e57-0c2d4f6a8b13",
					"score": 0.92,
					"payload": map[string]any{
						"chunk_text":      "hit text",
						"file_name":       "doc.txt",
						"owner_id":        "user-1",
						"conversation_id": "conv-1",
						"chunk_index":     0,
					},
				},
			},
		})
	}))
	defer server.Close()

	idx := NewIndex(server.URL, "", "docs", time.Second)
	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5, vector.Filter{
		OwnerID:        "user-1",
		ConversationID: "conv-1",
	})
	require.NoError(t, err)

	assert.Equal(t, float64(5), body["limit"])
	assert.Equal(t, true, body["with_payload"])
	filter := body["filter"].(map[string]any)
	must := filter["must"].([]any)
	require.Len(t, must, 2)
	keys := map[string]string{}
	for _, cond := range must {
		m := cond.(map[string]any)
		keys[m["key"].(string)] = m["match"].(map[string]any)["value"].(string)
	}
	assert.Equal(t, "user-1", keys["owner_id"])
	assert.Equal(t, "conv-1", keys["conversation_id"])

	require.Len(t, hits, 1)
	assert.Equal(t, "a4e3b6d8-1f20-4b9c-9e57-0c2d4f6a8b13", hits[0].ID)
	assert.Equal(t, "hit text", hits[0].Metadata.ChunkText)
	assert.InDelta(t, 0.92, float64(hits[0].Score), 1e-6)
}

func TestSearchRefusesUnscopedFilter(t *testing.T) {
	idx := NewIndex("http://unused", "", "docs", time.Second)

	_, err := idx.Search(context.Background(), []float32{1, 0}, 5, vector.Filter{OwnerID: "user-1"})
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeVectorIndex, platformerrors.TypeOf(err))
}
