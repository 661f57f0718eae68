// Package embedding calls an OpenAI-compatible embeddings endpoint. The
// endpoint must support the input_type extension so passages and queries are
// embedded asymmetrically.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/knowyourdocs/docchat/internal/domain/vector"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

const defaultTimeout = 30 * time.Second

// Client embeds texts over HTTP.
type Client struct {
	httpClient *resty.Client
	model      string
	dimension  int
}

type embedRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	InputType      string   `json:"input_type"`
	EncodingFormat string   `json:"encoding_format"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewClient builds an embedding client. dimension is the expected vector
// width; responses with a different width are rejected.
func NewClient(baseURL, apiKey, model string, dimension int) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout)
	if apiKey != "" {
		httpClient.SetAuthToken(apiKey)
	}
	return &Client{
		httpClient: httpClient,
		model:      model,
		dimension:  dimension,
	}
}

// Dimension reports the configured vector width.
func (c *Client) Dimension() int {
	return c.dimension
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string, inputType vector.InputType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeEmbedding, "no input texts to embed", nil)
	}

	var result embedResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(embedRequest{
			Model:          c.model,
			Input:          texts,
			InputType:      string(inputType),
			EncodingFormat: "float",
		}).
		SetResult(&result).
		Post("/embeddings")
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeEmbedding, "embedding request failed", err)
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeEmbedding,
			fmt.Sprintf("embedding service returned %d: %s", resp.StatusCode(), resp.String()), nil)
	}
	if len(result.Data) != len(texts) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeEmbedding,
			fmt.Sprintf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(result.Data)), nil)
	}

	vectors := make([][]float32, len(texts))
	for _, item := range result.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeEmbedding,
				fmt.Sprintf("embedding index %d out of range", item.Index), nil)
		}
		if c.dimension > 0 && len(item.Embedding) != c.dimension {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeEmbedding,
				fmt.Sprintf("embedding dimension mismatch: want %d, got %d", c.dimension, len(item.Embedding)), nil)
		}
		vectors[item.Index] = item.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeEmbedding,
				fmt.Sprintf("embedding missing for input %d", i), nil)
		}
	}
	return vectors, nil
}
