// Package generation wraps an OpenAI-compatible chat completion endpoint
// behind the llm.Generator interface.
package generation

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/knowyourdocs/docchat/internal/domain/llm"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// Client generates answers through the chat completion API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a generation client against baseURL.
func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *Client) request(prompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
}

// Generate returns the complete answer for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, c.request(prompt))
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeGeneration, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeGeneration, "chat completion returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream opens an incremental completion for prompt.
func (c *Client) GenerateStream(ctx context.Context, prompt string) (llm.Stream, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, c.request(prompt))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeGeneration, "chat completion stream failed", err)
	}
	return &completionStream{ctx: ctx, inner: stream}, nil
}

// completionStream adapts the SDK stream to llm.Stream, skipping deltas with
// no text content. The request context is retained so mid-stream failures
// keep their request ID annotation.
type completionStream struct {
	ctx   context.Context
	inner *openai.ChatCompletionStream
}

func (s *completionStream) Recv() (string, error) {
	for {
		resp, err := s.inner.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", platformerrors.NewError(s.ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeGeneration, "chat completion stream broke", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *completionStream) Close() error {
	return s.inner.Close()
}
