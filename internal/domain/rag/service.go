// Package rag answers user questions by retrieving owned document chunks and
// prompting a language model with them.
package rag

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/domain/llm"
	"github.com/knowyourdocs/docchat/internal/domain/vector"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// DefaultTopK bounds how many chunks ground one answer.
const DefaultTopK = 5

// AskParams identifies one question and its scope. ConversationID may be
// empty, in which case Title is required and a conversation is created
// lazily.
type AskParams struct {
	OwnerID        string
	ConversationID string
	Title          string
	QueryText      string
}

// AskResult is the outcome of a non-streaming question.
type AskResult struct {
	Conversation *conversation.Conversation
	Created      bool
	Answer       string
}

// Service orchestrates retrieval, prompt construction, generation, and
// persistence of completed answers.
type Service struct {
	embedder      vector.Embedder
	index         vector.Index
	generator     llm.Generator
	conversations *conversation.Service
	topK          int
	log           zerolog.Logger
}

// NewService builds the RAG service. topK falls back to DefaultTopK when
// non-positive.
func NewService(
	embedder vector.Embedder,
	index vector.Index,
	generator llm.Generator,
	conversations *conversation.Service,
	topK int,
	log zerolog.Logger,
) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{
		embedder:      embedder,
		index:         index,
		generator:     generator,
		conversations: conversations,
		topK:          topK,
		log:           log,
	}
}

func (p AskParams) validate(ctx context.Context) error {
	if strings.TrimSpace(p.OwnerID) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "ownerId is missing", nil)
	}
	if strings.TrimSpace(p.QueryText) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "queryText is missing", nil)
	}
	if strings.TrimSpace(p.ConversationID) == "" && strings.TrimSpace(p.Title) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "title is required for a new conversation", nil)
	}
	return nil
}

// RetrieveContext embeds the query, searches the index scoped to the owner
// and conversation, and joins the hits in rank order. An empty string means
// zero matches; retrieval failures are returned as errors, never as empty
// context.
func (s *Service) RetrieveContext(ctx context.Context, queryText, ownerID, conversationID string) (string, error) {
	vectors, err := s.embedder.Embed(ctx, []string{queryText}, vector.InputTypeQuery)
	if err != nil {
		return "", err
	}

	hits, err := s.index.Search(ctx, vectors[0], s.topK, vector.Filter{
		OwnerID:        ownerID,
		ConversationID: conversationID,
	})
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", nil
	}

	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.Metadata.ChunkText != "" {
			texts = append(texts, hit.Metadata.ChunkText)
		}
	}
	return strings.Join(texts, ContextSeparator), nil
}

// Ask runs the full query pipeline and persists the completed answer.
func (s *Service) Ask(ctx context.Context, params AskParams) (*AskResult, error) {
	if err := params.validate(ctx); err != nil {
		return nil, err
	}

	conv, created, err := s.conversations.Ensure(ctx, params.OwnerID, params.ConversationID, params.Title)
	if err != nil {
		return nil, err
	}

	contextText, err := s.RetrieveContext(ctx, params.QueryText, params.OwnerID, conv.PublicID)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(params.QueryText, contextText)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if _, err := s.conversations.SaveQuery(ctx, conv, params.QueryText, answer); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("conversation_id", conv.PublicID).
		Bool("grounded", contextText != "").
		Msg("query answered")

	return &AskResult{Conversation: conv, Created: created, Answer: answer}, nil
}

// StreamSession is one in-flight incremental generation. The consumer reads
// deltas via Recv until io.EOF, then calls Finalize with the accumulated text
// to persist the QueryRecord. An abandoned session (client disconnect,
// mid-stream failure) is closed without Finalize and persists nothing:
// truncated answers are discarded, never saved.
type StreamSession struct {
	Conversation *conversation.Conversation
	Created      bool
	Grounded     bool

	stream    llm.Stream
	service   *Service
	queryText string
}

// Recv returns the next text delta, or io.EOF at end of stream.
func (ss *StreamSession) Recv() (string, error) {
	return ss.stream.Recv()
}

// Close releases the upstream connection.
func (ss *StreamSession) Close() error {
	return ss.stream.Close()
}

// Finalize persists the completed answer. Call only after Recv returned
// io.EOF.
func (ss *StreamSession) Finalize(ctx context.Context, fullText string) error {
	if strings.TrimSpace(fullText) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeGeneration, "model produced an empty answer", nil)
	}
	_, err := ss.service.conversations.SaveQuery(ctx, ss.Conversation, ss.queryText, fullText)
	return err
}

// OpenStream runs the pipeline up to generation and hands back a live stream.
func (s *Service) OpenStream(ctx context.Context, params AskParams) (*StreamSession, error) {
	if err := params.validate(ctx); err != nil {
		return nil, err
	}

	conv, created, err := s.conversations.Ensure(ctx, params.OwnerID, params.ConversationID, params.Title)
	if err != nil {
		return nil, err
	}

	contextText, err := s.RetrieveContext(ctx, params.QueryText, params.OwnerID, conv.PublicID)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(params.QueryText, contextText)
	stream, err := s.generator.GenerateStream(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &StreamSession{
		Conversation: conv,
		Created:      created,
		Grounded:     contextText != "",
		stream:       stream,
		service:      s,
		queryText:    params.QueryText,
	}, nil
}
