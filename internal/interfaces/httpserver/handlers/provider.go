package handlers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/domain/ingest"
	"github.com/knowyourdocs/docchat/internal/domain/rag"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	File         *FileHandler
	Conversation *ConversationHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	ingestService *ingest.Service,
	ragService *rag.Service,
	conversationService *conversation.Service,
	maxUploadBytes int64,
	streamTimeout time.Duration,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		File:         NewFileHandler(ingestService, ragService, maxUploadBytes, streamTimeout, log),
		Conversation: NewConversationHandler(conversationService, log),
	}
}
