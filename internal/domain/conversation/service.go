package conversation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/knowyourdocs/docchat/internal/utils/idgen"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

const publicIDLength = 16

// Service owns conversation lifecycle and enforces owner scoping on every
// read. A conversation fetched with the wrong owner is reported as not found,
// never as someone else's data.
type Service struct {
	conversations Repository
	documents     DocumentRepository
	queries       QueryRepository
	log           zerolog.Logger
}

// NewService builds the conversation service.
func NewService(
	conversations Repository,
	documents DocumentRepository,
	queries QueryRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		conversations: conversations,
		documents:     documents,
		queries:       queries,
		log:           log,
	}
}

// Create starts a new conversation for ownerID.
func (s *Service) Create(ctx context.Context, ownerID, title string) (*Conversation, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "ownerId is missing", nil)
	}
	if strings.TrimSpace(title) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "title is required for a new conversation", nil)
	}

	conv := &Conversation{
		PublicID: idgen.MustGenerateSecureID("conv", publicIDLength),
		OwnerID:  ownerID,
		Title:    title,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("conversation_id", conv.PublicID).
		Str("owner_id", ownerID).
		Msg("conversation created")
	return conv, nil
}

// Ensure resolves publicID to an owned conversation, creating one lazily when
// publicID is empty. The bool result reports whether a conversation was
// created by this call.
func (s *Service) Ensure(ctx context.Context, ownerID, publicID, title string) (*Conversation, bool, error) {
	if strings.TrimSpace(publicID) == "" {
		conv, err := s.Create(ctx, ownerID, title)
		if err != nil {
			return nil, false, err
		}
		return conv, true, nil
	}

	conv, err := s.Get(ctx, publicID, ownerID)
	if err != nil {
		return nil, false, err
	}
	return conv, false, nil
}

// Get fetches an owned conversation by public ID.
func (s *Service) Get(ctx context.Context, publicID, ownerID string) (*Conversation, error) {
	conv, err := s.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if conv.OwnerID != ownerID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "conversation not found: "+publicID, nil)
	}
	return conv, nil
}

// ListByOwner returns the owner's conversations, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Conversation, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "ownerId is missing", nil)
	}
	return s.conversations.ListByOwner(ctx, ownerID)
}

// SaveDocument records document metadata inside an owned conversation.
func (s *Service) SaveDocument(ctx context.Context, conv *Conversation, fileName string) (*Document, error) {
	doc := &Document{
		PublicID:       idgen.MustGenerateSecureID("doc", publicIDLength),
		ConversationID: conv.ID,
		FileName:       fileName,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SaveQuery appends a completed query/response pair to the conversation.
func (s *Service) SaveQuery(ctx context.Context, conv *Conversation, queryText, responseText string) (*QueryRecord, error) {
	record := &QueryRecord{
		PublicID:       idgen.MustGenerateSecureID("qr", publicIDLength),
		ConversationID: conv.ID,
		QueryText:      queryText,
		ResponseText:   responseText,
	}
	if err := s.queries.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// History returns the documents and ordered query/response pairs of an owned
// conversation.
func (s *Service) History(ctx context.Context, publicID, ownerID string) (*History, error) {
	conv, err := s.Get(ctx, publicID, ownerID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	queries, err := s.queries.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	return &History{
		Conversation: conv,
		Documents:    docs,
		Queries:      queries,
	}, nil
}
