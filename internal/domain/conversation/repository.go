package conversation

import "context"

// Repository persists conversation rows.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Conversation, error)
}

// DocumentRepository persists document metadata rows.
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	ListByConversation(ctx context.Context, conversationID uint) ([]Document, error)
}

// QueryRepository persists completed query/response pairs.
type QueryRepository interface {
	Create(ctx context.Context, record *QueryRecord) error
	ListByConversation(ctx context.Context, conversationID uint) ([]QueryRecord, error)
}
