package entities

import (
	"time"

	"github.com/knowyourdocs/docchat/internal/domain/conversation"
)

// Document is the database schema for uploaded document metadata.
type Document struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID       string `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID uint   `gorm:"index:idx_document_conversation;not null"`
	FileName       string `gorm:"type:varchar(512);not null"`
}

// TableName specifies the table name for Document.
func (Document) TableName() string {
	return "documents"
}

// NewSchemaDocument maps a domain document to its entity.
func NewSchemaDocument(doc *conversation.Document) *Document {
	return &Document{
		ID:             doc.ID,
		CreatedAt:      doc.CreatedAt,
		PublicID:       doc.PublicID,
		ConversationID: doc.ConversationID,
		FileName:       doc.FileName,
	}
}

// EtoD maps the entity back to the domain type.
func (e *Document) EtoD() conversation.Document {
	return conversation.Document{
		ID:             e.ID,
		PublicID:       e.PublicID,
		ConversationID: e.ConversationID,
		FileName:       e.FileName,
		CreatedAt:      e.CreatedAt,
	}
}
