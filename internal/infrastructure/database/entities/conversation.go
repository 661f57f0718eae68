package entities

import (
	"time"

	"github.com/knowyourdocs/docchat/internal/domain/conversation"
)

// Conversation is the database schema for conversations.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID string `gorm:"type:varchar(50);uniqueIndex;not null"`
	OwnerID  string `gorm:"type:varchar(64);index:idx_conversation_owner;not null"`
	Title    string `gorm:"type:varchar(256);not null"`

	Documents []Document    `gorm:"foreignKey:ConversationID"`
	Queries   []QueryRecord `gorm:"foreignKey:ConversationID"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// NewSchemaConversation maps a domain conversation to its entity.
func NewSchemaConversation(conv *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:        conv.ID,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		PublicID:  conv.PublicID,
		OwnerID:   conv.OwnerID,
		Title:     conv.Title,
	}
}

// EtoD maps the entity back to the domain type.
func (e *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:        e.ID,
		PublicID:  e.PublicID,
		OwnerID:   e.OwnerID,
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
