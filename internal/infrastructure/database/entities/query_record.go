package entities

import (
	"time"

	"github.com/knowyourdocs/docchat/internal/domain/conversation"
)

// QueryRecord is the database schema for completed query/response pairs.
type QueryRecord struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID       string `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID uint   `gorm:"index:idx_query_record_conversation;not null"`
	QueryText      string `gorm:"type:text;not null"`
	ResponseText   string `gorm:"type:text;not null"`
}

// TableName specifies the table name for QueryRecord.
func (QueryRecord) TableName() string {
	return "query_records"
}

// NewSchemaQueryRecord maps a domain query record to its entity.
func NewSchemaQueryRecord(record *conversation.QueryRecord) *QueryRecord {
	return &QueryRecord{
		ID:             record.ID,
		CreatedAt:      record.CreatedAt,
		PublicID:       record.PublicID,
		ConversationID: record.ConversationID,
		QueryText:      record.QueryText,
		ResponseText:   record.ResponseText,
	}
}

// EtoD maps the entity back to the domain type.
func (e *QueryRecord) EtoD() conversation.QueryRecord {
	return conversation.QueryRecord{
		ID:             e.ID,
		PublicID:       e.PublicID,
		ConversationID: e.ConversationID,
		QueryText:      e.QueryText,
		ResponseText:   e.ResponseText,
		CreatedAt:      e.CreatedAt,
	}
}
