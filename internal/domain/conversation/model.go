package conversation

import "time"

// Conversation groups one document-upload-and-query session for an owner.
type Conversation struct {
	ID        uint      `json:"-"`
	PublicID  string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// Document records the metadata of a successfully extracted upload. The file
// body itself is never stored; only its embedded chunks live in the vector
// index.
type Document struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	ConversationID uint      `json:"-"`
	FileName       string    `json:"fileName"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QueryRecord is one completed question/answer pair. Records are append-only;
// creation order defines the conversational history display order.
type QueryRecord struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	ConversationID uint      `json:"-"`
	QueryText      string    `json:"queryText"`
	ResponseText   string    `json:"responseText"`
	CreatedAt      time.Time `json:"createdAt"`
}

// History is the owner-scoped view of one conversation: its documents plus
// query/response pairs ordered by creation time.
type History struct {
	Conversation *Conversation `json:"conversation"`
	Documents    []Document    `json:"documents"`
	Queries      []QueryRecord `json:"queries"`
}
