package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RAGDocument is a user-owned text blob with a stored heuristic embedding.
type RAGDocument struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Name      string          `json:"name" db:"name"`
	Content   string          `json:"content" db:"content"`
	Embedding []float32       `json:"-" db:"embedding"`
	Metadata  json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

type Conversation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Message is one turn in a conversation. Assistant messages carry the ids
// of the documents used to ground the answer.
type Message struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	ConversationID uuid.UUID   `json:"conversation_id" db:"conversation_id"`
	Role           string      `json:"role" db:"role"`
	Content        string      `json:"content" db:"content"`
	SourceIDs      []uuid.UUID `json:"source_ids,omitempty" db:"source_ids"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}
