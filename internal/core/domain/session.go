package domain

import "time"

// Message roles within a chat session.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession groups the messages of one conversation.
type ChatSession struct {
	// ID is the session's unique identifier.
	ID string `json:"session_id"`

	// Title is derived from the first query, truncated.
	Title string `json:"title"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one turn within a session.
type ChatMessage struct {
	// ID is the message's unique identifier.
	ID string `json:"id"`

	// SessionID links to the owning session.
	SessionID string `json:"session_id"`

	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Confidence is the trust score of an assistant message.
	Confidence float64 `json:"confidence,omitempty"`

	// AuditID links an assistant message to its evidence package.
	AuditID string `json:"audit_id,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// SessionTitle derives a session title from the opening query.
func SessionTitle(query string) string {
	const max = 50
	if len(query) > max {
		return query[:max] + "..."
	}
	return query
}
