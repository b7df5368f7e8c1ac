package driven

import (
	"context"

	"github.com/openaudit/govquery/internal/core/domain"
)

// AuditStore persists the audit trail of answered queries.
type AuditStore interface {
	// Append records one audited response.
	Append(ctx context.Context, entry domain.AuditEntry) error

	// List returns the most recent entries, newest first.
	List(ctx context.Context, limit int) ([]domain.AuditEntry, error)

	// Metrics summarises the trail for the trust dashboard.
	Metrics(ctx context.Context) (*domain.TrustMetrics, error)
}

// SessionStore persists chat sessions and their messages.
type SessionStore interface {
	// SaveSession creates or updates a session.
	SaveSession(ctx context.Context, session domain.ChatSession) error

	// GetSession returns a session by id.
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)

	// ListSessions returns sessions, most recently updated first.
	ListSessions(ctx context.Context) ([]domain.ChatSession, error)

	// AppendMessage adds a message to a session.
	AppendMessage(ctx context.Context, msg domain.ChatMessage) error

	// Messages returns a session's messages in chronological order.
	Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}
