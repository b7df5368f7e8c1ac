package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// SaveSession creates or updates a session.
func (s *sessionStore) SaveSession(ctx context.Context, session domain.ChatSession) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at
	`, session.ID, session.Title, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// GetSession returns a session by id.
func (s *sessionStore) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	var session domain.ChatSession
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, title, created_at, updated_at FROM chat_sessions WHERE id = ?", id)
	if err := row.Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return &session, nil
}

// ListSessions returns sessions, most recently updated first.
func (s *sessionStore) ListSessions(ctx context.Context) ([]domain.ChatSession, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, title, created_at, updated_at FROM chat_sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatSession
	for rows.Next() {
		var session domain.ChatSession
		if err := rows.Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return out, nil
}

// AppendMessage adds a message to a session.
func (s *sessionStore) AppendMessage(ctx context.Context, msg domain.ChatMessage) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, role, content, confidence, audit_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID, msg.Role, msg.Content, msg.Confidence, msg.AuditID, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// Messages returns a session's messages in chronological order.
func (s *sessionStore) Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, confidence, audit_id, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content,
			&msg.Confidence, &msg.AuditID, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return out, nil
}
