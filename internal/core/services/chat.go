package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
	"github.com/openaudit/govquery/internal/core/ports/driving"
	"github.com/openaudit/govquery/internal/logger"
)

// ChatService layers persistent conversations over the query pipeline.
// Answers go through the same routing and scoring as direct queries;
// the session only adds history.
type ChatService struct {
	queries  driving.QueryService
	sessions driven.SessionStore
}

var _ driving.ChatService = (*ChatService)(nil)

// NewChatService creates a chat service over the query pipeline.
func NewChatService(queries driving.QueryService, sessions driven.SessionStore) *ChatService {
	return &ChatService{queries: queries, sessions: sessions}
}

// Ask submits a query within a session, creating one when sessionID is
// empty. The user message is persisted before the query runs so a
// failed query still leaves the question in the history.
func (c *ChatService) Ask(ctx context.Context, sessionID, query string, queryContext map[string]string) (*domain.ChatMessage, *domain.Response, error) {
	now := time.Now().UTC()

	session, err := c.ensureSession(ctx, sessionID, query, now)
	if err != nil {
		return nil, nil, err
	}

	userMsg := domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   query,
		Timestamp: now,
	}
	if err := c.sessions.AppendMessage(ctx, userMsg); err != nil {
		return nil, nil, fmt.Errorf("append user message: %w", err)
	}

	resp, err := c.queries.Submit(ctx, domain.Query{Text: query, Context: queryContext})
	if err != nil {
		return nil, nil, err
	}

	reply := domain.ChatMessage{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		Role:       domain.RoleAssistant,
		Content:    resp.Result.Answer,
		Confidence: resp.Confidence,
		AuditID:    resp.Evidence.AuditID,
		Timestamp:  time.Now().UTC(),
	}
	if err := c.sessions.AppendMessage(ctx, reply); err != nil {
		return nil, nil, fmt.Errorf("append assistant message: %w", err)
	}

	session.UpdatedAt = reply.Timestamp
	if err := c.sessions.SaveSession(ctx, *session); err != nil {
		logger.Warn("Session timestamp update failed: %v", err)
	}

	return &reply, resp, nil
}

// Sessions lists sessions, most recently updated first.
func (c *ChatService) Sessions(ctx context.Context) ([]domain.ChatSession, error) {
	return c.sessions.ListSessions(ctx)
}

// History returns a session's messages in chronological order.
func (c *ChatService) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if _, err := c.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return c.sessions.Messages(ctx, sessionID)
}

func (c *ChatService) ensureSession(ctx context.Context, sessionID, query string, now time.Time) (*domain.ChatSession, error) {
	if sessionID != "" {
		session, err := c.sessions.GetSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return session, nil
	}

	session := domain.ChatSession{
		ID:        uuid.NewString(),
		Title:     domain.SessionTitle(query),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Debug("Created session %s", session.ID)
	return &session, nil
}
