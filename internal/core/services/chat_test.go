package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/govquery/internal/adapters/driven/storage/memory"
	"github.com/openaudit/govquery/internal/core/domain"
)

func setupChatService(t *testing.T) *ChatService {
	t.Helper()
	queries, _ := setupQueryService(t)
	return NewChatService(queries, memory.NewSessionStore())
}

func TestChatService_CreatesSession(t *testing.T) {
	chat := setupChatService(t)
	ctx := context.Background()

	reply, resp, err := chat.Ask(ctx, "", "total education budget", nil)

	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, resp.Evidence.AuditID, reply.AuditID)
	assert.InDelta(t, resp.Confidence, reply.Confidence, 0.0001)

	sessions, err := chat.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "total education budget", sessions[0].Title)
}

func TestChatService_ReusesSession(t *testing.T) {
	chat := setupChatService(t)
	ctx := context.Background()

	first, _, err := chat.Ask(ctx, "", "total education budget", nil)
	require.NoError(t, err)

	second, _, err := chat.Ask(ctx, first.SessionID, "find health payments", nil)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	history, err := chat.History(ctx, first.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, "find health payments", history[2].Content)
}

func TestChatService_UnknownSession(t *testing.T) {
	chat := setupChatService(t)
	ctx := context.Background()

	_, _, err := chat.Ask(ctx, "no-such-session", "total education budget", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = chat.History(ctx, "no-such-session")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatService_BlankQueryKeepsUserMessage(t *testing.T) {
	chat := setupChatService(t)
	ctx := context.Background()

	first, _, err := chat.Ask(ctx, "", "total education budget", nil)
	require.NoError(t, err)

	_, _, err = chat.Ask(ctx, first.SessionID, "   ", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// The failed question is still recorded; no assistant reply is.
	history, err := chat.History(ctx, first.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.RoleUser, history[2].Role)
}

func TestSessionTitleTruncated(t *testing.T) {
	long := "what is the total education budget for the 2024-25 financial year across portfolios"
	title := domain.SessionTitle(long)
	assert.Len(t, title, 53)
	assert.Regexp(t, `\.\.\.$`, title)

	assert.Equal(t, "short", domain.SessionTitle("short"))
}
