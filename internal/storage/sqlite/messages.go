package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/log"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (h *MessagesRepo) AddMessage(ctx context.Context, sessionID string, msg core.Message) error {
	query := `INSERT INTO messages (session_id, role, content) VALUES (?, ?, ?)`
	if _, err := h.db.ExecContext(ctx, query, sessionID, msg.Role, msg.Content); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetMessages returns the full history of a session, oldest first.
func (h *MessagesRepo) GetMessages(ctx context.Context, sessionID string) ([]core.Message, error) {
	query := `SELECT role, content FROM messages WHERE session_id = ? ORDER BY id ASC`

	rows, err := h.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		var content sql.NullString

		if err := rows.Scan(&msg.Role, &content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Content = content.String
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Str("session", sessionID).Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

func (h *MessagesRepo) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

var _ core.MessagesRepository = (*MessagesRepo)(nil)
