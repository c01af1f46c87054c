package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
)

type messageRepository struct {
	BaseRepository
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{NewBaseRepository(db)}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, recipient_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	msg.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.SenderID, msg.RecipientID, msg.Text, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) ListConversation(ctx context.Context, a, b uuid.UUID, limit int) ([]*model.Message, error) {
	query := `
		SELECT id, sender_id, recipient_id, text, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC
		LIMIT $3
	`
	var msgs []*model.Message
	if err := r.db.SelectContext(ctx, &msgs, query, a, b, limit); err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}
	return msgs, nil
}
