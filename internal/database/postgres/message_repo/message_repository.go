package message_repo

import (
	"context"
	"errors"
	"fmt"

	dom "chatterbox/internal/domain/entity"
	"chatterbox/internal/pkg/customerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{
		pool: pool,
	}
}

func (m *MessageRepository) ListMessages(ctx context.Context) ([]dom.Message, error) {
	query := `
		SELECT id, body, username, created_at, updated_at
		FROM messages
		ORDER BY created_at ASC, id ASC`

	rows, err := m.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list messages: %w: %w", customerrors.ErrDatabase, err)
	}
	defer rows.Close()

	out := make([]dom.Message, 0)
	for rows.Next() {
		var msg dom.Message
		if err := rows.Scan(&msg.ID, &msg.Body, &msg.Username, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: scan error: %w: %w", customerrors.ErrDatabase, err)
		}
		out = append(out, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: rows iteration error: %w: %w", customerrors.ErrDatabase, err)
	}

	return out, nil
}

// CreateMessage inserts msg and returns it with the id assigned by the database.
func (m *MessageRepository) CreateMessage(ctx context.Context, msg dom.Message) (dom.Message, error) {
	query := "INSERT INTO messages (body, username, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id"

	err := m.pool.QueryRow(ctx,
		query, msg.Body, msg.Username, msg.CreatedAt, msg.UpdatedAt).Scan(&msg.ID)
	if err != nil {
		return dom.Message{}, fmt.Errorf("repository: failed to create message: %w: %w", customerrors.ErrDatabase, err)
	}

	return msg, nil
}

// UpdateMessage locks the row, lets apply mutate it and writes the result back
// in the same transaction. An error from apply rolls the transaction back and
// is returned unchanged.
func (m *MessageRepository) UpdateMessage(ctx context.Context, id int64, apply func(*dom.Message) error) (dom.Message, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return dom.Message{}, fmt.Errorf("repository: failed to begin transaction: %w: %w", customerrors.ErrDatabase, err)
	}
	defer tx.Rollback(ctx)

	var current dom.Message
	err = tx.QueryRow(ctx,
		"SELECT id, body, username, created_at, updated_at FROM messages WHERE id=$1 FOR UPDATE", id).Scan(
		&current.ID,
		&current.Body,
		&current.Username,
		&current.CreatedAt,
		&current.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Message{}, customerrors.ErrMessageNotFound
	}
	if err != nil {
		return dom.Message{}, fmt.Errorf("repository: failed to select message: %w: %w", customerrors.ErrDatabase, err)
	}

	updated := current
	if err := apply(&updated); err != nil {
		return dom.Message{}, err
	}
	updated.ID = current.ID

	if updated != current {
		_, err = tx.Exec(ctx,
			"UPDATE messages SET body=$1, updated_at=$2 WHERE id=$3", updated.Body, updated.UpdatedAt, id)
		if err != nil {
			return dom.Message{}, fmt.Errorf("repository: failed to update message: %w: %w", customerrors.ErrDatabase, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dom.Message{}, fmt.Errorf("repository: failed to commit transaction: %w: %w", customerrors.ErrDatabase, err)
	}

	return updated, nil
}

func (m *MessageRepository) DeleteMessage(ctx context.Context, id int64) error {
	tag, err := m.pool.Exec(ctx, "DELETE FROM messages WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete message: %w: %w", customerrors.ErrDatabase, err)
	}
	if tag.RowsAffected() == 0 {
		return customerrors.ErrMessageNotFound
	}

	return nil
}
