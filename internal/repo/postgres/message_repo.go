package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Insert appends one message to the match log. Messages are never
// updated or deleted, so a plain insert is all there is; seq comes from
// the sequence and provides the tie-break for equal created_at values.
func (r *MessageRepo) Insert(ctx context.Context, matchID, senderID, content string, now time.Time) (model.Message, error) {
	if matchID == "" || senderID == "" || content == "" {
		return model.Message{}, fmt.Errorf("invalid message payload")
	}
	if r.pool == nil {
		return model.Message{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec model.Message
	err := r.pool.QueryRow(ctx, `
INSERT INTO messages (
	id,
	match_id,
	sender_id,
	content,
	created_at
) VALUES ($1, $2, $3, $4, $5)
RETURNING id, seq, match_id, sender_id, content, created_at
`, uuid.NewString(), matchID, senderID, content, now.UTC()).Scan(
		&rec.ID,
		&rec.Seq,
		&rec.MatchID,
		&rec.SenderID,
		&rec.Content,
		&rec.CreatedAt,
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return rec, nil
}

// ListByMatch returns the full message history of one match in
// ascending (created_at, seq) order.
func (r *MessageRepo) ListByMatch(ctx context.Context, matchID string) ([]model.Message, error) {
	if matchID == "" {
		return nil, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return []model.Message{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, seq, match_id, sender_id, content, created_at
FROM messages
WHERE match_id = $1
ORDER BY created_at ASC, seq ASC
`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0, 64)
	for rows.Next() {
		var rec model.Message
		if err := rows.Scan(
			&rec.ID,
			&rec.Seq,
			&rec.MatchID,
			&rec.SenderID,
			&rec.Content,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}
