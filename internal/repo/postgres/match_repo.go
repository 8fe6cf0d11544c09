package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
	"github.com/The-Hieusss/jobless-demo/internal/domain/rules"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// MatchFeedRecord is one row of the participant's match feed: the match
// joined with the partner profile and the latest message, if any.
type MatchFeedRecord struct {
	MatchID          string
	SeekerID         string
	RecruiterID      string
	MatchCreatedAt   time.Time
	PartnerID        string
	PartnerName      string
	PartnerCategory  string
	PartnerAvatarURL string
	LastMessage      *string
	LastMessageAt    *time.Time
}

// Create inserts the match row for the pair unless one already exists.
// The unique index on pair_key makes the insert conditional; a conflict
// resolves to the existing row, never to an error. The bool result
// reports whether this call created the row.
func (r *MatchRepo) Create(ctx context.Context, tx pgx.Tx, seekerID, recruiterID string, now time.Time) (model.Match, bool, error) {
	if seekerID == "" || recruiterID == "" {
		return model.Match{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return model.Match{}, false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	pairKey := rules.PairKey(seekerID, recruiterID)

	var rec model.Match
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	id,
	seeker_id,
	recruiter_id,
	pair_key,
	created_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (pair_key) DO NOTHING
RETURNING id, seeker_id, recruiter_id, created_at
`, uuid.NewString(), seekerID, recruiterID, pairKey, now.UTC()).Scan(
		&rec.ID,
		&rec.SeekerID,
		&rec.RecruiterID,
		&rec.CreatedAt,
	)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Match{}, false, fmt.Errorf("create match: %w", err)
	}

	existing, err := r.getByPairKey(ctx, tx, pairKey)
	if err != nil {
		return model.Match{}, false, err
	}
	return existing, false, nil
}

func (r *MatchRepo) getByPairKey(ctx context.Context, tx pgx.Tx, pairKey string) (model.Match, error) {
	var rec model.Match
	err := tx.QueryRow(ctx, `
SELECT id, seeker_id, recruiter_id, created_at
FROM matches
WHERE pair_key = $1
`, pairKey).Scan(
		&rec.ID,
		&rec.SeekerID,
		&rec.RecruiterID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match by pair key: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, matchID string) (model.Match, error) {
	if matchID == "" {
		return model.Match{}, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	var rec model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, seeker_id, recruiter_id, created_at
FROM matches
WHERE id = $1
`, matchID).Scan(
		&rec.ID,
		&rec.SeekerID,
		&rec.RecruiterID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match by id: %w", err)
	}

	return rec, nil
}

// ListFeedForParticipant returns the participant's matches joined with
// the partner profile and latest message. Matches order by last
// activity: the latest message timestamp, or the match creation time
// when the channel is still empty.
func (r *MatchRepo) ListFeedForParticipant(ctx context.Context, participantID string, limit int) ([]MatchFeedRecord, error) {
	if participantID == "" {
		return nil, fmt.Errorf("invalid participant id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchFeedRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	m.seeker_id,
	m.recruiter_id,
	m.created_at,
	CASE WHEN m.seeker_id = $1 THEN m.recruiter_id ELSE m.seeker_id END AS partner_id,
	COALESCE(p.name, ''),
	COALESCE(p.role, ''),
	COALESCE(p.profile_pic_url, ''),
	lm.content,
	lm.created_at
FROM matches m
JOIN profiles p ON p.id = CASE WHEN m.seeker_id = $1 THEN m.recruiter_id ELSE m.seeker_id END
LEFT JOIN LATERAL (
	SELECT content, created_at
	FROM messages
	WHERE match_id = m.id
	ORDER BY created_at DESC, seq DESC
	LIMIT 1
) lm ON TRUE
WHERE m.seeker_id = $1 OR m.recruiter_id = $1
ORDER BY COALESCE(lm.created_at, m.created_at) DESC, m.id DESC
LIMIT $2
`, participantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list match feed: %w", err)
	}
	defer rows.Close()

	items := make([]MatchFeedRecord, 0, limit)
	for rows.Next() {
		var item MatchFeedRecord
		if err := rows.Scan(
			&item.MatchID,
			&item.SeekerID,
			&item.RecruiterID,
			&item.MatchCreatedAt,
			&item.PartnerID,
			&item.PartnerName,
			&item.PartnerCategory,
			&item.PartnerAvatarURL,
			&item.LastMessage,
			&item.LastMessageAt,
		); err != nil {
			return nil, fmt.Errorf("scan match feed row: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate match feed: %w", rows.Err())
	}

	return items, nil
}
