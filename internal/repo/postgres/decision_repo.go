package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/The-Hieusss/jobless-demo/internal/domain/enums"
	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
)

var ErrDecisionNotFound = errors.New("decision not found")

type DecisionRepo struct {
	pool *pgxpool.Pool
}

func NewDecisionRepo(pool *pgxpool.Pool) *DecisionRepo {
	return &DecisionRepo{pool: pool}
}

// LockPair takes a transaction-scoped advisory lock on the unordered
// pair. Concurrent mutual swipes for the same pair serialize here, so
// the second transaction always observes the first one's committed
// decision when it checks reciprocity.
func (r *DecisionRepo) LockPair(ctx context.Context, tx pgx.Tx, pairKey string) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if pairKey == "" {
		return fmt.Errorf("pair key is required")
	}

	if _, err := tx.Exec(ctx, `
SELECT pg_advisory_xact_lock(hashtextextended($1, 0))
`, pairKey); err != nil {
		return fmt.Errorf("lock decision pair: %w", err)
	}

	return nil
}

// Insert stores the decision for the ordered pair, or leaves an
// existing one untouched. The bool result reports whether a new row
// was created.
func (r *DecisionRepo) Insert(ctx context.Context, tx pgx.Tx, swiperID, targetID string, direction enums.Direction, now time.Time) (model.Decision, bool, error) {
	if swiperID == "" || targetID == "" || direction == "" {
		return model.Decision{}, false, fmt.Errorf("invalid decision payload")
	}
	if tx == nil {
		return model.Decision{}, false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec model.Decision
	err := tx.QueryRow(ctx, `
INSERT INTO decisions (
	swiper_id,
	target_id,
	direction,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (swiper_id, target_id) DO NOTHING
RETURNING id, swiper_id, target_id, direction, created_at
`, swiperID, targetID, string(direction), now.UTC()).Scan(
		&rec.ID,
		&rec.SwiperID,
		&rec.TargetID,
		&rec.Direction,
		&rec.CreatedAt,
	)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Decision{}, false, fmt.Errorf("insert decision: %w", err)
	}

	existing, err := r.GetByPair(ctx, tx, swiperID, targetID)
	if err != nil {
		return model.Decision{}, false, err
	}
	return existing, false, nil
}

func (r *DecisionRepo) GetByPair(ctx context.Context, tx pgx.Tx, swiperID, targetID string) (model.Decision, error) {
	if swiperID == "" || targetID == "" {
		return model.Decision{}, fmt.Errorf("invalid decision lookup payload")
	}
	if tx == nil {
		return model.Decision{}, fmt.Errorf("transaction is required")
	}

	var rec model.Decision
	err := tx.QueryRow(ctx, `
SELECT id, swiper_id, target_id, direction, created_at
FROM decisions
WHERE swiper_id = $1 AND target_id = $2
`, swiperID, targetID).Scan(
		&rec.ID,
		&rec.SwiperID,
		&rec.TargetID,
		&rec.Direction,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Decision{}, ErrDecisionNotFound
		}
		return model.Decision{}, fmt.Errorf("get decision by pair: %w", err)
	}

	return rec, nil
}

// ReciprocalLikeExists reports whether the target has already liked the
// swiper. It must run inside the same transaction as the decision
// insert so the pair lock covers the read.
func (r *DecisionRepo) ReciprocalLikeExists(ctx context.Context, tx pgx.Tx, swiperID, targetID string) (bool, error) {
	if swiperID == "" || targetID == "" {
		return false, fmt.Errorf("invalid reciprocal lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM decisions
WHERE swiper_id = $1 AND target_id = $2 AND direction = 'like'
LIMIT 1
`, targetID, swiperID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	return true, nil
}
