package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepo reads the profiles table owned by the external profile
// service. This subsystem only ever selects from it.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByID(ctx context.Context, participantID string) (model.Profile, error) {
	if participantID == "" {
		return model.Profile{}, fmt.Errorf("invalid participant id")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	var rec model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT id, COALESCE(name, ''), COALESCE(role, ''), COALESCE(bio, ''), COALESCE(profile_pic_url, '')
FROM profiles
WHERE id = $1
`, participantID).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Category,
		&rec.Bio,
		&rec.ProfilePicURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile by id: %w", err)
	}

	return rec, nil
}

// GetCategory resolves just the category tag, inside the caller's
// transaction so the match detector reads it under the pair lock.
func (r *ProfileRepo) GetCategory(ctx context.Context, tx pgx.Tx, participantID string) (string, error) {
	if participantID == "" {
		return "", fmt.Errorf("invalid participant id")
	}
	if tx == nil {
		return "", fmt.Errorf("transaction is required")
	}

	var category string
	err := tx.QueryRow(ctx, `
SELECT COALESCE(role, '')
FROM profiles
WHERE id = $1
`, participantID).Scan(&category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProfileNotFound
		}
		return "", fmt.Errorf("get profile category: %w", err)
	}

	return category, nil
}

// ListCandidates returns profiles other than the viewer's, for the
// swipe deck.
func (r *ProfileRepo) ListCandidates(ctx context.Context, viewerID string, limit int) ([]model.Profile, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = 20
	}
	if r.pool == nil {
		return []model.Profile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, COALESCE(name, ''), COALESCE(role, ''), COALESCE(bio, ''), COALESCE(profile_pic_url, '')
FROM profiles
WHERE id <> $1
ORDER BY id
LIMIT $2
`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidate profiles: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, limit)
	for rows.Next() {
		var rec model.Profile
		if err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Category,
			&rec.Bio,
			&rec.ProfilePicURL,
		); err != nil {
			return nil, fmt.Errorf("scan candidate profile: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidate profiles: %w", rows.Err())
	}

	return items, nil
}
