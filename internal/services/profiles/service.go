package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
	pgrepo "github.com/The-Hieusss/jobless-demo/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

const defaultDeckLimit = 20

type ProfileStore interface {
	GetByID(ctx context.Context, participantID string) (model.Profile, error)
	ListCandidates(ctx context.Context, viewerID string, limit int) ([]model.Profile, error)
}

// Service is the read side over the externally owned profiles table.
type Service struct {
	store ProfileStore
}

type Dependencies struct {
	Store ProfileStore
}

func NewService(deps Dependencies) *Service {
	return &Service{store: deps.Store}
}

func (s *Service) Get(ctx context.Context, participantID string) (model.Profile, error) {
	if participantID == "" {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is not configured")
	}

	profile, err := s.store.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// Deck returns candidate profiles for the viewer to swipe through.
func (s *Service) Deck(ctx context.Context, viewerID string, limit int) ([]model.Profile, error) {
	if viewerID == "" {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("profile store is not configured")
	}
	if limit <= 0 || limit > defaultDeckLimit {
		limit = defaultDeckLimit
	}

	items, err := s.store.ListCandidates(ctx, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list deck candidates: %w", err)
	}

	return items, nil
}
