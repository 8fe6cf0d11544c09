package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgrepo "github.com/The-Hieusss/jobless-demo/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

const defaultFeedLimit = 100

type FeedStore interface {
	ListFeedForParticipant(ctx context.Context, participantID string, limit int) ([]pgrepo.MatchFeedRecord, error)
}

// MatchItem is one entry of a participant's match feed: the match, the
// partner summary and the latest message preview.
type MatchItem struct {
	MatchID          string
	MatchedAt        time.Time
	PartnerID        string
	PartnerName      string
	PartnerCategory  string
	PartnerAvatarURL string
	LastMessage      string
	LastMessageAt    *time.Time
	LastActivityAt   time.Time
}

type Service struct {
	feedStore FeedStore
}

type Dependencies struct {
	FeedStore FeedStore
}

func NewService(deps Dependencies) *Service {
	return &Service{feedStore: deps.FeedStore}
}

// List returns the participant's matches ordered by last activity, the
// most recently active channel first. A match with no messages counts
// its creation time as activity.
func (s *Service) List(ctx context.Context, participantID string, limit int) ([]MatchItem, error) {
	if participantID == "" {
		return nil, ErrValidation
	}
	if s.feedStore == nil {
		return nil, fmt.Errorf("match feed store is not configured")
	}
	if limit <= 0 || limit > defaultFeedLimit {
		limit = defaultFeedLimit
	}

	records, err := s.feedStore.ListFeedForParticipant(ctx, participantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list match feed: %w", err)
	}

	items := make([]MatchItem, 0, len(records))
	for _, rec := range records {
		item := MatchItem{
			MatchID:          rec.MatchID,
			MatchedAt:        rec.MatchCreatedAt,
			PartnerID:        rec.PartnerID,
			PartnerName:      rec.PartnerName,
			PartnerCategory:  rec.PartnerCategory,
			PartnerAvatarURL: rec.PartnerAvatarURL,
			LastActivityAt:   rec.MatchCreatedAt,
		}
		if rec.LastMessage != nil {
			item.LastMessage = *rec.LastMessage
		}
		if rec.LastMessageAt != nil {
			at := *rec.LastMessageAt
			item.LastMessageAt = &at
			item.LastActivityAt = at
		}
		items = append(items, item)
	}

	return items, nil
}
