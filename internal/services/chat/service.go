package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
	pgrepo "github.com/The-Hieusss/jobless-demo/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrEmptyContent    = errors.New("empty message content")
	ErrMatchNotFound   = errors.New("match not found")
	ErrNotAParticipant = errors.New("not a participant of the match")
	ErrTooFast         = errors.New("too many messages")
	ErrTempUnavailable = errors.New("temporarily unavailable")
)

const maxContentLength = 4000

type MessageStore interface {
	Insert(ctx context.Context, matchID, senderID, content string, now time.Time) (model.Message, error)
	ListByMatch(ctx context.Context, matchID string) ([]model.Message, error)
}

type MatchGetter interface {
	GetByID(ctx context.Context, matchID string) (model.Match, error)
}

type Publisher interface {
	Publish(ctx context.Context, matchID string, payload []byte) error
}

type Streams interface {
	Subscribe(ctx context.Context, matchID string) (<-chan model.Message, func(), error)
}

type RateLimiter interface {
	AllowMessage(ctx context.Context, participantID string) (int64, bool, error)
}

type SendResult struct {
	Message       model.Message
	RetryAfterSec int64
}

type Service struct {
	messageStore MessageStore
	matchGetter  MatchGetter
	publisher    Publisher
	streams      Streams
	rateLimiter  RateLimiter
	logger       *zap.Logger
	now          func() time.Time
}

type Dependencies struct {
	MessageStore MessageStore
	MatchGetter  MatchGetter
	Publisher    Publisher
	Streams      Streams
	RateLimiter  RateLimiter
	Logger       *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		messageStore: deps.MessageStore,
		matchGetter:  deps.MatchGetter,
		publisher:    deps.Publisher,
		streams:      deps.Streams,
		rateLimiter:  deps.RateLimiter,
		logger:       logger,
		now:          time.Now,
	}
}

// Send persists one message in the match channel and publishes it to
// the live subscribers. Persistence is the source of truth: when the
// publish fails the send still succeeds, and subscribers pick the
// message up from history on their next reconnect.
func (s *Service) Send(ctx context.Context, matchID, senderID, content string) (SendResult, error) {
	if matchID == "" || senderID == "" {
		return SendResult{}, ErrValidation
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return SendResult{}, ErrEmptyContent
	}
	if len(content) > maxContentLength {
		return SendResult{}, ErrValidation
	}
	if s.messageStore == nil || s.matchGetter == nil {
		return SendResult{}, fmt.Errorf("chat dependencies are not configured")
	}

	match, err := s.requireParticipant(ctx, matchID, senderID)
	if err != nil {
		return SendResult{}, err
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowMessage(ctx, senderID)
		if err != nil {
			return SendResult{}, fmt.Errorf("%w: message rate limiter: %v", ErrTempUnavailable, err)
		}
		if !allowed {
			return SendResult{RetryAfterSec: retryAfter}, ErrTooFast
		}
	}

	msg, err := s.messageStore.Insert(ctx, match.ID, senderID, content, s.now().UTC())
	if err != nil {
		return SendResult{}, fmt.Errorf("store chat message: %w", err)
	}

	if s.publisher != nil {
		payload, err := encodeMessage(msg)
		if err != nil {
			s.logger.Warn("skip chat publish", zap.String("match_id", match.ID), zap.Error(err))
		} else if err := s.publisher.Publish(ctx, match.ID, payload); err != nil {
			s.logger.Warn("publish chat message failed",
				zap.String("match_id", match.ID),
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	return SendResult{Message: msg}, nil
}

// History returns every message of the match in ascending send order.
func (s *Service) History(ctx context.Context, matchID, requesterID string) ([]model.Message, error) {
	if matchID == "" || requesterID == "" {
		return nil, ErrValidation
	}
	if s.messageStore == nil || s.matchGetter == nil {
		return nil, fmt.Errorf("chat dependencies are not configured")
	}

	if _, err := s.requireParticipant(ctx, matchID, requesterID); err != nil {
		return nil, err
	}

	items, err := s.messageStore.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}

	return items, nil
}

// Subscribe opens a live message stream on the match for one of its
// participants.
func (s *Service) Subscribe(ctx context.Context, matchID, requesterID string) (<-chan model.Message, func(), error) {
	if matchID == "" || requesterID == "" {
		return nil, nil, ErrValidation
	}
	if s.streams == nil {
		return nil, nil, fmt.Errorf("chat streams are not configured")
	}

	if _, err := s.requireParticipant(ctx, matchID, requesterID); err != nil {
		return nil, nil, err
	}

	return s.streams.Subscribe(ctx, matchID)
}

func (s *Service) requireParticipant(ctx context.Context, matchID, participantID string) (model.Match, error) {
	match, err := s.matchGetter.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !match.HasParticipant(participantID) {
		return model.Match{}, ErrNotAParticipant
	}
	return match, nil
}
