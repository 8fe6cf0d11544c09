package decisions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/The-Hieusss/jobless-demo/internal/domain/enums"
	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
	"github.com/The-Hieusss/jobless-demo/internal/domain/rules"
	pgrepo "github.com/The-Hieusss/jobless-demo/internal/repo/postgres"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrSelfDecision         = errors.New("decision target is the swiper")
	ErrUnsupportedDirection = errors.New("unsupported direction")
	ErrUnknownParticipant   = errors.New("unknown participant")
	ErrTooFast              = errors.New("too many decisions")
	ErrTempUnavailable      = errors.New("temporarily unavailable")
)

type DecisionStore interface {
	LockPair(ctx context.Context, tx pgx.Tx, pairKey string) error
	Insert(ctx context.Context, tx pgx.Tx, swiperID, targetID string, direction enums.Direction, now time.Time) (model.Decision, bool, error)
	ReciprocalLikeExists(ctx context.Context, tx pgx.Tx, swiperID, targetID string) (bool, error)
}

type MatchStore interface {
	Create(ctx context.Context, tx pgx.Tx, seekerID, recruiterID string, now time.Time) (model.Match, bool, error)
}

type ProfileStore interface {
	GetCategory(ctx context.Context, tx pgx.Tx, participantID string) (string, error)
}

type RateLimiter interface {
	AllowDecision(ctx context.Context, participantID string) (int64, bool, error)
}

// Result is the outcome of one recorded decision. MatchCreated is true
// only for the call that detected the mutual like; a repeated swipe on
// an already matched pair reports the stored decision with
// MatchCreated false.
type Result struct {
	Decision      model.Decision
	Created       bool
	MatchCreated  bool
	Match         model.Match
	RetryAfterSec int64
}

type Service struct {
	decisionStore DecisionStore
	matchStore    MatchStore
	profileStore  ProfileStore
	rateLimiter   RateLimiter
	runTx         func(context.Context, func(context.Context, pgx.Tx) error) error
	now           func() time.Time
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	DecisionStore DecisionStore
	MatchStore    MatchStore
	ProfileStore  ProfileStore
	RateLimiter   RateLimiter

	// TxRunner overrides the pool-backed transaction runner in tests.
	TxRunner func(context.Context, func(context.Context, pgx.Tx) error) error
}

func NewService(deps Dependencies) *Service {
	runTx := deps.TxRunner
	if runTx == nil {
		runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		}
	}

	return &Service{
		decisionStore: deps.DecisionStore,
		matchStore:    deps.MatchStore,
		profileStore:  deps.ProfileStore,
		rateLimiter:   deps.RateLimiter,
		runTx:         runTx,
		now:           time.Now,
	}
}

// Record stores the swiper's decision about the target and detects the
// mutual like. The decision insert, the reciprocity check and the
// match creation run in one transaction under an advisory lock on the
// unordered pair, so two concurrent mutual likes cannot both miss each
// other and cannot create two matches.
//
// A repeated decision for the same ordered pair is a no-op that
// returns the original stored decision, whatever the new direction.
func (s *Service) Record(ctx context.Context, swiperID, targetID string, direction enums.Direction) (Result, error) {
	if swiperID == "" || targetID == "" {
		return Result{}, ErrValidation
	}
	if swiperID == targetID {
		return Result{}, ErrSelfDecision
	}
	if !direction.Valid() {
		return Result{}, ErrUnsupportedDirection
	}
	if s.decisionStore == nil || s.matchStore == nil || s.profileStore == nil {
		return Result{}, fmt.Errorf("decision dependencies are not configured")
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowDecision(ctx, swiperID)
		if err != nil {
			return Result{}, fmt.Errorf("%w: decision rate limiter: %v", ErrTempUnavailable, err)
		}
		if !allowed {
			return Result{RetryAfterSec: retryAfter}, ErrTooFast
		}
	}

	now := s.now().UTC()
	pairKey := rules.PairKey(swiperID, targetID)

	var result Result
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.decisionStore.LockPair(txCtx, tx, pairKey); err != nil {
			return err
		}

		swiperCategory, err := s.profileStore.GetCategory(txCtx, tx, swiperID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrProfileNotFound) {
				return ErrUnknownParticipant
			}
			return err
		}
		targetCategory, err := s.profileStore.GetCategory(txCtx, tx, targetID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrProfileNotFound) {
				return ErrUnknownParticipant
			}
			return err
		}

		decision, created, err := s.decisionStore.Insert(txCtx, tx, swiperID, targetID, direction, now)
		if err != nil {
			return err
		}
		result.Decision = decision
		result.Created = created

		// An already stored decision keeps its original direction, so
		// reciprocity is only worth checking for a fresh like.
		if !created || decision.Direction != enums.DirectionLike {
			return nil
		}

		reciprocal, err := s.decisionStore.ReciprocalLikeExists(txCtx, tx, swiperID, targetID)
		if err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}

		seekerID, recruiterID, ok := assignRoles(swiperID, swiperCategory, targetID, targetCategory)
		if !ok {
			return nil
		}

		match, matchCreated, err := s.matchStore.Create(txCtx, tx, seekerID, recruiterID, now)
		if err != nil {
			return err
		}
		result.Match = match
		result.MatchCreated = matchCreated
		return nil
	}); err != nil {
		return Result{}, err
	}

	return result, nil
}

// assignRoles maps the two participants onto the seeker and recruiter
// slots of a match. Pairs within the same category never match.
func assignRoles(aID, aCategory, bID, bCategory string) (seekerID, recruiterID string, ok bool) {
	switch {
	case aCategory == string(enums.CategorySeeker) && bCategory == string(enums.CategoryRecruiter):
		return aID, bID, true
	case aCategory == string(enums.CategoryRecruiter) && bCategory == string(enums.CategorySeeker):
		return bID, aID, true
	default:
		return "", "", false
	}
}
