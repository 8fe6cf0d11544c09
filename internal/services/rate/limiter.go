package rate

import (
	"context"
	"fmt"
	"time"
)

const (
	minuteWindow = time.Minute
	burstWindow  = 10 * time.Second
)

type WindowStore interface {
	Hit(ctx context.Context, action, participantID string, window time.Duration) (int64, time.Duration, error)
}

type Limits struct {
	PerMinute int
	PerBurst  int
}

// Limiter throttles write actions per participant with fixed counting
// windows in redis. A zero limit disables that window.
type Limiter struct {
	store     WindowStore
	decisions Limits
	messages  Limits
}

func NewLimiter(store WindowStore, decisions, messages Limits) *Limiter {
	if decisions.PerMinute < 0 {
		decisions.PerMinute = 0
	}
	if decisions.PerBurst < 0 {
		decisions.PerBurst = 0
	}
	if messages.PerMinute < 0 {
		messages.PerMinute = 0
	}
	if messages.PerBurst < 0 {
		messages.PerBurst = 0
	}

	return &Limiter{
		store:     store,
		decisions: decisions,
		messages:  messages,
	}
}

// AllowDecision counts one swipe against the participant's windows.
// The int64 result is the retry-after hint in seconds when blocked.
func (l *Limiter) AllowDecision(ctx context.Context, participantID string) (int64, bool, error) {
	return l.allow(ctx, "decisions", participantID, l.decisions)
}

// AllowMessage counts one chat send against the participant's windows.
func (l *Limiter) AllowMessage(ctx context.Context, participantID string) (int64, bool, error) {
	return l.allow(ctx, "messages", participantID, l.messages)
}

func (l *Limiter) allow(ctx context.Context, action, participantID string, limits Limits) (int64, bool, error) {
	if participantID == "" {
		return 0, false, fmt.Errorf("invalid participant id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if limits.PerMinute > 0 {
		count, ttl, err := l.store.Hit(ctx, action, participantID, minuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(limits.PerMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if limits.PerBurst > 0 {
		count, ttl, err := l.store.Hit(ctx, action, participantID, burstWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(limits.PerBurst) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
