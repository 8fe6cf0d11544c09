package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateRepo counts participant actions in fixed redis windows. One key
// per action, participant and window length; the key expires with the
// window, so the count resets on its own.
type RateRepo struct {
	client *goredis.Client
}

func NewRateRepo(client *goredis.Client) *RateRepo {
	return &RateRepo{client: client}
}

// Hit counts one action by the participant inside the window and
// returns the running count together with the window's remaining TTL.
func (r *RateRepo) Hit(ctx context.Context, action, participantID string, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if action == "" || participantID == "" || window <= 0 {
		return 0, 0, fmt.Errorf("invalid rate hit payload")
	}

	key := rateKey(action, participantID, window)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("increment rate counter: %w", err)
	}
	// The first hit of a window owns the expiry.
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("set rate counter ttl: %w", err)
		}
	}

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("read rate counter ttl: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}

	return count, ttl, nil
}

func rateKey(action, participantID string, window time.Duration) string {
	return fmt.Sprintf("rate:%s:%ds:%s", action, int(window.Seconds()), participantID)
}
