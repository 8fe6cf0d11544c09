package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// PubSubRepo fans chat messages out across API instances. Every
// instance holding live subscribers for a match listens on that match
// channel; the instance that persisted the message publishes it there.
type PubSubRepo struct {
	client *goredis.Client
}

func NewPubSubRepo(client *goredis.Client) *PubSubRepo {
	return &PubSubRepo{client: client}
}

func matchChannel(matchID string) string {
	return "chat:match:" + matchID
}

func (r *PubSubRepo) Publish(ctx context.Context, matchID string, payload []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if matchID == "" {
		return fmt.Errorf("match id is required")
	}
	if len(payload) == 0 {
		return fmt.Errorf("payload is required")
	}

	if err := r.client.Publish(ctx, matchChannel(matchID), payload).Err(); err != nil {
		return fmt.Errorf("publish chat message: %w", err)
	}

	return nil
}

// Subscribe opens a subscription on the match channel. The caller owns
// the returned subscription and must close it when done.
func (r *PubSubRepo) Subscribe(ctx context.Context, matchID string) (*goredis.PubSub, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if matchID == "" {
		return nil, fmt.Errorf("match id is required")
	}

	sub := r.client.Subscribe(ctx, matchChannel(matchID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe chat channel: %w", err)
	}

	return sub, nil
}
