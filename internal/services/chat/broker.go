package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
)

// subscriberBuffer bounds the per-subscriber backlog. A subscriber that
// falls this far behind is dropped; the client reconciles through the
// history endpoint and resubscribes.
const subscriberBuffer = 32

// pendingHold bounds how long a message published ahead of its
// predecessor waits for the gap to close before it is released anyway.
const pendingHold = 250 * time.Millisecond

type PubSubSource interface {
	Subscribe(ctx context.Context, matchID string) (*goredis.PubSub, error)
}

// Broker bridges the per-match redis channels to in-process
// subscribers. It holds at most one redis subscription per match and
// fans incoming messages out to every local stream on that match.
type Broker struct {
	source PubSubSource
	logger *zap.Logger

	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	sub         *goredis.PubSub
	subscribers map[int64]chan model.Message
	nextID      int64

	// lastSeq is the highest insertion sequence delivered so far;
	// pending holds messages that arrived ahead of a missing
	// predecessor until it lands or the hold timer fires.
	lastSeq int64
	pending map[int64]model.Message
	flush   *time.Timer
}

func NewBroker(source PubSubSource, logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Broker{
		source: source,
		logger: logger,
		rooms:  map[string]*room{},
	}
}

// Subscribe opens a live stream of messages for the match. The stream
// starts with the next published message; callers load history first
// and dedupe by message id. The returned cancel func releases the
// stream and must always be called.
func (b *Broker) Subscribe(ctx context.Context, matchID string) (<-chan model.Message, func(), error) {
	if matchID == "" {
		return nil, nil, fmt.Errorf("match id is required")
	}
	if b.source == nil {
		return nil, nil, fmt.Errorf("pubsub source is not configured")
	}

	b.mu.Lock()
	rm, ok := b.rooms[matchID]
	if !ok {
		sub, err := b.source.Subscribe(ctx, matchID)
		if err != nil {
			b.mu.Unlock()
			return nil, nil, err
		}
		rm = &room{
			sub:         sub,
			subscribers: map[int64]chan model.Message{},
			pending:     map[int64]model.Message{},
		}
		b.rooms[matchID] = rm
		go b.pump(matchID, sub)
	}

	rm.nextID++
	id := rm.nextID
	stream := make(chan model.Message, subscriberBuffer)
	rm.subscribers[id] = stream
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		// The room may have been torn down and recreated since this
		// subscription was opened; the id only means something inside
		// the room it was issued by.
		if b.rooms[matchID] != rm {
			return
		}
		if ch, ok := rm.subscribers[id]; ok && ch == stream {
			delete(rm.subscribers, id)
			close(ch)
		}
		if len(rm.subscribers) == 0 {
			b.closeRoom(matchID, rm)
		}
	}

	return stream, cancel, nil
}

// closeRoom removes the room and releases its redis subscription.
// Callers hold b.mu.
func (b *Broker) closeRoom(matchID string, rm *room) {
	delete(b.rooms, matchID)
	if rm.flush != nil {
		rm.flush.Stop()
		rm.flush = nil
	}
	_ = rm.sub.Close()
}

// pump reads the redis subscription for one match until it closes and
// hands every decoded message to the delivery path.
func (b *Broker) pump(matchID string, sub *goredis.PubSub) {
	for raw := range sub.Channel() {
		msg, err := decodeMessage([]byte(raw.Payload))
		if err != nil {
			b.logger.Warn("drop undecodable chat payload",
				zap.String("match_id", matchID),
				zap.Error(err),
			)
			continue
		}
		b.deliver(matchID, msg)
	}

	// The subscription closed underneath the room, typically on redis
	// connection loss. Drop the remaining subscribers so their clients
	// reconnect instead of waiting on a dead stream.
	b.mu.Lock()
	defer b.mu.Unlock()
	rm, ok := b.rooms[matchID]
	if !ok || rm.sub != sub {
		return
	}
	for id, ch := range rm.subscribers {
		delete(rm.subscribers, id)
		close(ch)
	}
	b.closeRoom(matchID, rm)
}

// deliver fans the message out in insertion-sequence order. Publishes
// can arrive out of order when two senders race on one match, so a
// message ahead of a missing predecessor is held briefly and a message
// behind something already delivered is dropped; history carries it.
func (b *Broker) deliver(matchID string, msg model.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rm, ok := b.rooms[matchID]
	if !ok {
		return
	}

	// No insertion sequence means no ordering to enforce.
	if msg.Seq <= 0 {
		b.fanOut(matchID, rm, msg)
		return
	}

	if rm.lastSeq != 0 && msg.Seq <= rm.lastSeq {
		b.logger.Warn("drop late chat message",
			zap.String("match_id", matchID),
			zap.String("message_id", msg.ID),
			zap.Int64("seq", msg.Seq),
			zap.Int64("last_seq", rm.lastSeq),
		)
		return
	}

	if rm.lastSeq != 0 && msg.Seq > rm.lastSeq+1 {
		rm.pending[msg.Seq] = msg
		if rm.flush == nil {
			rm.flush = time.AfterFunc(pendingHold, func() {
				b.releasePending(matchID, rm)
			})
		}
		return
	}

	b.fanOut(matchID, rm, msg)
	rm.lastSeq = msg.Seq
	for {
		next, ok := rm.pending[rm.lastSeq+1]
		if !ok {
			break
		}
		delete(rm.pending, rm.lastSeq+1)
		b.fanOut(matchID, rm, next)
		rm.lastSeq = next.Seq
	}
	if len(rm.pending) == 0 && rm.flush != nil {
		rm.flush.Stop()
		rm.flush = nil
	}
}

// releasePending gives up on a sequence gap that never closed and
// releases the held messages in ascending order.
func (b *Broker) releasePending(matchID string, rm *room) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rooms[matchID] != rm {
		return
	}
	rm.flush = nil

	seqs := make([]int64, 0, len(rm.pending))
	for seq := range rm.pending {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })

	for _, seq := range seqs {
		msg := rm.pending[seq]
		delete(rm.pending, seq)
		b.fanOut(matchID, rm, msg)
		rm.lastSeq = seq
	}
}

// fanOut pushes the message to every subscriber of the room. Callers
// hold b.mu.
func (b *Broker) fanOut(matchID string, rm *room, msg model.Message) {
	for id, ch := range rm.subscribers {
		select {
		case ch <- msg:
		default:
			delete(rm.subscribers, id)
			close(ch)
			b.logger.Warn("drop slow chat subscriber",
				zap.String("match_id", matchID),
				zap.Int64("subscriber_id", id),
			)
		}
	}
}
