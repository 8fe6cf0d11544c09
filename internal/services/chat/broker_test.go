package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
	redrepo "github.com/The-Hieusss/jobless-demo/internal/repo/redis"
)

func newBrokerFixture(t *testing.T) (*miniredis.Miniredis, *redrepo.PubSubRepo, *Broker) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := redrepo.NewPubSubRepo(client)
	return mr, repo, NewBroker(repo, nil)
}

func waitForMessage(t *testing.T, stream <-chan model.Message) model.Message {
	t.Helper()

	select {
	case msg, ok := <-stream:
		if !ok {
			t.Fatalf("stream closed before delivering a message")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
	return model.Message{}
}

func TestBrokerDeliversPublishedMessages(t *testing.T) {
	_, repo, broker := newBrokerFixture(t)
	ctx := context.Background()

	stream, cancel, err := broker.Subscribe(ctx, "match-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	sent := model.Message{
		ID:        "msg-1",
		Seq:       1,
		MatchID:   "match-1",
		SenderID:  "seeker-1",
		Content:   "hello",
		CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	payload, err := encodeMessage(sent)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	if err := repo.Publish(ctx, "match-1", payload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := waitForMessage(t, stream)
	if got.ID != sent.ID || got.Content != sent.Content || got.Seq != sent.Seq {
		t.Fatalf("unexpected delivered message: %+v", got)
	}
}

func TestBrokerFansOutToAllSubscribers(t *testing.T) {
	_, repo, broker := newBrokerFixture(t)
	ctx := context.Background()

	first, cancelFirst, err := broker.Subscribe(ctx, "match-1")
	if err != nil {
		t.Fatalf("subscribe first: %v", err)
	}
	defer cancelFirst()

	second, cancelSecond, err := broker.Subscribe(ctx, "match-1")
	if err != nil {
		t.Fatalf("subscribe second: %v", err)
	}
	defer cancelSecond()

	payload, err := encodeMessage(model.Message{ID: "msg-2", MatchID: "match-1", Content: "to everyone"})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	if err := repo.Publish(ctx, "match-1", payload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if got := waitForMessage(t, first); got.ID != "msg-2" {
		t.Fatalf("first subscriber got %+v", got)
	}
	if got := waitForMessage(t, second); got.ID != "msg-2" {
		t.Fatalf("second subscriber got %+v", got)
	}
}

func TestBrokerIsolatesMatches(t *testing.T) {
	_, repo, broker := newBrokerFixture(t)
	ctx := context.Background()

	otherStream, cancelOther, err := broker.Subscribe(ctx, "match-other")
	if err != nil {
		t.Fatalf("subscribe other: %v", err)
	}
	defer cancelOther()

	stream, cancel, err := broker.Subscribe(ctx, "match-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	payload, err := encodeMessage(model.Message{ID: "msg-3", MatchID: "match-1", Content: "private"})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	if err := repo.Publish(ctx, "match-1", payload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if got := waitForMessage(t, stream); got.ID != "msg-3" {
		t.Fatalf("unexpected message: %+v", got)
	}

	select {
	case msg := <-otherStream:
		t.Fatalf("message leaked across matches: %+v", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBrokerStaleCancelLeavesNewSubscriberAlive(t *testing.T) {
	_, repo, broker := newBrokerFixture(t)
	ctx := context.Background()

	_, cancelOld, err := broker.Subscribe(ctx, "match-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancelOld()

	// Resubscribe recreates the room; a disconnect handler firing its
	// cancel a second time must not touch the fresh subscription.
	fresh, cancelFresh, err := broker.Subscribe(ctx, "match-1")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	defer cancelFresh()

	cancelOld()

	payload, err := encodeMessage(model.Message{ID: "msg-after-reconnect", MatchID: "match-1", Content: "still here"})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	if err := repo.Publish(ctx, "match-1", payload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if got := waitForMessage(t, fresh); got.ID != "msg-after-reconnect" {
		t.Fatalf("fresh subscriber got %+v", got)
	}
}

func TestBrokerDeliversRacedPublishesInSequenceOrder(t *testing.T) {
	_, repo, broker := newBrokerFixture(t)
	ctx := context.Background()

	stream, cancel, err := broker.Subscribe(ctx, "match-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	publishSeq(t, repo, "match-1", 1, "first")
	if got := waitForMessage(t, stream); got.Seq != 1 {
		t.Fatalf("expected seq 1 first, got %+v", got)
	}

	// Two senders raced: the later insert got published first. The
	// held message must come out after its predecessor.
	publishSeq(t, repo, "match-1", 3, "third")
	publishSeq(t, repo, "match-1", 2, "second")

	if got := waitForMessage(t, stream); got.Seq != 2 {
		t.Fatalf("expected seq 2 before seq 3, got %+v", got)
	}
	if got := waitForMessage(t, stream); got.Seq != 3 {
		t.Fatalf("expected seq 3 last, got %+v", got)
	}
}

func TestBrokerReleasesHeldMessageWhenGapNeverCloses(t *testing.T) {
	_, repo, broker := newBrokerFixture(t)
	ctx := context.Background()

	stream, cancel, err := broker.Subscribe(ctx, "match-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	publishSeq(t, repo, "match-1", 1, "first")
	if got := waitForMessage(t, stream); got.Seq != 1 {
		t.Fatalf("expected seq 1 first, got %+v", got)
	}

	publishSeq(t, repo, "match-1", 3, "third")

	select {
	case msg := <-stream:
		t.Fatalf("message released before the hold expired: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}

	if got := waitForMessage(t, stream); got.Seq != 3 {
		t.Fatalf("expected held seq 3 after the hold, got %+v", got)
	}
}

func publishSeq(t *testing.T, repo *redrepo.PubSubRepo, matchID string, seq int64, content string) {
	t.Helper()

	payload, err := encodeMessage(model.Message{
		ID:      fmt.Sprintf("msg-seq-%d", seq),
		Seq:     seq,
		MatchID: matchID,
		Content: content,
	})
	if err != nil {
		t.Fatalf("encode message seq %d: %v", seq, err)
	}
	if err := repo.Publish(context.Background(), matchID, payload); err != nil {
		t.Fatalf("publish seq %d: %v", seq, err)
	}
}

func TestBrokerCancelClosesStream(t *testing.T) {
	_, _, broker := newBrokerFixture(t)
	ctx := context.Background()

	stream, cancel, err := broker.Subscribe(ctx, "match-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	cancel()

	select {
	case _, ok := <-stream:
		if ok {
			t.Fatalf("expected closed stream after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream not closed after cancel")
	}

	// A second cancel is a no-op.
	cancel()
}
