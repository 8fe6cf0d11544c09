package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
	pgrepo "github.com/The-Hieusss/jobless-demo/internal/repo/postgres"
)

type messageStoreStub struct {
	messages []model.Message
	nextSeq  int64
}

func (s *messageStoreStub) Insert(_ context.Context, matchID, senderID, content string, now time.Time) (model.Message, error) {
	s.nextSeq++
	msg := model.Message{
		ID:        "msg-" + senderID,
		Seq:       s.nextSeq,
		MatchID:   matchID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now,
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *messageStoreStub) ListByMatch(_ context.Context, matchID string) ([]model.Message, error) {
	items := make([]model.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		if msg.MatchID == matchID {
			items = append(items, msg)
		}
	}
	return items, nil
}

type matchGetterStub struct {
	match model.Match
	err   error
}

func (s matchGetterStub) GetByID(context.Context, string) (model.Match, error) {
	if s.err != nil {
		return model.Match{}, s.err
	}
	return s.match, nil
}

type publisherStub struct {
	calls    int
	payloads [][]byte
	err      error
}

func (s *publisherStub) Publish(_ context.Context, _ string, payload []byte) error {
	s.calls++
	s.payloads = append(s.payloads, payload)
	return s.err
}

type messageLimiterStub struct {
	allowed    bool
	retryAfter int64
}

func (s messageLimiterStub) AllowMessage(context.Context, string) (int64, bool, error) {
	return s.retryAfter, s.allowed, nil
}

func testMatch() model.Match {
	return model.Match{
		ID:          "match-1",
		SeekerID:    "seeker-1",
		RecruiterID: "recruiter-1",
		CreatedAt:   time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func TestSendPersistsAndPublishes(t *testing.T) {
	store := &messageStoreStub{}
	publisher := &publisherStub{}
	svc := NewService(Dependencies{
		MessageStore: store,
		MatchGetter:  matchGetterStub{match: testMatch()},
		Publisher:    publisher,
	})

	result, err := svc.Send(context.Background(), "match-1", "seeker-1", "  hello  ")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.Message.Content != "hello" {
		t.Fatalf("expected trimmed content, got %q", result.Message.Content)
	}
	if len(store.messages) != 1 {
		t.Fatalf("expected one stored message, got %d", len(store.messages))
	}
	if publisher.calls != 1 {
		t.Fatalf("expected one publish, got %d", publisher.calls)
	}

	decoded, err := decodeMessage(publisher.payloads[0])
	if err != nil {
		t.Fatalf("decode published payload: %v", err)
	}
	if decoded.ID != result.Message.ID || decoded.Content != "hello" {
		t.Fatalf("published payload mismatch: %+v", decoded)
	}
}

func TestSendSucceedsWhenPublishFails(t *testing.T) {
	store := &messageStoreStub{}
	publisher := &publisherStub{err: errors.New("redis down")}
	svc := NewService(Dependencies{
		MessageStore: store,
		MatchGetter:  matchGetterStub{match: testMatch()},
		Publisher:    publisher,
	})

	if _, err := svc.Send(context.Background(), "match-1", "recruiter-1", "still delivered"); err != nil {
		t.Fatalf("send should survive a publish failure: %v", err)
	}
	if len(store.messages) != 1 {
		t.Fatalf("message must be persisted, got %d", len(store.messages))
	}
}

func TestSendRejectsEmptyContent(t *testing.T) {
	svc := NewService(Dependencies{
		MessageStore: &messageStoreStub{},
		MatchGetter:  matchGetterStub{match: testMatch()},
	})

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Send(context.Background(), "match-1", "seeker-1", content); !errors.Is(err, ErrEmptyContent) {
			t.Fatalf("expected ErrEmptyContent for %q, got %v", content, err)
		}
	}
}

func TestSendRejectsNonParticipant(t *testing.T) {
	svc := NewService(Dependencies{
		MessageStore: &messageStoreStub{},
		MatchGetter:  matchGetterStub{match: testMatch()},
	})

	if _, err := svc.Send(context.Background(), "match-1", "intruder", "hi"); !errors.Is(err, ErrNotAParticipant) {
		t.Fatalf("expected ErrNotAParticipant, got %v", err)
	}
}

func TestSendUnknownMatch(t *testing.T) {
	svc := NewService(Dependencies{
		MessageStore: &messageStoreStub{},
		MatchGetter:  matchGetterStub{err: pgrepo.ErrMatchNotFound},
	})

	if _, err := svc.Send(context.Background(), "missing", "seeker-1", "hi"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestSendRateLimited(t *testing.T) {
	store := &messageStoreStub{}
	svc := NewService(Dependencies{
		MessageStore: store,
		MatchGetter:  matchGetterStub{match: testMatch()},
		RateLimiter:  messageLimiterStub{allowed: false, retryAfter: 4},
	})

	result, err := svc.Send(context.Background(), "match-1", "seeker-1", "hi")
	if !errors.Is(err, ErrTooFast) {
		t.Fatalf("expected ErrTooFast, got %v", err)
	}
	if result.RetryAfterSec != 4 {
		t.Fatalf("expected retry_after 4, got %d", result.RetryAfterSec)
	}
	if len(store.messages) != 0 {
		t.Fatalf("blocked send must not persist a message")
	}
}

func TestHistoryRequiresParticipant(t *testing.T) {
	store := &messageStoreStub{}
	svc := NewService(Dependencies{
		MessageStore: store,
		MatchGetter:  matchGetterStub{match: testMatch()},
	})

	ctx := context.Background()
	if _, err := svc.Send(ctx, "match-1", "seeker-1", "first"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, "match-1", "recruiter-1", "second"); err != nil {
		t.Fatalf("send: %v", err)
	}

	items, err := svc.History(ctx, "match-1", "recruiter-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 2 || items[0].Content != "first" || items[1].Content != "second" {
		t.Fatalf("unexpected history: %+v", items)
	}

	if _, err := svc.History(ctx, "match-1", "intruder"); !errors.Is(err, ErrNotAParticipant) {
		t.Fatalf("expected ErrNotAParticipant, got %v", err)
	}
}
