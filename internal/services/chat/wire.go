package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
)

// wireMessage is the payload published on the per-match channel. Every
// API instance with live subscribers for the match decodes it back into
// the domain message.
type wireMessage struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func encodeMessage(msg model.Message) ([]byte, error) {
	payload, err := json.Marshal(wireMessage{
		ID:        msg.ID,
		Seq:       msg.Seq,
		MatchID:   msg.MatchID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat message: %w", err)
	}
	return payload, nil
}

func decodeMessage(payload []byte) (model.Message, error) {
	var wire wireMessage
	if err := json.Unmarshal(payload, &wire); err != nil {
		return model.Message{}, fmt.Errorf("decode chat message: %w", err)
	}
	if wire.ID == "" || wire.MatchID == "" {
		return model.Message{}, fmt.Errorf("decode chat message: missing identifiers")
	}

	return model.Message{
		ID:        wire.ID,
		Seq:       wire.Seq,
		MatchID:   wire.MatchID,
		SenderID:  wire.SenderID,
		Content:   wire.Content,
		CreatedAt: wire.CreatedAt,
	}, nil
}
