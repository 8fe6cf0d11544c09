package model

import "time"

// Message is one chat message inside a match. Seq is the monotonic
// insertion id used to break created_at ties when ordering history.
type Message struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
