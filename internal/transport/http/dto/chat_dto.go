package dto

import "time"

type SendMessageRequest struct {
	Content string `json:"content"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageResponse struct {
	OK      bool            `json:"ok"`
	Message MessageResponse `json:"message"`
}

type HistoryResponse struct {
	Items []MessageResponse `json:"items"`
}
