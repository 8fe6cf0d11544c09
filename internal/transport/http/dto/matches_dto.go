package dto

import "time"

type MatchItemResponse struct {
	ID               string     `json:"id"`
	MatchedAt        time.Time  `json:"matched_at"`
	PartnerID        string     `json:"partner_id"`
	PartnerName      string     `json:"partner_name"`
	PartnerCategory  string     `json:"partner_category"`
	PartnerAvatarURL string     `json:"partner_avatar_url,omitempty"`
	LastMessage      string     `json:"last_message,omitempty"`
	LastMessageAt    *time.Time `json:"last_message_at,omitempty"`
	LastActivityAt   time.Time  `json:"last_activity_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}
