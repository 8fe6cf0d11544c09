package dto

import "time"

type DecisionRequest struct {
	TargetID  string `json:"target_id"`
	Direction string `json:"direction"`
}

type DecisionResponse struct {
	OK           bool                  `json:"ok"`
	DecisionID   int64                 `json:"decision_id"`
	Direction    string                `json:"direction"`
	DecidedAt    time.Time             `json:"decided_at"`
	MatchCreated bool                  `json:"match_created"`
	Match        *MatchCreatedResponse `json:"match,omitempty"`
}

type MatchCreatedResponse struct {
	ID          string    `json:"id"`
	SeekerID    string    `json:"seeker_id"`
	RecruiterID string    `json:"recruiter_id"`
	CreatedAt   time.Time `json:"created_at"`
}
