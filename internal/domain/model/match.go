package model

import "time"

type Match struct {
	ID          string    `json:"id"`
	SeekerID    string    `json:"seeker_id"`
	RecruiterID string    `json:"recruiter_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Other returns the partner id for one of the two participants of the
// match, and false when the given id is not a participant at all.
func (m Match) Other(participantID string) (string, bool) {
	switch participantID {
	case m.SeekerID:
		return m.RecruiterID, true
	case m.RecruiterID:
		return m.SeekerID, true
	default:
		return "", false
	}
}

func (m Match) HasParticipant(participantID string) bool {
	return participantID == m.SeekerID || participantID == m.RecruiterID
}
