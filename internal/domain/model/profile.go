package model

import "github.com/The-Hieusss/jobless-demo/internal/domain/enums"

// Profile is the read-only projection of the external profile service.
// This subsystem never writes profiles.
type Profile struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Category      enums.Category `json:"category"`
	Bio           string         `json:"bio"`
	ProfilePicURL string         `json:"profile_pic_url"`
}
