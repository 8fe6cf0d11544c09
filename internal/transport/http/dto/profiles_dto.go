package dto

type ProfileResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Bio           string `json:"bio,omitempty"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
}

type DeckResponse struct {
	Items []ProfileResponse `json:"items"`
}
