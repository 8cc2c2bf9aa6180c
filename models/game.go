package models

// Game is the canonical playable game entry. Namespace is the identity key
// and the input to the deterministic embed URL.
type Game struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Namespace    string  `json:"namespace"`
	Category     string  `json:"category,omitempty"`
	Orientation  string  `json:"orientation,omitempty"` // "portrait" | "landscape"
	QualityScore float64 `json:"qualityScore"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	BannerImage  string  `json:"bannerImage,omitempty"`
	Icon         string  `json:"icon,omitempty"`
	PlayURL      string  `json:"playUrl"`
	Published    string  `json:"datePublished,omitempty"`
}

// GameList is one feed page.
type GameList struct {
	Items   []Game `json:"items"`
	NextURL string `json:"nextUrl,omitempty"`
}
