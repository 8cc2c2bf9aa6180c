package models

// PlaybackSource describes the media a playback session should present.
// Either ManifestURL (HLS) or EmbedURL must be set; both may be.
type PlaybackSource struct {
	ManifestURL string  `json:"manifestUrl,omitempty"`
	EmbedURL    string  `json:"embedUrl,omitempty"`
	PosterURL   string  `json:"posterUrl,omitempty"`
	StartTime   float64 `json:"startTimeSeconds,omitempty"`
}

// IsZero reports whether the descriptor carries no playable link at all.
func (s PlaybackSource) IsZero() bool {
	return s.ManifestURL == "" && s.EmbedURL == ""
}
