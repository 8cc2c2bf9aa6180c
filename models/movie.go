package models

// SourceName identifies the upstream provider that supplied a record.
type SourceName string

const (
	SourceOPhim  SourceName = "ophim"
	SourceNguonC SourceName = "nguonc"
	SourceKKPhim SourceName = "kkphim"
)

// Movie is the canonical cross-provider movie card.
// Slug is the dedup key; it is unique within a source but two sources using
// the same slug are treated as the same title (no cross-source ID exists).
type Movie struct {
	Name           string     `json:"name"`
	OriginalName   string     `json:"originalName"`
	Slug           string     `json:"slug"`
	PosterPath     string     `json:"posterPath"`
	ThumbPath      string     `json:"thumbPath"`
	Year           int        `json:"year"`
	Quality        string     `json:"quality,omitempty"`
	EpisodeCurrent string     `json:"episodeCurrent,omitempty"`
	Language       string     `json:"language,omitempty"`
	Source         SourceName `json:"source"`
	// ImageDomain is the CDN base needed to resolve relative poster/thumb
	// paths for this record's source. Empty when the source emits full URLs.
	ImageDomain string `json:"imageDomain,omitempty"`
}

// Category is a flattened taxonomy entry (genre, country, year, list type).
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CompletionStatus of a series, derived heuristically when the provider has
// no explicit field.
type CompletionStatus string

const (
	StatusOngoing   CompletionStatus = "ongoing"
	StatusCompleted CompletionStatus = "completed"
)

// Episode is one playable entry inside a server group. Normalizers resolve
// provider field-name differences before this shape is built, so the merge
// step only ever sees these four fields.
type Episode struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	EmbedURL    string `json:"embedUrl,omitempty"`
	ManifestURL string `json:"manifestUrl,omitempty"`
}

// EpisodeServerGroup is one provider-scoped playback server. Groups from
// different sources are concatenated, never merged: episode slugs are not
// comparable across sources.
type EpisodeServerGroup struct {
	ServerName string     `json:"serverName"`
	Source     SourceName `json:"source"`
	Episodes   []Episode  `json:"episodes"`
}

// MovieDetail extends Movie with full metadata and the merged server list.
// Metadata fields come from exactly one winning source; only Episodes is
// merged additively across sources.
type MovieDetail struct {
	Movie
	Content      string               `json:"content"`
	Type         string               `json:"type"` // "single" | "series"
	Status       CompletionStatus     `json:"status"`
	EpisodeTotal string               `json:"episodeTotal,omitempty"`
	TrailerURL   string               `json:"trailerUrl,omitempty"`
	Categories   []Category           `json:"categories"`
	Countries    []Category           `json:"countries"`
	Actors       []string             `json:"actors"`
	Directors    []string             `json:"directors"`
	Episodes     []EpisodeServerGroup `json:"episodes"`
}

// Pagination mirrors the providers' page metadata in one shape.
type Pagination struct {
	TotalItems        int `json:"totalItems"`
	TotalItemsPerPage int `json:"totalItemsPerPage"`
	CurrentPage       int `json:"currentPage"`
	TotalPages        int `json:"totalPages"`
}

// MovieList is the canonical result of search and list operations.
type MovieList struct {
	TitlePage  string     `json:"titlePage,omitempty"`
	Items      []Movie    `json:"items"`
	Pagination Pagination `json:"pagination"`
	// ImageDomain is the display-level CDN base: the first responding
	// source's domain, kept for callers that resolve relative paths.
	ImageDomain string `json:"imageDomain,omitempty"`
}

// FilterParams are optional refinements forwarded to list/search operations.
// Each adapter encodes them with its own query-parameter names.
type FilterParams struct {
	Category  string `json:"category,omitempty"`
	Country   string `json:"country,omitempty"`
	Year      string `json:"year,omitempty"`
	SortLang  string `json:"sortLang,omitempty"`
	SortField string `json:"sortField,omitempty"`
	SortType  string `json:"sortType,omitempty"`
}
