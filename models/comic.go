package models

// Comic is the canonical comic card (single-source, no reconciliation).
type Comic struct {
	Name       string       `json:"name"`
	Slug       string       `json:"slug"`
	ThumbPath  string       `json:"thumbPath"`
	Status     string       `json:"status,omitempty"`
	Categories []Category   `json:"categories"`
	UpdatedAt  string       `json:"updatedAt,omitempty"`
	Latest     []ChapterRef `json:"latestChapters,omitempty"`
}

// ChapterRef points at one chapter. APIURL is the provider-supplied absolute
// URL that serves the chapter's image pages.
type ChapterRef struct {
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	APIURL string `json:"apiUrl"`
}

// ComicDetail extends Comic with synopsis, authors and the full chapter list.
// Chapter order is whatever the provider emitted; it may be ascending or
// descending and must be detected, not assumed.
type ComicDetail struct {
	Comic
	Content  string       `json:"content"`
	Authors  []string     `json:"authors"`
	Chapters []ChapterRef `json:"chapters"`
}

// ChapterImage is one page of a chapter. File is relative to the chapter's
// CDN domain + path.
type ChapterImage struct {
	Page int    `json:"page"`
	File string `json:"file"`
}

// ChapterPages is the readable content of one chapter.
type ChapterPages struct {
	ComicName   string         `json:"comicName"`
	ChapterName string         `json:"chapterName"`
	Title       string         `json:"title,omitempty"`
	CDNDomain   string         `json:"cdnDomain"`
	Path        string         `json:"path"`
	Images      []ChapterImage `json:"images"`
}

// ComicList is the canonical result of comic list/search operations.
type ComicList struct {
	TitlePage   string     `json:"titlePage,omitempty"`
	Items       []Comic    `json:"items"`
	Pagination  Pagination `json:"pagination"`
	ImageDomain string     `json:"imageDomain,omitempty"`
}
