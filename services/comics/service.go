package comics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"phimhub/config"
	"phimhub/internal/httpx"
	"phimhub/models"
)

// Wire shapes for the OTruyen API.

type rawComicCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type rawComic struct {
	Name           string             `json:"name"`
	Slug           string             `json:"slug"`
	ThumbURL       string             `json:"thumb_url"`
	Status         string             `json:"status"`
	UpdatedAt      string             `json:"updatedAt"`
	Category       []rawComicCategory `json:"category"`
	ChaptersLatest []rawChapterRef    `json:"chaptersLatest"`
}

type rawChapterRef struct {
	ChapterName    string `json:"chapter_name"`
	ChapterTitle   string `json:"chapter_title"`
	ChapterAPIData string `json:"chapter_api_data"`
}

type rawComicDetail struct {
	rawComic
	Content  string   `json:"content"`
	Author   []string `json:"author"`
	Chapters []struct {
		ServerName string          `json:"server_name"`
		ServerData []rawChapterRef `json:"server_data"`
	} `json:"chapters"`
}

type rawPagination struct {
	TotalItems        int `json:"totalItems"`
	TotalItemsPerPage int `json:"totalItemsPerPage"`
	CurrentPage       int `json:"currentPage"`
	TotalPages        int `json:"totalPages"`
}

type listResponse struct {
	Status string `json:"status"`
	Data   struct {
		TitlePage string     `json:"titlePage"`
		Items     []rawComic `json:"items"`
		Params    struct {
			Pagination rawPagination `json:"pagination"`
		} `json:"params"`
		AppDomainCDNImage string `json:"app_domain_cdn_image"`
	} `json:"data"`
}

type detailResponse struct {
	Status string `json:"status"`
	Data   struct {
		Item              *rawComicDetail `json:"item"`
		AppDomainCDNImage string          `json:"app_domain_cdn_image"`
	} `json:"data"`
}

type taxonomyResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items []struct {
			ID   string `json:"_id"`
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"items"`
	} `json:"data"`
}

type chapterResponse struct {
	Status string `json:"status"`
	Data   struct {
		DomainCDN string `json:"domain_cdn"`
		Item      struct {
			ComicName    string `json:"comic_name"`
			ChapterName  string `json:"chapter_name"`
			ChapterTitle string `json:"chapter_title"`
			ChapterPath  string `json:"chapter_path"`
			ChapterImage []struct {
				ImagePage int    `json:"image_page"`
				ImageFile string `json:"image_file"`
			} `json:"chapter_image"`
		} `json:"item"`
	} `json:"data"`
}

// Service is the single-provider comic catalogue. Unlike movies there is no
// reconciliation; one upstream serves everything.
type Service struct {
	client     *httpx.Client
	baseURL    string
	cdnDomain  string
	maxRetries uint
}

// NewService builds the comic service over the OTruyen API.
func NewService(client *httpx.Client, cfg config.ComicSourceConfig, maxRetries uint) *Service {
	return &Service{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cdnDomain:  cfg.CDNDomain,
		maxRetries: maxRetries,
	}
}

// Home returns the provider's front-page selection.
func (s *Service) Home(ctx context.Context) (models.ComicList, error) {
	return s.fetchList(ctx, s.baseURL+"/home")
}

// List serves one of the provider's named collections: truyen-moi,
// sap-ra-mat, dang-phat-hanh or hoan-thanh.
func (s *Service) List(ctx context.Context, listType string, page int) (models.ComicList, error) {
	if page <= 0 {
		page = 1
	}
	endpoint := fmt.Sprintf("%s/danh-sach/%s?page=%d", s.baseURL, url.PathEscape(listType), page)
	return s.fetchList(ctx, endpoint)
}

// Categories returns the full genre catalogue.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var resp taxonomyResponse
	if err := s.client.GetJSON(ctx, s.baseURL+"/the-loai", s.maxRetries, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(resp.Data.Items))
	for _, c := range resp.Data.Items {
		out = append(out, models.Category{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	return out, nil
}

// Category serves one genre page.
func (s *Service) Category(ctx context.Context, slug string, page int) (models.ComicList, error) {
	if page <= 0 {
		page = 1
	}
	endpoint := fmt.Sprintf("%s/the-loai/%s?page=%d", s.baseURL, url.PathEscape(slug), page)
	return s.fetchList(ctx, endpoint)
}

// Search looks the keyword up in the catalogue.
func (s *Service) Search(ctx context.Context, keyword string, page int) (models.ComicList, error) {
	if keyword == "" {
		return models.ComicList{}, errors.New("keyword is required")
	}
	if page <= 0 {
		page = 1
	}
	endpoint := fmt.Sprintf("%s/tim-kiem?keyword=%s&page=%d", s.baseURL, url.QueryEscape(keyword), page)
	return s.fetchList(ctx, endpoint)
}

// Detail fetches one comic with its full chapter list. The provider splits
// chapters across notional servers; only the first carries data.
func (s *Service) Detail(ctx context.Context, slug string) (models.ComicDetail, error) {
	endpoint := fmt.Sprintf("%s/truyen-tranh/%s", s.baseURL, url.PathEscape(slug))

	var resp detailResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.ComicDetail{}, err
	}
	if resp.Status != "success" || resp.Data.Item == nil {
		return models.ComicDetail{}, fmt.Errorf("%s: %w", slug, httpx.ErrNotFound)
	}

	item := resp.Data.Item
	var chapters []models.ChapterRef
	for _, srv := range item.Chapters {
		if len(srv.ServerData) == 0 {
			continue
		}
		chapters = normalizeChapterRefs(srv.ServerData)
		break
	}

	authors := make([]string, 0, len(item.Author))
	for _, a := range item.Author {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			authors = append(authors, trimmed)
		}
	}

	return models.ComicDetail{
		Comic:    normalizeComic(item.rawComic),
		Content:  item.Content,
		Authors:  authors,
		Chapters: chapters,
	}, nil
}

// ChapterPages fetches the image pages behind a chapter's API URL. The URL
// comes from the provider's own detail payload and must be absolute http(s).
func (s *Service) ChapterPages(ctx context.Context, apiURL string) (models.ChapterPages, error) {
	parsed, err := url.Parse(apiURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return models.ChapterPages{}, fmt.Errorf("invalid chapter url %q", apiURL)
	}

	var resp chapterResponse
	if err := s.client.GetJSON(ctx, apiURL, s.maxRetries, &resp); err != nil {
		return models.ChapterPages{}, err
	}
	if resp.Status != "success" {
		return models.ChapterPages{}, fmt.Errorf("chapter %s: %w", apiURL, httpx.ErrNotFound)
	}

	item := resp.Data.Item
	images := make([]models.ChapterImage, 0, len(item.ChapterImage))
	for _, img := range item.ChapterImage {
		images = append(images, models.ChapterImage{Page: img.ImagePage, File: img.ImageFile})
	}
	return models.ChapterPages{
		ComicName:   item.ComicName,
		ChapterName: item.ChapterName,
		Title:       item.ChapterTitle,
		CDNDomain:   resp.Data.DomainCDN,
		Path:        item.ChapterPath,
		Images:      images,
	}, nil
}

func (s *Service) fetchList(ctx context.Context, endpoint string) (models.ComicList, error) {
	var resp listResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.ComicList{}, err
	}

	items := make([]models.Comic, 0, len(resp.Data.Items))
	for _, c := range resp.Data.Items {
		items = append(items, normalizeComic(c))
	}
	domain := resp.Data.AppDomainCDNImage
	if domain == "" {
		domain = s.cdnDomain
	}
	return models.ComicList{
		TitlePage: resp.Data.TitlePage,
		Items:     items,
		Pagination: models.Pagination{
			TotalItems:        resp.Data.Params.Pagination.TotalItems,
			TotalItemsPerPage: resp.Data.Params.Pagination.TotalItemsPerPage,
			CurrentPage:       resp.Data.Params.Pagination.CurrentPage,
			TotalPages:        resp.Data.Params.Pagination.TotalPages,
		},
		ImageDomain: domain,
	}, nil
}

func normalizeComic(c rawComic) models.Comic {
	cats := make([]models.Category, 0, len(c.Category))
	for _, cat := range c.Category {
		cats = append(cats, models.Category{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
	}
	return models.Comic{
		Name:       c.Name,
		Slug:       c.Slug,
		ThumbPath:  c.ThumbURL,
		Status:     c.Status,
		Categories: cats,
		UpdatedAt:  c.UpdatedAt,
		Latest:     normalizeChapterRefs(c.ChaptersLatest),
	}
}

func normalizeChapterRefs(raw []rawChapterRef) []models.ChapterRef {
	out := make([]models.ChapterRef, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.ChapterRef{
			Name:   r.ChapterName,
			Title:  r.ChapterTitle,
			APIURL: r.ChapterAPIData,
		})
	}
	return out
}

// IsDescending reports whether a chapter list runs newest-first. The provider
// emits either order without saying which; compare the numeric chapter names
// at both ends. Unparseable names default to ascending.
func IsDescending(chapters []models.ChapterRef) bool {
	if len(chapters) < 2 {
		return false
	}
	first, errFirst := strconv.ParseFloat(strings.TrimSpace(chapters[0].Name), 64)
	last, errLast := strconv.ParseFloat(strings.TrimSpace(chapters[len(chapters)-1].Name), 64)
	if errFirst != nil || errLast != nil {
		return false
	}
	return first > last
}

// Neighbors finds the chapters surrounding current in reading order,
// regardless of how the provider ordered the list. The boolean results
// report whether a previous or next chapter exists.
func Neighbors(chapters []models.ChapterRef, currentAPIURL string) (prev, next models.ChapterRef, hasPrev, hasNext bool) {
	idx := -1
	for i, c := range chapters {
		if c.APIURL == currentAPIURL {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.ChapterRef{}, models.ChapterRef{}, false, false
	}

	// In a descending list the "next" chapter in reading order sits at the
	// lower index.
	step := 1
	if IsDescending(chapters) {
		step = -1
	}
	if j := idx - step; j >= 0 && j < len(chapters) {
		prev, hasPrev = chapters[j], true
	}
	if j := idx + step; j >= 0 && j < len(chapters) {
		next, hasNext = chapters[j], true
	}
	return prev, next, hasPrev, hasNext
}
