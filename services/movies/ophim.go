package movies

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"phimhub/config"
	"phimhub/internal/httpx"
	"phimhub/models"
)

// v1 wire shapes shared by the OPhim and KKPhim APIs.

type rawV1Movie struct {
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	OriginName     string    `json:"origin_name"`
	PosterURL      string    `json:"poster_url"`
	ThumbURL       string    `json:"thumb_url"`
	Year           intish    `json:"year"`
	Quality        string    `json:"quality"`
	EpisodeCurrent stringish `json:"episode_current"`
	Lang           string    `json:"lang"`
}

type rawCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type rawV1Pagination struct {
	TotalItems        intish `json:"totalItems"`
	TotalItemsPerPage intish `json:"totalItemsPerPage"`
	CurrentPage       intish `json:"currentPage"`
	TotalPages        intish `json:"totalPages"`
}

type v1ListResponse struct {
	Status boolish `json:"status"`
	Data   struct {
		TitlePage string       `json:"titlePage"`
		Items     []rawV1Movie `json:"items"`
		Params    struct {
			Pagination rawV1Pagination `json:"pagination"`
		} `json:"params"`
		AppDomainCDNImage      string `json:"app_domain_cdn_image"`
		AppDomainCDNImageUpper string `json:"APP_DOMAIN_CDN_IMAGE"`
	} `json:"data"`
}

func (r v1ListResponse) cdnDomain(fallback string) string {
	if r.Data.AppDomainCDNImage != "" {
		return r.Data.AppDomainCDNImage
	}
	if r.Data.AppDomainCDNImageUpper != "" {
		return r.Data.AppDomainCDNImageUpper
	}
	return fallback
}

type rawV1Detail struct {
	rawV1Movie
	Content      string           `json:"content"`
	Type         string           `json:"type"`
	Status       string           `json:"status"`
	EpisodeTotal stringish        `json:"episode_total"`
	TrailerURL   string           `json:"trailer_url"`
	Category     []rawCategory    `json:"category"`
	Country      []rawCategory    `json:"country"`
	Actor        stringOrSlice    `json:"actor"`
	Director     stringOrSlice    `json:"director"`
	Episodes     []rawServerGroup `json:"episodes"`
}

type v1DetailResponse struct {
	Status boolish `json:"status"`
	Data   struct {
		Item *rawV1Detail `json:"item"`
	} `json:"data"`
}

type v1TaxonomyResponse struct {
	Status boolish `json:"status"`
	Data   struct {
		Items []rawCategory `json:"items"`
	} `json:"data"`
}

// ophimSource is the highest-priority movie provider. It speaks the v1 API
// shape and ships relative image paths against its own CDN.
type ophimSource struct {
	client     *httpx.Client
	baseURL    string
	cdnDomain  string
	priority   int
	maxRetries uint
}

// NewOPhimSource builds the OPhim adapter from its source config.
func NewOPhimSource(client *httpx.Client, cfg config.MovieSourceConfig, maxRetries uint) Source {
	return &ophimSource{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cdnDomain:  cfg.CDNDomain,
		priority:   cfg.Priority,
		maxRetries: maxRetries,
	}
}

func (s *ophimSource) Name() models.SourceName { return models.SourceOPhim }
func (s *ophimSource) Priority() int           { return s.priority }

func (s *ophimSource) Search(ctx context.Context, keyword string, limit int, params models.FilterParams) (models.MovieList, error) {
	endpoint := fmt.Sprintf("%s/v1/api/tim-kiem?keyword=%s&limit=%d%s",
		s.baseURL, url.QueryEscape(keyword), limit, buildFilterQuery(params))
	return s.fetchList(ctx, endpoint)
}

func (s *ophimSource) Detail(ctx context.Context, slug string) (models.MovieDetail, error) {
	endpoint := fmt.Sprintf("%s/v1/api/phim/%s", s.baseURL, url.PathEscape(slug))

	var resp v1DetailResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.MovieDetail{}, err
	}
	// Some endpoints answer 200 with status:false instead of a 404.
	if !bool(resp.Status) || resp.Data.Item == nil {
		return models.MovieDetail{}, fmt.Errorf("%s: %w", slug, httpx.ErrNotFound)
	}
	return normalizeV1Detail(*resp.Data.Item, models.SourceOPhim, s.cdnDomain), nil
}

func (s *ophimSource) List(ctx context.Context, kind ListKind, slug string, page, limit int, params models.FilterParams) (models.MovieList, error) {
	var path string
	switch kind {
	case ListNew:
		path = "/v1/api/danh-sach/phim-moi"
	case ListGeneric:
		path = "/v1/api/danh-sach/" + url.PathEscape(slug)
	case ListCategory:
		path = "/v1/api/the-loai/" + url.PathEscape(slug)
	case ListCountry:
		path = "/v1/api/quoc-gia/" + url.PathEscape(slug)
	case ListYear:
		path = "/v1/api/nam-phat-hanh/" + url.PathEscape(slug)
	default:
		return models.MovieList{}, fmt.Errorf("list kind %q: %w", kind, ErrUnsupported)
	}
	endpoint := fmt.Sprintf("%s%s?page=%d&limit=%d%s", s.baseURL, path, page, limit, buildFilterQuery(params))
	return s.fetchList(ctx, endpoint)
}

func (s *ophimSource) Taxonomy(ctx context.Context, kind TaxonomyKind) ([]models.Category, error) {
	var path string
	switch kind {
	case TaxonomyGenres:
		path = "/v1/api/the-loai"
	case TaxonomyCountries:
		path = "/v1/api/quoc-gia"
	case TaxonomyYears:
		path = "/v1/api/nam-phat-hanh"
	default:
		return nil, fmt.Errorf("taxonomy %q: %w", kind, ErrUnsupported)
	}

	var resp v1TaxonomyResponse
	if err := s.client.GetJSON(ctx, s.baseURL+path, s.maxRetries, &resp); err != nil {
		return nil, err
	}
	return normalizeCategories(resp.Data.Items), nil
}

func (s *ophimSource) fetchList(ctx context.Context, endpoint string) (models.MovieList, error) {
	var resp v1ListResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.MovieList{}, err
	}
	domain := resp.cdnDomain(s.cdnDomain)
	return models.MovieList{
		TitlePage:   resp.Data.TitlePage,
		Items:       normalizeV1Movies(resp.Data.Items, models.SourceOPhim, domain),
		Pagination:  normalizeV1Pagination(resp.Data.Params.Pagination),
		ImageDomain: domain,
	}, nil
}

// normalizeV1Movies maps v1 movie cards into canonical form, stamping every
// item with its origin and image domain.
func normalizeV1Movies(items []rawV1Movie, src models.SourceName, domain string) []models.Movie {
	out := make([]models.Movie, 0, len(items))
	for _, i := range items {
		out = append(out, normalizeV1Movie(i, src, domain))
	}
	return out
}

func normalizeV1Movie(i rawV1Movie, src models.SourceName, domain string) models.Movie {
	year := int(i.Year)
	if year == 0 {
		year = time.Now().Year()
	}
	return models.Movie{
		Name:           i.Name,
		OriginalName:   i.OriginName,
		Slug:           i.Slug,
		PosterPath:     i.PosterURL,
		ThumbPath:      i.ThumbURL,
		Year:           year,
		Quality:        i.Quality,
		EpisodeCurrent: string(i.EpisodeCurrent),
		Language:       i.Lang,
		Source:         src,
		ImageDomain:    domain,
	}
}

func normalizeV1Detail(d rawV1Detail, src models.SourceName, domain string) models.MovieDetail {
	status := models.CompletionStatus(d.Status)
	if d.Status == "" {
		status = deriveStatus(string(d.EpisodeCurrent))
	}
	typ := d.Type
	if typ == "" {
		typ = deriveType(string(d.EpisodeTotal))
	}
	return models.MovieDetail{
		Movie:        normalizeV1Movie(d.rawV1Movie, src, domain),
		Content:      d.Content,
		Type:         typ,
		Status:       status,
		EpisodeTotal: string(d.EpisodeTotal),
		TrailerURL:   d.TrailerURL,
		Categories:   normalizeCategories(d.Category),
		Countries:    normalizeCategories(d.Country),
		Actors:       nonNil(d.Actor),
		Directors:    nonNil(d.Director),
		Episodes:     normalizeServerGroups(d.Episodes, src),
	}
}

func normalizeCategories(raw []rawCategory) []models.Category {
	out := make([]models.Category, 0, len(raw))
	for _, c := range raw {
		out = append(out, models.Category{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	return out
}

func normalizeV1Pagination(p rawV1Pagination) models.Pagination {
	pages := int(p.TotalPages)
	if pages == 0 && int(p.TotalItemsPerPage) > 0 {
		pages = (int(p.TotalItems) + int(p.TotalItemsPerPage) - 1) / int(p.TotalItemsPerPage)
	}
	return models.Pagination{
		TotalItems:        int(p.TotalItems),
		TotalItemsPerPage: int(p.TotalItemsPerPage),
		CurrentPage:       int(p.CurrentPage),
		TotalPages:        pages,
	}
}
