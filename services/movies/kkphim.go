package movies

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"phimhub/config"
	"phimhub/internal/httpx"
	"phimhub/models"
)

// legacyDetailResponse is the KKPhim detail shape: movie metadata and the
// server list travel as siblings instead of nesting under data.item.
type legacyDetailResponse struct {
	Status   boolish          `json:"status"`
	Movie    *rawV1Detail     `json:"movie"`
	Episodes []rawServerGroup `json:"episodes"`
}

// legacyListResponse is the flat list shape served by the KKPhim
// latest-updates endpoint.
type legacyListResponse struct {
	Status     boolish         `json:"status"`
	Items      []rawV1Movie    `json:"items"`
	PathImage  string          `json:"pathImage"`
	Pagination rawV1Pagination `json:"pagination"`
}

// kkphimSource is the lowest-priority movie provider. Search and taxonomy
// browsing speak the v1 shape; detail and latest-updates use its older flat
// endpoints.
type kkphimSource struct {
	client     *httpx.Client
	baseURL    string
	cdnDomain  string
	priority   int
	maxRetries uint
}

// NewKKPhimSource builds the KKPhim adapter from its source config.
func NewKKPhimSource(client *httpx.Client, cfg config.MovieSourceConfig, maxRetries uint) Source {
	return &kkphimSource{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cdnDomain:  cfg.CDNDomain,
		priority:   cfg.Priority,
		maxRetries: maxRetries,
	}
}

func (s *kkphimSource) Name() models.SourceName { return models.SourceKKPhim }
func (s *kkphimSource) Priority() int           { return s.priority }

func (s *kkphimSource) Search(ctx context.Context, keyword string, limit int, params models.FilterParams) (models.MovieList, error) {
	endpoint := fmt.Sprintf("%s/v1/api/tim-kiem?keyword=%s&limit=%d%s",
		s.baseURL, url.QueryEscape(keyword), limit, buildFilterQuery(params))
	return s.fetchV1List(ctx, endpoint)
}

func (s *kkphimSource) Detail(ctx context.Context, slug string) (models.MovieDetail, error) {
	endpoint := fmt.Sprintf("%s/phim/%s", s.baseURL, url.PathEscape(slug))

	var resp legacyDetailResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.MovieDetail{}, err
	}
	if !bool(resp.Status) || resp.Movie == nil {
		return models.MovieDetail{}, fmt.Errorf("%s: %w", slug, httpx.ErrNotFound)
	}

	detail := normalizeV1Detail(*resp.Movie, models.SourceKKPhim, s.cdnDomain)
	if len(detail.Episodes) == 0 {
		detail.Episodes = normalizeServerGroups(resp.Episodes, models.SourceKKPhim)
	}
	return detail, nil
}

func (s *kkphimSource) List(ctx context.Context, kind ListKind, slug string, page, limit int, params models.FilterParams) (models.MovieList, error) {
	if kind == ListNew {
		return s.fetchLatest(ctx, page)
	}

	var path string
	switch kind {
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
	return s.fetchV1List(ctx, endpoint)
}

func (s *kkphimSource) Taxonomy(ctx context.Context, kind TaxonomyKind) ([]models.Category, error) {
	var path string
	switch kind {
	case TaxonomyGenres:
		path = "/v1/api/the-loai"
	case TaxonomyCountries:
		path = "/v1/api/quoc-gia"
	default:
		// No release-year catalogue on this provider.
		return nil, fmt.Errorf("taxonomy %q: %w", kind, ErrUnsupported)
	}

	var resp v1TaxonomyResponse
	if err := s.client.GetJSON(ctx, s.baseURL+path, s.maxRetries, &resp); err != nil {
		return nil, err
	}
	return normalizeCategories(resp.Data.Items), nil
}

func (s *kkphimSource) fetchV1List(ctx context.Context, endpoint string) (models.MovieList, error) {
	var resp v1ListResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.MovieList{}, err
	}
	domain := resp.cdnDomain(s.cdnDomain)
	return models.MovieList{
		TitlePage:   resp.Data.TitlePage,
		Items:       normalizeV1Movies(resp.Data.Items, models.SourceKKPhim, domain),
		Pagination:  normalizeV1Pagination(resp.Data.Params.Pagination),
		ImageDomain: domain,
	}, nil
}

func (s *kkphimSource) fetchLatest(ctx context.Context, page int) (models.MovieList, error) {
	endpoint := fmt.Sprintf("%s/danh-sach/phim-moi-cap-nhat?page=%d", s.baseURL, page)

	var resp legacyListResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.MovieList{}, err
	}
	domain := resp.PathImage
	if domain == "" {
		domain = s.cdnDomain
	}
	return models.MovieList{
		Items:       normalizeV1Movies(resp.Items, models.SourceKKPhim, domain),
		Pagination:  normalizeV1Pagination(resp.Pagination),
		ImageDomain: domain,
	}, nil
}
