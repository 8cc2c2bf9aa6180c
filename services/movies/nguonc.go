package movies

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"phimhub/config"
	"phimhub/internal/httpx"
	"phimhub/models"
	"phimhub/utils/slugify"
)

// NguonC wire shapes. The API emits absolute image URLs, different field
// names for the same concepts, and taxonomy as named groups instead of flat
// arrays.

type rawNguonCGroup struct {
	Group struct {
		Name string `json:"name"`
	} `json:"group"`
	List []rawCategory `json:"list"`
}

type rawNguonCMovie struct {
	Name           string                    `json:"name"`
	Slug           string                    `json:"slug"`
	OriginalName   string                    `json:"original_name"`
	PosterURL      string                    `json:"poster_url"`
	ThumbURL       string                    `json:"thumb_url"`
	CurrentEpisode stringish                 `json:"current_episode"`
	Quality        string                    `json:"quality"`
	Language       string                    `json:"language"`
	Category       map[string]rawNguonCGroup `json:"category"`
}

type rawNguonCDetail struct {
	rawNguonCMovie
	Description   string           `json:"description"`
	Director      stringish        `json:"director"`
	Casts         stringish        `json:"casts"`
	TotalEpisodes stringish        `json:"total_episodes"`
	Episodes      []rawServerGroup `json:"episodes"`
}

type rawNguonCPaginate struct {
	CurrentPage  intish `json:"current_page"`
	TotalPage    intish `json:"total_page"`
	TotalItems   intish `json:"total_items"`
	ItemsPerPage intish `json:"items_per_page"`
}

type nguoncListResponse struct {
	Status   boolish           `json:"status"`
	Items    []rawNguonCMovie  `json:"items"`
	Paginate rawNguonCPaginate `json:"paginate"`
}

type nguoncDetailResponse struct {
	Status   boolish          `json:"status"`
	Movie    *rawNguonCDetail `json:"movie"`
	Episodes []rawServerGroup `json:"episodes"`
}

// Taxonomy group names as NguonC labels them.
const (
	groupNameCategory = "Thể loại"
	groupNameCountry  = "Quốc gia"
	groupNameYear     = "Năm"
)

// nguoncSource is the middle-priority movie provider.
type nguoncSource struct {
	client     *httpx.Client
	baseURL    string
	priority   int
	maxRetries uint
}

// NewNguonCSource builds the NguonC adapter from its source config.
func NewNguonCSource(client *httpx.Client, cfg config.MovieSourceConfig, maxRetries uint) Source {
	return &nguoncSource{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		priority:   cfg.Priority,
		maxRetries: maxRetries,
	}
}

func (s *nguoncSource) Name() models.SourceName { return models.SourceNguonC }
func (s *nguoncSource) Priority() int           { return s.priority }

// Search ignores limit and filter params: the upstream search endpoint takes
// only the keyword.
func (s *nguoncSource) Search(ctx context.Context, keyword string, _ int, _ models.FilterParams) (models.MovieList, error) {
	endpoint := fmt.Sprintf("%s/api/films/search?keyword=%s", s.baseURL, url.QueryEscape(keyword))
	return s.fetchList(ctx, endpoint)
}

func (s *nguoncSource) Detail(ctx context.Context, slug string) (models.MovieDetail, error) {
	endpoint := fmt.Sprintf("%s/api/film/%s", s.baseURL, url.PathEscape(slug))

	var resp nguoncDetailResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.MovieDetail{}, err
	}
	if !bool(resp.Status) || resp.Movie == nil {
		return models.MovieDetail{}, fmt.Errorf("%s: %w", slug, httpx.ErrNotFound)
	}

	detail := *resp.Movie
	if len(detail.Episodes) == 0 {
		detail.Episodes = resp.Episodes
	}
	return normalizeNguonCDetail(detail), nil
}

// List ignores limit: the upstream pages at its own fixed size.
func (s *nguoncSource) List(ctx context.Context, kind ListKind, slug string, page, _ int, _ models.FilterParams) (models.MovieList, error) {
	var path string
	switch kind {
	case ListNew:
		path = "/api/films/phim-moi-cap-nhat"
	case ListGeneric:
		path = "/api/films/danh-sach/" + url.PathEscape(slug)
	case ListCategory:
		path = "/api/films/the-loai/" + url.PathEscape(slug)
	case ListCountry:
		path = "/api/films/quoc-gia/" + url.PathEscape(slug)
	case ListYear:
		path = "/api/films/nam-phat-hanh/" + url.PathEscape(slug)
	default:
		return models.MovieList{}, fmt.Errorf("list kind %q: %w", kind, ErrUnsupported)
	}
	return s.fetchList(ctx, fmt.Sprintf("%s%s?page=%d", s.baseURL, path, page))
}

// Taxonomy catalogues are not exposed by this provider.
func (s *nguoncSource) Taxonomy(_ context.Context, kind TaxonomyKind) ([]models.Category, error) {
	return nil, fmt.Errorf("taxonomy %q: %w", kind, ErrUnsupported)
}

func (s *nguoncSource) fetchList(ctx context.Context, endpoint string) (models.MovieList, error) {
	var resp nguoncListResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.MovieList{}, err
	}

	items := make([]models.Movie, 0, len(resp.Items))
	for _, i := range resp.Items {
		items = append(items, normalizeNguonCMovie(i))
	}
	return models.MovieList{
		Items: items,
		Pagination: models.Pagination{
			TotalItems:        int(resp.Paginate.TotalItems),
			TotalItemsPerPage: int(resp.Paginate.ItemsPerPage),
			CurrentPage:       int(resp.Paginate.CurrentPage),
			TotalPages:        int(resp.Paginate.TotalPage),
		},
		// Absolute image URLs, no CDN base to carry.
	}, nil
}

// normalizeNguonCMovie maps one card to canonical form. Year lives inside the
// taxonomy groups; missing year degrades to the current year.
func normalizeNguonCMovie(i rawNguonCMovie) models.Movie {
	year := yearFromGroups(i.Category)
	if year == 0 {
		year = time.Now().Year()
	}
	return models.Movie{
		Name:           i.Name,
		OriginalName:   i.OriginalName,
		Slug:           i.Slug,
		PosterPath:     i.PosterURL,
		ThumbPath:      i.ThumbURL,
		Year:           year,
		Quality:        i.Quality,
		EpisodeCurrent: string(i.CurrentEpisode),
		Language:       i.Language,
		Source:         models.SourceNguonC,
	}
}

func normalizeNguonCDetail(d rawNguonCDetail) models.MovieDetail {
	return models.MovieDetail{
		Movie:        normalizeNguonCMovie(d.rawNguonCMovie),
		Content:      d.Description,
		Type:         deriveType(string(d.TotalEpisodes)),
		Status:       deriveStatus(string(d.CurrentEpisode)),
		EpisodeTotal: string(d.TotalEpisodes),
		Categories:   categoriesFromGroups(d.Category, groupNameCategory),
		Countries:    categoriesFromGroups(d.Category, groupNameCountry),
		Actors:       nonNil(splitNames(string(d.Casts))),
		Directors:    nonNil(directorList(string(d.Director))),
		Episodes:     normalizeServerGroups(d.Episodes, models.SourceNguonC),
	}
}

func directorList(director string) []string {
	if strings.TrimSpace(director) == "" {
		return nil
	}
	return []string{strings.TrimSpace(director)}
}

// categoriesFromGroups flattens the named group carrying wanted entries.
// Entries without a slug get one derived from the display name.
func categoriesFromGroups(groups map[string]rawNguonCGroup, wanted string) []models.Category {
	for _, g := range groups {
		name := g.Group.Name
		if name != wanted && !equivalentGroupName(name, wanted) {
			continue
		}
		out := make([]models.Category, 0, len(g.List))
		for _, c := range g.List {
			slug := c.Slug
			if slug == "" {
				slug = slugify.Make(c.Name)
			}
			out = append(out, models.Category{ID: c.ID, Name: c.Name, Slug: slug})
		}
		return out
	}
	return []models.Category{}
}

// equivalentGroupName accepts the English aliases the API occasionally emits.
func equivalentGroupName(name, wanted string) bool {
	switch wanted {
	case groupNameCategory:
		return name == "Category"
	case groupNameCountry:
		return name == "Country"
	case groupNameYear:
		return name == "Year"
	}
	return false
}

func yearFromGroups(groups map[string]rawNguonCGroup) int {
	for _, g := range groups {
		name := g.Group.Name
		if name != groupNameYear && !equivalentGroupName(name, groupNameYear) {
			continue
		}
		if len(g.List) == 0 {
			return 0
		}
		year, err := strconv.Atoi(strings.TrimSpace(g.List[0].Name))
		if err != nil {
			return 0
		}
		return year
	}
	return 0
}
