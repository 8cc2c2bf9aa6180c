package movies

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/sourcegraph/conc"

	"phimhub/internal/httpx"
	"phimhub/models"
)

// ErrTitleNotFound is returned by Detail when no source could serve the slug.
// It wraps the transport-level not-found sentinel so callers can map it with
// httpx.IsNotFound.
var ErrTitleNotFound = fmt.Errorf("title not found on any source: %w", httpx.ErrNotFound)

// Service reconciles the movie providers behind one API. Search and Detail
// fan out to every source in parallel and merge; list and taxonomy browsing
// walk the sources as a fallback chain. Priority is fixed at construction
// and governs metadata and dedup precedence, never completion order.
type Service struct {
	sources []Source
}

// NewService builds the reconciliation service over the given sources,
// ordered by ascending priority number (lower wins).
func NewService(sources ...Source) *Service {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Service{sources: sorted}
}

// Search fans out the keyword to every source, then merges the settled
// results in priority order with slug-level dedup. Individual source
// failures degrade the result silently; even total failure yields a
// well-formed empty list, never an error.
func (s *Service) Search(ctx context.Context, keyword string, limit int, params models.FilterParams) (models.MovieList, error) {
	if keyword == "" {
		return models.MovieList{}, errors.New("keyword is required")
	}
	if limit <= 0 {
		limit = 24
	}

	type slot struct {
		list models.MovieList
		err  error
	}
	results := make([]slot, len(s.sources))

	var wg conc.WaitGroup
	for i, src := range s.sources {
		i, src := i, src
		wg.Go(func() {
			results[i].list, results[i].err = src.Search(ctx, keyword, limit, params)
		})
	}
	wg.Wait()

	merged := models.MovieList{
		TitlePage: "Tìm kiếm: " + keyword,
		Items:     []models.Movie{},
	}
	seen := make(map[string]struct{})
	for i, src := range s.sources {
		if err := results[i].err; err != nil {
			log.Printf("[movies] search via %s failed: %v", src.Name(), err)
			continue
		}
		for _, item := range results[i].list.Items {
			if _, dup := seen[item.Slug]; dup {
				continue
			}
			seen[item.Slug] = struct{}{}
			merged.Items = append(merged.Items, item)
		}
		if merged.ImageDomain == "" {
			merged.ImageDomain = results[i].list.ImageDomain
		}
	}

	merged.Pagination = models.Pagination{
		TotalItems:        len(merged.Items),
		TotalItemsPerPage: limit,
		CurrentPage:       1,
		TotalPages:        1,
	}
	return merged, nil
}

// Detail fans out to every source, takes all metadata wholesale from the
// highest-priority successful source, and concatenates episode server groups
// from every successful source in priority order. Total failure surfaces as
// ErrTitleNotFound.
func (s *Service) Detail(ctx context.Context, slug string) (models.MovieDetail, error) {
	if slug == "" {
		return models.MovieDetail{}, errors.New("slug is required")
	}

	type slot struct {
		detail models.MovieDetail
		err    error
	}
	results := make([]slot, len(s.sources))

	var wg conc.WaitGroup
	for i, src := range s.sources {
		i, src := i, src
		wg.Go(func() {
			results[i].detail, results[i].err = src.Detail(ctx, slug)
		})
	}
	wg.Wait()

	var (
		winner   *models.MovieDetail
		episodes []models.EpisodeServerGroup
	)
	for i, src := range s.sources {
		if err := results[i].err; err != nil {
			if !httpx.IsNotFound(err) {
				log.Printf("[movies] detail via %s failed: %v", src.Name(), err)
			}
			continue
		}
		if winner == nil {
			winner = &results[i].detail
		}
		episodes = append(episodes, results[i].detail.Episodes...)
	}
	if winner == nil {
		return models.MovieDetail{}, fmt.Errorf("%q: %w", slug, ErrTitleNotFound)
	}

	if episodes == nil {
		episodes = []models.EpisodeServerGroup{}
	}
	detail := *winner
	detail.Episodes = episodes
	return detail, nil
}

// List serves one browse page from the first source in the priority chain
// that answers. List pages are never merged across sources; mixed pagination
// would be meaningless.
func (s *Service) List(ctx context.Context, kind ListKind, slug string, page, limit int, params models.FilterParams) (models.MovieList, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 24
	}

	var lastErr error
	for _, src := range s.sources {
		list, err := src.List(ctx, kind, slug, page, limit, params)
		if err != nil {
			if !errors.Is(err, ErrUnsupported) {
				log.Printf("[movies] %s list via %s failed: %v", kind, src.Name(), err)
			}
			lastErr = err
			continue
		}
		return list, nil
	}
	if lastErr == nil {
		lastErr = ErrUnsupported
	}
	return models.MovieList{}, fmt.Errorf("%s list unavailable on all sources: %w", kind, lastErr)
}

// Taxonomy serves a category catalogue from the first source that has one.
func (s *Service) Taxonomy(ctx context.Context, kind TaxonomyKind) ([]models.Category, error) {
	var lastErr error
	for _, src := range s.sources {
		cats, err := src.Taxonomy(ctx, kind)
		if err != nil {
			if !errors.Is(err, ErrUnsupported) {
				log.Printf("[movies] %s taxonomy via %s failed: %v", kind, src.Name(), err)
			}
			lastErr = err
			continue
		}
		return cats, nil
	}
	if lastErr == nil {
		lastErr = ErrUnsupported
	}
	return nil, fmt.Errorf("%s taxonomy unavailable on all sources: %w", kind, lastErr)
}
