package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"phimhub/internal/httpx"
	"phimhub/models"
	"phimhub/services/cache"
	"phimhub/services/movies"
)

type movieService interface {
	Search(ctx context.Context, keyword string, limit int, params models.FilterParams) (models.MovieList, error)
	Detail(ctx context.Context, slug string) (models.MovieDetail, error)
	List(ctx context.Context, kind movies.ListKind, slug string, page, limit int, params models.FilterParams) (models.MovieList, error)
	Taxonomy(ctx context.Context, kind movies.TaxonomyKind) ([]models.Category, error)
}

var _ movieService = (*movies.Service)(nil)

type MoviesHandler struct {
	Service movieService
	Cache   *cache.Cache
}

func NewMoviesHandler(service movieService, c *cache.Cache) *MoviesHandler {
	return &MoviesHandler{Service: service, Cache: c}
}

func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		http.Error(w, "keyword is required", http.StatusBadRequest)
		return
	}

	list, err := h.Service.Search(r.Context(), keyword, queryInt(r, "limit", 24), filterParams(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (h *MoviesHandler) Detail(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(mux.Vars(r)["slug"])
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	key := "movies:detail:" + slug
	var cached models.MovieDetail
	if h.Cache.GetJSON(r.Context(), key, &cached) {
		writeJSON(w, cached)
		return
	}

	detail, err := h.Service.Detail(r.Context(), slug)
	if err != nil {
		if httpx.IsNotFound(err) {
			http.Error(w, "movie not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.Cache.SetJSON(r.Context(), key, detail)
	writeJSON(w, detail)
}

// List serves the browse endpoints. The list kind comes from the route.
func (h *MoviesHandler) List(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := movies.ListKind(vars["kind"])
	slug := vars["slug"]

	switch kind {
	case movies.ListNew, movies.ListGeneric, movies.ListCategory, movies.ListCountry, movies.ListYear:
	default:
		http.Error(w, "unknown list kind", http.StatusBadRequest)
		return
	}
	if kind != movies.ListNew && slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 24)
	params := filterParams(r)

	key := fmt.Sprintf("movies:list:%s:%s:%d:%d", kind, slug, page, limit)
	if params == (models.FilterParams{}) {
		var cached models.MovieList
		if h.Cache.GetJSON(r.Context(), key, &cached) {
			writeJSON(w, cached)
			return
		}
	}

	list, err := h.Service.List(r.Context(), kind, slug, page, limit, params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if params == (models.FilterParams{}) {
		h.Cache.SetJSON(r.Context(), key, list)
	}
	writeJSON(w, list)
}

func (h *MoviesHandler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	kind := movies.TaxonomyKind(mux.Vars(r)["kind"])
	switch kind {
	case movies.TaxonomyGenres, movies.TaxonomyCountries, movies.TaxonomyYears:
	default:
		http.Error(w, "unknown taxonomy", http.StatusBadRequest)
		return
	}

	key := "movies:taxonomy:" + string(kind)
	var cached []models.Category
	if h.Cache.GetJSON(r.Context(), key, &cached) {
		writeJSON(w, cached)
		return
	}

	cats, err := h.Service.Taxonomy(r.Context(), kind)
	if err != nil {
		if errors.Is(err, movies.ErrUnsupported) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.Cache.SetJSON(r.Context(), key, cats)
	writeJSON(w, cats)
}

func (h *MoviesHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func filterParams(r *http.Request) models.FilterParams {
	q := r.URL.Query()
	return models.FilterParams{
		Category:  q.Get("category"),
		Country:   q.Get("country"),
		Year:      q.Get("year"),
		SortLang:  q.Get("sort_lang"),
		SortField: q.Get("sort_field"),
		SortType:  q.Get("sort_type"),
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
