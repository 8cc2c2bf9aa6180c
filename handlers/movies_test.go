package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"phimhub/internal/httpx"
	"phimhub/models"
	"phimhub/services/movies"
)

type stubMovieService struct {
	detailErr error
	list      models.MovieList
}

func (s *stubMovieService) Search(ctx context.Context, keyword string, limit int, params models.FilterParams) (models.MovieList, error) {
	return s.list, nil
}

func (s *stubMovieService) Detail(ctx context.Context, slug string) (models.MovieDetail, error) {
	if s.detailErr != nil {
		return models.MovieDetail{}, s.detailErr
	}
	return models.MovieDetail{Movie: models.Movie{Name: "Found", Slug: slug}}, nil
}

func (s *stubMovieService) List(ctx context.Context, kind movies.ListKind, slug string, page, limit int, params models.FilterParams) (models.MovieList, error) {
	return s.list, nil
}

func (s *stubMovieService) Taxonomy(ctx context.Context, kind movies.TaxonomyKind) ([]models.Category, error) {
	return []models.Category{{Name: "Hành Động", Slug: "hanh-dong"}}, nil
}

func moviesRouter(svc movieService) *mux.Router {
	h := NewMoviesHandler(svc, nil)
	r := mux.NewRouter()
	r.HandleFunc("/api/movies/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/movies/detail/{slug}", h.Detail).Methods(http.MethodGet)
	r.HandleFunc("/api/movies/{kind}", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/movies/{kind}/{slug}", h.List).Methods(http.MethodGet)
	return r
}

func TestDetailNotFoundMapsTo404(t *testing.T) {
	svc := &stubMovieService{detailErr: fmt.Errorf("x: %w", httpx.ErrNotFound)}
	rec := httptest.NewRecorder()
	moviesRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies/detail/khong-co", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDetailSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	moviesRouter(&stubMovieService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies/detail/co-phim", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.MovieDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "co-phim", got.Slug)
}

func TestSearchRequiresKeyword(t *testing.T) {
	rec := httptest.NewRecorder()
	moviesRouter(&stubMovieService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies/search", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRejectsUnknownKind(t *testing.T) {
	rec := httptest.NewRecorder()
	moviesRouter(&stubMovieService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies/bogus-kind", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
