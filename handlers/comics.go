package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"phimhub/internal/httpx"
	"phimhub/models"
	"phimhub/services/comics"
)

type comicService interface {
	Home(ctx context.Context) (models.ComicList, error)
	List(ctx context.Context, listType string, page int) (models.ComicList, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Category(ctx context.Context, slug string, page int) (models.ComicList, error)
	Search(ctx context.Context, keyword string, page int) (models.ComicList, error)
	Detail(ctx context.Context, slug string) (models.ComicDetail, error)
	ChapterPages(ctx context.Context, apiURL string) (models.ChapterPages, error)
}

var _ comicService = (*comics.Service)(nil)

type ComicsHandler struct {
	Service comicService
}

func NewComicsHandler(service comicService) *ComicsHandler {
	return &ComicsHandler{Service: service}
}

func (h *ComicsHandler) Home(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.Home(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, list)
}

func (h *ComicsHandler) List(w http.ResponseWriter, r *http.Request) {
	listType := strings.TrimSpace(mux.Vars(r)["type"])
	if listType == "" {
		http.Error(w, "list type is required", http.StatusBadRequest)
		return
	}

	list, err := h.Service.List(r.Context(), listType, queryInt(r, "page", 1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, list)
}

func (h *ComicsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Service.Categories(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, cats)
}

func (h *ComicsHandler) Category(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(mux.Vars(r)["slug"])
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	list, err := h.Service.Category(r.Context(), slug, queryInt(r, "page", 1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, list)
}

func (h *ComicsHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		http.Error(w, "keyword is required", http.StatusBadRequest)
		return
	}

	list, err := h.Service.Search(r.Context(), keyword, queryInt(r, "page", 1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, list)
}

func (h *ComicsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(mux.Vars(r)["slug"])
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	detail, err := h.Service.Detail(r.Context(), slug)
	if err != nil {
		if httpx.IsNotFound(err) {
			http.Error(w, "comic not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	// Ship reading-order hints alongside the raw chapter list so clients
	// need not re-derive them.
	writeJSON(w, struct {
		models.ComicDetail
		ChaptersDescending bool `json:"chaptersDescending"`
	}{detail, comics.IsDescending(detail.Chapters)})
}

// ChapterPages proxies one chapter's page list. The chapter is addressed by
// the provider-issued API URL, passed as a query parameter.
func (h *ComicsHandler) ChapterPages(w http.ResponseWriter, r *http.Request) {
	apiURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if apiURL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	pages, err := h.Service.ChapterPages(r.Context(), apiURL)
	if err != nil {
		if httpx.IsNotFound(err) {
			http.Error(w, "chapter not found", http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "invalid chapter url") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, pages)
}

func (h *ComicsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
