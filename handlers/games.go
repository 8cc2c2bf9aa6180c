package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"phimhub/internal/httpx"
	"phimhub/models"
	"phimhub/services/games"
)

type gameService interface {
	List(ctx context.Context, page, pageSize int, order, category string) (models.GameList, error)
	FindByNamespace(ctx context.Context, namespace string) (models.Game, error)
	EmbedURL(namespace string) string
}

var _ gameService = (*games.Service)(nil)

type GamesHandler struct {
	Service gameService
}

func NewGamesHandler(service gameService) *GamesHandler {
	return &GamesHandler{Service: service}
}

func (h *GamesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.Service.List(r.Context(),
		queryInt(r, "page", 1),
		queryInt(r, "pageSize", 0),
		q.Get("order"),
		q.Get("category"),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, list)
}

func (h *GamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	namespace := strings.TrimSpace(mux.Vars(r)["namespace"])
	if namespace == "" {
		http.Error(w, "namespace is required", http.StatusBadRequest)
		return
	}

	game, err := h.Service.FindByNamespace(r.Context(), namespace)
	if err != nil {
		if httpx.IsNotFound(err) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, game)
}

// Embed returns the deterministic play URL without hitting the feed.
func (h *GamesHandler) Embed(w http.ResponseWriter, r *http.Request) {
	namespace := strings.TrimSpace(mux.Vars(r)["namespace"])
	if namespace == "" {
		http.Error(w, "namespace is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{
		"namespace": namespace,
		"embedUrl":  h.Service.EmbedURL(namespace),
	})
}

func (h *GamesHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
