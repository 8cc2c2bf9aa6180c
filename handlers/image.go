package handlers

import (
	"net/http"
	"strings"

	"phimhub/services/images"
)

type imageResolver interface {
	Resolve(raw, domain string) string
}

var _ imageResolver = (*images.Resolver)(nil)

type ImageHandler struct {
	Resolver imageResolver
}

func NewImageHandler(resolver imageResolver) *ImageHandler {
	return &ImageHandler{Resolver: resolver}
}

// Resolve redirects the caller to the loadable form of an image reference.
// The resolver is total, so this always redirects somewhere, placeholder
// included.
func (h *ImageHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := h.Resolver.Resolve(q.Get("url"), q.Get("domain"))
	http.Redirect(w, r, target, http.StatusFound)
}

// ResolveJSON returns the resolved URL without redirecting, for clients that
// rewrite lists of references in one pass.
func (h *ImageHandler) ResolveJSON(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("url"))
	writeJSON(w, map[string]string{
		"url": h.Resolver.Resolve(raw, q.Get("domain")),
	})
}

func (h *ImageHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
