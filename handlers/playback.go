package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"phimhub/models"
	"phimhub/services/playback"
)

type playbackEngine interface {
	Start(source models.PlaybackSource, preferred string) (playback.Snapshot, error)
	Get(id string) (playback.Snapshot, error)
	ReportFatal(id, cause string) (playback.Snapshot, error)
	ReportEnded(id string) (playback.Snapshot, error)
	ReportProgress(id string, position, duration float64) error
	SelectTechnology(id, name string) (playback.Snapshot, error)
	SetSource(id string, source models.PlaybackSource) (playback.Snapshot, error)
	Stop(id string) error
}

var _ playbackEngine = (*playback.Engine)(nil)

type PlaybackHandler struct {
	Engine playbackEngine
}

func NewPlaybackHandler(engine playbackEngine) *PlaybackHandler {
	return &PlaybackHandler{Engine: engine}
}

type startSessionRequest struct {
	Source     models.PlaybackSource `json:"source"`
	Technology string                `json:"technology,omitempty"`
}

func (h *PlaybackHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.Engine.Start(req.Source, req.Technology)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, playback.ErrNoPlayableSource) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, snap)
}

func (h *PlaybackHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.Engine.Get(id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, snap)
}

type fatalErrorRequest struct {
	Cause string `json:"cause"`
}

// ReportFatal drives the fallback state machine one step forward.
func (h *PlaybackHandler) ReportFatal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req fatalErrorRequest
	if r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Cause == "" {
		req.Cause = "player reported a fatal error"
	}

	snap, err := h.Engine.ReportFatal(id, req.Cause)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, snap)
}

func (h *PlaybackHandler) ReportEnded(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.Engine.ReportEnded(id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, snap)
}

type progressRequest struct {
	Position float64 `json:"positionSeconds"`
	Duration float64 `json:"durationSeconds"`
}

func (h *PlaybackHandler) ReportProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Engine.ReportProgress(id, req.Position, req.Duration); err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectTechnologyRequest struct {
	Technology string `json:"technology"`
}

func (h *PlaybackHandler) SelectTechnology(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req selectTechnologyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Technology) == "" {
		http.Error(w, "technology is required", http.StatusBadRequest)
		return
	}

	snap, err := h.Engine.SelectTechnology(id, req.Technology)
	if err != nil {
		if errors.Is(err, playback.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, snap)
}

type setSourceRequest struct {
	Source models.PlaybackSource `json:"source"`
}

func (h *PlaybackHandler) SetSource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req setSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.Engine.SetSource(id, req.Source)
	if err != nil {
		if errors.Is(err, playback.ErrNoPlayableSource) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, snap)
}

func (h *PlaybackHandler) Stop(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.Engine.Stop(id); err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlaybackHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *PlaybackHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(mux.Vars(r)["sessionID"])
	if id == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func (h *PlaybackHandler) writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, playback.ErrSessionNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
