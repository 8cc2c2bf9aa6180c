package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"phimhub/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	moviesHandler *handlers.MoviesHandler,
	comicsHandler *handlers.ComicsHandler,
	gamesHandler *handlers.GamesHandler,
	playbackHandler *handlers.PlaybackHandler,
	imageHandler *handlers.ImageHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Movies: search and detail before the browse routes so the static
	// segments win over {kind}.
	api.HandleFunc("/movies/search", moviesHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/movies/search", moviesHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/movies/detail/{slug}", moviesHandler.Detail).Methods(http.MethodGet)
	api.HandleFunc("/movies/detail/{slug}", moviesHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/movies/taxonomy/{kind}", moviesHandler.Taxonomy).Methods(http.MethodGet)
	api.HandleFunc("/movies/taxonomy/{kind}", moviesHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/movies/{kind}", moviesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/movies/{kind}", moviesHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/movies/{kind}/{slug}", moviesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/movies/{kind}/{slug}", moviesHandler.Options).Methods(http.MethodOptions)

	// Comics
	api.HandleFunc("/comics/home", comicsHandler.Home).Methods(http.MethodGet)
	api.HandleFunc("/comics/home", comicsHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/comics/search", comicsHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/comics/search", comicsHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/comics/categories", comicsHandler.Categories).Methods(http.MethodGet)
	api.HandleFunc("/comics/categories", comicsHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/comics/categories/{slug}", comicsHandler.Category).Methods(http.MethodGet)
	api.HandleFunc("/comics/categories/{slug}", comicsHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/comics/chapter", comicsHandler.ChapterPages).Methods(http.MethodGet)
	api.HandleFunc("/comics/chapter", comicsHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/comics/detail/{slug}", comicsHandler.Detail).Methods(http.MethodGet)
	api.HandleFunc("/comics/detail/{slug}", comicsHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/comics/list/{type}", comicsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/comics/list/{type}", comicsHandler.Options).Methods(http.MethodOptions)

	// Games
	api.HandleFunc("/games", gamesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games", gamesHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/games/{namespace}", gamesHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{namespace}", gamesHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/games/{namespace}/embed", gamesHandler.Embed).Methods(http.MethodGet)
	api.HandleFunc("/games/{namespace}/embed", gamesHandler.Options).Methods(http.MethodOptions)

	// Playback sessions
	api.HandleFunc("/playback/sessions", playbackHandler.Start).Methods(http.MethodPost)
	api.HandleFunc("/playback/sessions", playbackHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/playback/sessions/{sessionID}", playbackHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/playback/sessions/{sessionID}", playbackHandler.Stop).Methods(http.MethodDelete)
	api.HandleFunc("/playback/sessions/{sessionID}", playbackHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/playback/sessions/{sessionID}/fatal", playbackHandler.ReportFatal).Methods(http.MethodPost)
	api.HandleFunc("/playback/sessions/{sessionID}/fatal", playbackHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/playback/sessions/{sessionID}/progress", playbackHandler.ReportProgress).Methods(http.MethodPost)
	api.HandleFunc("/playback/sessions/{sessionID}/progress", playbackHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/playback/sessions/{sessionID}/ended", playbackHandler.ReportEnded).Methods(http.MethodPost)
	api.HandleFunc("/playback/sessions/{sessionID}/ended", playbackHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/playback/sessions/{sessionID}/technology", playbackHandler.SelectTechnology).Methods(http.MethodPut)
	api.HandleFunc("/playback/sessions/{sessionID}/technology", playbackHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/playback/sessions/{sessionID}/source", playbackHandler.SetSource).Methods(http.MethodPut)
	api.HandleFunc("/playback/sessions/{sessionID}/source", playbackHandler.Options).Methods(http.MethodOptions)

	// Image resolution (public, no auth; Image components cannot send headers)
	api.HandleFunc("/images/resolve", imageHandler.Resolve).Methods(http.MethodGet)
	api.HandleFunc("/images/resolve", imageHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/images/resolve.json", imageHandler.ResolveJSON).Methods(http.MethodGet)
	api.HandleFunc("/images/resolve.json", imageHandler.Options).Methods(http.MethodOptions)

	// Settings
	api.HandleFunc("/settings", settingsHandler.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.PutSettings).Methods(http.MethodPut)
	api.HandleFunc("/settings", settingsHandler.Options).Methods(http.MethodOptions)
}
