package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"phimhub/api"
	"phimhub/config"
	"phimhub/handlers"
	"phimhub/internal/httpx"
	"phimhub/services/cache"
	"phimhub/services/comics"
	"phimhub/services/games"
	"phimhub/services/images"
	"phimhub/services/movies"
	"phimhub/services/playback"
)

func main() {
	portFlag := flag.Int("port", 0, "HTTP port (overrides settings)")
	configFlag := flag.String("config", "", "path to settings file")
	flag.Parse()

	overrides, err := config.LoadEnvOverrides()
	if err != nil {
		log.Fatalf("[main] bad environment: %v", err)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = overrides.ConfigPath
	}
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	manager := config.NewManager(configPath)
	settings, err := manager.Load()
	if err != nil {
		log.Fatalf("[main] failed to load settings: %v", err)
	}
	overrides.Apply(&settings)
	if *portFlag > 0 {
		settings.Server.Port = *portFlag
	}

	fileWriter := &lumberjack.Logger{
		Filename:   settings.Log.File,
		MaxSize:    settings.Log.MaxSize,
		MaxBackups: settings.Log.MaxBackups,
		MaxAge:     settings.Log.MaxAge,
		Compress:   settings.Log.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	log.Printf("[main] settings loaded from %s", configPath)

	client := httpx.NewClient(&http.Client{
		Timeout: time.Duration(settings.HTTP.TimeoutSeconds) * time.Second,
	})
	maxRetries := uint(settings.HTTP.MaxRetries)

	var sources []movies.Source
	for _, sc := range settings.MovieSources {
		if !sc.Enabled {
			log.Printf("[main] movie source %s disabled", sc.Name)
			continue
		}
		switch sc.Name {
		case "ophim":
			sources = append(sources, movies.NewOPhimSource(client, sc, maxRetries))
		case "nguonc":
			sources = append(sources, movies.NewNguonCSource(client, sc, maxRetries))
		case "kkphim":
			sources = append(sources, movies.NewKKPhimSource(client, sc, maxRetries))
		default:
			log.Printf("[main] unknown movie source %q, skipping", sc.Name)
		}
	}
	if len(sources) == 0 {
		log.Printf("[main] warning: no movie sources enabled")
	}

	movieSvc := movies.NewService(sources...)
	comicSvc := comics.NewService(client, settings.Comics, maxRetries)
	gameSvc := games.NewService(client, settings.Games, maxRetries)
	resolver := images.NewResolver(settings.Images)
	engine := playback.NewEngine(settings.Playback)
	responseCache := cache.New(settings.Cache)

	r := mux.NewRouter()
	api.Register(r,
		handlers.NewMoviesHandler(movieSvc, responseCache),
		handlers.NewComicsHandler(comicSvc),
		handlers.NewGamesHandler(gameSvc),
		handlers.NewPlaybackHandler(engine),
		handlers.NewImageHandler(resolver),
		handlers.NewSettingsHandler(manager),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
	if err := responseCache.Close(); err != nil {
		log.Printf("[main] cache close error: %v", err)
	}
	log.Printf("[main] stopped")
}
