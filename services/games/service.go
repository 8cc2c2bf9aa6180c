package games

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"phimhub/config"
	"phimhub/internal/httpx"
	"phimhub/models"
)

// Feed sort orders accepted by the upstream.
const (
	OrderQuality = "quality"
	OrderPubDate = "pubdate"
)

type rawGame struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Namespace     string  `json:"namespace"`
	Category      string  `json:"category"`
	Orientation   string  `json:"orientation"`
	QualityScore  float64 `json:"quality_score"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	DatePublished string  `json:"date_published"`
	BannerImage   string  `json:"banner_image"`
	Image         string  `json:"image"`
	URL           string  `json:"url"`
}

type feedResponse struct {
	Items   []rawGame `json:"items"`
	NextURL string    `json:"next_url"`
}

// Service browses the GamePix catalogue feed. Identity is the game
// namespace; the playable embed URL is derived from it deterministically,
// never scraped from the feed.
type Service struct {
	client     *httpx.Client
	feedURL    string
	sid        string
	playURL    string
	pageSize   int
	maxRetries uint
}

// NewService builds the game service from its feed config.
func NewService(client *httpx.Client, cfg config.GameSourceConfig, maxRetries uint) *Service {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 96
	}
	return &Service{
		client:     client,
		feedURL:    cfg.FeedURL,
		sid:        cfg.SID,
		playURL:    strings.TrimRight(cfg.PlayURL, "/"),
		pageSize:   pageSize,
		maxRetries: maxRetries,
	}
}

// List fetches one feed page. Unknown orders fall back to quality; the
// category "All" means no category filter, matching the upstream convention.
func (s *Service) List(ctx context.Context, page, pageSize int, order, category string) (models.GameList, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if order != OrderPubDate {
		order = OrderQuality
	}

	endpoint := fmt.Sprintf("%s?sid=%s&pagination=%d&page=%d&order=%s",
		s.feedURL, url.QueryEscape(s.sid), pageSize, page, order)
	if category != "" && category != "All" {
		endpoint += "&category=" + url.QueryEscape(category)
	}

	var resp feedResponse
	if err := s.client.GetJSON(ctx, endpoint, s.maxRetries, &resp); err != nil {
		return models.GameList{}, err
	}

	items := make([]models.Game, 0, len(resp.Items))
	for _, g := range resp.Items {
		items = append(items, s.normalize(g))
	}
	return models.GameList{Items: items, NextURL: resp.NextURL}, nil
}

// FindByNamespace locates one game. The feed has no per-game endpoint, so
// this scans the top pages by quality and then by publish date.
func (s *Service) FindByNamespace(ctx context.Context, namespace string) (models.Game, error) {
	for _, order := range []string{OrderQuality, OrderPubDate} {
		list, err := s.List(ctx, 1, 100, order, "")
		if err != nil {
			return models.Game{}, err
		}
		for _, g := range list.Items {
			if g.Namespace == namespace {
				return g, nil
			}
		}
	}
	return models.Game{}, fmt.Errorf("game %s: %w", namespace, httpx.ErrNotFound)
}

// EmbedURL derives the playable page for a namespace.
func (s *Service) EmbedURL(namespace string) string {
	return fmt.Sprintf("%s/%s/embed?sid=%s", s.playURL, url.PathEscape(namespace), url.QueryEscape(s.sid))
}

func (s *Service) normalize(g rawGame) models.Game {
	return models.Game{
		ID:           g.ID,
		Title:        g.Title,
		Description:  g.Description,
		Namespace:    g.Namespace,
		Category:     g.Category,
		Orientation:  g.Orientation,
		QualityScore: g.QualityScore,
		Width:        g.Width,
		Height:       g.Height,
		BannerImage:  g.BannerImage,
		Icon:         g.Image,
		PlayURL:      s.EmbedURL(g.Namespace),
		Published:    g.DatePublished,
	}
}
