package movies

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"phimhub/config"
	"phimhub/internal/httpx"
	"phimhub/models"
)

const nguoncDetailFixture = `{
  "status": "success",
  "movie": {
    "name": "Đảo Hải Tặc",
    "slug": "dao-hai-tac",
    "original_name": "One Piece",
    "poster_url": "https://phim.nguonc.com/public/images/poster.jpg",
    "thumb_url": "https://phim.nguonc.com/public/images/thumb.jpg",
    "description": "Hải trình của băng Mũ Rơm.",
    "casts": "Mayumi Tanaka, Kazuya Nakai",
    "director": "Eiichiro Oda",
    "current_episode": "Tập 1100",
    "total_episodes": 1100,
    "quality": "HD",
    "language": "Vietsub",
    "category": {
      "1": {"group": {"name": "Thể loại"}, "list": [{"id": "7", "name": "Hoạt Hình"}]},
      "2": {"group": {"name": "Quốc gia"}, "list": [{"id": "3", "name": "Nhật Bản", "slug": "nhat-ban"}]},
      "3": {"group": {"name": "Năm"}, "list": [{"name": "1999"}]}
    },
    "episodes": [
      {
        "server_name": "Vietsub #1",
        "items": [
          {"name": "1", "slug": "tap-1", "embed": "https://embed.example/1", "m3u8": "https://hls.example/1.m3u8"}
        ]
      }
    ]
  }
}`

func nguoncTestSource(t *testing.T, handler http.Handler) Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewNguonCSource(httpx.NewClient(srv.Client()), config.MovieSourceConfig{
		Name:     "nguonc",
		BaseURL:  srv.URL,
		Priority: 2,
		Enabled:  true,
	}, 0)
}

func TestNguonCDetailNormalization(t *testing.T) {
	src := nguoncTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/film/dao-hai-tac", r.URL.Path)
		w.Write([]byte(nguoncDetailFixture))
	}))

	got, err := src.Detail(context.Background(), "dao-hai-tac")
	require.NoError(t, err)

	require.Equal(t, "Đảo Hải Tặc", got.Name)
	require.Equal(t, "One Piece", got.OriginalName)
	require.Equal(t, models.SourceNguonC, got.Source)
	require.Equal(t, "Hải trình của băng Mũ Rơm.", got.Content)
	require.Equal(t, 1999, got.Year, "year comes out of the taxonomy groups")

	// People fields normalize from loose strings.
	require.Equal(t, []string{"Mayumi Tanaka", "Kazuya Nakai"}, got.Actors)
	require.Equal(t, []string{"Eiichiro Oda"}, got.Directors)

	// Grouped taxonomy flattens; entries without a slug get a derived one.
	require.Len(t, got.Categories, 1)
	require.Equal(t, "hoat-hinh", got.Categories[0].Slug)
	require.Len(t, got.Countries, 1)
	require.Equal(t, "nhat-ban", got.Countries[0].Slug)

	// Derived status and type: an ongoing long-runner.
	require.Equal(t, models.StatusOngoing, got.Status)
	require.Equal(t, "series", got.Type)
	require.Equal(t, "1100", got.EpisodeTotal)

	// Episode aliases "embed"/"m3u8" resolve; groups get origin labels.
	require.Len(t, got.Episodes, 1)
	require.Equal(t, "NguonC: Vietsub #1", got.Episodes[0].ServerName)
	require.Equal(t, models.SourceNguonC, got.Episodes[0].Source)
	require.Len(t, got.Episodes[0].Episodes, 1)
	require.Equal(t, "https://embed.example/1", got.Episodes[0].Episodes[0].EmbedURL)
	require.Equal(t, "https://hls.example/1.m3u8", got.Episodes[0].Episodes[0].ManifestURL)
}

func TestNguonCDetailStatusFalseIsNotFound(t *testing.T) {
	src := nguoncTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error"}`))
	}))

	_, err := src.Detail(context.Background(), "khong-co")
	require.True(t, httpx.IsNotFound(err))
}

func TestNguonCSearchKeepsAbsoluteURLs(t *testing.T) {
	src := nguoncTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/films/search", r.URL.Path)
		require.Equal(t, "one piece", r.URL.Query().Get("keyword"))
		w.Write([]byte(`{
          "status": "success",
          "items": [{"name": "Đảo Hải Tặc", "slug": "dao-hai-tac", "poster_url": "https://phim.nguonc.com/p.jpg"}],
          "paginate": {"current_page": 1, "total_page": 1, "total_items": 1, "items_per_page": 10}
        }`))
	}))

	got, err := src.Search(context.Background(), "one piece", 24, models.FilterParams{})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Empty(t, got.ImageDomain, "absolute-URL providers carry no CDN base")
	require.Equal(t, 1, got.Pagination.TotalItems)
}
