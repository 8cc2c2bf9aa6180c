package comics

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

func testService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(httpx.NewClient(srv.Client()), config.ComicSourceConfig{
		BaseURL:   srv.URL,
		CDNDomain: "https://otruyenapi.com/uploads/comics",
	}, 0)
}

func TestDetailFlattensFirstServer(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/truyen-tranh/tham-tu-lung-danh", r.URL.Path)
		w.Write([]byte(`{
          "status": "success",
          "data": {
            "item": {
              "name": "Thám Tử Lừng Danh",
              "slug": "tham-tu-lung-danh",
              "thumb_url": "cover.jpg",
              "status": "ongoing",
              "content": "<p>Vụ án mới.</p>",
              "author": ["Gosho Aoyama", ""],
              "category": [{"id": "1", "name": "Trinh Thám", "slug": "trinh-tham"}],
              "chapters": [
                {"server_name": "Server #1", "server_data": [
                  {"chapter_name": "1", "chapter_api_data": "https://sv1.otruyencdn.com/v1/api/chapter/a"},
                  {"chapter_name": "2", "chapter_api_data": "https://sv1.otruyencdn.com/v1/api/chapter/b"}
                ]}
              ]
            }
          }
        }`))
	}))

	got, err := svc.Detail(context.Background(), "tham-tu-lung-danh")
	require.NoError(t, err)
	require.Equal(t, "Thám Tử Lừng Danh", got.Name)
	require.Equal(t, []string{"Gosho Aoyama"}, got.Authors)
	require.Len(t, got.Chapters, 2)
	require.Equal(t, "https://sv1.otruyencdn.com/v1/api/chapter/a", got.Chapters[0].APIURL)
}

func TestChapterPagesRejectsNonHTTPURL(t *testing.T) {
	svc := testService(t, http.NotFoundHandler())

	_, err := svc.ChapterPages(context.Background(), "file:///etc/passwd")
	require.Error(t, err)

	_, err = svc.ChapterPages(context.Background(), "not a url at all\x00")
	require.Error(t, err)
}

func TestChapterPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
          "status": "success",
          "data": {
            "domain_cdn": "https://sv1.otruyencdn.com",
            "item": {
              "comic_name": "Thám Tử Lừng Danh",
              "chapter_name": "1",
              "chapter_path": "uploads/20231201/abc",
              "chapter_image": [
                {"image_page": 1, "image_file": "p1.jpg"},
                {"image_page": 2, "image_file": "p2.jpg"}
              ]
            }
          }
        }`))
	}))
	defer srv.Close()

	svc := NewService(httpx.NewClient(srv.Client()), config.ComicSourceConfig{BaseURL: srv.URL}, 0)
	got, err := svc.ChapterPages(context.Background(), srv.URL+"/v1/api/chapter/a")
	require.NoError(t, err)
	require.Equal(t, "https://sv1.otruyencdn.com", got.CDNDomain)
	require.Equal(t, "uploads/20231201/abc", got.Path)
	require.Len(t, got.Images, 2)
	require.Equal(t, 2, got.Images[1].Page)
}

func chapterList(names ...string) []models.ChapterRef {
	out := make([]models.ChapterRef, 0, len(names))
	for _, n := range names {
		out = append(out, models.ChapterRef{Name: n, APIURL: "https://cdn.example/" + n})
	}
	return out
}

func TestIsDescending(t *testing.T) {
	require.False(t, IsDescending(chapterList("1", "2", "3")))
	require.True(t, IsDescending(chapterList("120", "119", "1")))
	require.False(t, IsDescending(chapterList("Oneshot")))
	require.False(t, IsDescending(chapterList("Extra", "Special")), "unparseable names default to ascending")
}

func TestNeighborsRespectsReadingOrder(t *testing.T) {
	asc := chapterList("1", "2", "3")
	prev, next, hasPrev, hasNext := Neighbors(asc, "https://cdn.example/2")
	require.True(t, hasPrev)
	require.True(t, hasNext)
	require.Equal(t, "1", prev.Name)
	require.Equal(t, "3", next.Name)

	desc := chapterList("3", "2", "1")
	prev, next, hasPrev, hasNext = Neighbors(desc, "https://cdn.example/2")
	require.True(t, hasPrev)
	require.True(t, hasNext)
	require.Equal(t, "1", prev.Name)
	require.Equal(t, "3", next.Name)

	_, next, _, hasNext = Neighbors(asc, "https://cdn.example/3")
	require.False(t, hasNext, "last chapter has no next")

	_, _, hasPrev, hasNext = Neighbors(asc, "https://cdn.example/missing")
	require.False(t, hasPrev)
	require.False(t, hasNext)
}
