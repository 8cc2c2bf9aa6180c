package images

import (
	"testing"

	"github.com/stretchr/testify/require"

	"phimhub/config"
)

func testResolver() *Resolver {
	return NewResolver(config.ImageSettings{
		TrustedDomains: []string{"img.ophim.live", "phimimg.com", "phim.nguonc.com"},
		ProxyTemplate:  "https://phimapi.com/image.php?url=%s",
		Placeholder:    "https://placehold.co/300x450?text=No+Image",
		DefaultDomain:  "https://phimimg.com",
		OPhimCDN:       "https://img.ophim.live/uploads/movies/",
	})
}

func TestResolveEmptyIsPlaceholder(t *testing.T) {
	r := testResolver()
	require.Equal(t, r.Placeholder(), r.Resolve("", ""))
	require.Equal(t, r.Placeholder(), r.Resolve("   ", "any"))
}

func TestResolveTrustedAbsolutePassesThrough(t *testing.T) {
	r := testResolver()
	u := "https://phim.nguonc.com/public/images/poster.jpg"
	require.Equal(t, u, r.Resolve(u, ""))
}

func TestResolveUntrustedAbsoluteIsProxied(t *testing.T) {
	r := testResolver()
	got := r.Resolve("https://sketchy.example/poster.jpg", "")
	require.Equal(t, "https://phimapi.com/image.php?url=https%3A%2F%2Fsketchy.example%2Fposter.jpg", got)
}

func TestResolveBareFilenameGoesToOPhimCDN(t *testing.T) {
	r := testResolver()
	require.Equal(t, "https://img.ophim.live/uploads/movies/poster.jpg", r.Resolve("poster.jpg", ""))
}

func TestResolveOPhimDomainWithoutUploadPath(t *testing.T) {
	r := testResolver()
	// Domain handed out as the bare host; the upload path must come back.
	require.Equal(t, "https://img.ophim.live/uploads/movies/poster.jpg",
		r.Resolve("poster.jpg", "https://img.ophim.live"))
}

func TestResolveRelativeAgainstDomain(t *testing.T) {
	r := testResolver()
	require.Equal(t, "https://phimimg.com/upload/vod/poster.jpg",
		r.Resolve("/upload/vod/poster.jpg", "https://phimimg.com/"))
}

func TestResolveRelativeDefaultsToConfiguredDomain(t *testing.T) {
	r := testResolver()
	require.Equal(t, "https://phimimg.com/upload/vod/poster.jpg",
		r.Resolve("upload/vod/poster.jpg", ""))
}
