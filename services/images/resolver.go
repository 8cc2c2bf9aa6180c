package images

import (
	"fmt"
	"net/url"
	"strings"

	"phimhub/config"
)

// Resolver turns provider-supplied image references into directly loadable
// URLs. References arrive as absolute URLs, paths relative to a per-source
// CDN domain, or bare filenames; absolute URLs on unknown hosts are wrapped
// in a proxy. Resolve is total: bad input degrades to the placeholder.
type Resolver struct {
	trusted       []string
	proxyTemplate string
	placeholder   string
	defaultDomain string
	ophimCDN      string
}

// NewResolver builds a resolver from the image settings.
func NewResolver(cfg config.ImageSettings) *Resolver {
	return &Resolver{
		trusted:       cfg.TrustedDomains,
		proxyTemplate: cfg.ProxyTemplate,
		placeholder:   cfg.Placeholder,
		defaultDomain: cfg.DefaultDomain,
		ophimCDN:      cfg.OPhimCDN,
	}
}

// Placeholder is the stand-in returned for unresolvable references.
func (r *Resolver) Placeholder() string { return r.placeholder }

// Resolve maps one image reference to a loadable URL. domain is the CDN base
// of the record's source; empty means the source ships absolute URLs.
func (r *Resolver) Resolve(raw, domain string) string {
	if strings.TrimSpace(raw) == "" {
		return r.placeholder
	}

	if strings.HasPrefix(raw, "http") {
		if r.isTrusted(raw) {
			return raw
		}
		return r.proxy(raw)
	}

	// Bare filenames with no domain, and the OPhim host handed out without
	// its upload path, both belong on the OPhim CDN.
	if (domain == "" && !strings.Contains(raw, "/")) ||
		(domain != "" && strings.Contains(domain, "ophim") && !strings.Contains(domain, "uploads")) {
		return r.ophimCDN + strings.TrimPrefix(raw, "/")
	}

	base := domain
	if base == "" {
		base = r.defaultDomain
	}
	full := strings.TrimRight(base, "/") + "/" + strings.TrimPrefix(raw, "/")

	// The OPhim API sometimes drops the upload segment from its own CDN
	// domain; put it back.
	if strings.Contains(full, "img.ophim.live") && !strings.Contains(full, "/uploads/movies/") {
		full = strings.Replace(full, "img.ophim.live/", "img.ophim.live/uploads/movies/", 1)
	}

	if r.isTrusted(full) {
		return full
	}
	return r.proxy(full)
}

func (r *Resolver) isTrusted(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	host := parsed.Hostname()
	for _, d := range r.trusted {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}

func (r *Resolver) proxy(raw string) string {
	if r.proxyTemplate == "" {
		return raw
	}
	return fmt.Sprintf(r.proxyTemplate, url.QueryEscape(raw))
}
