package movies

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"phimhub/models"
)

// rawEpisode carries every field-name variant the providers use for the same
// thing. The accessor methods resolve the aliases so the rest of the package
// only sees canonical names.
type rawEpisode struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	LinkEmbed string `json:"link_embed"`
	LinkM3U8  string `json:"link_m3u8"`
	Embed     string `json:"embed"`
	M3U8      string `json:"m3u8"`
}

func (e rawEpisode) embedURL() string {
	if e.LinkEmbed != "" {
		return e.LinkEmbed
	}
	return e.Embed
}

func (e rawEpisode) manifestURL() string {
	if e.LinkM3U8 != "" {
		return e.LinkM3U8
	}
	return e.M3U8
}

// rawServerGroup is one playback server as the providers ship it. The episode
// list lives under "server_data" or "items" depending on the provider.
type rawServerGroup struct {
	ServerName string       `json:"server_name"`
	ServerData []rawEpisode `json:"server_data"`
	Items      []rawEpisode `json:"items"`
}

func (g rawServerGroup) episodes() []rawEpisode {
	if len(g.ServerData) > 0 {
		return g.ServerData
	}
	return g.Items
}

var sourceDisplayNames = map[models.SourceName]string{
	models.SourceOPhim:  "OPhim",
	models.SourceNguonC: "NguonC",
	models.SourceKKPhim: "KKPhim",
}

// serverLabel prefixes a provider server name with the provider itself, so
// merged lists from several sources stay distinguishable to the viewer.
func serverLabel(src models.SourceName, serverName string) string {
	display := sourceDisplayNames[src]
	if display == "" {
		display = string(src)
	}
	if strings.TrimSpace(serverName) == "" {
		return display
	}
	return fmt.Sprintf("%s: %s", display, serverName)
}

// normalizeServerGroups converts provider server groups into canonical,
// origin-labeled groups. Empty groups are kept; they still tell the viewer
// the server exists.
func normalizeServerGroups(groups []rawServerGroup, src models.SourceName) []models.EpisodeServerGroup {
	out := make([]models.EpisodeServerGroup, 0, len(groups))
	for _, g := range groups {
		raws := g.episodes()
		eps := make([]models.Episode, 0, len(raws))
		for _, e := range raws {
			eps = append(eps, models.Episode{
				Name:        e.Name,
				Slug:        e.Slug,
				EmbedURL:    e.embedURL(),
				ManifestURL: e.manifestURL(),
			})
		}
		out = append(out, models.EpisodeServerGroup{
			ServerName: serverLabel(src, g.ServerName),
			Source:     src,
			Episodes:   eps,
		})
	}
	return out
}

// stringish tolerates fields shipped either as strings or numbers, keeping
// the string form.
type stringish string

func (s *stringish) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*s = stringish(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*s = stringish(asNumber.String())
		return nil
	}
	*s = ""
	return nil
}

// stringOrSlice tolerates fields that are sometimes a bare string and
// sometimes an array of strings.
type stringOrSlice []string

func (s *stringOrSlice) UnmarshalJSON(data []byte) error {
	var asSlice []string
	if err := json.Unmarshal(data, &asSlice); err == nil {
		*s = asSlice
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if strings.TrimSpace(asString) == "" {
			*s = nil
			return nil
		}
		*s = []string{asString}
		return nil
	}
	*s = nil
	return nil
}

// nonNil keeps people lists encoding as [] instead of null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// splitNames breaks a comma-separated people field into trimmed entries.
func splitNames(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// deriveStatus guesses the completion state from the human-readable episode
// counter when the provider has no explicit status field. "Hoàn tất (12/12)"
// and friends mean the series is done.
func deriveStatus(episodeCurrent string) models.CompletionStatus {
	lowered := strings.ToLower(episodeCurrent)
	if strings.Contains(lowered, "hoàn tất") ||
		strings.Contains(lowered, "full") ||
		strings.Contains(lowered, "completed") {
		return models.StatusCompleted
	}
	return models.StatusOngoing
}

// deriveType guesses single vs series from the episode total. A parseable
// count above one, or a counter mentioning "tập", means a series.
func deriveType(episodeTotal string) string {
	trimmed := strings.TrimSpace(episodeTotal)
	if n, err := strconv.Atoi(trimmed); err == nil && n > 1 {
		return "series"
	}
	if strings.Contains(strings.ToLower(trimmed), "tập") {
		return "series"
	}
	return "single"
}
