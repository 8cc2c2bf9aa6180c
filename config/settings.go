package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	env "github.com/caarlos0/env/v11"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server       Server              `json:"server"`
	HTTP         HTTPSettings        `json:"http"`
	MovieSources []MovieSourceConfig `json:"movieSources"`
	Comics       ComicSourceConfig   `json:"comics"`
	Games        GameSourceConfig    `json:"games"`
	Images       ImageSettings       `json:"images"`
	Playback     PlaybackSettings    `json:"playback"`
	Cache        CacheSettings       `json:"cache"`
	Log          LogConfig           `json:"log"`
}

type Server struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// HTTPSettings bounds every upstream call. The timeout applies per attempt.
type HTTPSettings struct {
	TimeoutSeconds int `json:"timeoutSeconds"`
	MaxRetries     int `json:"maxRetries"`
}

// MovieSourceConfig describes one upstream movie provider. Priority governs
// metadata and dedup precedence (lower wins); it is fixed at configuration
// time and never adjusted from observed source quality.
type MovieSourceConfig struct {
	Name      string `json:"name"` // "ophim" | "nguonc" | "kkphim"
	BaseURL   string `json:"baseUrl"`
	CDNDomain string `json:"cdnDomain,omitempty"` // fallback image domain when the API omits one
	Priority  int    `json:"priority"`
	Enabled   bool   `json:"enabled"`
}

type ComicSourceConfig struct {
	BaseURL   string `json:"baseUrl"`
	CDNDomain string `json:"cdnDomain"`
}

type GameSourceConfig struct {
	FeedURL  string `json:"feedUrl"`
	SID      string `json:"sid"`
	PlayURL  string `json:"playUrl"`
	PageSize int    `json:"pageSize"`
}

// ImageSettings controls the asset URL resolver.
type ImageSettings struct {
	TrustedDomains []string `json:"trustedDomains"`
	// ProxyTemplate wraps untrusted absolute URLs; %s receives the
	// query-escaped target URL.
	ProxyTemplate string `json:"proxyTemplate"`
	Placeholder   string `json:"placeholder"`
	DefaultDomain string `json:"defaultDomain"`
	OPhimCDN      string `json:"ophimCdn"`
}

// PlaybackSettings seeds new playback sessions.
type PlaybackSettings struct {
	DefaultTechnology string `json:"defaultTechnology"`
	RecoveryDelayMs   int    `json:"recoveryDelayMs"`
}

// CacheSettings enables the optional Redis response cache. Empty RedisAddr
// disables caching entirely.
type CacheSettings struct {
	RedisAddr  string `json:"redisAddr"`
	TTLMinutes int    `json:"ttlMinutes"`
}

type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: Server{Host: "0.0.0.0", Port: 7788},
		HTTP:   HTTPSettings{TimeoutSeconds: 15, MaxRetries: 2},
		MovieSources: []MovieSourceConfig{
			{Name: "ophim", BaseURL: "https://ophim1.com", CDNDomain: "https://img.ophim.live/uploads/movies/", Priority: 1, Enabled: true},
			{Name: "nguonc", BaseURL: "https://phim.nguonc.com", Priority: 2, Enabled: true},
			{Name: "kkphim", BaseURL: "https://phimapi.com", CDNDomain: "https://phimimg.com", Priority: 3, Enabled: true},
		},
		Comics: ComicSourceConfig{
			BaseURL:   "https://otruyenapi.com/v1/api",
			CDNDomain: "https://otruyenapi.com/uploads/comics",
		},
		Games: GameSourceConfig{
			FeedURL:  "https://feeds.gamepix.com/v2/json",
			SID:      "968XL",
			PlayURL:  "https://play.gamepix.com",
			PageSize: 96,
		},
		Images: ImageSettings{
			TrustedDomains: []string{
				"img.ophim.live",
				"phimimg.com",
				"cdn.ophim.cc",
				"img.phim.net",
				"phim.nguonc.com",
				"otruyenapi.com",
				"sv1.otruyencdn.com",
			},
			ProxyTemplate: "https://phimapi.com/image.php?url=%s",
			Placeholder:   "https://placehold.co/300x450/1f1f1f/e5e5e5?text=No+Image",
			DefaultDomain: "https://phimimg.com",
			OPhimCDN:      "https://img.ophim.live/uploads/movies/",
		},
		Playback: PlaybackSettings{DefaultTechnology: "xgplayer", RecoveryDelayMs: 1500},
		Cache:    CacheSettings{RedisAddr: "", TTLMinutes: 10},
		Log: LogConfig{
			File:       "cache/logs/phimhub.log",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// EnvOverrides are the few settings operators commonly override per
// deployment without touching the settings file.
type EnvOverrides struct {
	ConfigPath string `env:"PHIMHUB_CONFIG"`
	Port       int    `env:"PHIMHUB_PORT"`
	RedisAddr  string `env:"PHIMHUB_REDIS_ADDR"`
	LogFile    string `env:"PHIMHUB_LOG_FILE"`
}

// LoadEnvOverrides parses the PHIMHUB_* environment variables.
func LoadEnvOverrides() (EnvOverrides, error) {
	var o EnvOverrides
	err := env.Parse(&o)
	return o, err
}

// Apply folds the non-zero overrides into s.
func (o EnvOverrides) Apply(s *Settings) {
	if o.Port > 0 {
		s.Server.Port = o.Port
	}
	if strings.TrimSpace(o.RedisAddr) != "" {
		s.Cache.RedisAddr = o.RedisAddr
	}
	if strings.TrimSpace(o.LogFile) != "" {
		s.Log.File = o.LogFile
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads the settings file from disk or creates defaults if missing.
// Fields newer than the on-disk file are backfilled with defaults so older
// config files keep working.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}
	backfill(&s)
	return s, nil
}

func backfill(s *Settings) {
	d := DefaultSettings()

	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if s.HTTP.TimeoutSeconds == 0 {
		s.HTTP.TimeoutSeconds = d.HTTP.TimeoutSeconds
	}
	if s.HTTP.MaxRetries == 0 {
		s.HTTP.MaxRetries = d.HTTP.MaxRetries
	}
	if len(s.MovieSources) == 0 {
		s.MovieSources = d.MovieSources
	}
	if strings.TrimSpace(s.Comics.BaseURL) == "" {
		s.Comics = d.Comics
	}
	if strings.TrimSpace(s.Games.FeedURL) == "" {
		s.Games = d.Games
	}
	if s.Games.PageSize == 0 {
		s.Games.PageSize = d.Games.PageSize
	}
	if len(s.Images.TrustedDomains) == 0 {
		s.Images.TrustedDomains = d.Images.TrustedDomains
	}
	if strings.TrimSpace(s.Images.ProxyTemplate) == "" {
		s.Images.ProxyTemplate = d.Images.ProxyTemplate
	}
	if strings.TrimSpace(s.Images.Placeholder) == "" {
		s.Images.Placeholder = d.Images.Placeholder
	}
	if strings.TrimSpace(s.Images.DefaultDomain) == "" {
		s.Images.DefaultDomain = d.Images.DefaultDomain
	}
	if strings.TrimSpace(s.Images.OPhimCDN) == "" {
		s.Images.OPhimCDN = d.Images.OPhimCDN
	}
	if strings.TrimSpace(s.Playback.DefaultTechnology) == "" {
		s.Playback.DefaultTechnology = d.Playback.DefaultTechnology
	}
	if s.Playback.RecoveryDelayMs == 0 {
		s.Playback.RecoveryDelayMs = d.Playback.RecoveryDelayMs
	}
	if s.Cache.TTLMinutes == 0 {
		s.Cache.TTLMinutes = d.Cache.TTLMinutes
	}
	if strings.TrimSpace(s.Log.File) == "" {
		s.Log.File = d.Log.File
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = d.Log.MaxSize
	}
	if s.Log.MaxBackups == 0 {
		s.Log.MaxBackups = d.Log.MaxBackups
	}
	if s.Log.MaxAge == 0 {
		s.Log.MaxAge = d.Log.MaxAge
	}
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
