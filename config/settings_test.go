package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	m := NewManager(path)

	s, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)

	// The defaults must have been persisted.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "settings.json"))

	s := DefaultSettings()
	s.Server.Port = 9000
	s.Cache.RedisAddr = "localhost:6379"
	require.NoError(t, m.Save(s))

	got, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, 9000, got.Server.Port)
	require.Equal(t, "localhost:6379", got.Cache.RedisAddr)
}

func TestLoadBackfillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":{"port":8080}}`), 0o644))

	s, err := NewManager(path).Load()
	require.NoError(t, err)

	d := DefaultSettings()
	require.Equal(t, 8080, s.Server.Port)
	require.Equal(t, d.Server.Host, s.Server.Host)
	require.Equal(t, d.MovieSources, s.MovieSources)
	require.Equal(t, d.Comics, s.Comics)
	require.Equal(t, d.Games, s.Games)
	require.Equal(t, d.Images.TrustedDomains, s.Images.TrustedDomains)
	require.Equal(t, d.Playback, s.Playback)
	require.Equal(t, d.Log.File, s.Log.File)
}

func TestEnvOverridesApply(t *testing.T) {
	s := DefaultSettings()
	o := EnvOverrides{Port: 9999, RedisAddr: "redis:6379", LogFile: "/tmp/x.log"}
	o.Apply(&s)

	require.Equal(t, 9999, s.Server.Port)
	require.Equal(t, "redis:6379", s.Cache.RedisAddr)
	require.Equal(t, "/tmp/x.log", s.Log.File)
}

func TestEnvOverridesZeroValuesAreIgnored(t *testing.T) {
	s := DefaultSettings()
	EnvOverrides{}.Apply(&s)
	require.Equal(t, DefaultSettings(), s)
}
