package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./likesync.db" {
			t.Errorf("expected database path ./likesync.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Destination.Backend != "youtube" {
			t.Errorf("expected destination backend youtube, got %s", config.Destination.Backend)
		}

		if config.Sync.CursorPolicy != "on-match" {
			t.Errorf("expected cursor policy on-match, got %s", config.Sync.CursorPolicy)
		}

		if config.State.CursorFile != "last_track.txt" || config.State.DedupFile != "added_songs.txt" {
			t.Errorf("unexpected state files %q, %q", config.State.CursorFile, config.State.DedupFile)
		}

		if !config.State.Lock {
			t.Error("expected run lock to be enabled by default")
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[destination]
playlist_id = "PL123"

[sync]
cursor_policy = "on-insert"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Destination.PlaylistID != "PL123" {
			t.Errorf("expected playlist PL123, got %s", config.Destination.PlaylistID)
		}
		if config.Sync.CursorPolicy != "on-insert" {
			t.Errorf("expected cursor policy on-insert, got %s", config.Sync.CursorPolicy)
		}
		if config.Sync.InsertDelay != "2s" {
			t.Errorf("expected default insert delay 2s, got %s", config.Sync.InsertDelay)
		}
		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Destination.PlaylistID = "PLsaved"
		config.Credentials.YouTube.RefreshToken = "refresh"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Destination.PlaylistID != "PLsaved" {
			t.Errorf("expected playlist PLsaved, got %s", loaded.Destination.PlaylistID)
		}
		if loaded.Credentials.YouTube.RefreshToken != "refresh" {
			t.Errorf("expected refresh token to persist, got %q", loaded.Credentials.YouTube.RefreshToken)
		}
		if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
			t.Error("temporary file should not remain after save")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tc := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "destination backend", mutate: func(c *Config) { c.Destination.Backend = "vimeo" }},
		{name: "state backend", mutate: func(c *Config) { c.State.Backend = "redis" }},
		{name: "cursor policy", mutate: func(c *Config) { c.Sync.CursorPolicy = "sometimes" }},
		{name: "report format", mutate: func(c *Config) { c.Sync.ReportFormat = "xml" }},
		{name: "insert delay", mutate: func(c *Config) { c.Sync.InsertDelay = "soon" }},
		{name: "negative search interval", mutate: func(c *Config) { c.Sync.SearchInterval = "-1s" }},
		{name: "server port", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSyncDurations(t *testing.T) {
	s := SyncConfig{InsertDelay: "1500ms", SearchInterval: ""}

	d, err := s.InsertDelayDuration()
	if err != nil || d != 1500*time.Millisecond {
		t.Errorf("InsertDelayDuration() = %v, %v", d, err)
	}

	d, err = s.SearchIntervalDuration()
	if err != nil || d != 0 {
		t.Errorf("SearchIntervalDuration() = %v, %v; want 0", d, err)
	}
}

func TestStoredToken(t *testing.T) {
	t.Run("empty token is nil", func(t *testing.T) {
		var st StoredToken
		if st.Token() != nil {
			t.Error("expected nil token for empty fields")
		}
	})

	t.Run("update keeps refresh token", func(t *testing.T) {
		st := StoredToken{RefreshToken: "original"}
		expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		if err := st.Update(&oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: expiry}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		tok := st.Token()
		if tok.AccessToken != "access" {
			t.Errorf("expected access token, got %q", tok.AccessToken)
		}
		if tok.RefreshToken != "original" {
			t.Errorf("expected refresh token to be kept, got %q", tok.RefreshToken)
		}
		if !tok.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, tok.Expiry)
		}
	})

	t.Run("update rejects empty", func(t *testing.T) {
		var st StoredToken
		if err := st.Update(&oauth2.Token{}); !errors.Is(err, ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}

func TestStatePaths(t *testing.T) {
	s := StateConfig{Dir: "/var/lib/likesync", CursorFile: "last_track.txt", DedupFile: "/tmp/added.txt", BadgerDir: "kv"}

	if got := s.CursorPath(); got != "/var/lib/likesync/last_track.txt" {
		t.Errorf("CursorPath() = %s", got)
	}
	if got := s.DedupPath(); got != "/tmp/added.txt" {
		t.Errorf("DedupPath() = %s", got)
	}
	if got := s.BadgerPath(); got != "/var/lib/likesync/kv" {
		t.Errorf("BadgerPath() = %s", got)
	}
	if got := s.LockPath(); got != "/var/lib/likesync/likesync.lock" {
		t.Errorf("LockPath() = %s", got)
	}
}
