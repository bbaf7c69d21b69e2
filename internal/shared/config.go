package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

var (
	DestinationBackends = []string{"youtube", "ytmusic"}
	StateBackends       = []string{"file", "sqlite", "badger"}
	CursorPolicies      = []string{"on-match", "on-insert", "always"}
	ReportFormats       = []string{"json", "csv", "markdown", "txt"}
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Destination DestinationConfig `toml:"destination"`
	Sync        SyncConfig        `toml:"sync"`
	State       StateConfig       `toml:"state"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// StoredToken is the persisted form of an [oauth2.Token].
type StoredToken struct {
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	TokenType    string `toml:"token_type"`
	Expiry       string `toml:"expiry"` // RFC 3339, empty when unknown
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	StoredToken
}

// YouTubeConfig contains YouTube credentials for both destination backends.
//
// ClientSecretFile and the stored token are used by the Data API backend; ProxyURL and AuthFile by the ytmusic proxy backend.
type YouTubeConfig struct {
	ClientSecretFile string `toml:"client_secret_file"`
	StoredToken
	ProxyURL string `toml:"proxy_url"`
	AuthFile string `toml:"auth_file"`
}

// DestinationConfig selects the video platform backend and the target playlist.
type DestinationConfig struct {
	Backend    string `toml:"backend"`
	PlaylistID string `toml:"playlist_id"`
}

// SyncConfig controls driver behavior.
type SyncConfig struct {
	CursorPolicy   string `toml:"cursor_policy"`
	InsertDelay    string `toml:"insert_delay"`
	SearchInterval string `toml:"search_interval"`
	ReportFormat   string `toml:"report_format"`
}

// StateConfig selects the sync state backend and where it lives.
type StateConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	CursorFile string `toml:"cursor_file"`
	DedupFile  string `toml:"dedup_file"`
	BadgerDir  string `toml:"badger_dir"`
	Lock       bool   `toml:"lock"`
}

// DatabaseConfig contains database connection settings for the sqlite state backend.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback listener.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path, replacing the previous file atomically.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// Validate checks enumerated values and durations.
func (c *Config) Validate() error {
	if !slices.Contains(DestinationBackends, c.Destination.Backend) {
		return fmt.Errorf("%w: destination.backend %q (want one of %v)", ErrInvalidConfig, c.Destination.Backend, DestinationBackends)
	}
	if !slices.Contains(StateBackends, c.State.Backend) {
		return fmt.Errorf("%w: state.backend %q (want one of %v)", ErrInvalidConfig, c.State.Backend, StateBackends)
	}
	if !slices.Contains(CursorPolicies, c.Sync.CursorPolicy) {
		return fmt.Errorf("%w: sync.cursor_policy %q (want one of %v)", ErrInvalidConfig, c.Sync.CursorPolicy, CursorPolicies)
	}
	if c.Sync.ReportFormat != "" && !slices.Contains(ReportFormats, c.Sync.ReportFormat) {
		return fmt.Errorf("%w: sync.report_format %q (want one of %v)", ErrInvalidConfig, c.Sync.ReportFormat, ReportFormats)
	}
	if _, err := c.Sync.InsertDelayDuration(); err != nil {
		return err
	}
	if _, err := c.Sync.SearchIntervalDuration(); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", ErrInvalidConfig, c.Server.Port)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Map returns the client credentials in the form expected by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Token converts the stored fields back into an [oauth2.Token], or nil when nothing has been stored.
func (t StoredToken) Token() *oauth2.Token {
	if t.AccessToken == "" && t.RefreshToken == "" {
		return nil
	}

	token := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.Expiry != "" {
		if expiry, err := time.Parse(time.RFC3339, t.Expiry); err == nil {
			token.Expiry = expiry
		}
	}
	return token
}

// Update stores token, keeping the previous refresh token when the provider omits it on refresh.
func (t *StoredToken) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrAuthFailed)
	}

	t.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		t.RefreshToken = token.RefreshToken
	}
	t.TokenType = token.TokenType
	if token.Expiry.IsZero() {
		t.Expiry = ""
	} else {
		t.Expiry = token.Expiry.UTC().Format(time.RFC3339)
	}
	return nil
}

// InsertDelayDuration parses the fixed pause taken after each successful playlist insert.
func (s SyncConfig) InsertDelayDuration() (time.Duration, error) {
	return parseDuration("sync.insert_delay", s.InsertDelay)
}

// SearchIntervalDuration parses the minimum spacing between search calls. Zero disables pacing.
func (s SyncConfig) SearchIntervalDuration() (time.Duration, error) {
	return parseDuration("sync.search_interval", s.SearchInterval)
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidConfig, key, value)
	}
	return d, nil
}

// CursorPath returns the cursor file location.
func (s StateConfig) CursorPath() string { return s.resolve(s.CursorFile) }

// DedupPath returns the dedup log location.
func (s StateConfig) DedupPath() string { return s.resolve(s.DedupFile) }

// BadgerPath returns the badger directory.
func (s StateConfig) BadgerPath() string { return s.resolve(s.BadgerDir) }

// LockPath returns the run lock file location.
func (s StateConfig) LockPath() string { return s.resolve("likesync.lock") }

func (s StateConfig) resolve(name string) string {
	name = ExpandPath(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ExpandPath(s.Dir), name)
}
