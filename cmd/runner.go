package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/state"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Services and the state store are built on first use unless injected through [RunnerOpts].
type Runner struct {
	mu         sync.Mutex
	config     *shared.Config
	configPath string
	spotify    services.CatalogSource
	youtube    services.VideoPlatform
	store      state.Store
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.CatalogSource
	YouTube    services.VideoPlatform
	Store      state.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		youtube:    opts.YouTube,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, spotifyCommand, youtubeCommand, syncCommand, stateCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Init loads the config named by --config and applies the log level. It runs before every command.
//
// A missing config file leaves the defaults in place so that "setup config" can create it.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		if err := config.Validate(); err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	ll, err := shared.ParseLevel(level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, ll)

	return ctx, nil
}

// SetLogger replaces the logger, e.g. while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// spotifyService returns the catalog source, authenticating it from stored tokens on first use.
func (r *Runner) spotifyService(ctx context.Context) (services.CatalogSource, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map())
	if err != nil {
		return nil, err
	}

	token := r.config.Credentials.Spotify.Token()
	if token == nil {
		return nil, fmt.Errorf("%w: run 'likesync auth spotify' first", shared.ErrNotAuthenticated)
	}

	svc.SetTokenRefreshCallback(r.tokenSaver("spotify"))
	svc.AuthenticateWithToken(ctx, token)
	r.spotify = svc
	return svc, nil
}

// videoPlatform returns the destination selected by destination.backend.
func (r *Runner) videoPlatform(ctx context.Context) (services.VideoPlatform, error) {
	if r.youtube != nil {
		return r.youtube, nil
	}

	creds := r.config.Credentials.YouTube
	switch r.config.Destination.Backend {
	case "ytmusic":
		svc := services.NewYTMusicService(creds.ProxyURL)
		svc.SetHTTPClient(r.httpClient)
		if err := svc.Authenticate(ctx, map[string]string{"auth_file": shared.ExpandPath(creds.AuthFile)}); err != nil {
			return nil, err
		}
		r.youtube = svc
		return svc, nil
	case "youtube", "":
		svc, err := services.NewYouTubeServiceFromFile(creds.ClientSecretFile, r.callbackURL())
		if err != nil {
			return nil, err
		}

		token := creds.Token()
		if token == nil {
			return nil, fmt.Errorf("%w: run 'likesync auth youtube' first", shared.ErrNotAuthenticated)
		}

		svc.SetTokenRefreshCallback(r.tokenSaver("youtube"))
		if err := svc.AuthenticateWithToken(ctx, token); err != nil {
			return nil, err
		}
		r.youtube = svc
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: destination.backend %q", shared.ErrInvalidConfig, r.config.Destination.Backend)
	}
}

// openStore returns the configured state store. owned is false when the store was injected.
func (r *Runner) openStore() (store state.Store, owned bool, err error) {
	if r.store != nil {
		return r.store, false, nil
	}
	store, err = state.Open(r.config)
	if err != nil {
		return nil, false, err
	}
	return store, true, nil
}

// callbackURL is the local redirect URI used for the YouTube OAuth flow.
func (r *Runner) callbackURL() string {
	return fmt.Sprintf("http://%s:%d/callback", r.config.Server.Host, r.config.Server.Port)
}

// tokenSaver returns a refresh callback that persists provider's new tokens.
func (r *Runner) tokenSaver(provider string) func(*oauth2.Token) {
	return func(token *oauth2.Token) {
		if err := r.saveTokens(provider, token); err != nil {
			r.logger.Warn("failed to persist refreshed token", "provider", provider, "error", err)
			return
		}
		r.logger.Debug("refreshed token saved", "provider", provider)
	}
}

// saveTokens stores token under provider's credentials and writes the config file when one is known.
func (r *Runner) saveTokens(provider string, token *oauth2.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config == nil {
		return errors.New("config is nil")
	}

	var stored *shared.StoredToken
	switch provider {
	case "spotify":
		stored = &r.config.Credentials.Spotify.StoredToken
	case "youtube":
		stored = &r.config.Credentials.YouTube.StoredToken
	default:
		return fmt.Errorf("%w: provider %q", shared.ErrInvalidArgument, provider)
	}

	if err := stored.Update(token); err != nil {
		return fmt.Errorf("failed to update %s configuration: %w", provider, err)
	}

	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
