package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/server"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
)

const authTimeout = 2 * time.Minute

// AuthSpotify runs the authorization code flow against Spotify and stores the tokens in the config file.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	svc, err := services.NewSpotifyService(creds.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, svc, creds.RedirectURI)
	if err != nil {
		return err
	}

	if err := r.saveTokens("spotify", token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: likesync spotify likes\n")
	return nil
}

// AuthYouTube authorizes the configured destination.
//
// The Data API backend runs the OAuth flow. The ytmusic backend only checks that the proxy is reachable.
func (r *Runner) AuthYouTube(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.YouTube

	if r.config.Destination.Backend == "ytmusic" {
		svc := services.NewYTMusicService(creds.ProxyURL)
		svc.SetHTTPClient(r.httpClient)
		if err := svc.Authenticate(ctx, map[string]string{"auth_file": creds.AuthFile}); err != nil {
			return err
		}
		if err := svc.Health(ctx); err != nil {
			return fmt.Errorf("%w: %s: %v", shared.ErrServiceUnavailable, creds.ProxyURL, err)
		}
		r.writePlain("✓ YouTube Music proxy is healthy at %s\n", creds.ProxyURL)
		return nil
	}

	if creds.ClientSecretFile == "" {
		return fmt.Errorf("%w: credentials.youtube.client_secret_file must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	svc, err := services.NewYouTubeServiceFromFile(creds.ClientSecretFile, r.callbackURL())
	if err != nil {
		return fmt.Errorf("failed to create YouTube service: %w", err)
	}

	token, err := r.doOAuth(ctx, svc, r.callbackURL())
	if err != nil {
		return err
	}

	if err := r.saveTokens("youtube", token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if title, err := svc.ChannelTitle(ctx); err == nil {
		r.writePlain("✓ Signed in as %s\n", title)
	} else {
		r.logger.Warn("could not read channel", "error", err)
	}
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: likesync sync run\n")
	return nil
}

type credentialStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	Authorized bool   `json:"authorized"`
	Expiry     string `json:"expiry,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// AuthStatus reports which providers have client credentials and stored tokens.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials
	statuses := []credentialStatus{
		{
			Provider:   "spotify",
			Configured: creds.Spotify.ClientID != "" && creds.Spotify.ClientSecret != "",
			Authorized: creds.Spotify.Token() != nil,
			Expiry:     creds.Spotify.Expiry,
		},
	}

	if r.config.Destination.Backend == "ytmusic" {
		statuses = append(statuses, credentialStatus{
			Provider:   "ytmusic",
			Configured: creds.YouTube.ProxyURL != "" && creds.YouTube.AuthFile != "",
			Authorized: creds.YouTube.AuthFile != "",
			Detail:     creds.YouTube.ProxyURL,
		})
	} else {
		statuses = append(statuses, credentialStatus{
			Provider:   "youtube",
			Configured: creds.YouTube.ClientSecretFile != "",
			Authorized: creds.YouTube.Token() != nil,
			Expiry:     creds.YouTube.Expiry,
			Detail:     creds.YouTube.ClientSecretFile,
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(statuses, true)
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{s.Provider, yesNo(s.Configured), yesNo(s.Authorized), s.Expiry, s.Detail})
	}
	return r.writePlain("%s\n", renderTable(
		[]string{"Provider", "Configured", "Authorized", "Expiry", "Detail"},
		rows,
		nil,
		isTerminal(r.output),
	))
}

// doOAuth serves the callback named by redirectURI, sends the user to the consent page and waits for the token.
func (r *Runner) doOAuth(ctx context.Context, oauthSrv services.OAuthService, redirectURI string) (*oauth2.Token, error) {
	addr, path, err := callbackAddr(redirectURI)
	if err != nil {
		return nil, err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(oauthSrv.Name(), path, oauthSrv, state)
	srv := server.NewCallbackServer(addr, handler, r.logger)
	if err := srv.Start(); err != nil {
		return nil, err
	}

	authURL := oauthSrv.GetAuthURL(state)
	r.writePlain("→ Opening browser for %s authorization...\n", oauthSrv.Name())
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", authTimeout)
	return srv.Wait(ctx, authTimeout)
}

// callbackAddr splits a loopback redirect URI into the listen address and the callback path.
func callbackAddr(redirectURI string) (addr, path string, err error) {
	if redirectURI == "" {
		return "", "", fmt.Errorf("%w: redirect URI", shared.ErrMissingConfig)
	}

	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", "", fmt.Errorf("%w: redirect URI %q: %v", shared.ErrInvalidConfig, redirectURI, err)
	}
	if u.Scheme != "http" || u.Host == "" {
		return "", "", fmt.Errorf("%w: redirect URI %q must be a local http URL", shared.ErrInvalidConfig, redirectURI)
	}
	if u.Port() == "" {
		return "", "", fmt.Errorf("%w: redirect URI %q has no port", shared.ErrInvalidConfig, redirectURI)
	}

	path = u.Path
	if path == "" {
		path = "/"
	}
	return u.Host, path, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
