// YouTube Data API v3 implementation of [VideoPlatform]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// YouTubeService searches videos and edits playlists through the YouTube Data API.
//
// Search costs 100 quota units and an insert 50, so a default project quota covers roughly 60 tracks a day.
type YouTubeService struct {
	config *oauth2.Config
	opts   []option.ClientOption

	mu             sync.Mutex
	svc            *youtube.Service
	onTokenRefresh func(*oauth2.Token)
}

// NewYouTubeService builds a service from the contents of a Google "installed app" client secret file.
//
// redirectURI overrides the first redirect URI listed in the file when non-empty.
func NewYouTubeService(clientSecretJSON []byte, redirectURI string) (*YouTubeService, error) {
	config, err := google.ConfigFromJSON(clientSecretJSON, youtube.YoutubeForceSslScope)
	if err != nil {
		return nil, fmt.Errorf("%w: client secret: %v", shared.ErrInvalidConfig, err)
	}
	if redirectURI != "" {
		config.RedirectURL = redirectURI
	}
	return &YouTubeService{config: config}, nil
}

// NewYouTubeServiceFromFile reads the client secret at path and calls [NewYouTubeService].
func NewYouTubeServiceFromFile(path, redirectURI string) (*YouTubeService, error) {
	data, err := os.ReadFile(shared.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("%w: client secret file: %v", shared.ErrMissingCredentials, err)
	}
	return NewYouTubeService(data, redirectURI)
}

func (y *YouTubeService) Name() string {
	return "YouTube"
}

// GetAuthURL returns the consent URL. Consent is forced so Google issues a refresh token every time.
func (y *YouTubeService) GetAuthURL(state string) string {
	return y.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// SetTokenRefreshCallback registers fn to be called with each refreshed token.
func (y *YouTubeService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.onTokenRefresh = fn
}

// Authenticate expects either "access_token"/"refresh_token" or an "auth_code" in credentials.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if token := tokenFromCredentials(credentials); token != nil {
		return y.AuthenticateWithToken(ctx, token)
	}

	if code := credentials["auth_code"]; code != "" {
		_, err := y.Exchange(ctx, code)
		return err
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// Exchange trades an authorization code for a token and connects with it.
func (y *YouTubeService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := y.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	if err := y.AuthenticateWithToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// AuthenticateWithToken connects the API client using token, refreshing it as needed.
func (y *YouTubeService) AuthenticateWithToken(ctx context.Context, token *oauth2.Token) error {
	y.mu.Lock()
	callback := y.onTokenRefresh
	y.mu.Unlock()

	client := oauth2.NewClient(ctx, newTokenSource(ctx, y.config, token, callback))
	return y.connect(ctx, option.WithHTTPClient(client))
}

func (y *YouTubeService) connect(ctx context.Context, opts ...option.ClientOption) error {
	svc, err := youtube.NewService(ctx, append(opts, y.opts...)...)
	if err != nil {
		return fmt.Errorf("failed to create youtube client: %w", err)
	}

	y.mu.Lock()
	y.svc = svc
	y.mu.Unlock()
	return nil
}

func (y *YouTubeService) client() (*youtube.Service, error) {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.svc == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return y.svc, nil
}

// SearchVideo asks for exactly one video result for query.
func (y *YouTubeService) SearchVideo(ctx context.Context, query string) (*models.Match, error) {
	svc, err := y.client()
	if err != nil {
		return nil, err
	}

	resp, err := svc.Search.List([]string{"snippet"}).
		Q(query).
		MaxResults(1).
		Type("video").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyGoogleError("search", err)
	}

	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		return &models.Match{VideoID: item.Id.VideoId, VideoTitle: item.Snippet.Title}, nil
	}
	return nil, nil
}

// InsertPlaylistItem appends videoID to the end of playlistID.
func (y *YouTubeService) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	svc, err := y.client()
	if err != nil {
		return err
	}

	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}

	if _, err := svc.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do(); err != nil {
		return classifyGoogleError("insert playlist item", err)
	}
	return nil
}

// ChannelTitle returns the title of the authorized user's channel.
func (y *YouTubeService) ChannelTitle(ctx context.Context) (string, error) {
	svc, err := y.client()
	if err != nil {
		return "", err
	}

	resp, err := svc.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", classifyGoogleError("channels", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", fmt.Errorf("%w: no channel for this account", shared.ErrAPIRequest)
	}
	return resp.Items[0].Snippet.Title, nil
}

// classifyGoogleError maps API failures onto the shared sentinels.
func classifyGoogleError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: youtube %s: %v", shared.ErrTokenExpired, op, err)
		}
		return fmt.Errorf("%w: youtube %s: %v", shared.ErrAPIRequest, op, err)
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: youtube %s: %s", shared.ErrTokenExpired, op, gerr.Message)
	case http.StatusForbidden:
		for _, item := range gerr.Errors {
			if item.Reason == "quotaExceeded" || item.Reason == "rateLimitExceeded" {
				return fmt.Errorf("%w: youtube %s: %s", shared.ErrQuotaExceeded, op, gerr.Message)
			}
		}
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: youtube %s", shared.ErrServiceUnavailable, op)
	}
	return fmt.Errorf("%w: youtube %s (status %d): %s", shared.ErrAPIRequest, op, gerr.Code, gerr.Message)
}
