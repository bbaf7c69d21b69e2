// package services defines the provider clients used by a sync run
//
// Spotify (source), YouTube Data API and YouTube Music proxy (destinations)
package services

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/models"
)

// Service is implemented by every provider client.
type Service interface {
	// Authenticate configures the client from stored or freshly issued credentials.
	// Returns an error if the credentials are incomplete.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Name returns the name of the service (e.g., "Spotify", "YouTube")
	Name() string
}

// OAuthService is a [Service] authorized through the OAuth2 authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the consent page URL carrying state.
	GetAuthURL(state string) string

	// Exchange trades an authorization code for a token and authenticates the client with it.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// SetTokenRefreshCallback registers fn to receive every new access token.
	SetTokenRefreshCallback(fn func(*oauth2.Token))
}

// CatalogSource lists the user's liked tracks, newest first, in provider order.
type CatalogSource interface {
	LikedTracks(ctx context.Context) ([]models.Track, error)
	Name() string
}

// VideoPlatform is the destination of a sync.
type VideoPlatform interface {
	// SearchVideo returns the single best result for query, or nil when there are no results.
	SearchVideo(ctx context.Context, query string) (*models.Match, error)

	// InsertPlaylistItem appends videoID to playlistID.
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error

	Name() string
}
