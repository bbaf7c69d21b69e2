// Spotify Web API implementation of [CatalogSource]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultSpotifyRedirectURI = "http://127.0.0.1:3000/callback"
	spotifyPageSize           = 50
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Album   SpotifyAlbum    `json:"album"`
	URI     string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyPaginatedTracks represents a paginated response of saved tracks.
type SpotifyPaginatedTracks struct {
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// ToTrack converts the saved track; the artist is the first listed one.
func (s SpotifySavedTrack) ToTrack() models.Track {
	track := models.Track{
		ID:    s.Track.ID,
		Title: s.Track.Name,
		Album: s.Track.Album.Name,
	}
	if len(s.Track.Artists) > 0 {
		track.Artist = s.Track.Artists[0].Name
	}
	return track
}

// SpotifyService reads the user's library through the Spotify Web API.
// Uses [oauth2] for authentication and refreshes tokens transparently.
type SpotifyService struct {
	config     *oauth2.Config
	baseURL    string
	httpClient *http.Client

	mu             sync.Mutex
	token          *oauth2.Token
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = defaultSpotifyRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"user-library-read"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{config: config, baseURL: spotifyBaseURL}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// SetTokenRefreshCallback registers fn to be called with each refreshed token.
//
// Must be called before authenticating for refreshes to be reported.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokenRefresh = fn
}

// Authenticate expects either "access_token"/"refresh_token" or an "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if token := tokenFromCredentials(credentials); token != nil {
		s.AuthenticateWithToken(ctx, token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		_, err := s.Exchange(ctx, authCode)
		return err
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// Exchange trades an authorization code for a token.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	s.AuthenticateWithToken(ctx, token)
	return token, nil
}

// AuthenticateWithToken installs an HTTP client that authorizes requests with token and refreshes it when expired.
func (s *SpotifyService) AuthenticateWithToken(ctx context.Context, token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.httpClient = oauth2.NewClient(ctx, newTokenSource(ctx, s.config, token, s.onTokenRefresh))
}

// doRequest performs an authenticated GET request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	s.mu.Lock()
	client := s.httpClient
	s.mu.Unlock()

	if client == nil {
		return shared.ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return classifyTokenError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify returned 401", shared.ErrTokenExpired)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: spotify rate limit (retry after %s)", shared.ErrQuotaExceeded, resp.Header.Get("Retry-After"))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SavedTracks retrieves one page of the user's saved tracks.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*SpotifyPaginatedTracks, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > spotifyPageSize {
		limit = spotifyPageSize
	}

	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", limit, offset)

	var response SpotifyPaginatedTracks
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// LikedTracks pages through the whole library. Any page failure aborts the listing.
func (s *SpotifyService) LikedTracks(ctx context.Context) ([]models.Track, error) {
	return s.LikedTracksLimit(ctx, 0)
}

// LikedTracksLimit is [SpotifyService.LikedTracks] stopping after limit tracks. limit <= 0 means no limit.
func (s *SpotifyService) LikedTracksLimit(ctx context.Context, limit int) ([]models.Track, error) {
	var tracks []models.Track
	offset := 0

	for {
		page, err := s.SavedTracks(ctx, spotifyPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("liked tracks at offset %d: %w", offset, err)
		}

		for _, item := range page.Items {
			if item.Track.Name == "" {
				continue
			}
			tracks = append(tracks, item.ToTrack())
			if limit > 0 && len(tracks) >= limit {
				return tracks, nil
			}
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return tracks, nil
}
