// YouTube Music proxy implementation of [VideoPlatform]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

const defaultYTMusicBaseURL string = "http://localhost:8080"

// YouTubeArtist is an artist credit in proxy search results.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YTMusicSearchResult is one entry of GET /api/search.
type YTMusicSearchResult struct {
	VideoID    string          `json:"videoId"`
	Title      string          `json:"title"`
	Artists    []YouTubeArtist `json:"artists"`
	ResultType string          `json:"resultType"`
}

// YTMusicService talks to the FastAPI proxy wrapping ytmusicapi.
//
// The proxy reads browser credentials from the file named by the X-Auth-File header.
type YTMusicService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
}

// NewYTMusicService creates a client for the proxy at baseURL.
func NewYTMusicService(baseURL string) *YTMusicService {
	if baseURL == "" {
		baseURL = defaultYTMusicBaseURL
	}

	return &YTMusicService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// SetHTTPClient replaces the client used to reach the proxy. nil is ignored.
func (y *YTMusicService) SetHTTPClient(c *http.Client) {
	if c != nil {
		y.httpClient = c
	}
}

func (y *YTMusicService) Name() string {
	return "YouTube Music"
}

// Authenticate records the proxy auth file path. Expects "auth_file" in credentials.
func (y *YTMusicService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile, ok := credentials["auth_file"]
	if !ok || authFile == "" {
		return fmt.Errorf("%w: missing auth_file", shared.ErrMissingCredentials)
	}

	y.authFile = shared.ExpandPath(authFile)
	return nil
}

func (y *YTMusicService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		sentinel := shared.ErrAPIRequest
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			sentinel = shared.ErrNotAuthenticated
		case http.StatusTooManyRequests:
			sentinel = shared.ErrQuotaExceeded
		case http.StatusBadGateway, http.StatusServiceUnavailable:
			sentinel = shared.ErrServiceUnavailable
		}

		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: youtube music (status %d): %s", sentinel, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: youtube music status %d", sentinel, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Health checks that the proxy is reachable.
func (y *YTMusicService) Health(ctx context.Context) error {
	return y.doRequest(ctx, http.MethodGet, "/health", nil, nil)
}

// SearchVideo returns the top song result for query.
func (y *YTMusicService) SearchVideo(ctx context.Context, query string) (*models.Match, error) {
	endpoint := fmt.Sprintf("/api/search?q=%s&filter=songs", url.QueryEscape(query))

	var results []YTMusicSearchResult
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.VideoID != "" {
			return &models.Match{VideoID: r.VideoID, VideoTitle: r.Title}, nil
		}
	}
	return nil, nil
}

// InsertPlaylistItem adds videoID to playlistID.
func (y *YTMusicService) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	body := struct {
		VideoIDs []string `json:"video_ids"`
	}{VideoIDs: []string{videoID}}

	endpoint := fmt.Sprintf("/api/playlists/%s/items", url.PathEscape(playlistID))
	return y.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}
