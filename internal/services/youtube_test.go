package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/api/option"

	"github.com/desertthunder/likesync/internal/shared"
)

const testClientSecret = `{
  "installed": {
    "client_id": "test-client.apps.googleusercontent.com",
    "client_secret": "test-secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost"]
  }
}`

// newTestYouTube returns a service whose API calls go to handler.
func newTestYouTube(t *testing.T, handler http.HandlerFunc) *YouTubeService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	y, err := NewYouTubeService([]byte(testClientSecret), "")
	if err != nil {
		t.Fatalf("NewYouTubeService() error = %v", err)
	}

	err = y.connect(context.Background(), option.WithEndpoint(server.URL+"/"), option.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("connect() error = %v", err)
	}
	return y
}

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("parses installed client secret", func(t *testing.T) {
			y, err := NewYouTubeService([]byte(testClientSecret), "http://127.0.0.1:3000/callback")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if y.config.ClientID != "test-client.apps.googleusercontent.com" {
				t.Errorf("unexpected client id %s", y.config.ClientID)
			}
			if y.config.RedirectURL != "http://127.0.0.1:3000/callback" {
				t.Errorf("expected redirect override, got %s", y.config.RedirectURL)
			}
		})

		t.Run("rejects malformed secret", func(t *testing.T) {
			if _, err := NewYouTubeService([]byte(`{}`), ""); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("reads secret from file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "client_secret.json")
			if err := os.WriteFile(path, []byte(testClientSecret), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := NewYouTubeServiceFromFile(path, ""); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
			if _, err := NewYouTubeServiceFromFile(path+".missing", ""); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		y, err := NewYouTubeService([]byte(testClientSecret), "")
		if err != nil {
			t.Fatal(err)
		}

		authURL := y.GetAuthURL("state123")
		for _, want := range []string{"state123", "youtube.force-ssl", "access_type=offline", "prompt=consent"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL %s should contain %s", authURL, want)
			}
		}
	})

	t.Run("Interfaces", func(t *testing.T) {
		y, _ := NewYouTubeService([]byte(testClientSecret), "")
		var _ OAuthService = y
		var _ VideoPlatform = y
	})

	t.Run("not authenticated", func(t *testing.T) {
		y, _ := NewYouTubeService([]byte(testClientSecret), "")
		if _, err := y.SearchVideo(context.Background(), "q"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("SearchVideo", func(t *testing.T) {
		t.Run("returns top result", func(t *testing.T) {
			y := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/youtube/v3/search" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("q") != "Song1 by ArtistA" {
					t.Errorf("unexpected query %q", q.Get("q"))
				}
				if q.Get("maxResults") != "1" || q.Get("type") != "video" || q.Get("part") != "snippet" {
					t.Errorf("unexpected parameters %v", q)
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"items": []any{map[string]any{
						"id":      map[string]any{"kind": "youtube#video", "videoId": "vid1"},
						"snippet": map[string]any{"title": "Song1 (Official Video)"},
					}},
				})
			})

			match, err := y.SearchVideo(context.Background(), "Song1 by ArtistA")
			if err != nil {
				t.Fatalf("SearchVideo() error = %v", err)
			}
			if match == nil || match.VideoID != "vid1" || match.VideoTitle != "Song1 (Official Video)" {
				t.Errorf("unexpected match %+v", match)
			}
		})

		t.Run("no results", func(t *testing.T) {
			y := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"items":[]}`)
			})

			match, err := y.SearchVideo(context.Background(), "nothing")
			if err != nil || match != nil {
				t.Errorf("expected (nil, nil), got (%+v, %v)", match, err)
			}
		})

		t.Run("quota exceeded", func(t *testing.T) {
			y := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"error":{"code":403,"message":"quota","errors":[{"reason":"quotaExceeded","message":"quota"}]}}`)
			})

			if _, err := y.SearchVideo(context.Background(), "q"); !errors.Is(err, shared.ErrQuotaExceeded) {
				t.Errorf("expected ErrQuotaExceeded, got %v", err)
			}
		})

		t.Run("unauthorized", func(t *testing.T) {
			y := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":{"code":401,"message":"invalid credentials"}}`)
			})

			if _, err := y.SearchVideo(context.Background(), "q"); !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrTokenExpired, got %v", err)
			}
		})
	})

	t.Run("InsertPlaylistItem", func(t *testing.T) {
		t.Run("posts snippet", func(t *testing.T) {
			y := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/youtube/v3/playlistItems" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}

				var body struct {
					Snippet struct {
						PlaylistID string `json:"playlistId"`
						ResourceID struct {
							Kind    string `json:"kind"`
							VideoID string `json:"videoId"`
						} `json:"resourceId"`
					} `json:"snippet"`
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("failed to decode body: %v", err)
				}
				if body.Snippet.PlaylistID != "PL1" || body.Snippet.ResourceID.VideoID != "vid1" || body.Snippet.ResourceID.Kind != "youtube#video" {
					t.Errorf("unexpected body %+v", body)
				}

				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"id":"item1"}`)
			})

			if err := y.InsertPlaylistItem(context.Background(), "PL1", "vid1"); err != nil {
				t.Errorf("InsertPlaylistItem() error = %v", err)
			}
		})

		t.Run("playlist not found", func(t *testing.T) {
			y := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"error":{"code":404,"message":"playlist not found","errors":[{"reason":"playlistNotFound"}]}}`)
			})

			err := y.InsertPlaylistItem(context.Background(), "missing", "vid1")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("ChannelTitle", func(t *testing.T) {
		y := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/youtube/v3/channels" || r.URL.Query().Get("mine") != "true" {
				t.Errorf("unexpected request %s", r.URL)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items":[{"snippet":{"title":"My Channel"}}]}`)
		})

		title, err := y.ChannelTitle(context.Background())
		if err != nil || title != "My Channel" {
			t.Errorf("ChannelTitle() = %q, %v", title, err)
		}
	})
}
