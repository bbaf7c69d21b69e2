package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/shared"
)

type fakeExchanger struct {
	token *oauth2.Token
	err   error
	code  string
}

func (f *fakeExchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	f.code = code
	return f.token, f.err
}

func TestOAuthHandler(t *testing.T) {
	t.Run("exchanges the code", func(t *testing.T) {
		ex := &fakeExchanger{token: &oauth2.Token{AccessToken: "abc"}}
		h := NewOAuthHandler("Spotify", "/callback", ex, "state1")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state1&code=xyz", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Spotify authorized") {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
		if ex.code != "xyz" {
			t.Errorf("expected code xyz, got %q", ex.code)
		}

		result := <-h.Result()
		if result.Error() != nil || result.Token.AccessToken != "abc" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("rejects a bad state", func(t *testing.T) {
		h := NewOAuthHandler("Spotify", "", &fakeExchanger{}, "state1")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=xyz", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("provider error", func(t *testing.T) {
		h := NewOAuthHandler("YouTube", "/oauth2callback", &fakeExchanger{}, "s")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth2callback?state=s&error=access_denied", nil))

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
		if routes := h.Routes(); len(routes) != 1 || routes[0] != "/oauth2callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})

	t.Run("only the first callback counts", func(t *testing.T) {
		h := NewOAuthHandler("Spotify", "/callback", &fakeExchanger{token: &oauth2.Token{AccessToken: "a"}}, "s")

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s&code=1", nil))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=2", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", rec.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	router := NewBasicRouter()
	var order []string
	for _, name := range []string{"first", "second"} {
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}
	router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Body.String() != "pong" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if strings.Join(order, ",") != "first,second" {
		t.Errorf("unexpected middleware order %v", order)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestCallbackServer(t *testing.T) {
	logger := log.New(io.Discard)

	t.Run("returns the token", func(t *testing.T) {
		h := NewOAuthHandler("Spotify", "/callback", &fakeExchanger{token: &oauth2.Token{AccessToken: "tok"}}, "s")
		srv := NewCallbackServer("127.0.0.1:0", h, logger)
		if err := srv.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		go func() {
			resp, err := http.Get("http://" + srv.Addr() + "/callback?state=s&code=c")
			if err == nil {
				resp.Body.Close()
			}
		}()

		token, err := srv.Wait(context.Background(), 5*time.Second)
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if token.AccessToken != "tok" {
			t.Errorf("unexpected token %q", token.AccessToken)
		}
	})

	t.Run("times out", func(t *testing.T) {
		h := NewOAuthHandler("Spotify", "/callback", &fakeExchanger{}, "s")
		srv := NewCallbackServer("127.0.0.1:0", h, logger)
		if err := srv.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		if _, err := srv.Wait(context.Background(), 10*time.Millisecond); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("port in use", func(t *testing.T) {
		h := NewOAuthHandler("Spotify", "/callback", &fakeExchanger{}, "s")
		first := NewCallbackServer("127.0.0.1:0", h, logger)
		if err := first.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		defer first.shutdown()

		if err := NewCallbackServer(first.Addr(), h, logger).Start(); err == nil {
			t.Error("expected listen error on a bound port")
		}
	})
}
