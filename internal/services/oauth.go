package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/shared"
)

// refreshableTokenSource reports each new access token to callback.
//
// The oauth2 transport refreshes tokens silently; this wrapper lets the CLI write them back to the config file.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	if changed {
		r.last = token.AccessToken
	}
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}

// newTokenSource wraps config's refreshing source for token. The starting token is not reported.
func newTokenSource(ctx context.Context, config *oauth2.Config, token *oauth2.Token, callback func(*oauth2.Token)) oauth2.TokenSource {
	return &refreshableTokenSource{
		source:   config.TokenSource(ctx, token),
		callback: callback,
		last:     token.AccessToken,
	}
}

// tokenFromCredentials builds a token from "access_token" and "refresh_token" entries.
func tokenFromCredentials(credentials map[string]string) *oauth2.Token {
	access, refresh := credentials["access_token"], credentials["refresh_token"]
	if access == "" && refresh == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: access, RefreshToken: refresh, TokenType: credentials["token_type"]}
}

// classifyTokenError maps a failed refresh to [shared.ErrTokenExpired].
func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}
	return err
}
