package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/plsync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// ClientFactory hands out HTTP clients that are authorized against the remote API.
type ClientFactory interface {
	Client(ctx context.Context) (*http.Client, error)
}

// Authorizer runs an interactive authorization against config and returns the granted token.
type Authorizer func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)

// GoogleAuth implements [ClientFactory] with a cached OAuth2 token.
//
// The token lifecycle is: load the cached token, refresh it when expired and a refresh token is present,
// otherwise run the [Authorizer]. Every new token is written back to the cache file.
type GoogleAuth struct {
	config    *oauth2.Config
	tokenPath string
	authorize Authorizer
}

// NewGoogleAuth reads the desktop OAuth client from secretPath and requests the YouTube scope.
func NewGoogleAuth(secretPath, tokenPath, redirectURL string, authorize Authorizer) (*GoogleAuth, error) {
	data, err := os.ReadFile(secretPath)
	if err != nil {
		return nil, fmt.Errorf("%w: client secret %s: %v", shared.ErrMissingCredentials, secretPath, err)
	}

	config, err := google.ConfigFromJSON(data, youtube.YoutubeScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	if redirectURL != "" {
		config.RedirectURL = redirectURL
	}

	return NewGoogleAuthWithConfig(config, tokenPath, authorize), nil
}

// NewGoogleAuthWithConfig creates a [GoogleAuth] from an existing [oauth2.Config].
func NewGoogleAuthWithConfig(config *oauth2.Config, tokenPath string, authorize Authorizer) *GoogleAuth {
	return &GoogleAuth{config: config, tokenPath: tokenPath, authorize: authorize}
}

// TokenPath returns the token cache location.
func (g *GoogleAuth) TokenPath() string {
	return g.tokenPath
}

// Token returns a usable token, refreshing or re-authorizing as needed.
func (g *GoogleAuth) Token(ctx context.Context) (*oauth2.Token, error) {
	cached, err := LoadToken(g.tokenPath)
	if err == nil {
		if cached.Valid() {
			return cached, nil
		}
		if cached.RefreshToken != "" {
			fresh, err := g.config.TokenSource(ctx, cached).Token()
			if err == nil {
				if err := SaveToken(g.tokenPath, fresh); err != nil {
					return nil, err
				}
				return fresh, nil
			}
		}
	}

	return g.Login(ctx)
}

// Login always runs the interactive flow and caches the resulting token.
func (g *GoogleAuth) Login(ctx context.Context) (*oauth2.Token, error) {
	if g.authorize == nil {
		return nil, fmt.Errorf("%w: no cached token and interactive authorization is unavailable", shared.ErrNotAuthenticated)
	}

	token, err := g.authorize(ctx, g.config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	if err := SaveToken(g.tokenPath, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Client returns an HTTP client that attaches the token and refreshes it transparently.
//
// Tokens refreshed mid-run are persisted so the next invocation starts from them.
func (g *GoogleAuth) Client(ctx context.Context) (*http.Client, error) {
	token, err := g.Token(ctx)
	if err != nil {
		return nil, err
	}

	ts := &cachingTokenSource{
		base: g.config.TokenSource(ctx, token),
		path: g.tokenPath,
		last: token.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, ts)), nil
}

// cachingTokenSource writes every newly issued token to the cache file.
type cachingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (c *cachingTokenSource) Token() (*oauth2.Token, error) {
	token, err := c.base.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token.AccessToken != c.last {
		if err := SaveToken(c.path, token); err != nil {
			return nil, err
		}
		c.last = token.AccessToken
	}
	return token, nil
}

// LoadToken reads a cached token from path.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token cache %s: %w", path, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token cache %s is empty", shared.ErrNotAuthenticated, path)
	}
	return &token, nil
}

// SaveToken writes token to path, readable only by the current user.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// TokenStatus describes the cached token for display.
type TokenStatus struct {
	Path        string
	Present     bool
	Valid       bool
	Refreshable bool
	Expiry      time.Time
}

// InspectToken reports on the token cached at path without touching the network.
func InspectToken(path string) (TokenStatus, error) {
	status := TokenStatus{Path: path}

	token, err := LoadToken(path)
	if errors.Is(err, os.ErrNotExist) {
		return status, nil
	}
	if err != nil {
		return status, err
	}

	status.Present = true
	status.Valid = token.Valid()
	status.Refreshable = token.RefreshToken != ""
	status.Expiry = token.Expiry
	return status, nil
}
