package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plsync/internal/shared"
	"golang.org/x/oauth2"
)

const defaultAuthTimeout = 2 * time.Minute

// Loopback runs the installed-app OAuth flow: a temporary callback server on a local address,
// the consent page opened in the user's browser, and the code exchanged for a token on redirect.
type Loopback struct {
	Addr        string             // listen address, e.g. 127.0.0.1:8085
	Timeout     time.Duration      // how long to wait for the user, default 2 minutes
	OpenBrowser func(string) error // defaults to [shared.OpenBrowser]
	Output      io.Writer          // user-facing prompts, defaults to stdout
	Logger      *log.Logger
}

// Authorize implements services.Authorizer.
//
// The redirect URL is derived from the bound listener, so an Addr with port 0 works.
func (l *Loopback) Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	l.defaults()

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	ln, err := net.Listen("tcp", l.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", l.Addr, err)
	}

	cfg := *config
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", ln.Addr().String())

	handler := NewOAuthHandler(&cfg, state, verifier)
	router := NewBasicRouter()
	router.Use(LogRequests(l.Logger))
	router.Handler(handler)

	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		l.Logger.Infof("starting OAuth callback server at %v", ln.Addr())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			l.Logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintf(l.Output, "→ Opening browser for YouTube authorization...\n")
	if err := l.OpenBrowser(authURL); err != nil {
		l.Logger.Warnf("failed to open browser automatically %v", err)
		fmt.Fprintf(l.Output, "⚠ Could not open browser automatically.\n")
		fmt.Fprintf(l.Output, "Please open this URL in your browser:\n%s\n\n", authURL)
	}

	fmt.Fprintf(l.Output, "→ Waiting for authorization (%s timeout)...\n", l.Timeout)

	timeout := time.NewTimer(l.Timeout)
	defer timeout.Stop()

	var result OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, l.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

func (l *Loopback) defaults() {
	if l.Addr == "" {
		l.Addr = "127.0.0.1:0"
	}
	if l.Timeout <= 0 {
		l.Timeout = defaultAuthTimeout
	}
	if l.OpenBrowser == nil {
		l.OpenBrowser = shared.OpenBrowser
	}
	if l.Output == nil {
		l.Output = os.Stdout
	}
	if l.Logger == nil {
		l.Logger = shared.NewLogger(nil)
	}
}
