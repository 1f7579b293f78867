package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/logging"
)

const (
	// ClientSecretsFile is the Google OAuth client downloaded from the cloud
	// console, placed in config.Dir.
	ClientSecretsFile = "credentials.json"
	// GoogleTokenFile caches the Google access and refresh token.
	GoogleTokenFile = "google_token.json"
	// LocalhostAuthPort receives the OAuth redirect.
	LocalhostAuthPort = "6789"
)

// GoogleConfig reads the client secrets and pins the redirect to the local
// callback listener.
func GoogleConfig(scopes []string) (*oauth2.Config, error) {
	path, err := config.Path(ClientSecretsFile)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", path, err)
	}

	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	cfg.RedirectURL = localRedirect(cfg.RedirectURL)
	return cfg, nil
}

// localRedirect forces localhost and out-of-band redirects onto
// LocalhostAuthPort. Anything else is left alone.
func localRedirect(raw string) string {
	if raw == "urn:ietf:wg:oauth:2.0:oob" || raw == "" {
		return fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	}
	u, err := url.Parse(raw)
	if err != nil {
		logging.Logger.Warnf("could not parse redirect URL %q: %v", raw, err)
		return raw
	}
	if u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		logging.Logger.Warnf("redirect URL %s is not a localhost callback", raw)
		return raw
	}
	u.Host = net.JoinHostPort(u.Hostname(), LocalhostAuthPort)
	return u.String()
}

// GoogleClient returns an http.Client for the given scopes. It uses the cached
// token when present and runs the browser flow otherwise. Refreshed tokens are
// written back to the cache.
func GoogleClient(ctx context.Context, scopes []string) (*http.Client, error) {
	cfg, err := GoogleConfig(scopes)
	if err != nil {
		return nil, err
	}
	path, err := config.Path(GoogleTokenFile)
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(path)
	if err != nil {
		logging.Logger.WithField("file", path).Info("no cached Google token, starting web authorization")
		tok, err = tokenFromWeb(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(path, tok); err != nil {
			return nil, err
		}
	}

	src := &cachingSource{
		base: cfg.TokenSource(ctx, tok),
		path: path,
		last: tok,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// HasGoogleToken reports whether a Google token was cached by an earlier
// authorization.
func HasGoogleToken() bool {
	path, err := config.Path(GoogleTokenFile)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ForgetGoogleToken deletes the cached Google token so the next GoogleClient
// call re-runs the browser flow.
func ForgetGoogleToken() error {
	path, err := config.Path(GoogleTokenFile)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete token file '%s': %w", path, err)
	}
	return nil
}

// cachingSource saves the token whenever the underlying source refreshes it.
type cachingSource struct {
	base oauth2.TokenSource
	path string
	last *oauth2.Token
}

func (s *cachingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if s.last == nil || tok.AccessToken != s.last.AccessToken || tok.RefreshToken != s.last.RefreshToken {
		if err := saveToken(s.path, tok); err != nil {
			logging.Logger.Warnf("could not save refreshed Google token: %v", err)
		}
		s.last = tok
	}
	return tok, nil
}

// tokenFromWeb runs the authorization code flow with a one-shot local server
// catching the redirect.
func tokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- errors.New("authorization code not found in redirect URL")
				return
			}
			fmt.Fprint(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open the following URL in your browser to authorize taskboard:\n%s\n", authURL)
	logging.Logger.WithFields(logrus.Fields{"redirect": cfg.RedirectURL}).Info("waiting for authorization code")

	select {
	case code := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(exchangeCtx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, errors.New("authorization timed out, please try again")
	}
}
