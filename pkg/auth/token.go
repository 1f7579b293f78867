package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

// TokenFile caches the issue tracker bearer token inside config.Dir.
const TokenFile = "token.json"

var tokenEnv = []string{"TASKBOARD_TOKEN", "GITHUB_TOKEN"}

// Source says where a tracker token came from.
type Source struct {
	// Env is the variable name when the token came from the environment.
	Env string
	// File is the token cache path otherwise.
	File string
}

// Cached reports whether the token was read from the cache file.
func (s Source) Cached() bool {
	return s.Env == "" && s.File != ""
}

func (s Source) String() string {
	if s.Env != "" {
		return "$" + s.Env
	}
	return s.File
}

// ResolveToken finds the tracker credential: environment first, then the
// cached token file. It returns tracker.ErrUnauthenticated when there is none.
func ResolveToken() (string, Source, error) {
	for _, key := range tokenEnv {
		if v := os.Getenv(key); v != "" {
			return v, Source{Env: key}, nil
		}
	}

	path, err := config.Path(TokenFile)
	if err != nil {
		return "", Source{}, err
	}
	tok, err := tokenFromFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", Source{}, tracker.ErrUnauthenticated
		}
		return "", Source{}, err
	}
	if tok.AccessToken == "" {
		return "", Source{}, tracker.ErrUnauthenticated
	}
	return tok.AccessToken, Source{File: path}, nil
}

// SaveToken caches a bearer token for later runs.
func SaveToken(token string) error {
	if token == "" {
		return fmt.Errorf("refusing to save an empty token")
	}
	path, err := config.Path(TokenFile)
	if err != nil {
		return err
	}
	return saveToken(path, &oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// Clear removes the cached token, e.g. after the tracker rejected it.
func Clear() error {
	path, err := config.Path(TokenFile)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete token file '%s': %w", path, err)
	}
	logging.Logger.WithField("file", path).Info("cleared cached tracker token")
	return nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
