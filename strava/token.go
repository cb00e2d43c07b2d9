package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoToken means neither a stored token nor an authorization code exists.
var ErrNoToken = errors.New("no strava token stored and no authorization code supplied")

// Auth holds the application credentials.
type Auth struct {
	ClientID     string
	ClientSecret string
	// Code is a one-time authorization code, exchanged when no token is stored.
	Code string
	// TokenFile stores the token between runs.
	TokenFile string
}

// OAuthConfig builds the oauth2 configuration for Strava.
func (a Auth) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		Endpoint:     Endpoint,
		Scopes:       []string{"activity:read_all"},
	}
}

// TokenSource returns a refreshing token source. The stored token is used
// when present; otherwise the authorization code is exchanged. Rotated tokens
// are written back to TokenFile.
func (a Auth) TokenSource(ctx context.Context, cfg *oauth2.Config) (oauth2.TokenSource, error) {
	tok, err := LoadToken(a.TokenFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if tok == nil {
		if a.Code == "" {
			return nil, ErrNoToken
		}
		tok, err = cfg.Exchange(ctx, a.Code)
		if err != nil {
			return nil, fmt.Errorf("exchange authorization code: %w", err)
		}
		if err := SaveToken(a.TokenFile, tok); err != nil {
			return nil, err
		}
	}
	return &savingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: a.TokenFile,
		last: tok.AccessToken,
	}, nil
}

// savingTokenSource persists the token whenever the access token changes.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := SaveToken(s.path, tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// LoadToken reads a token file. A missing file returns an error wrapping
// os.ErrNotExist.
func LoadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, fmt.Errorf("token file: %w", os.ErrNotExist)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return &tok, nil
}

// SaveToken writes the token with owner-only permissions. An empty path is a no-op.
func SaveToken(path string, tok *oauth2.Token) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
