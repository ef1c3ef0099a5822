package positions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// storedToken is the OAuth token layout written by schwab-py
type storedToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	Scope        string `json:"scope,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// tokenFile wraps the token with its creation time ({"creation_timestamp": ..., "token": {...}})
type tokenFile struct {
	CreationTimestamp int64        `json:"creation_timestamp,omitempty"`
	Token             *storedToken `json:"token"`
}

// LoadToken reads a wrapped or bare token file
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var wrapped tokenFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	stored := wrapped.Token
	if stored == nil {
		stored = &storedToken{}
		if err := json.Unmarshal(data, stored); err != nil {
			return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
		}
	}
	if stored.RefreshToken == "" && stored.AccessToken == "" {
		return nil, fmt.Errorf("token file %s holds no token", path)
	}

	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		TokenType:    stored.TokenType,
		RefreshToken: stored.RefreshToken,
	}
	if stored.ExpiresAt > 0 {
		token.Expiry = time.Unix(stored.ExpiresAt, 0)
	}
	return token, nil
}

// SaveToken writes the token in the wrapped layout, keeping the original creation timestamp
func SaveToken(path string, token *oauth2.Token, now time.Time) error {
	created := now.Unix()
	if data, err := os.ReadFile(path); err == nil {
		var existing tokenFile
		if json.Unmarshal(data, &existing) == nil && existing.CreationTimestamp > 0 {
			created = existing.CreationTimestamp
		}
	}

	stored := &storedToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if !token.Expiry.IsZero() {
		stored.ExpiresAt = token.Expiry.Unix()
		stored.ExpiresIn = int64(token.Expiry.Sub(now).Seconds())
	}

	data, err := json.MarshalIndent(tokenFile{CreationTimestamp: created, Token: stored}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return os.Rename(tmp, path)
}

// persistingTokenSource writes every newly issued token back to the token file
type persistingTokenSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	path   string
	last   string
	onSave func(error)
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		saveErr := SaveToken(s.path, token, time.Now())
		if s.onSave != nil {
			s.onSave(saveErr)
		}
	}
	return token, nil
}
