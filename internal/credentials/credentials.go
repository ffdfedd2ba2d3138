// Package credentials holds the OAuth token pair a campaign uses to talk to
// Google Drive and stores it in the OS keychain.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

const serviceName = "dragon-display"

// TokenPair is replaced as a whole whenever the provider issues new tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (p TokenPair) IsZero() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// CanRefresh reports whether the pair carries a refresh token.
func (p TokenPair) CanRefresh() bool {
	return p.RefreshToken != ""
}

// Token converts the pair to an oauth2 token. Expiry is unknown, so the
// token is treated as valid until the provider rejects it.
func (p TokenPair) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
}

// FromToken builds a pair from a provider response. Providers may omit the
// refresh token on refresh, in which case prev's refresh token is kept.
func FromToken(tok *oauth2.Token, prev TokenPair) TokenPair {
	if tok == nil {
		return prev
	}
	next := TokenPair{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}
	if next.RefreshToken == "" {
		next.RefreshToken = prev.RefreshToken
	}
	return next
}

// String never prints token material.
func (p TokenPair) String() string {
	return fmt.Sprintf("TokenPair{access:%s refresh:%s}", presence(p.AccessToken), presence(p.RefreshToken))
}

func (p TokenPair) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("access", presence(p.AccessToken)),
		slog.String("refresh", presence(p.RefreshToken)),
	)
}

func presence(s string) string {
	if s == "" {
		return "empty"
	}
	return "set"
}

func account(campaign string) string {
	return "campaign:" + strings.TrimSpace(campaign)
}

// Get returns the stored pair for campaign. ok is false when none is stored.
func Get(campaign string) (pair TokenPair, ok bool, err error) {
	raw, err := keyring.Get(serviceName, account(campaign))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return TokenPair{}, false, nil
		}
		return TokenPair{}, false, fmt.Errorf("read keychain: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &pair); err != nil {
		return TokenPair{}, false, fmt.Errorf("decode stored tokens: %w", err)
	}
	return pair, !pair.IsZero(), nil
}

// Save replaces the stored pair for campaign.
func Save(campaign string, pair TokenPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	if err := keyring.Set(serviceName, account(campaign), string(data)); err != nil {
		return fmt.Errorf("write keychain: %w", err)
	}
	return nil
}

// Delete removes the stored pair. Deleting a missing entry is not an error.
func Delete(campaign string) error {
	err := keyring.Delete(serviceName, account(campaign))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete from keychain: %w", err)
	}
	return nil
}

// GetStatus reports whether a usable pair is stored for campaign.
func GetStatus(campaign string) bool {
	pair, ok, err := Get(campaign)
	return err == nil && ok && pair.CanRefresh()
}
