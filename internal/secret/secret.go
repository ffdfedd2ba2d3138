// Package secret loads the Google OAuth client secret that identifies
// dragonsync to the provider. The first successful load is kept for the rest
// of the process.
package secret

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/logger"
)

const (
	// FileName is looked up in the directory passed to Load.
	FileName = "client_secret.json"
	// Scope is the only scope dragonsync ever requests.
	Scope = drive.DriveReadonlyScope
)

type ClientSecret struct {
	config *oauth2.Config
}

var (
	mu     sync.Mutex
	cached *ClientSecret
)

// Load returns the process-wide client secret, reading <dir>/client_secret.json
// on first use. Once a load succeeds, later calls return the same value and
// ignore dir. Failures are not cached.
func Load(dir string) (*ClientSecret, error) {
	mu.Lock()
	defer mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.New(apperrors.KindMissingClientSecret, "", err)
		}
		return nil, apperrors.New(apperrors.KindUnreadableClientSecret, "", err)
	}
	cs, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cached = cs
	logger.Debug("Loaded OAuth client secret", "path", path)
	return cs, nil
}

// Parse decodes a Google "installed" or "web" client secret document.
func Parse(data []byte) (*ClientSecret, error) {
	cfg, err := google.ConfigFromJSON(data, Scope)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUnreadableClientSecret, "", fmt.Errorf("parse client secret: %w", err))
	}
	if cfg.ClientID == "" {
		return nil, apperrors.New(apperrors.KindUnreadableClientSecret, "", errors.New("client secret has no client_id"))
	}
	return &ClientSecret{config: cfg}, nil
}

// OAuthConfig returns a fresh config for the read-only Drive scope that
// redirects to redirectURL.
func (c *ClientSecret) OAuthConfig(redirectURL string) *oauth2.Config {
	cfg := *c.config
	cfg.Scopes = []string{Scope}
	cfg.RedirectURL = redirectURL
	// Google's token endpoint takes client credentials in the form body.
	cfg.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &cfg
}

func (c *ClientSecret) ClientID() string {
	return c.config.ClientID
}

// ResetForTesting drops the cached secret.
func ResetForTesting() {
	mu.Lock()
	cached = nil
	mu.Unlock()
}
