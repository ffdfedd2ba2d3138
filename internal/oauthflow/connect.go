// Package oauthflow obtains and refreshes Google Drive tokens: the loopback
// consent flow and the single-shot refresh used by the sync operations.
package oauthflow

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/httpclient"
	"github.com/dragon-display/dragonsync/internal/logger"
	"github.com/dragon-display/dragonsync/internal/loopback"
	"github.com/dragon-display/dragonsync/internal/secret"
)

// DefaultAddr asks for an ephemeral port on localhost.
const DefaultAddr = "localhost:0"

var (
	openBrowser = browser.OpenURL
	newState    = uuid.NewString
)

// Bootstrap runs the browser consent flow once per Connect call.
type Bootstrap struct {
	// SecretDir holds client_secret.json.
	SecretDir string
	// Addr is the loopback listen address. Empty means DefaultAddr.
	Addr string
	// NoBrowser skips launching the system browser.
	NoBrowser bool
	// OnURL receives the consent URL so it can be shown as a fallback link.
	OnURL func(consentURL string)
	// Timeout bounds the wait for the user. Zero waits until ctx is done.
	Timeout time.Duration
	// HTTPClient is used for the code exchange. Nil means the shared client.
	HTTPClient *http.Client
}

// Connect returns a fresh token pair for the read-only Drive scope.
func (b *Bootstrap) Connect(ctx context.Context) (credentials.TokenPair, error) {
	cs, err := secret.Load(b.SecretDir)
	if err != nil {
		return credentials.TokenPair{}, err
	}

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	addr := b.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	srv, err := loopback.Start(addr)
	if err != nil {
		return credentials.TokenPair{}, err
	}
	defer srv.Shutdown()

	cfg := cs.OAuthConfig(srv.RedirectURL())
	state := newState()
	verifier := oauth2.GenerateVerifier()
	consentURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	callbacks := make(chan Callback, 1)
	srv.Arm(func(rawURI string) error {
		cb, err := ParseCallback(rawURI, secret.Scope)
		if err != nil {
			return err
		}
		if subtle.ConstantTimeCompare([]byte(cb.State), []byte(state)) != 1 {
			return invalidCallback("callback state does not match this sign-in")
		}
		select {
		case callbacks <- cb:
		default:
		}
		return nil
	})

	if err := b.present(consentURL); err != nil {
		return credentials.TokenPair{}, err
	}
	logger.Info("Waiting for Google sign-in", "redirect", srv.RedirectURL())

	var cb Callback
	select {
	case cb = <-callbacks:
	case <-ctx.Done():
		return credentials.TokenPair{}, apperrors.Cancelled(ctx.Err())
	}
	if err := srv.Shutdown(); err != nil {
		logger.Debug("OAuth redirect listener shutdown", "error", err)
	}

	tok, err := cfg.Exchange(withHTTPClient(ctx, b.HTTPClient), cb.Code, oauth2.VerifierOption(verifier))
	if err != nil {
		if ctx.Err() != nil {
			return credentials.TokenPair{}, apperrors.Cancelled(ctx.Err())
		}
		return credentials.TokenPair{}, apperrors.New(apperrors.KindTokenExchangeFailed, "", err)
	}
	pair := credentials.FromToken(tok, credentials.TokenPair{})
	if pair.AccessToken == "" {
		return credentials.TokenPair{}, apperrors.New(apperrors.KindTokenExchangeFailed, "", errors.New("token response has no access token"))
	}
	if !pair.CanRefresh() {
		logger.Warn("Google did not return a refresh token; you will need to reconnect when the access token expires")
	}
	logger.Info("Google Drive connected")
	return pair, nil
}

// present hands the consent URL to the caller and the browser. It only
// fails when neither could take it.
func (b *Bootstrap) present(consentURL string) error {
	emitted := false
	if b.OnURL != nil {
		b.OnURL(consentURL)
		emitted = true
	}
	if b.NoBrowser {
		if !emitted {
			return apperrors.New(apperrors.KindBrowserUnavailable, "", errors.New("browser disabled and no URL sink"))
		}
		return nil
	}
	if err := openBrowser(consentURL); err != nil {
		if !emitted {
			return apperrors.New(apperrors.KindBrowserUnavailable, "", err)
		}
		logger.Warn("Could not open a browser; open the printed URL manually", "error", err)
	}
	return nil
}

func withHTTPClient(ctx context.Context, c *http.Client) context.Context {
	if c == nil {
		c = httpclient.GetDefaultClient()
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c)
}
