package oauthflow

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/logger"
	"github.com/dragon-display/dragonsync/internal/secret"
)

// Refresher exchanges a refresh token for a new pair.
type Refresher struct {
	Config     *oauth2.Config
	HTTPClient *http.Client
}

func NewRefresher(cs *secret.ClientSecret) *Refresher {
	return &Refresher{Config: cs.OAuthConfig("")}
}

// Refresh performs exactly one refresh-token exchange. Every failure is
// reported as ReconnectRequired, except cancellation of ctx.
func (r *Refresher) Refresh(ctx context.Context, pair credentials.TokenPair) (credentials.TokenPair, error) {
	if !pair.CanRefresh() {
		return pair, apperrors.ReconnectRequired(errors.New("no refresh token stored"))
	}
	// An empty access token makes the source refresh immediately.
	src := r.Config.TokenSource(withHTTPClient(ctx, r.HTTPClient), &oauth2.Token{RefreshToken: pair.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		if ctx.Err() != nil {
			return pair, apperrors.Cancelled(ctx.Err())
		}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			logger.Warn("Token refresh rejected", "status", re.Response.StatusCode, "reason", re.ErrorCode)
		} else {
			logger.Warn("Token refresh failed", "error", err)
		}
		return pair, apperrors.ReconnectRequired(err)
	}
	next := credentials.FromToken(tok, pair)
	if next.RefreshToken != pair.RefreshToken {
		logger.Debug("Provider rotated the refresh token")
	}
	return next, nil
}
