// Package drivesync counts, discovers and downloads campaign folders on
// Google Drive. Every operation takes the caller's latest token pair and
// returns the pair it ended with, which may have been refreshed on the way.
package drivesync

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/gdrive"
	"github.com/dragon-display/dragonsync/internal/logger"
)

const (
	DefaultMaxDepth   = 64
	DefaultMaxFolders = 50000
	DefaultQPS        = 10
	DefaultBurst      = 5
)

// Refresher performs a single refresh-token exchange.
type Refresher interface {
	Refresh(ctx context.Context, tp credentials.TokenPair) (credentials.TokenPair, error)
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context, tp credentials.TokenPair) (credentials.TokenPair, error)

func (f RefreshFunc) Refresh(ctx context.Context, tp credentials.TokenPair) (credentials.TokenPair, error) {
	return f(ctx, tp)
}

// Client runs one operation at a time per call; it holds no tokens between
// calls.
type Client struct {
	provider   gdrive.Provider
	refresher  Refresher
	limiter    *rate.Limiter
	maxDepth   int
	maxFolders int
}

func NewClient(provider gdrive.Provider, refresher Refresher) *Client {
	return &Client{
		provider:   provider,
		refresher:  refresher,
		limiter:    rate.NewLimiter(rate.Limit(DefaultQPS), DefaultBurst),
		maxDepth:   DefaultMaxDepth,
		maxFolders: DefaultMaxFolders,
	}
}

// SetLimits bounds discovery. Non-positive values keep the defaults.
func (c *Client) SetLimits(maxDepth, maxFolders int) {
	if maxDepth > 0 {
		c.maxDepth = maxDepth
	}
	if maxFolders > 0 {
		c.maxFolders = maxFolders
	}
}

// SetRateLimit throttles provider calls. qps <= 0 disables throttling.
func (c *Client) SetRateLimit(qps float64, burst int) {
	if qps <= 0 {
		c.limiter = nil
		return
	}
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(qps), burst)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return ctx.Err()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.Cancelled(err)
	}
	return nil
}

// refresh turns every refresher failure into ReconnectRequired, except
// cancellation.
func (c *Client) refresh(ctx context.Context, tp credentials.TokenPair) (credentials.TokenPair, error) {
	next, err := c.refresher.Refresh(ctx, tp)
	if err != nil {
		if cancelled(ctx, err) {
			return tp, apperrors.Cancelled(err)
		}
		if !errors.Is(err, apperrors.ErrReconnectRequired) {
			err = apperrors.ReconnectRequired(err)
		}
		return tp, err
	}
	logger.Debug("Refreshed Google Drive tokens")
	return next, nil
}

// retryOnce runs call with tp. If it fails, the pair is refreshed once and
// call runs once more with the new pair. The returned pair is the latest.
// A refresh failure is ReconnectRequired; a failed retry returns the
// provider's error for the caller to map.
func (c *Client) retryOnce(ctx context.Context, tp credentials.TokenPair, what string, call func(context.Context, credentials.TokenPair) error) (credentials.TokenPair, error) {
	err := c.attempt(ctx, tp, call)
	if err == nil {
		return tp, nil
	}
	if cancelled(ctx, err) {
		return tp, apperrors.Cancelled(err)
	}
	logger.Warn("Drive call failed; refreshing tokens and retrying once", "call", what, "error", apperrors.PublicMessage(err))

	next, err := c.refresh(ctx, tp)
	if err != nil {
		return tp, err
	}
	if err := c.attempt(ctx, next, call); err != nil {
		if cancelled(ctx, err) {
			return next, apperrors.Cancelled(err)
		}
		return next, err
	}
	return next, nil
}

func (c *Client) attempt(ctx context.Context, tp credentials.TokenPair, call func(context.Context, credentials.TokenPair) error) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return call(ctx, tp)
}

func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, apperrors.ErrCancelled) || errors.Is(err, context.Canceled)
}
