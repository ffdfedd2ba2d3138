package drivesync

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/gdrive"
)

var (
	pairA = credentials.TokenPair{AccessToken: "ya29.A", RefreshToken: "1//A"}
	pairB = credentials.TokenPair{AccessToken: "ya29.B", RefreshToken: "1//B"}
)

// fakeRefresher hands out pairB, or fails when err is set.
type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	next  credentials.TokenPair
	err   error
	// onRefresh runs after a successful refresh, e.g. to make the new
	// access token valid on the fake provider.
	onRefresh func(credentials.TokenPair)
}

func (r *fakeRefresher) Refresh(_ context.Context, tp credentials.TokenPair) (credentials.TokenPair, error) {
	r.mu.Lock()
	r.calls++
	next, err, hook := r.next, r.err, r.onRefresh
	r.mu.Unlock()
	if err != nil {
		return tp, err
	}
	if hook != nil {
		hook(next)
	}
	return next, nil
}

func (r *fakeRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newTestClient(p gdrive.Provider, r Refresher) *Client {
	c := NewClient(p, r)
	c.SetRateLimit(0, 0)
	return c
}

// tokenGate makes exactly one access token valid at a time.
type tokenGate struct {
	mu    sync.Mutex
	valid string
}

func (g *tokenGate) accept(tok string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return tok == g.valid
}

func (g *tokenGate) set(tp credentials.TokenPair) {
	g.mu.Lock()
	g.valid = tp.AccessToken
	g.mu.Unlock()
}

func errTransient() error {
	return apperrors.Transient(errors.New("503 backend error"))
}

func errAuth() error {
	return apperrors.Auth(errors.New("401 invalid credentials"))
}

func collect(events *[]Progress) ProgressFunc {
	return func(p Progress) {
		*events = append(*events, p)
	}
}

func assertKind(t *testing.T, err error, sentinel error) {
	t.Helper()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected %v, got %v", sentinel, err)
	}
}
