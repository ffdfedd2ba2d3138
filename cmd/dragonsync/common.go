package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/campaign"
	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/drivesync"
	"github.com/dragon-display/dragonsync/internal/gdrive"
	"github.com/dragon-display/dragonsync/internal/logger"
	"github.com/dragon-display/dragonsync/internal/oauthflow"
	"github.com/dragon-display/dragonsync/internal/prompt"
	"github.com/dragon-display/dragonsync/internal/secret"
)

var (
	isTerminal   = term.IsTerminal
	newConfirmer = prompt.DefaultConfirmer
	newProvider  = func() gdrive.Provider {
		return gdrive.NewDrive(nil, "")
	}
	newRefresher = func(secretDir string) (drivesync.Refresher, error) {
		cs, err := secret.Load(secretDir)
		if err != nil {
			return nil, err
		}
		return oauthflow.NewRefresher(cs), nil
	}
	runConnect = func(ctx context.Context, b *oauthflow.Bootstrap) (credentials.TokenPair, error) {
		return b.Connect(ctx)
	}
)

func openStore(opts *globalOptions) (*campaign.Store, error) {
	path := opts.configPath
	if path == "" {
		var err error
		path, err = campaign.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return campaign.Load(path)
}

// session is one campaign with its stored tokens, loaded for a command that
// talks to Drive.
type session struct {
	store    *campaign.Store
	campaign campaign.Campaign
	tokens   credentials.TokenPair
}

func openSession(opts *globalOptions, name string) (*session, error) {
	store, err := openStore(opts)
	if err != nil {
		return nil, err
	}
	c, err := store.MustGet(name)
	if err != nil {
		return nil, err
	}
	tp, ok, err := credentials.Get(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reconnectHint(name, apperrors.ReconnectRequired(errors.New("no tokens stored")))
	}
	return &session{store: store, campaign: c, tokens: tp}, nil
}

// keep stores tp as the campaign's latest pair. It runs after every
// provider call, including failed ones, since a refresh may have rotated
// the pair before the failure.
func (s *session) keep(tp credentials.TokenPair) error {
	if tp.IsZero() || tp == s.tokens {
		return nil
	}
	if err := credentials.Save(s.campaign.Name, tp); err != nil {
		return fmt.Errorf("save refreshed tokens: %w", err)
	}
	s.tokens = tp
	logger.Debug("Saved refreshed tokens", "campaign", s.campaign.Name)
	return nil
}

// finish saves tp and merges a save failure into opErr.
func (s *session) finish(tp credentials.TokenPair, opErr error) error {
	saveErr := s.keep(tp)
	if opErr != nil {
		return errors.Join(reconnectHint(s.campaign.Name, opErr), saveErr)
	}
	return saveErr
}

func newSyncClient(opts *globalOptions) (*drivesync.Client, error) {
	refresher, err := newRefresher(opts.secretDir)
	if err != nil {
		return nil, err
	}
	client := drivesync.NewClient(newProvider(), refresher)
	client.SetRateLimit(opts.qps, drivesync.DefaultBurst)
	return client, nil
}

// reconnectHint tells the user how to recover from revoked or expired access.
func reconnectHint(name string, err error) error {
	if errors.Is(err, apperrors.ErrReconnectRequired) {
		return fmt.Errorf("reconnect required: run `dragonsync connect %s`: %w", name, err)
	}
	return err
}

// newProgressBar renders drivesync progress on w. The bar stays hidden
// unless stderr is a terminal.
func newProgressBar(w io.Writer, desc string) (*progressbar.ProgressBar, drivesync.ProgressFunc) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetVisibility(isTerminal(int(os.Stderr.Fd()))),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	return bar, func(p drivesync.Progress) {
		switch p.Kind {
		case drivesync.ProgressTotal:
			bar.ChangeMax(p.N)
		case drivesync.ProgressDelta:
			_ = bar.Add(p.N)
		}
	}
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Cancellation requested")
		cancel()
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
