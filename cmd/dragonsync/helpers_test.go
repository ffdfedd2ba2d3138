package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/drivesync"
	"github.com/dragon-display/dragonsync/internal/gdrive"
	"github.com/dragon-display/dragonsync/internal/prompt"
)

var (
	storedPair    = credentials.TokenPair{AccessToken: "ya29.stored-access", RefreshToken: "1//stored-refresh"}
	refreshedPair = credentials.TokenPair{AccessToken: "ya29.fresh-access", RefreshToken: "1//stored-refresh"}
)

// cliEnv swaps the Drive provider, refresher and keychain for fakes and
// points the campaign file at a temp dir.
type cliEnv struct {
	t          *testing.T
	dir        string
	configPath string
	drive      *gdrive.Fake
	refreshErr error
	refreshes  int
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	keyring.MockInit()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	env := &cliEnv{
		t:          t,
		dir:        dir,
		configPath: filepath.Join(dir, "config", "campaigns.toml"),
		drive:      gdrive.NewFake(),
	}

	prevProvider := newProvider
	prevRefresher := newRefresher
	prevConfirmer := newConfirmer
	newProvider = func() gdrive.Provider { return env.drive }
	newRefresher = func(string) (drivesync.Refresher, error) {
		return drivesync.RefreshFunc(func(_ context.Context, tp credentials.TokenPair) (credentials.TokenPair, error) {
			env.refreshes++
			if env.refreshErr != nil {
				return tp, env.refreshErr
			}
			return refreshedPair, nil
		}), nil
	}
	newConfirmer = func() prompt.Confirmer {
		return prompt.Confirmer{IsInteractive: func() bool { return false }}
	}
	t.Cleanup(func() {
		newProvider = prevProvider
		newRefresher = prevRefresher
		newConfirmer = prevConfirmer
	})
	return env
}

// run executes the root command against the env's campaign file.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	full := append([]string{"--config", e.configPath, "--qps", "0"}, args...)
	return executeCommand(e.t, full...)
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// addConnected registers a campaign with stored tokens.
func (e *cliEnv) addConnected(name string) string {
	e.t.Helper()
	media := filepath.Join(e.dir, name)
	e.mustRun("campaign", "add", name, "--dir", media)
	if err := credentials.Save(name, storedPair); err != nil {
		e.t.Fatalf("Save tokens: %v", err)
	}
	return media
}

func (e *cliEnv) storedTokens(name string) credentials.TokenPair {
	e.t.Helper()
	pair, ok, err := credentials.Get(name)
	if err != nil || !ok {
		e.t.Fatalf("Get tokens: ok=%v err=%v", ok, err)
	}
	return pair
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

var errRevoked = errors.New("invalid_grant")
