package main

import (
	"strings"
	"testing"

	"github.com/dragon-display/dragonsync/internal/credentials"
)

func TestTokensStatus_NeverPrintsValues(t *testing.T) {
	env := newCLIEnv(t)
	env.addConnected("strahd")

	out := env.mustRun("tokens", "status", "strahd")
	if !strings.Contains(out, "Found (source=Keychain") {
		t.Fatalf("expected keychain status, got: %s", out)
	}
	for _, secret := range []string{storedPair.AccessToken, storedPair.RefreshToken} {
		if strings.Contains(out, secret) {
			t.Fatalf("status output leaked a token value: %s", out)
		}
	}

	out = env.mustRun("tokens", "status", "unknown")
	if !strings.Contains(out, "Not Found") || !strings.Contains(out, "dragonsync connect unknown") {
		t.Fatalf("expected not found with hint, got: %s", out)
	}
}

func TestTokensDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.addConnected("strahd")

	if _, err := env.run("tokens", "delete", "strahd"); err == nil {
		t.Fatalf("expected delete without -y to fail on non-interactive stdin")
	}
	if !credentials.GetStatus("strahd") {
		t.Fatalf("tokens deleted without confirmation")
	}
	env.mustRun("tokens", "delete", "strahd", "--yes")
	if credentials.GetStatus("strahd") {
		t.Fatalf("tokens still stored after delete")
	}
	// Deleting again is not an error.
	env.mustRun("tokens", "delete", "strahd", "-y")
}
