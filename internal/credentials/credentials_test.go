package credentials

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

func TestStoreRoundTrip(t *testing.T) {
	keyring.MockInit()

	if _, ok, err := Get("strahd"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}
	if GetStatus("strahd") {
		t.Fatalf("expected no stored tokens")
	}

	pair := TokenPair{AccessToken: "ya29.access", RefreshToken: "1//refresh"}
	if err := Save("strahd", pair); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := Get("strahd")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if got != pair {
		t.Fatalf("Get = %+v, want %+v", got, pair)
	}
	if !GetStatus("strahd") {
		t.Fatalf("expected stored tokens")
	}
	if _, ok, _ := Get("phandelver"); ok {
		t.Fatalf("campaigns must not share tokens")
	}

	if err := Delete("strahd"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := Delete("strahd"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if GetStatus("strahd") {
		t.Fatalf("expected tokens to be gone")
	}
}

func TestFromToken_KeepsRefreshToken(t *testing.T) {
	prev := TokenPair{AccessToken: "old", RefreshToken: "1//keep"}

	got := FromToken(&oauth2.Token{AccessToken: "new"}, prev)
	if got.AccessToken != "new" || got.RefreshToken != "1//keep" {
		t.Fatalf("FromToken without refresh = %+v", got)
	}

	got = FromToken(&oauth2.Token{AccessToken: "new", RefreshToken: "1//rotated"}, prev)
	if got.RefreshToken != "1//rotated" {
		t.Fatalf("FromToken with rotation = %+v", got)
	}

	if FromToken(nil, prev) != prev {
		t.Fatalf("FromToken(nil) should return prev")
	}
}

func TestTokenPairNeverPrintsSecrets(t *testing.T) {
	pair := TokenPair{AccessToken: "ya29.secret-access", RefreshToken: "1//secret-refresh"}

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	l.Info("tokens", "pair", pair)

	for _, out := range []string{fmt.Sprint(pair), fmt.Sprintf("%v", pair), buf.String()} {
		if strings.Contains(out, "secret-access") || strings.Contains(out, "secret-refresh") {
			t.Fatalf("token material leaked: %q", out)
		}
	}
}
