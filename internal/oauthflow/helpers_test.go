package oauthflow

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dragon-display/dragonsync/internal/secret"
)

type tokenServer struct {
	*httptest.Server

	mu       sync.Mutex
	forms    []url.Values
	fail     bool
	response map[string]any
}

func newTokenServer(t *testing.T, response map[string]any) *tokenServer {
	t.Helper()
	ts := &tokenServer{response: response}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		ts.mu.Lock()
		ts.forms = append(ts.forms, r.PostForm)
		fail := ts.fail
		ts.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
			return
		}
		_ = json.NewEncoder(w).Encode(ts.response)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) setFail(fail bool) {
	ts.mu.Lock()
	ts.fail = fail
	ts.mu.Unlock()
}

func (ts *tokenServer) calls() []url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]url.Values(nil), ts.forms...)
}

func clientSecretJSON(tokenURL string) string {
	return fmt.Sprintf(`{"installed":{
		"client_id":"dragon.apps.googleusercontent.com",
		"client_secret":"GOCSPX-testsecretvalue",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":%q,
		"redirect_uris":["http://localhost"]}}`, tokenURL)
}

// writeClientSecret resets the process-wide cache so the next Load reads
// the returned directory.
func writeClientSecret(t *testing.T, tokenURL string) string {
	t.Helper()
	secret.ResetForTesting()
	t.Cleanup(secret.ResetForTesting)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, secret.FileName), []byte(clientSecretJSON(tokenURL)), 0600); err != nil {
		t.Fatalf("write client secret: %v", err)
	}
	return dir
}

func stubBrowser(t *testing.T, fn func(string) error) {
	t.Helper()
	prev := openBrowser
	openBrowser = fn
	t.Cleanup(func() { openBrowser = prev })
}
