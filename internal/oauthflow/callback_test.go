package oauthflow

import (
	"errors"
	"net/url"
	"testing"

	"github.com/dragon-display/dragonsync/internal/apperrors"
)

const driveScope = "https://www.googleapis.com/auth/drive.readonly"

func TestParseCallback_Valid(t *testing.T) {
	raw := "/?state=abc&code=4/0AbC-xyz&scope=" + url.QueryEscape(driveScope)
	cb, err := ParseCallback(raw, driveScope)
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if cb.State != "abc" || cb.Code != "4/0AbC-xyz" || cb.Scope != driveScope {
		t.Fatalf("ParseCallback = %+v", cb)
	}

	multi := "/?state=abc&code=c&scope=" + url.QueryEscape("openid "+driveScope) + "&authuser=0&prompt=consent"
	if _, err := ParseCallback(multi, driveScope); err != nil {
		t.Fatalf("ParseCallback with extra scopes and params: %v", err)
	}
}

func TestParseCallback_Malformed(t *testing.T) {
	scope := url.QueryEscape(driveScope)
	tests := []struct {
		name string
		raw  string
	}{
		{"Empty", ""},
		{"NoQuery", "/"},
		{"MissingState", "/?code=c&scope=" + scope},
		{"EmptyState", "/?state=&code=c&scope=" + scope},
		{"MissingCode", "/?state=s&scope=" + scope},
		{"MissingScope", "/?state=s&code=c"},
		{"WrongScope", "/?state=s&code=c&scope=" + url.QueryEscape("https://www.googleapis.com/auth/drive")},
		{"ScopePrefixOnly", "/?state=s&code=c&scope=" + url.QueryEscape(driveScope+"x")},
		{"WrongPath", "/callback?state=s&code=c&scope=" + scope},
		{"ProviderError", "/?state=s&error=access_denied"},
		{"BadEscape", "/?state=%zz&code=c&scope=" + scope},
		{"Garbage", "not a uri"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCallback(tt.raw, driveScope)
			if !errors.Is(err, apperrors.ErrInvalidCallback) {
				t.Fatalf("ParseCallback(%q) err = %v, want ErrInvalidCallback", tt.raw, err)
			}
		})
	}
}

func TestParseCallback_AccessDeniedMessage(t *testing.T) {
	_, err := ParseCallback("/?error=access_denied&state=s", driveScope)
	if got := apperrors.PublicMessage(err); got != "Access to Google Drive was denied on the consent screen." {
		t.Fatalf("PublicMessage = %q", got)
	}
}
