package oauthflow

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dragon-display/dragonsync/internal/apperrors"
)

// Callback is the authorization response carried by the redirect.
type Callback struct {
	State string
	Code  string
	Scope string
}

func invalidCallback(format string, args ...any) error {
	return apperrors.New(apperrors.KindInvalidCallback, "", fmt.Errorf(format, args...))
}

// ParseCallback extracts state and code from a redirect request URI such as
// "/?state=S&code=C&scope=SCOPES". The granted scopes must include
// wantScope. Every malformed input yields an InvalidCallback error.
func ParseCallback(rawURI, wantScope string) (Callback, error) {
	if !strings.HasPrefix(rawURI, "/?") {
		return Callback{}, invalidCallback("callback is not a root query request")
	}
	u, err := url.ParseRequestURI(rawURI)
	if err != nil {
		return Callback{}, invalidCallback("parse callback: %w", err)
	}
	if u.Path != "/" {
		return Callback{}, invalidCallback("unexpected callback path %q", u.Path)
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return Callback{}, invalidCallback("parse callback query: %w", err)
	}

	if reason := q.Get("error"); reason != "" {
		msg := "Google sign-in did not complete."
		if reason == "access_denied" {
			msg = "Access to Google Drive was denied on the consent screen."
		}
		return Callback{}, apperrors.New(apperrors.KindInvalidCallback, msg, errors.New("provider returned error "+reason))
	}

	cb := Callback{
		State: q.Get("state"),
		Code:  q.Get("code"),
		Scope: q.Get("scope"),
	}
	switch {
	case cb.State == "":
		return Callback{}, invalidCallback("callback has no state")
	case cb.Code == "":
		return Callback{}, invalidCallback("callback has no code")
	case !hasScope(cb.Scope, wantScope):
		return Callback{}, invalidCallback("callback scope %q does not grant %q", cb.Scope, wantScope)
	}
	return cb, nil
}

func hasScope(granted, want string) bool {
	for _, s := range strings.Fields(granted) {
		if s == want {
			return true
		}
	}
	return false
}
