package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	// Provider classification kinds.
	KindTransient  Kind = "transient"
	KindRateLimit  Kind = "rate_limit"
	KindAuth       Kind = "auth"
	KindBadRequest Kind = "bad_request"

	// Sync core kinds. Each has a matching sentinel below.
	KindMissingClientSecret    Kind = "missing_client_secret"
	KindUnreadableClientSecret Kind = "unreadable_client_secret"
	KindListenerUnavailable    Kind = "listener_unavailable"
	KindInvalidCallback        Kind = "invalid_callback"
	KindBrowserUnavailable     Kind = "browser_unavailable"
	KindTokenExchangeFailed    Kind = "token_exchange_failed"
	KindReconnectRequired      Kind = "reconnect_required"
	KindProviderUnreachable    Kind = "provider_unreachable"
	KindLimitExceeded          Kind = "limit_exceeded"
	KindCancelled              Kind = "cancelled"
)

// Sentinels for errors.Is matching. An *Error of the corresponding kind
// matches its sentinel even when it wraps an unrelated cause.
var (
	ErrMissingClientSecret    = errors.New("client secret file is missing")
	ErrUnreadableClientSecret = errors.New("client secret file is unreadable")
	ErrListenerUnavailable    = errors.New("oauth redirect listener unavailable")
	ErrInvalidCallback        = errors.New("invalid oauth callback")
	ErrBrowserUnavailable     = errors.New("consent url could not be presented")
	ErrTokenExchangeFailed    = errors.New("token exchange failed")
	ErrReconnectRequired      = errors.New("reconnect required")
	ErrProviderUnreachable    = errors.New("provider unreachable")
	ErrLimitExceeded          = errors.New("limit exceeded")
	ErrCancelled              = errors.New("cancelled")
)

var sentinels = map[Kind]error{
	KindMissingClientSecret:    ErrMissingClientSecret,
	KindUnreadableClientSecret: ErrUnreadableClientSecret,
	KindListenerUnavailable:    ErrListenerUnavailable,
	KindInvalidCallback:        ErrInvalidCallback,
	KindBrowserUnavailable:     ErrBrowserUnavailable,
	KindTokenExchangeFailed:    ErrTokenExchangeFailed,
	KindReconnectRequired:      ErrReconnectRequired,
	KindProviderUnreachable:    ErrProviderUnreachable,
	KindLimitExceeded:          ErrLimitExceeded,
	KindCancelled:              ErrCancelled,
}

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindTransient:
		return "Temporary upstream error. Please try again."
	case KindRateLimit:
		return "Rate limit exceeded. Please try again later."
	case KindAuth:
		return "Authentication with Google Drive failed."
	case KindBadRequest:
		return "Request rejected by Google Drive."
	case KindMissingClientSecret:
		return "client_secret.json was not found. Place it in the working directory."
	case KindUnreadableClientSecret:
		return "client_secret.json could not be read as a Google OAuth client secret."
	case KindListenerUnavailable:
		return "The local OAuth redirect listener could not be started."
	case KindInvalidCallback:
		return "The OAuth redirect did not contain a valid authorization response."
	case KindBrowserUnavailable:
		return "The consent page could not be opened or displayed."
	case KindTokenExchangeFailed:
		return "Exchanging the authorization code for tokens failed."
	case KindReconnectRequired:
		return "Google Drive access expired or was revoked. Please reconnect."
	case KindProviderUnreachable:
		return "Google Drive could not be reached. Please try again."
	case KindLimitExceeded:
		return "The folder tree exceeds the configured limits."
	case KindCancelled:
		return "Operation cancelled."
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func Transient(err error) error {
	return New(KindTransient, "", err)
}

func RateLimit(err error) error {
	return New(KindRateLimit, "", err)
}

func Auth(err error) error {
	return New(KindAuth, "", err)
}

func BadRequest(err error) error {
	return New(KindBadRequest, "", err)
}

func ReconnectRequired(err error) error {
	return New(KindReconnectRequired, "", err)
}

func ProviderUnreachable(err error) error {
	return New(KindProviderUnreachable, "", err)
}

func Cancelled(err error) error {
	return New(KindCancelled, "", err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindTransient || e.Kind == KindRateLimit
}

func IsRateLimit(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindRateLimit
}

// IsAuth reports whether err is an authentication-class provider failure.
func IsAuth(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindAuth
}
