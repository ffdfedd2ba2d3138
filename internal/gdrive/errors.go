package gdrive

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/dragon-display/dragonsync/internal/apperrors"
)

var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":        true,
	"userRateLimitExceeded":    true,
	"dailyLimitExceeded":       true,
	"sharingRateLimitExceeded": true,
}

func classifyDriveError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.KindOf(err); ok {
		return err
	}

	wrapped := fmt.Errorf("drive %s failed: %w", op, err)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Cancelled(wrapped)
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return apperrors.New(apperrors.KindAuth, "Google Drive rejected the stored credentials.", wrapped)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == 401:
			return apperrors.New(apperrors.KindAuth, "Google Drive rejected the access token (401).", wrapped)
		case gerr.Code == 429 || (gerr.Code == 403 && hasRateLimitReason(gerr)):
			return apperrors.New(apperrors.KindRateLimit, fmt.Sprintf("Google Drive rate limit exceeded (%d). Please try again later.", gerr.Code), wrapped)
		case gerr.Code == 403:
			return apperrors.New(apperrors.KindBadRequest, "Google Drive denied access to this item (403).", wrapped)
		case gerr.Code == 404:
			return apperrors.New(apperrors.KindBadRequest, "Google Drive item not found (404).", wrapped)
		case gerr.Code >= 500:
			return apperrors.New(apperrors.KindTransient, fmt.Sprintf("Google Drive temporary error (%d). Please retry.", gerr.Code), wrapped)
		default:
			return apperrors.New(apperrors.KindBadRequest, fmt.Sprintf("Google Drive API error (%d).", gerr.Code), wrapped)
		}
	}

	// DNS, socket and timeout failures.
	return apperrors.New(apperrors.KindTransient, "Google Drive request failed due to a temporary network error.", wrapped)
}

func hasRateLimitReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		if rateLimitReasons[item.Reason] {
			return true
		}
	}
	return false
}
