package drivesync

import (
	"context"
	"errors"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/credentials"
)

// CountFolders returns the number of non-trashed folders in the drive, for
// sizing a progress display before Discover. Any failure that survives one
// refresh and retry is ReconnectRequired.
func (c *Client) CountFolders(ctx context.Context, tp credentials.TokenPair) (int, credentials.TokenPair, error) {
	var count int
	tp, err := c.retryOnce(ctx, tp, "count folders", func(ctx context.Context, tp credentials.TokenPair) error {
		folders, err := c.provider.ListFolders(ctx, tp, "")
		if err != nil {
			return err
		}
		count = len(folders)
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrCancelled) || errors.Is(err, apperrors.ErrReconnectRequired) {
			return 0, tp, err
		}
		return 0, tp, apperrors.ReconnectRequired(err)
	}
	return count, tp, nil
}
