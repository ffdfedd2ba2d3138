package drivesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/gdrive"
	"github.com/dragon-display/dragonsync/internal/logger"
)

// discovery owns the tree and the current token pair for one Discover call.
type discovery struct {
	c        *Client
	tree     *FolderTree
	tp       credentials.TokenPair
	progress ProgressFunc
	expanded map[string]bool
}

// Discover builds the folder tree under rootID depth-first. Each folder's
// children are recorded before they are expanded, and progress receives a
// delta per listing. The tree is returned whole or not at all.
func (c *Client) Discover(ctx context.Context, tp credentials.TokenPair, rootID string, progress ProgressFunc) (*FolderTree, credentials.TokenPair, error) {
	if rootID == "" {
		rootID = gdrive.RootID
	}
	d := &discovery{
		c:        c,
		tree:     newFolderTree(rootID),
		tp:       tp,
		progress: progress,
		expanded: make(map[string]bool),
	}
	if err := d.expand(ctx, rootID, 0); err != nil {
		return nil, d.tp, err
	}
	logger.Info("Discovered Drive folders", "root", rootID, "folders", d.tree.Len())
	return d.tree, d.tp, nil
}

func (d *discovery) expand(ctx context.Context, id string, depth int) error {
	if d.expanded[id] {
		logger.Debug("Folder reached twice; not expanding again", "folder_id", id)
		return nil
	}
	d.expanded[id] = true

	children, err := d.list(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 && depth+1 > d.c.maxDepth {
		return apperrors.New(apperrors.KindLimitExceeded, fmt.Sprintf("The folder tree is deeper than %d levels.", d.c.maxDepth), nil)
	}

	set := make(map[string]struct{}, len(children))
	for _, f := range children {
		set[f.ID] = struct{}{}
		d.tree.Names[f.ID] = f.Name
	}
	d.tree.Children[id] = set
	if d.tree.Len() > d.c.maxFolders {
		return apperrors.New(apperrors.KindLimitExceeded, fmt.Sprintf("The folder tree has more than %d folders.", d.c.maxFolders), nil)
	}
	d.progress.delta(len(children))

	for _, f := range children {
		if err := d.expand(ctx, f.ID, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (d *discovery) list(ctx context.Context, id string) ([]gdrive.File, error) {
	var children []gdrive.File
	tp, err := d.c.retryOnce(ctx, d.tp, "list folders", func(ctx context.Context, tp credentials.TokenPair) error {
		folders, err := d.c.provider.ListFolders(ctx, tp, id)
		if err != nil {
			return err
		}
		children = children[:0]
		for _, f := range folders {
			if f.ID == "" || f.ID == id {
				continue
			}
			children = append(children, f)
		}
		return nil
	})
	d.tp = tp
	if err != nil {
		if errors.Is(err, apperrors.ErrCancelled) || errors.Is(err, apperrors.ErrReconnectRequired) {
			return nil, err
		}
		return nil, apperrors.ProviderUnreachable(fmt.Errorf("list children of %s: %w", id, err))
	}
	return children, nil
}
