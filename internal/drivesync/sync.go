package drivesync

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/files"
	"github.com/dragon-display/dragonsync/internal/gdrive"
	"github.com/dragon-display/dragonsync/internal/logger"
)

// SyncResult is what one Synchronize call hands back for persistence.
type SyncResult struct {
	// UpdatedTokens is the latest pair, set even when the call fails.
	UpdatedTokens credentials.TokenPair
	// FailedFiles lists remote file names that could not be downloaded.
	FailedFiles []string
	Downloaded  int
	Skipped     int
}

// Synchronize downloads the direct file children of folderID into localDir.
// A failing file is recorded in FailedFiles and the batch continues. An
// authentication failure triggers one refresh and one retry of that file;
// if either fails the call stops with ReconnectRequired.
func (c *Client) Synchronize(ctx context.Context, tp credentials.TokenPair, folderID, localDir string, progress ProgressFunc) (SyncResult, error) {
	res := SyncResult{UpdatedTokens: tp}

	dir, err := prepareDir(localDir)
	if err != nil {
		return res, err
	}

	var remote []gdrive.File
	res.UpdatedTokens, err = c.retryOnce(ctx, tp, "list files", func(ctx context.Context, tp credentials.TokenPair) error {
		listed, err := c.provider.ListFiles(ctx, tp, folderID)
		if err != nil {
			return err
		}
		remote = remote[:0]
		for _, f := range listed {
			if !f.IsFolder() {
				remote = append(remote, f)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrCancelled) || errors.Is(err, apperrors.ErrReconnectRequired) {
			return res, err
		}
		return res, apperrors.ProviderUnreachable(fmt.Errorf("list files of %s: %w", folderID, err))
	}

	logger.Info("Synchronizing folder", "folder_id", folderID, "files", len(remote), "dir", dir)
	progress.total(len(remote))

	names := localNames(remote)
	for _, f := range remote {
		if err := ctx.Err(); err != nil {
			return res, apperrors.Cancelled(err)
		}
		if err := c.syncFile(ctx, &res, f, dir, names[f.ID]); err != nil {
			return res, err
		}
		progress.delta(1)
	}

	if len(res.FailedFiles) > 0 {
		logger.Warn("Some files could not be downloaded", "failed", len(res.FailedFiles))
	}
	logger.Info("Synchronization finished", "downloaded", res.Downloaded, "skipped", res.Skipped, "failed", len(res.FailedFiles))
	return res, nil
}

func prepareDir(localDir string) (string, error) {
	if localDir == "" {
		return "", fmt.Errorf("local directory is empty")
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return "", fmt.Errorf("create local directory: %w", err)
	}
	dir, err := filepath.EvalSymlinks(localDir)
	if err != nil {
		return "", fmt.Errorf("resolve local directory: %w", err)
	}
	return dir, nil
}

// localNames assigns every downloadable file a distinct local name, keyed by
// file id. Files are taken in id order so a name stays with the same file
// across runs. A remote name always belongs to a file that carries it;
// later duplicates get the first free _2, _3, ... suffix. Unsafe names map
// to "".
func localNames(remote []gdrive.File) map[string]string {
	ordered := make([]gdrive.File, 0, len(remote))
	for _, f := range remote {
		if !f.IsGoogleNative() {
			ordered = append(ordered, f)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	names := make(map[string]string, len(ordered))
	taken := make(map[string]bool, len(ordered))
	var dups []gdrive.File
	for _, f := range ordered {
		name, err := files.SafeName(f.Name)
		if err != nil {
			names[f.ID] = ""
			continue
		}
		if taken[name] {
			dups = append(dups, f)
			continue
		}
		taken[name] = true
		names[f.ID] = name
	}
	for _, f := range dups {
		n := 2
		cand := files.Suffixed(f.Name, n)
		for taken[cand] {
			n++
			cand = files.Suffixed(f.Name, n)
		}
		taken[cand] = true
		names[f.ID] = cand
	}
	return names
}

// syncFile returns an error only when the whole batch must stop.
func (c *Client) syncFile(ctx context.Context, res *SyncResult, f gdrive.File, dir, name string) error {
	if f.IsGoogleNative() {
		logger.Warn("Skipping Google document without binary content", "file", f.Name, "mime_type", f.MimeType)
		res.Skipped++
		return nil
	}
	if name == "" {
		logger.Warn("Skipping file with unsafe name", "file", f.Name)
		res.FailedFiles = append(res.FailedFiles, f.Name)
		return nil
	}
	path := filepath.Join(dir, name)

	if f.MD5 != "" {
		if sum, err := files.MD5Hex(path); err == nil && sum == f.MD5 {
			logger.Debug("Local copy is current", "file", name)
			res.Skipped++
			return nil
		}
	}

	err := c.download(ctx, res.UpdatedTokens, f, path)
	if err != nil && apperrors.IsAuth(err) {
		next, rerr := c.refresh(ctx, res.UpdatedTokens)
		if rerr != nil {
			return rerr
		}
		res.UpdatedTokens = next
		err = c.download(ctx, next, f, path)
		if err != nil && apperrors.IsAuth(err) {
			return apperrors.ReconnectRequired(err)
		}
	}
	if err != nil {
		if cancelled(ctx, err) {
			return apperrors.Cancelled(err)
		}
		logger.Warn("Download failed", "file", f.Name, "error", apperrors.PublicMessage(err))
		res.FailedFiles = append(res.FailedFiles, f.Name)
		return nil
	}
	res.Downloaded++
	return nil
}

func (c *Client) download(ctx context.Context, tp credentials.TokenPair, f gdrive.File, path string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	rc, err := c.provider.Open(ctx, tp, f.ID)
	if err != nil {
		return err
	}
	defer rc.Close()

	src := &verifyingReader{r: rc, file: f, hash: md5.New()}
	if _, err := files.AtomicWriteFrom(path, src, 0o644); err != nil {
		return err
	}
	logger.Debug("Downloaded file", "file", filepath.Base(path), "bytes", src.n)
	return nil
}

// verifyingReader fails at EOF when the stream does not match the listed
// size or checksum, so a truncated download never replaces the local copy.
type verifyingReader struct {
	r    io.Reader
	file gdrive.File
	hash hash.Hash
	n    int64
}

func (v *verifyingReader) Read(p []byte) (int, error) {
	n, err := v.r.Read(p)
	v.n += int64(n)
	v.hash.Write(p[:n])
	if err != io.EOF {
		return n, err
	}
	if v.file.Size > 0 && v.n != v.file.Size {
		return n, apperrors.Transient(fmt.Errorf("short download: got %d of %d bytes", v.n, v.file.Size))
	}
	if v.file.MD5 != "" {
		if sum := hex.EncodeToString(v.hash.Sum(nil)); sum != v.file.MD5 {
			return n, apperrors.Transient(fmt.Errorf("checksum mismatch: got %s, want %s", sum, v.file.MD5))
		}
	}
	return n, io.EOF
}
