package gdrive

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/dragon-display/dragonsync/internal/apperrors"
	"github.com/dragon-display/dragonsync/internal/credentials"
)

// Fake is an in-memory Provider for tests.
type Fake struct {
	// AcceptToken decides which access tokens are valid. Nil accepts all.
	AcceptToken func(accessToken string) bool

	mu       sync.Mutex
	folders  map[string][]File
	files    map[string][]File
	content  map[string][]byte
	listErrs map[string][]error
	openErrs map[string][]error
	calls    []string
}

var _ Provider = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{
		folders:  make(map[string][]File),
		files:    make(map[string][]File),
		content:  make(map[string][]byte),
		listErrs: make(map[string][]error),
		openErrs: make(map[string][]error),
	}
}

// AddFolder registers a folder under parentID.
func (f *Fake) AddFolder(parentID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders[parentID] = append(f.folders[parentID], File{ID: id, Name: name, MimeType: FolderMimeType})
}

// AddFile registers a binary file under parentID.
func (f *Fake) AddFile(parentID, id, name string, data []byte) {
	sum := md5.Sum(data)
	f.AddFileInfo(parentID, File{
		ID:       id,
		Name:     name,
		MimeType: "application/octet-stream",
		Size:     int64(len(data)),
		MD5:      hex.EncodeToString(sum[:]),
	}, data)
}

// AddFileInfo registers a file with explicit metadata.
func (f *Fake) AddFileInfo(parentID string, file File, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[parentID] = append(f.files[parentID], file)
	f.content[file.ID] = data
}

// FailList makes the next len(errs) listings keyed by key fail in order.
// The key is the parent id, or "*" for the all-folders listing.
func (f *Fake) FailList(key string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErrs[key] = append(f.listErrs[key], errs...)
}

// FailOpen makes the next len(errs) downloads of fileID fail in order.
func (f *Fake) FailOpen(fileID string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErrs[fileID] = append(f.openErrs[fileID], errs...)
}

// Calls returns the call log, e.g. "folders:root", "files:X", "open:Y".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) ListFolders(ctx context.Context, tp credentials.TokenPair, parentID string) ([]File, error) {
	key := parentID
	if key == "" {
		key = "*"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "folders:"+key)
	if err := f.check(ctx, tp, f.listErrs, key); err != nil {
		return nil, err
	}
	if parentID != "" {
		return append([]File(nil), f.folders[parentID]...), nil
	}
	var all []File
	parents := make([]string, 0, len(f.folders))
	for p := range f.folders {
		parents = append(parents, p)
	}
	sort.Strings(parents)
	for _, p := range parents {
		all = append(all, f.folders[p]...)
	}
	return all, nil
}

func (f *Fake) ListFiles(ctx context.Context, tp credentials.TokenPair, parentID string) ([]File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "files:"+parentID)
	if err := f.check(ctx, tp, f.listErrs, parentID); err != nil {
		return nil, err
	}
	return append([]File(nil), f.files[parentID]...), nil
}

func (f *Fake) Open(ctx context.Context, tp credentials.TokenPair, fileID string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "open:"+fileID)
	if err := f.check(ctx, tp, f.openErrs, fileID); err != nil {
		return nil, err
	}
	data, ok := f.content[fileID]
	if !ok {
		return nil, apperrors.New(apperrors.KindBadRequest, "Google Drive item not found (404).", errors.New("fake: no such file "+fileID))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *Fake) check(ctx context.Context, tp credentials.TokenPair, queued map[string][]error, key string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Cancelled(err)
	}
	if f.AcceptToken != nil && !f.AcceptToken(tp.AccessToken) {
		return apperrors.Auth(errors.New("fake: access token rejected"))
	}
	if errs := queued[key]; len(errs) > 0 {
		queued[key] = errs[1:]
		return errs[0]
	}
	return nil
}
