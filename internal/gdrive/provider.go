// Package gdrive is the narrow slice of the Google Drive v3 API that the
// sync core needs: folder and file listings and media download.
package gdrive

import (
	"context"
	"io"
	"strings"

	"github.com/dragon-display/dragonsync/internal/credentials"
)

const (
	// RootID is Drive's alias for the top of "My Drive".
	RootID = "root"
	// RootName labels RootID in folder trees.
	RootName = "My Drive"

	FolderMimeType       = "application/vnd.google-apps.folder"
	googleNativeMimeType = "application/vnd.google-apps."
)

// File is a Drive file or folder as returned by a listing.
type File struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
	MD5      string
}

func (f File) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// IsGoogleNative reports Docs, Sheets and similar files that have no binary
// content to download.
func (f File) IsGoogleNative() bool {
	return !f.IsFolder() && strings.HasPrefix(f.MimeType, googleNativeMimeType)
}

// Provider is implemented by Drive and by Fake. Every call authenticates
// with the access token of the pair it is given. Failures are classified
// with apperrors kinds. An empty listing is not an error.
type Provider interface {
	// ListFolders lists non-trashed folders under parentID, or every
	// non-trashed folder when parentID is empty.
	ListFolders(ctx context.Context, tp credentials.TokenPair, parentID string) ([]File, error)
	// ListFiles lists non-trashed, non-folder direct children of parentID.
	ListFiles(ctx context.Context, tp credentials.TokenPair, parentID string) ([]File, error)
	// Open streams the content of fileID. The caller closes the reader.
	Open(ctx context.Context, tp credentials.TokenPair, fileID string) (io.ReadCloser, error)
}
