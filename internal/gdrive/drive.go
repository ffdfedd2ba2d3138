package gdrive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/httpclient"
)

const (
	pageSize   = 1000
	listFields = googleapi.Field("nextPageToken, files(id, name, mimeType, size, md5Checksum)")
)

// Drive talks to the Drive v3 REST API.
type Drive struct {
	base     *http.Client
	endpoint string
}

var _ Provider = (*Drive)(nil)

// NewDrive returns a Drive provider. A nil base uses the shared HTTP client;
// a non-empty endpoint overrides the API base URL.
func NewDrive(base *http.Client, endpoint string) *Drive {
	if base == nil {
		base = httpclient.GetDefaultClient()
	}
	return &Drive{base: base, endpoint: endpoint}
}

func (d *Drive) service(ctx context.Context, tp credentials.TokenPair) (*drive.Service, error) {
	// The token source is static: refreshing is the caller's decision.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tp.Token()))
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if d.endpoint != "" {
		opts = append(opts, option.WithEndpoint(d.endpoint))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}

func (d *Drive) ListFolders(ctx context.Context, tp credentials.TokenPair, parentID string) ([]File, error) {
	q := fmt.Sprintf("mimeType = '%s' and trashed = false", FolderMimeType)
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}
	return d.list(ctx, tp, "list folders", q)
}

func (d *Drive) ListFiles(ctx context.Context, tp credentials.TokenPair, parentID string) ([]File, error) {
	q := fmt.Sprintf("mimeType != '%s' and trashed = false and '%s' in parents", FolderMimeType, escapeQuery(parentID))
	return d.list(ctx, tp, "list files", q)
}

func (d *Drive) list(ctx context.Context, tp credentials.TokenPair, op, q string) ([]File, error) {
	svc, err := d.service(ctx, tp)
	if err != nil {
		return nil, classifyDriveError(op, err)
	}
	var out []File
	err = svc.Files.List().
		Q(q).
		Spaces("drive").
		Fields(listFields).
		PageSize(pageSize).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				out = append(out, fromAPI(f))
			}
			return nil
		})
	if err != nil {
		return nil, classifyDriveError(op, err)
	}
	return out, nil
}

func (d *Drive) Open(ctx context.Context, tp credentials.TokenPair, fileID string) (io.ReadCloser, error) {
	svc, err := d.service(ctx, tp)
	if err != nil {
		return nil, classifyDriveError("download", err)
	}
	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, classifyDriveError("download", err)
	}
	return &classifiedBody{ReadCloser: resp.Body}, nil
}

// classifiedBody tags mid-stream read failures as transient.
type classifiedBody struct {
	io.ReadCloser
}

func (b *classifiedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		return n, classifyDriveError("download", err)
	}
	return n, err
}

func fromAPI(f *drive.File) File {
	return File{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     f.Size,
		MD5:      f.Md5Checksum,
	}
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
