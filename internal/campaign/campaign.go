// Package campaign persists the campaign list: where each campaign's media
// lives locally and which Drive folder it mirrors.
package campaign

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/BurntSushi/toml"

	"github.com/dragon-display/dragonsync/internal/files"
	"github.com/dragon-display/dragonsync/internal/logger"
)

const maxNameLen = 64

type Campaign struct {
	Name           string    `toml:"name"`
	Dir            string    `toml:"dir"`
	SyncFolderID   string    `toml:"sync_folder_id,omitempty"`
	SyncFolderName string    `toml:"sync_folder_name,omitempty"`
	FailedFiles    []string  `toml:"failed_files,omitempty"`
	LastSync       time.Time `toml:"last_sync,omitempty"`
}

type document struct {
	Campaigns []Campaign `toml:"campaign"`
}

// Store is the in-memory view of one campaigns file.
type Store struct {
	path string
	doc  document
}

// DefaultPath is <user config dir>/dragon-display/campaigns.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	return filepath.Join(dir, "dragon-display", "campaigns.toml"), nil
}

// Load reads path. A missing file is an empty store.
func Load(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read campaigns file: %w", err)
	}
	md, err := toml.Decode(string(data), &s.doc)
	if err != nil {
		return nil, fmt.Errorf("parse campaigns file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logger.Warn("Ignoring unknown keys in campaigns file", "path", path, "keys", fmt.Sprint(undecoded))
	}
	return s, nil
}

// Save writes the store atomically with owner-only permissions.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	sort.Slice(s.doc.Campaigns, func(i, j int) bool {
		return s.doc.Campaigns[i].Name < s.doc.Campaigns[j].Name
	})
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s.doc); err != nil {
		return fmt.Errorf("encode campaigns: %w", err)
	}
	return files.AtomicWrite(s.path, buf.Bytes(), 0o600)
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(name string) (Campaign, bool) {
	for _, c := range s.doc.Campaigns {
		if c.Name == name {
			return c, true
		}
	}
	return Campaign{}, false
}

// MustGet is Get with a user-facing error for unknown names.
func (s *Store) MustGet(name string) (Campaign, error) {
	c, ok := s.Get(name)
	if !ok {
		return Campaign{}, fmt.Errorf("campaign %q not found (see 'dragonsync campaign list')", name)
	}
	return c, nil
}

// Put inserts c or replaces the campaign with the same name.
func (s *Store) Put(c Campaign) error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if strings.TrimSpace(c.Dir) == "" {
		return fmt.Errorf("campaign %q has no local directory", c.Name)
	}
	for i := range s.doc.Campaigns {
		if s.doc.Campaigns[i].Name == c.Name {
			s.doc.Campaigns[i] = c
			return nil
		}
	}
	s.doc.Campaigns = append(s.doc.Campaigns, c)
	return nil
}

// Remove deletes the named campaign and reports whether it existed.
func (s *Store) Remove(name string) bool {
	for i, c := range s.doc.Campaigns {
		if c.Name == name {
			s.doc.Campaigns = append(s.doc.Campaigns[:i], s.doc.Campaigns[i+1:]...)
			return true
		}
	}
	return false
}

// List returns the campaigns ordered by name.
func (s *Store) List() []Campaign {
	out := append([]Campaign(nil), s.doc.Campaigns...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValidateName accepts short printable names without surrounding spaces.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("campaign name is empty")
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("campaign name %q has leading or trailing spaces", name)
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("campaign name is longer than %d bytes", maxNameLen)
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("campaign name %q contains a non-printable character", name)
		}
	}
	return nil
}
