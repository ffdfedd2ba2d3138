package drivesync

import (
	"fmt"
	"sort"

	"github.com/dragon-display/dragonsync/internal/gdrive"
)

// FolderTree is the result of a discovery: folder names by id and the child
// folder ids of every expanded folder.
type FolderTree struct {
	RootID   string
	Names    map[string]string
	Children map[string]map[string]struct{}
}

func newFolderTree(rootID string) *FolderTree {
	name := rootID
	if rootID == gdrive.RootID {
		name = gdrive.RootName
	}
	return &FolderTree{
		RootID:   rootID,
		Names:    map[string]string{rootID: name},
		Children: make(map[string]map[string]struct{}),
	}
}

// Len returns the number of known folders, root included.
func (t *FolderTree) Len() int {
	return len(t.Names)
}

// ChildIDs returns the children of id ordered by name, then id.
func (t *FolderTree) ChildIDs(id string) []string {
	set := t.Children[id]
	ids := make([]string, 0, len(set))
	for child := range set {
		ids = append(ids, child)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, nj := t.Names[ids[i]], t.Names[ids[j]]
		if ni != nj {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Validate checks that the root and every child id are named.
func (t *FolderTree) Validate() error {
	if _, ok := t.Names[t.RootID]; !ok {
		return fmt.Errorf("root %q has no name", t.RootID)
	}
	for parent, set := range t.Children {
		if _, ok := t.Names[parent]; !ok {
			return fmt.Errorf("parent %q has no name", parent)
		}
		for child := range set {
			if _, ok := t.Names[child]; !ok {
				return fmt.Errorf("child %q of %q has no name", child, parent)
			}
		}
	}
	return nil
}

// Walk visits the tree depth-first from the root in ChildIDs order. Each
// folder is visited once even if it is listed under several parents.
func (t *FolderTree) Walk(fn func(id, name string, depth int) error) error {
	seen := make(map[string]bool, len(t.Names))
	var visit func(id string, depth int) error
	visit = func(id string, depth int) error {
		if seen[id] {
			return nil
		}
		seen[id] = true
		if err := fn(id, t.Names[id], depth); err != nil {
			return err
		}
		for _, child := range t.ChildIDs(id) {
			if err := visit(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(t.RootID, 0)
}
