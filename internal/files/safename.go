package files

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafeName validates a remote file name for use as a single local path
// element. Names that would escape the target directory are rejected.
func SafeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	switch trimmed {
	case "", ".", "..":
		return "", fmt.Errorf("unsafe file name %q", name)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("unsafe file name %q: contains a path separator", name)
	}
	if filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("unsafe file name %q: contains a volume name", name)
	}
	return name, nil
}

// Suffixed returns name with _n inserted before its extension.
// Suffixed("map.png", 2) is "map_2.png".
func Suffixed(name string, n int) string {
	if n <= 0 {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", base, n, ext)
}
