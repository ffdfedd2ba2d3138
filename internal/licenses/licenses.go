// Package licenses carries the third-party notices shipped in the binary.
package licenses

import (
	_ "embed"
	"strings"
)

//go:embed embedded/THIRD_PARTY_NOTICES.md
var noticesText string

func NoticesText() string {
	return noticesText
}

// Modules returns the module paths listed in the notices, in file order.
func Modules() []string {
	var mods []string
	for _, line := range strings.Split(noticesText, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- `") {
			continue
		}
		rest := strings.TrimPrefix(line, "- `")
		if end := strings.Index(rest, "`"); end > 0 {
			mods = append(mods, rest[:end])
		}
	}
	return mods
}
