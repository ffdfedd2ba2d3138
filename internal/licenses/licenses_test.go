package licenses

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNoticesCoverDirectRequires(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "go.mod"))
	if err != nil {
		t.Fatalf("read go.mod: %v", err)
	}
	listed := map[string]bool{}
	for _, m := range Modules() {
		listed[m] = true
	}

	inRequire := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "require (":
			inRequire = true
			continue
		case line == ")":
			inRequire = false
			continue
		}
		if !inRequire || line == "" || strings.HasSuffix(line, "// indirect") {
			continue
		}
		mod := strings.Fields(line)[0]
		if !listed[mod] {
			t.Errorf("go.mod requires %s but THIRD_PARTY_NOTICES.md does not list it", mod)
		}
	}
}
