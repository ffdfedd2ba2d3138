package cleanup

import (
	"errors"
	"strings"
	"testing"
)

func TestRunAll_LIFOAndErrors(t *testing.T) {
	var order []int
	Register(func() error { order = append(order, 1); return nil })
	Register(nil)
	Register(func() error { order = append(order, 2); return errors.New("close log file") })
	Register(func() error { order = append(order, 3); return nil })

	err := RunAll()
	if err == nil || !strings.Contains(err.Error(), "close log file") {
		t.Fatalf("expected combined error, got %v", err)
	}
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Fatalf("hooks ran in order %v, want [3 2 1]", order)
	}
	if err := RunAll(); err != nil {
		t.Fatalf("second RunAll should be a no-op, got %v", err)
	}
}
