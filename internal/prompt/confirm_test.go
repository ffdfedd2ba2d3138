package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm_NonInteractive(t *testing.T) {
	c := Confirmer{
		In:            bytes.NewBufferString("y\n"),
		Out:           nil,
		IsInteractive: func() bool { return false },
	}
	ok, err := c.Confirm("Remove campaign?", false)
	if err == nil {
		t.Fatalf("expected error for non-interactive confirm, got ok=%v", ok)
	}
}

func TestConfirm_Force(t *testing.T) {
	c := Confirmer{
		In:            bytes.NewBufferString("n\n"),
		Out:           nil,
		IsInteractive: func() bool { return false },
	}
	ok, err := c.Confirm("Remove campaign?", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true for forced confirm")
	}
}

func TestConfirm_Interactive(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"y", true},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			c := Confirmer{
				In:            bytes.NewBufferString(tt.input),
				IsInteractive: func() bool { return true },
			}
			ok, err := c.Confirm("Continue?", false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Fatalf("Confirm(%q) = %v, want %v", tt.input, ok, tt.want)
			}
		})
	}
}

func TestConfirmRemoval_PrintsQuestion(t *testing.T) {
	var out bytes.Buffer
	c := Confirmer{
		In:            bytes.NewBufferString("n\n"),
		Out:           &out,
		IsInteractive: func() bool { return true },
	}
	if _, err := c.ConfirmRemoval(`campaign "strahd"`, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), `Remove campaign "strahd"?`) {
		t.Fatalf("question not printed: %q", out.String())
	}
}
