package drivesync

import (
	"fmt"
	"strings"
	"testing"
)

func TestFolderTree_WalkAndChildIDs(t *testing.T) {
	tree := newFolderTree("root")
	tree.Names["a"] = "Maps"
	tree.Names["b"] = "Handouts"
	tree.Names["c"] = "Dungeons"
	tree.Children["root"] = map[string]struct{}{"a": {}, "b": {}}
	tree.Children["a"] = map[string]struct{}{"c": {}}
	tree.Children["b"] = map[string]struct{}{}
	tree.Children["c"] = map[string]struct{}{}

	if err := tree.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := tree.ChildIDs("root"); strings.Join(got, ",") != "b,a" {
		t.Fatalf("ChildIDs(root) = %v, want [b a] (by name)", got)
	}

	var lines []string
	err := tree.Walk(func(id, name string, depth int) error {
		lines = append(lines, fmt.Sprintf("%s%s", strings.Repeat("-", depth), name))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := "My Drive|-Handouts|-Maps|--Dungeons"
	if got := strings.Join(lines, "|"); got != want {
		t.Fatalf("Walk = %q, want %q", got, want)
	}
}

func TestFolderTree_ValidateMissingName(t *testing.T) {
	tree := newFolderTree("root")
	tree.Children["root"] = map[string]struct{}{"ghost": {}}
	if err := tree.Validate(); err == nil {
		t.Fatalf("expected Validate to reject an unnamed child")
	}
}

func TestFolderTree_CustomRootName(t *testing.T) {
	tree := newFolderTree("1AbCd")
	if tree.Names["1AbCd"] != "1AbCd" {
		t.Fatalf("root name = %q", tree.Names["1AbCd"])
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Progress, 2)
	sink := ChannelSink(ch)
	sink.total(3)
	sink.delta(1)
	close(ch)

	var got []Progress
	for p := range ch {
		got = append(got, p)
	}
	if len(got) != 2 || got[0] != (Progress{ProgressTotal, 3}) || got[1] != (Progress{ProgressDelta, 1}) {
		t.Fatalf("events = %+v", got)
	}

	var nilSink ProgressFunc
	nilSink.total(1)
	nilSink.delta(1)
}
