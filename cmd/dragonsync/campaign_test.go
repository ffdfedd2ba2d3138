package main

import (
	"strings"
	"testing"

	"github.com/dragon-display/dragonsync/internal/campaign"
	"github.com/dragon-display/dragonsync/internal/credentials"
)

func TestCampaignCommands_Lifecycle(t *testing.T) {
	env := newCLIEnv(t)
	media := env.addConnected("strahd")

	out := env.mustRun("campaign", "list")
	if !strings.Contains(out, "strahd") || !strings.Contains(out, "connected") || !strings.Contains(out, "(no sync folder)") {
		t.Fatalf("unexpected list output: %s", out)
	}

	env.mustRun("campaign", "select-folder", "strahd", "1AbC", "--name", "Strahd Media")
	store, err := campaign.Load(env.configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, ok := store.Get("strahd")
	if !ok || c.Dir != media || c.SyncFolderID != "1AbC" || c.SyncFolderName != "Strahd Media" {
		t.Fatalf("stored campaign = %+v", c)
	}

	if _, err := env.run("campaign", "remove", "strahd"); err == nil || !strings.Contains(err.Error(), "use -y") {
		t.Fatalf("expected non-interactive removal to require -y, got %v", err)
	}
	env.mustRun("campaign", "remove", "strahd", "-y")
	if credentials.GetStatus("strahd") {
		t.Fatalf("tokens should be deleted with the campaign")
	}
	if out := env.mustRun("campaign", "list"); !strings.Contains(out, "No campaigns") {
		t.Fatalf("expected empty list, got: %s", out)
	}
}

func TestCampaignAdd_Errors(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("campaign", "add", "phandelver", "--dir", env.dir)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "duplicate", args: []string{"campaign", "add", "phandelver", "--dir", env.dir}, want: "already exists"},
		{name: "missing_dir", args: []string{"campaign", "add", "other"}, want: "--dir is required"},
		{name: "bad_name", args: []string{"campaign", "add", " padded", "--dir", env.dir}, want: "leading or trailing spaces"},
		{name: "unknown_select", args: []string{"campaign", "select-folder", "nope", "1AbC"}, want: "not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.run(tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestSelectFolder_ClearsFailuresOnChange(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("campaign", "add", "strahd", "--dir", env.dir)

	store, err := campaign.Load(env.configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, _ := store.Get("strahd")
	c.SyncFolderID = "old"
	c.FailedFiles = []string{"broken.png"}
	if err := store.Put(c); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	env.mustRun("campaign", "select-folder", "strahd", "new")
	store, _ = campaign.Load(env.configPath)
	c, _ = store.Get("strahd")
	if len(c.FailedFiles) != 0 || c.SyncFolderName != "new" {
		t.Fatalf("campaign after folder change = %+v", c)
	}
}
