package tree

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Paintersrp/related/internal/config"
	"github.com/Paintersrp/related/internal/state"
)

func newState(t *testing.T, vault string) *state.State {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := &config.Config{
		Workspaces:       map[string]*config.Workspace{"default": {VaultDir: vault}},
		CurrentWorkspace: "default",
	}
	if err := cfg.ActivateWorkspace("default"); err != nil {
		t.Fatalf("failed to activate workspace: %v", err)
	}
	s, err := state.FromConfig(cfg, os.Getenv("HOME"))
	if err != nil {
		t.Fatalf("failed to build state: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTreeCommand(t *testing.T) {
	vault := t.TempDir()
	for name, body := range map[string]string{
		"guide/index.md":  "# Guide\n",
		"guide/setup.md":  "# Setup\n",
		"guide/_notes.md": "# Notes\n",
	} {
		path := filepath.Join(vault, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write note: %v", err)
		}
	}
	s := newState(t, vault)

	run := func(args ...string) string {
		t.Helper()
		cmd := NewCmdTree(s)
		cmd.SetArgs(append([]string{}, args...))
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		if err := cmd.Execute(); err != nil {
			t.Fatalf("tree returned error: %v\noutput: %s", err, out.String())
		}
		return out.String()
	}

	if got, want := run(), "guide\n  guide/setup\n"; got != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
	if got, want := run("--all"), "guide\n  guide/_notes (hidden)\n  guide/setup\n"; got != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", got, want)
	}

	var records []pageRecord
	if err := json.Unmarshal([]byte(run("--all", "--json")), &records); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(records) != 3 || records[1].UID != "guide/_notes" || records[1].Visible {
		t.Fatalf("unexpected records: %#v", records)
	}
}

func TestTreeCommandRequiresVault(t *testing.T) {
	s := newState(t, "")
	cmd := NewCmdTree(s)
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err != state.ErrNoVault {
		t.Fatalf("expected ErrNoVault, got %v", err)
	}
}
