package root

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Paintersrp/related/internal/config"
	"github.com/Paintersrp/related/internal/state"
)

func TestRootRunsSubcommandInSelectedWorkspace(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	vault := t.TempDir()
	if err := os.WriteFile(filepath.Join(vault, "a.md"), []byte("---\ntags: go\n---\n"), 0o644); err != nil {
		t.Fatalf("failed to write note: %v", err)
	}
	if err := os.WriteFile(filepath.Join(vault, "b.md"), []byte("---\ntags: go\n---\n"), 0o644); err != nil {
		t.Fatalf("failed to write note: %v", err)
	}

	cfg := &config.Config{
		Workspaces: map[string]*config.Workspace{
			"default": {},
			"notes":   {VaultDir: vault},
		},
		CurrentWorkspace: "default",
	}
	if err := cfg.ActivateWorkspace("default"); err != nil {
		t.Fatalf("failed to activate workspace: %v", err)
	}
	s, err := state.FromConfig(cfg, home)
	if err != nil {
		t.Fatalf("failed to build state: %v", err)
	}
	defer s.Close()

	cmd, err := NewCmdRoot(s)
	if err != nil {
		t.Fatalf("NewCmdRoot returned error: %v", err)
	}
	cmd.SetArgs([]string{"--workspace", "notes", "--log-level", "error", "pages", "a"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("root returned error: %v\noutput: %s", err, out.String())
	}
	if !strings.Contains(out.String(), "Related to a\n  b") {
		t.Fatalf("unexpected output: %s", out.String())
	}
	if s.WorkspaceName != "notes" {
		t.Fatalf("expected notes workspace, got %q", s.WorkspaceName)
	}
}

func TestRootRegistersCommands(t *testing.T) {
	s := &state.State{Config: &config.Config{}}
	cmd, err := NewCmdRoot(s)
	if err != nil {
		t.Fatalf("NewCmdRoot returned error: %v", err)
	}

	for _, name := range []string{"init", "pages", "tags", "tree", "workspace", "query"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Fatalf("expected %s command to be registered", name)
		}
	}
}
