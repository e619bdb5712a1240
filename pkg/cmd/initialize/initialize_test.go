package initialize

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Paintersrp/related/internal/config"
	"github.com/Paintersrp/related/internal/state"
)

func TestInitStoresVault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	vault := t.TempDir()

	var initErr *config.ConfigInitError
	if err := config.EnsureConfigExists(home); !errors.As(err, &initErr) {
		t.Fatalf("expected ConfigInitError before init, got %v", err)
	}

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	s, err := state.FromConfig(cfg, home)
	if err != nil {
		t.Fatalf("failed to build state: %v", err)
	}
	defer s.Close()

	cmd := NewCmdInit(s)
	cmd.SetArgs([]string{vault})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init returned error: %v\noutput: %s", err, out.String())
	}
	if !strings.Contains(out.String(), vault) {
		t.Fatalf("expected vault in output: %s", out.String())
	}
	if s.Vault != vault || s.Tree == nil {
		t.Fatalf("expected state to pick up the vault, got %q", s.Vault)
	}
	if err := config.EnsureConfigExists(home); err != nil {
		t.Fatalf("expected complete config after init, got %v", err)
	}
}

func TestInitRejectsMissingDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	_ = config.EnsureConfigExists(home)

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	s, err := state.FromConfig(cfg, home)
	if err != nil {
		t.Fatalf("failed to build state: %v", err)
	}

	cmd := NewCmdInit(s)
	cmd.SetArgs([]string{home + "/does-not-exist"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing vault directory")
	}
}
