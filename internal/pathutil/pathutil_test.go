package pathutil

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestVaultRelativeReturnsForwardSlashes(t *testing.T) {
	vaultParts := []string{"home", "user", "vault"}
	fileParts := append(append([]string{}, vaultParts...), "subdir", "file.md")

	posixVault := filepath.Join(vaultParts...)
	posixFile := filepath.Join(fileParts...)

	rel, err := VaultRelative(posixVault, posixFile)
	if err != nil {
		t.Fatalf("VaultRelative returned error for POSIX paths: %v", err)
	}
	if rel != "subdir/file.md" {
		t.Fatalf("expected relative path 'subdir/file.md', got %q", rel)
	}

	windowsVault := strings.ReplaceAll(posixVault, string(filepath.Separator), "\\")
	windowsFile := strings.ReplaceAll(posixFile, string(filepath.Separator), "\\")

	rel, err = VaultRelative(windowsVault, windowsFile)
	if err != nil {
		t.Fatalf("VaultRelative returned error for Windows paths: %v", err)
	}
	if rel != "subdir/file.md" {
		t.Fatalf("expected relative path 'subdir/file.md', got %q", rel)
	}
}

func TestUIDFromRelative(t *testing.T) {
	tests := map[string]string{
		"note.md":                  "note",
		"docs/intro.md":            "docs/intro",
		"01-docs/02-intro.md":      "docs/intro",
		"docs/index.md":            "docs",
		"docs/Index.md":            "docs",
		"index.md":                 "index",
		"2024/01-notes/idea.md":    "2024/notes/idea",
		"docs\\windows\\child.md":  "docs/windows/child",
		"./nested/../flat.md":      "flat",
		"":                         "",
	}

	for in, want := range tests {
		if got := UIDFromRelative(in); got != want {
			t.Errorf("UIDFromRelative(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUIDFromPath(t *testing.T) {
	vault := filepath.Join("home", "vault")
	note := filepath.Join(vault, "10_projects", "alpha.md")

	uid, err := UIDFromPath(vault, note)
	if err != nil {
		t.Fatalf("UIDFromPath returned error: %v", err)
	}
	if uid != "projects/alpha" {
		t.Fatalf("expected uid 'projects/alpha', got %q", uid)
	}
}

func TestStripOrderPrefixKeepsBareNumbers(t *testing.T) {
	if got := StripOrderPrefix("2024"); got != "2024" {
		t.Fatalf("expected bare number to be kept, got %q", got)
	}
	if got := StripOrderPrefix("03-"); got != "03-" {
		t.Fatalf("expected prefix-only segment to be kept, got %q", got)
	}
	if got := StripOrderPrefix("03.setup"); got != "setup" {
		t.Fatalf("expected 'setup', got %q", got)
	}
}

func TestUIDDepth(t *testing.T) {
	cases := map[string]int{"": 0, "a": 1, "docs/a": 2, "/docs/a/b/": 3}
	for uid, want := range cases {
		if got := UIDDepth(uid); got != want {
			t.Errorf("UIDDepth(%q) = %d, want %d", uid, got, want)
		}
	}
}
