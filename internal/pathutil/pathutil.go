package pathutil

import (
	"path/filepath"
	"regexp"
	"strings"
)

// IndexName is the note that stands in for its enclosing directory.
const IndexName = "index"

var orderPrefix = regexp.MustCompile(`^[0-9]+[-_.]`)

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	// Replace Windows separators and collapse redundant separators/segments.
	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// VaultRelative returns the path to target relative to the provided vault directory.
// The returned path always uses forward slashes to simplify downstream processing
// and ensure platform agnosticism.
func VaultRelative(vaultDir, target string) (string, error) {
	base := NormalizePath(vaultDir)
	cleanedTarget := NormalizePath(target)

	rel, err := filepath.Rel(base, cleanedTarget)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// StripOrderPrefix removes a leading sort prefix such as "01-" from a path
// segment. Segments made only of a prefix are returned unchanged.
func StripOrderPrefix(segment string) string {
	stripped := orderPrefix.ReplaceAllString(segment, "")
	if stripped == "" {
		return segment
	}
	return stripped
}

// UIDFromRelative converts a vault-relative note path into a page uid: the
// extension and sort prefixes are dropped and a nested index note takes the
// uid of its directory.
func UIDFromRelative(rel string) string {
	rel = strings.Trim(filepath.ToSlash(NormalizePath(rel)), "/")
	if rel == "" || rel == "." {
		return ""
	}

	parts := strings.Split(rel, "/")
	last := len(parts) - 1
	parts[last] = strings.TrimSuffix(parts[last], filepath.Ext(parts[last]))

	if len(parts) > 1 && strings.EqualFold(parts[last], IndexName) {
		parts = parts[:last]
	}

	for i, part := range parts {
		parts[i] = StripOrderPrefix(part)
	}
	return strings.Join(parts, "/")
}

// UIDFromPath resolves the uid of a note located inside the vault.
func UIDFromPath(vaultDir, target string) (string, error) {
	rel, err := VaultRelative(vaultDir, target)
	if err != nil {
		return "", err
	}
	return UIDFromRelative(rel), nil
}

// UIDDepth reports how many segments a uid has.
func UIDDepth(uid string) int {
	uid = strings.Trim(uid, "/")
	if uid == "" {
		return 0
	}
	return strings.Count(uid, "/") + 1
}
