package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Paintersrp/related/internal/related"
)

func writeNote(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func uids(pages []related.Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.UID())
	}
	return out
}

func newVault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeNote(t, dir, "02-about.md", "---\ntitle: About\nTags: [me, site]\n---\nabout")
	writeNote(t, dir, "01-docs/index.md", "---\ntags: docs\n---\n# Documentation\n")
	writeNote(t, dir, "01-docs/b.md", "---\ntags: go, cli\n---\nbody")
	writeNote(t, dir, "01-docs/a.md", "---\ntags:\n  - go\n  - yaml\n---\n# Alpha Page\n")
	writeNote(t, dir, "01-docs/deep/c.md", "---\ntags: go\n---\n")
	writeNote(t, dir, "drafts/index.md", "---\ndraft: true\ntags: go\n---\n")
	writeNote(t, dir, "drafts/wip.md", "---\ntags: go\n---\n")
	writeNote(t, dir, "_private.md", "---\ntags: go\n---\n")
	writeNote(t, dir, "off.md", "---\nvisible: false\ntags: go\n---\n")
	writeNote(t, dir, ".obsidian/config.md", "---\ntags: go\n---\n")
	writeNote(t, dir, "archive/old.md", "---\ntags: go\n---\n")
	writeNote(t, dir, "notes.txt", "tags: go")
	return dir
}

func TestLoadBuildsCanonicalOrder(t *testing.T) {
	dir := newVault(t)

	tree, err := NewLoader(dir, Config{IgnoredFolders: []string{"Archive"}}, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"docs",
		"docs/a",
		"docs/b",
		"docs/deep/c",
		"about",
		"_private",
		"drafts",
		"drafts/wip",
		"off",
	}, uids(tree.Index(false)))

	assert.Equal(t, []string{
		"docs",
		"docs/a",
		"docs/b",
		"docs/deep/c",
		"about",
	}, uids(tree.Index(true)))
}

func TestLoadPageFields(t *testing.T) {
	dir := newVault(t)

	tree, err := NewLoader(dir, Config{}, nil).Load()
	require.NoError(t, err)

	about, ok := tree.Page("about")
	require.True(t, ok)
	assert.Equal(t, "me, site", about.Field("tags"))
	assert.Equal(t, "me, site", about.Field("TAGS"))
	assert.Equal(t, "About", about.Title())
	assert.Equal(t, 1, about.Depth())
	assert.Equal(t, "02-about.md", about.Rel())
	assert.Equal(t, "", about.Field("missing"))

	alpha, ok := tree.Page("docs/a")
	require.True(t, ok)
	assert.Equal(t, "Alpha Page", alpha.Title())
	assert.Equal(t, 2, alpha.Depth())
	assert.Equal(t, []string{"go", "yaml"}, tree.SplitKeywords(alpha.Field("Tags")))

	deep, ok := tree.Page("docs/deep/c")
	require.True(t, ok)
	assert.Equal(t, "c", deep.Title())
	assert.Equal(t, 3, deep.Depth())
}

func TestWithActiveResolvesReferences(t *testing.T) {
	dir := newVault(t)
	tree, err := NewLoader(dir, Config{}, nil).Load()
	require.NoError(t, err)

	refs := []string{
		"docs/b",
		"/docs/b",
		"01-docs/b.md",
		filepath.Join(dir, "01-docs", "b.md"),
	}
	for _, ref := range refs {
		view, err := tree.WithActive(ref)
		require.NoError(t, err, ref)
		active := view.ActivePage()
		require.NotNil(t, active, ref)
		assert.Equal(t, "docs/b", active.UID())
		assert.True(t, active.IsActive())
	}

	assert.Nil(t, tree.ActivePage(), "source tree must stay inactive")

	_, err = tree.WithActive("nope")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestTreeSelectsRelatedPages(t *testing.T) {
	dir := newVault(t)
	tree, err := NewLoader(dir, Config{IgnoredFolders: []string{"archive"}}, nil).Load()
	require.NoError(t, err)

	view, err := tree.WithActive("docs/a")
	require.NoError(t, err)

	res := related.Select(view)
	assert.Equal(t, []string{"docs/b", "docs/deep/c"}, res.UIDs())

	res = related.Select(view, related.WithVisibleOnly(false))
	assert.Equal(t, []string{"docs/b", "docs/deep/c", "_private", "drafts", "drafts/wip", "off"}, res.UIDs())

	res = related.Select(view, related.WithStartPath("/docs"), related.WithDepth(1))
	assert.Equal(t, []string{"docs/b"}, res.UIDs())
}

func TestLoadMalformedFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "good.md", "---\ntags: a\n---\n")
	writeNote(t, dir, "bad.md", "---\ntags: [a\n---\n")

	core, logs := observer.New(zap.WarnLevel)
	tree, err := NewLoader(dir, Config{}, zap.New(core)).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, uids(tree.Index(false)))
	assert.Equal(t, 1, logs.FilterMessage("skipping note with malformed front matter").Len())

	_, err = NewLoader(dir, Config{Strict: true}, nil).Load()
	assert.ErrorIs(t, err, errFrontMatter)
}

func TestLoadPageUsesCacheUntilModified(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "note.md", "---\ntags: a\n---\n")
	loader := NewLoader(dir, Config{}, nil)

	first, err := loader.LoadPage(path)
	require.NoError(t, err)
	second, err := loader.LoadPage("note.md")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Field("tags"), second.Field("tags"))

	require.NoError(t, os.WriteFile(path, []byte("---\ntags: b, c\n---\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := loader.LoadPage(path)
	require.NoError(t, err)
	assert.Equal(t, "b, c", third.Field("tags"))
}

func TestTreeUpsertAndRemove(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "---\ntags: k\n---\n")
	loader := NewLoader(dir, Config{}, nil)
	tree, err := loader.Load()
	require.NoError(t, err)

	clone := tree.Clone()

	path := writeNote(t, dir, "sub/b.md", "---\ntags: k\n---\n")
	page, err := loader.LoadPage(path)
	require.NoError(t, err)
	tree.Upsert(page)
	assert.Equal(t, []string{"a", "sub/b"}, uids(tree.Index(true)))
	assert.Equal(t, []string{"a"}, uids(clone.Index(true)))

	tree.RemoveDir("sub")
	assert.Equal(t, []string{"a"}, uids(tree.Index(true)))

	tree.Remove("a.md")
	assert.Zero(t, tree.Len())
}

func TestLoaderIgnored(t *testing.T) {
	loader := NewLoader(t.TempDir(), Config{IgnoredFolders: []string{"archive"}}, nil)

	assert.False(t, loader.Ignored("docs/a.md"))
	assert.True(t, loader.Ignored("Archive/a.md"))
	assert.True(t, loader.Ignored(".git/a.md"))
	assert.True(t, loader.Ignored("docs/image.png"))
	assert.True(t, loader.Ignored(""))
}

func TestTokenizer(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Tokenizer{}.Split(" a, b ,, a "))
	assert.Nil(t, Tokenizer{}.Split("   "))
	assert.Equal(t, []string{"x y", "z"}, Tokenizer{Separator: ";"}.Split("x y; z"))
}

func TestLessRelPutsIndexFirst(t *testing.T) {
	assert.True(t, lessRel("docs/index.md", "docs/a.md"))
	assert.False(t, lessRel("docs/a.md", "docs/index.md"))
	assert.True(t, lessRel("docs/a.md", "docs/b/index.md"))
	assert.True(t, lessRel("a/x.md", "b.md"))
	assert.True(t, lessRel("a.md", "a/b.md"))
	assert.False(t, lessRel("a/b.md", "a.md"))
	assert.True(t, lessRel("a.md", "a-b.md"))
	assert.True(t, lessRel("01-a.md", "01-a/index.md"))
}

func writeFolderChain(t *testing.T, dir string, draft string) {
	t.Helper()
	for _, name := range []string{"a.md", "a/b.md", "a/b/c.md", "a/b/c/d.md", "a/b/c/d/e.md", "intro.md"} {
		body := "---\ntags: go\n---\n"
		if name == draft {
			body = "---\ntags: go\ndraft: true\n---\n"
		}
		writeNote(t, dir, name, body)
	}
}

func TestFolderNotesSortAheadOfTheirChildren(t *testing.T) {
	dir := t.TempDir()
	writeFolderChain(t, dir, "")

	tree, err := NewLoader(dir, Config{}, nil).Load()
	require.NoError(t, err)

	chain := []string{"a", "a/b", "a/b/c", "a/b/c/d", "a/b/c/d/e", "intro"}
	snap := tree.Clone()
	assert.Equal(t, chain, uids(snap.Index(false)))
	assert.Equal(t, chain, uids(snap.Index(true)))

	view, err := snap.WithActive("intro")
	require.NoError(t, err)
	assert.Equal(t, chain[:5], related.Select(view).UIDs())
}

func TestHiddenFolderNoteHidesWholeSubtree(t *testing.T) {
	dir := t.TempDir()
	writeFolderChain(t, dir, "a/b.md")

	tree, err := NewLoader(dir, Config{}, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "intro"}, uids(tree.Index(true)))
	assert.Len(t, tree.Index(false), 6)

	deep, ok := tree.Page("a/b/c/d/e")
	require.True(t, ok)
	assert.False(t, deep.IsVisible())
}

func TestKeywordCounts(t *testing.T) {
	dir := newVault(t)
	tree, err := NewLoader(dir, Config{IgnoredFolders: []string{"archive"}}, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, []KeywordCount{
		{Keyword: "go", Count: 3},
		{Keyword: "cli", Count: 1},
		{Keyword: "docs", Count: 1},
		{Keyword: "me", Count: 1},
		{Keyword: "site", Count: 1},
		{Keyword: "yaml", Count: 1},
	}, tree.KeywordCounts("tags", true))

	all := tree.KeywordCounts("Tags", false)
	require.NotEmpty(t, all)
	assert.Equal(t, KeywordCount{Keyword: "go", Count: 7}, all[0])

	assert.Empty(t, tree.KeywordCounts("missing", false))
}
