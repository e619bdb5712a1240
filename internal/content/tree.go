package content

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Paintersrp/related/internal/pathutil"
	"github.com/Paintersrp/related/internal/related"
)

// ErrPageNotFound is returned when a page reference cannot be resolved.
var ErrPageNotFound = errors.New("page not found")

// Tree is an ordered, in-memory index of the notes in a vault. It
// implements related.Provider. A Tree is not safe for concurrent mutation;
// callers share clones instead.
type Tree struct {
	root      string
	tokenizer Tokenizer
	pages     []*Page
	byUID     map[string]*Page
	byRel     map[string]*Page
	active    string
}

var _ related.Provider = (*Tree)(nil)

// NewTree builds a tree from loaded pages. Pages are put into canonical
// depth-first order; when two notes resolve to the same uid the first one in
// that order wins.
func NewTree(root string, tokenizer Tokenizer, pages []*Page) *Tree {
	t := &Tree{
		root:      pathutil.NormalizePath(root),
		tokenizer: tokenizer,
		byRel:     make(map[string]*Page, len(pages)),
	}
	for _, p := range pages {
		if p == nil || p.rel == "" {
			continue
		}
		t.byRel[p.rel] = p
	}
	t.reindex()
	return t
}

func (t *Tree) reindex() {
	rels := make([]string, 0, len(t.byRel))
	for rel := range t.byRel {
		rels = append(rels, rel)
	}
	sort.Slice(rels, func(i, j int) bool {
		return lessRel(rels[i], rels[j])
	})

	t.pages = make([]*Page, 0, len(rels))
	t.byUID = make(map[string]*Page, len(rels))
	for _, rel := range rels {
		p := t.byRel[rel]
		if _, dup := t.byUID[p.uid]; dup {
			continue
		}
		t.byUID[p.uid] = p
		t.pages = append(t.pages, p)
	}

	visible := make(map[string]bool, len(t.pages))
	for _, p := range t.pages {
		p.visible = t.resolveVisible(p.uid, visible)
		p.active = t.active != "" && p.uid == t.active
	}
}

// resolveVisible reports whether uid and every ancestor present in the tree
// are visible. Results are memoized in seen.
func (t *Tree) resolveVisible(uid string, seen map[string]bool) bool {
	if v, ok := seen[uid]; ok {
		return v
	}

	v := true
	if p, ok := t.byUID[uid]; ok && p.hidden {
		v = false
	}
	if v {
		if idx := strings.LastIndex(uid, "/"); idx > 0 {
			v = t.resolveVisible(uid[:idx], seen)
		}
	}

	seen[uid] = v
	return v
}

// lessRel orders vault-relative paths depth-first by on-disk name. Names are
// compared without their extension, a note sorts ahead of the directory
// sharing its name, and a directory's index note comes before its siblings.
func lessRel(a, b string) bool {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		aFile := i == len(as)-1
		bFile := i == len(bs)-1
		if as[i] == bs[i] && aFile == bFile {
			continue
		}

		aIndex := aFile && isIndexFile(as[i])
		bIndex := bFile && isIndexFile(bs[i])
		if aIndex != bIndex {
			return aIndex
		}

		aName, bName := segmentName(as[i], aFile), segmentName(bs[i], bFile)
		if aName != bName {
			return aName < bName
		}
		if aFile != bFile {
			return aFile
		}
		return as[i] < bs[i]
	}
	return len(as) < len(bs)
}

func segmentName(segment string, file bool) string {
	if !file {
		return segment
	}
	return strings.TrimSuffix(segment, filepath.Ext(segment))
}

func isIndexFile(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.EqualFold(stem, pathutil.IndexName)
}

// Root returns the vault directory the tree was loaded from.
func (t *Tree) Root() string { return t.root }

func (t *Tree) Len() int { return len(t.pages) }

// Pages returns every page in canonical order.
func (t *Tree) Pages() []*Page {
	return append([]*Page(nil), t.pages...)
}

// Index implements related.Provider.
func (t *Tree) Index(visibleOnly bool) []related.Page {
	out := make([]related.Page, 0, len(t.pages))
	for _, p := range t.pages {
		if visibleOnly && !p.visible {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ActivePage implements related.Provider. It returns nil when no page has
// been activated.
func (t *Tree) ActivePage() related.Page {
	if t.active == "" {
		return nil
	}
	if p, ok := t.byUID[t.active]; ok {
		return p
	}
	return nil
}

// SplitKeywords implements related.Provider.
func (t *Tree) SplitKeywords(raw string) []string {
	return t.tokenizer.Split(raw)
}

func (t *Tree) Tokenizer() Tokenizer { return t.tokenizer }

// Page looks a page up by uid.
func (t *Tree) Page(uid string) (*Page, bool) {
	p, ok := t.byUID[strings.Trim(uid, "/")]
	return p, ok
}

// Resolve turns a uid, vault-relative path or absolute path into the uid of
// a page in the tree.
func (t *Tree) Resolve(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty reference", ErrPageNotFound)
	}

	candidates := make([]string, 0, 3)
	candidates = append(candidates, strings.Trim(filepath.ToSlash(trimmed), "/"))

	if filepath.IsAbs(trimmed) && t.root != "" {
		if uid, err := pathutil.UIDFromPath(t.root, trimmed); err == nil {
			candidates = append(candidates, uid)
		}
	}
	candidates = append(candidates, pathutil.UIDFromRelative(trimmed))

	for _, c := range candidates {
		if _, ok := t.byUID[c]; ok {
			return c, nil
		}
		if p, ok := t.byRel[c]; ok {
			return p.uid, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrPageNotFound, ref)
}

// WithActive returns a copy of the tree in which the referenced page is the
// active page.
func (t *Tree) WithActive(ref string) (*Tree, error) {
	uid, err := t.Resolve(ref)
	if err != nil {
		return nil, err
	}
	c := t.Clone()
	c.active = uid
	c.reindex()
	return c, nil
}

// Upsert adds or replaces the page stored at p.Rel().
func (t *Tree) Upsert(p *Page) {
	if p == nil || p.rel == "" {
		return
	}
	if t.byRel == nil {
		t.byRel = make(map[string]*Page)
	}
	t.byRel[p.rel] = p
	t.reindex()
}

// Remove drops the page stored at the vault-relative path rel.
func (t *Tree) Remove(rel string) {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if _, ok := t.byRel[rel]; !ok {
		return
	}
	delete(t.byRel, rel)
	t.reindex()
}

// RemoveDir drops every page stored below the vault-relative directory.
func (t *Tree) RemoveDir(rel string) {
	prefix := strings.Trim(filepath.ToSlash(rel), "/") + "/"
	removed := false
	for key := range t.byRel {
		if strings.HasPrefix(key, prefix) {
			delete(t.byRel, key)
			removed = true
		}
	}
	if removed {
		t.reindex()
	}
}

// Clone produces an independent copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	c := &Tree{
		root:      t.root,
		tokenizer: t.tokenizer,
		byRel:     make(map[string]*Page, len(t.byRel)),
		active:    t.active,
	}
	for rel, p := range t.byRel {
		c.byRel[rel] = p.clone()
	}
	c.reindex()
	return c
}
