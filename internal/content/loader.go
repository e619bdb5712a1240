package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	pathpkg "path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Paintersrp/related/internal/cache"
	"github.com/Paintersrp/related/internal/pathutil"
)

const defaultCacheSize = 4096

// Config describes how a vault is read.
type Config struct {
	// IgnoredFolders contains directory names that should be skipped when
	// loading. Paths containing any of these folders are not part of the tree.
	IgnoredFolders []string
	// Separator splits keyword fields. Defaults to ",".
	Separator string
	// Strict turns malformed front matter into a load error instead of
	// skipping the note.
	Strict bool
	// CacheSize bounds the number of parsed notes kept between loads.
	CacheSize int
}

type cachedPage struct {
	modTime time.Time
	size    int64
	page    *Page
}

// Loader reads markdown notes from a vault directory into a Tree.
type Loader struct {
	root   string
	cfg    Config
	logger *zap.Logger
	cache  *cache.LRUCache[string, cachedPage]
}

// NewLoader constructs a loader rooted at the provided directory. A nil
// logger discards diagnostics.
func NewLoader(root string, cfg Config, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	return &Loader{
		root:   pathutil.NormalizePath(root),
		cfg:    cfg,
		logger: logger,
		cache:  cache.NewLRUCache[string, cachedPage](size),
	}
}

func (l *Loader) Root() string { return l.root }

func (l *Loader) Tokenizer() Tokenizer {
	return Tokenizer{Separator: l.cfg.Separator}
}

// Load walks the vault and returns a freshly built tree.
func (l *Loader) Load() (*Tree, error) {
	paths, err := l.CollectNotePaths()
	if err != nil {
		return nil, err
	}

	pages := make([]*Page, 0, len(paths))
	for _, path := range paths {
		p, err := l.LoadPage(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if !l.cfg.Strict && errors.Is(err, errFrontMatter) {
				l.logger.Warn("skipping note with malformed front matter",
					zap.String("path", path), zap.Error(err))
				continue
			}
			return nil, err
		}
		pages = append(pages, p)
	}

	tree := NewTree(l.root, l.Tokenizer(), pages)
	if tree.Len() < len(pages) {
		l.logger.Debug("notes sharing a uid were dropped",
			zap.Int("loaded", len(pages)), zap.Int("indexed", tree.Len()))
	}
	l.logger.Debug("vault loaded", zap.String("root", l.root), zap.Int("pages", tree.Len()))
	return tree, nil
}

// CollectNotePaths returns the markdown files of the vault, skipping hidden
// and ignored directories.
func (l *Loader) CollectNotePaths() ([]string, error) {
	if l.root == "" {
		return nil, errors.New("vault directory cannot be empty")
	}
	return l.collect(l.root)
}

// NotePathsUnder returns the markdown files below a directory of the vault.
// The directory may be absolute or vault-relative.
func (l *Loader) NotePathsUnder(dir string) ([]string, error) {
	abs := pathutil.NormalizePath(dir)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(l.root, abs)
	}
	if rel, err := pathutil.VaultRelative(l.root, abs); err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("content: %s is outside the vault", abs)
	}
	return l.collect(abs)
}

func (l *Loader) collect(start string) ([]string, error) {
	ignored := l.ignoredSet()
	paths := make([]string, 0)
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == l.root {
				return nil
			}
			name := strings.ToLower(d.Name())
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if _, skip := ignored[name]; skip {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("content: walking %s: %w", start, err)
	}

	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) ignoredSet() map[string]struct{} {
	ignored := make(map[string]struct{}, len(l.cfg.IgnoredFolders))
	for _, dir := range l.cfg.IgnoredFolders {
		if trimmed := strings.TrimSpace(dir); trimmed != "" {
			ignored[strings.ToLower(trimmed)] = struct{}{}
		}
	}
	return ignored
}

// Ignored reports whether a vault-relative path falls under a hidden or
// ignored directory, or is not a markdown note.
func (l *Loader) Ignored(rel string) bool {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || !strings.EqualFold(filepath.Ext(rel), ".md") {
		return true
	}
	return l.IgnoredDir(pathpkg.Dir(rel))
}

// IgnoredDir reports whether a vault-relative directory, or one of its
// parents, is hidden or ignored. The vault root itself is never ignored.
func (l *Loader) IgnoredDir(rel string) bool {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return false
	}
	ignored := l.ignoredSet()
	for _, dir := range strings.Split(rel, "/") {
		lower := strings.ToLower(dir)
		if strings.HasPrefix(lower, ".") {
			return true
		}
		if _, skip := ignored[lower]; skip {
			return true
		}
	}
	return false
}

var errFrontMatter = errors.New("malformed front matter")

// LoadPage parses a single note. Absolute paths and vault-relative paths are
// both accepted.
func (l *Loader) LoadPage(path string) (*Page, error) {
	abs := pathutil.NormalizePath(path)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(l.root, abs)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	if cached, ok := l.cache.Get(abs); ok &&
		cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cached.page.clone(), nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	rel, err := pathutil.VaultRelative(l.root, abs)
	if err != nil {
		return nil, fmt.Errorf("content: loading %s: %w", abs, err)
	}

	fm, body := splitFrontMatter(data)
	fields, err := parseFrontMatter(fm, l.Tokenizer().joiner())
	if err != nil {
		return nil, fmt.Errorf("content: loading %s: %w: %v", abs, errFrontMatter, err)
	}

	uid := pathutil.UIDFromRelative(rel)
	p := &Page{
		uid:     uid,
		path:    abs,
		rel:     rel,
		depth:   pathutil.UIDDepth(uid),
		title:   pageTitle(fields, body, rel),
		fields:  fields,
		hidden:  isHidden(fields, rel),
		modTime: info.ModTime().UTC(),
	}

	l.cache.Put(abs, cachedPage{modTime: info.ModTime(), size: info.Size(), page: p})
	return p.clone(), nil
}

// Forget drops a note from the parse cache.
func (l *Loader) Forget(path string) {
	abs := pathutil.NormalizePath(path)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(l.root, abs)
	}
	l.cache.Remove(abs)
}

func pageTitle(fields map[string]string, body []byte, rel string) string {
	if title := strings.TrimSpace(fields["title"]); title != "" {
		return title
	}
	if heading := firstHeading(body); heading != "" {
		return heading
	}
	base := filepath.Base(rel)
	return pathutil.StripOrderPrefix(strings.TrimSuffix(base, filepath.Ext(base)))
}

func isHidden(fields map[string]string, rel string) bool {
	if v, ok := fields["visible"]; ok && isFalse(v) {
		return true
	}
	if isTrue(fields["draft"]) || isTrue(fields["hidden"]) {
		return true
	}
	for _, segment := range strings.Split(rel, "/") {
		if strings.HasPrefix(segment, "_") {
			return true
		}
	}
	return false
}
