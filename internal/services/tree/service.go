package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Paintersrp/related/internal/content"
	"github.com/Paintersrp/related/internal/pathutil"
)

// ErrClosed signals that the tree service has been shut down and cannot be
// used to produce new snapshots.
var ErrClosed = errors.New("tree service closed")

// ErrUnavailable indicates that the content tree has not been loaded yet.
var ErrUnavailable = errors.New("content tree unavailable")

// Stats captures lightweight instrumentation about the shared tree.
type Stats struct {
	LastRebuild time.Time
	Pending     int
	Pages       int
}

// Service owns the content tree of a workspace and coordinates incremental
// updates coming from the vault watcher.
type Service struct {
	mu          sync.RWMutex
	vault       string
	loader      *content.Loader
	tree        *content.Tree
	pending     map[string]struct{}
	lastRebuild time.Time
	closed      bool
	logger      *zap.Logger

	now    func() time.Time
	stat   func(string) (fs.FileInfo, error)
	maxAge time.Duration
}

// NewService constructs a workspace-scoped tree service rooted at the vault.
func NewService(vault string, cfg content.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	normalized := pathutil.NormalizePath(vault)
	return &Service{
		vault:   normalized,
		loader:  content.NewLoader(normalized, cfg, logger),
		pending: make(map[string]struct{}),
		logger:  logger,
		now:     time.Now,
		stat:    os.Stat,
		maxAge:  time.Hour,
	}
}

// AcquireSnapshot returns a private copy of the content tree. The method
// rebuilds the tree or applies pending updates as needed before cloning it.
func (s *Service) AcquireSnapshot() (*content.Tree, error) {
	if s == nil {
		return nil, ErrUnavailable
	}

	if err := s.ensureFresh(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.tree == nil {
		return nil, ErrUnavailable
	}

	return s.tree.Clone(), nil
}

// QueueUpdate schedules a vault-relative path for incremental reloading.
func (s *Service) QueueUpdate(rel string) {
	if s == nil {
		return
	}

	trimmed := strings.TrimSpace(rel)
	if trimmed == "" {
		return
	}

	normalized := filepath.ToSlash(trimmed)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.pending == nil {
		s.pending = make(map[string]struct{})
	}
	s.pending[normalized] = struct{}{}
}

// Invalidate forces the next snapshot to reload the whole vault.
func (s *Service) Invalidate() {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = nil
}

// Stats returns instrumentation about the tree lifecycle.
func (s *Service) Stats() Stats {
	if s == nil {
		return Stats{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{LastRebuild: s.lastRebuild, Pending: len(s.pending)}
	if s.tree != nil {
		stats.Pages = s.tree.Len()
	}
	return stats
}

// Close releases the service. Subsequent calls to AcquireSnapshot will return
// ErrClosed.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.tree = nil
	s.pending = nil
	return nil
}

func (s *Service) ensureFresh() error {
	if s == nil {
		return ErrUnavailable
	}

	s.mu.RLock()
	closed := s.closed
	needsRebuild := s.tree == nil
	if !needsRebuild && s.maxAge > 0 {
		needsRebuild = s.now().Sub(s.lastRebuild) > s.maxAge
	}
	hasPending := len(s.pending) > 0
	s.mu.RUnlock()

	if closed {
		return ErrClosed
	}

	if needsRebuild {
		if err := s.rebuild(); err != nil {
			return err
		}
	}

	if hasPending {
		if err := s.applyPending(); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) rebuild() error {
	t, err := s.loader.Load()
	if err != nil {
		return fmt.Errorf("load content tree: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.tree = t
	s.lastRebuild = s.now()
	return nil
}

func (s *Service) applyPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.tree == nil {
		return ErrUnavailable
	}
	if len(s.pending) == 0 {
		return nil
	}

	t := s.tree
	pending := s.pending
	s.pending = make(map[string]struct{})

	for rel := range pending {
		abs := filepath.Join(s.vault, filepath.FromSlash(rel))
		normalized := pathutil.NormalizePath(abs)
		if normalized == "" {
			continue
		}

		info, err := s.stat(normalized)
		switch {
		case err == nil && info.IsDir():
			if err := s.upsertDir(t, normalized); err != nil {
				return err
			}
		case err == nil:
			if s.loader.Ignored(rel) {
				continue
			}
			s.upsertNote(t, rel, normalized)
		case errors.Is(err, fs.ErrNotExist):
			s.loader.Forget(normalized)
			t.Remove(rel)
			t.RemoveDir(rel)
		default:
			return fmt.Errorf("stat %s: %w", normalized, err)
		}
	}

	s.logger.Debug("applied pending tree updates", zap.Int("count", len(pending)))
	return nil
}

func (s *Service) upsertNote(t *content.Tree, rel, abs string) {
	page, err := s.loader.LoadPage(abs)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("dropping note that failed to reload",
				zap.String("path", rel), zap.Error(err))
		}
		t.Remove(rel)
		return
	}
	t.Upsert(page)
}

// upsertDir loads every note below a directory that appeared in the vault,
// for instance one moved in from elsewhere.
func (s *Service) upsertDir(t *content.Tree, abs string) error {
	rel, err := pathutil.VaultRelative(s.vault, abs)
	if err != nil {
		return err
	}
	if s.loader.IgnoredDir(rel) {
		return nil
	}

	paths, err := s.loader.NotePathsUnder(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, path := range paths {
		noteRel, err := pathutil.VaultRelative(s.vault, path)
		if err != nil {
			continue
		}
		s.upsertNote(t, noteRel, path)
	}
	return nil
}
