package state

import (
	"testing"
	"time"

	"github.com/Paintersrp/related/internal/content"
	treesvc "github.com/Paintersrp/related/internal/services/tree"
)

type stubTreeService struct {
	stats treesvc.Stats
}

func (s stubTreeService) AcquireSnapshot() (*content.Tree, error) { return nil, nil }
func (s stubTreeService) QueueUpdate(string)                      {}
func (s stubTreeService) Invalidate()                              {}
func (s stubTreeService) Stats() treesvc.Stats                    { return s.stats }
func (s stubTreeService) Close() error                            { return nil }

func TestFormatTreeStatusIncludesRebuild(t *testing.T) {
	t.Parallel()

	rebuilt := time.Date(2024, time.March, 5, 17, 42, 0, 0, time.Local)
	svc := stubTreeService{stats: treesvc.Stats{Pending: 3, Pages: 12, LastRebuild: rebuilt}}

	got := formatTreeStatus(svc)
	want := "Tree: 12 pages · pending 3 · rebuilt 17:42"
	if got != want {
		t.Fatalf("formatTreeStatus mismatch: got %q, want %q", got, want)
	}
}

func TestFormatTreeStatusOmitRebuildWhenZero(t *testing.T) {
	t.Parallel()

	got := formatTreeStatus(stubTreeService{})
	want := "Tree: 0 pages · pending 0"
	if got != want {
		t.Fatalf("formatTreeStatus mismatch: got %q, want %q", got, want)
	}
}

func TestTreeStatusEmptyWithoutService(t *testing.T) {
	t.Parallel()

	if got := (&State{}).TreeStatus(); got != "" {
		t.Fatalf("expected empty status, got %q", got)
	}
	if got := (*State)(nil).TreeStatus(); got != "" {
		t.Fatalf("expected empty status for nil state, got %q", got)
	}
}

func TestSnapshotWithoutVault(t *testing.T) {
	t.Parallel()

	if _, err := (&State{}).Snapshot(); err != ErrNoVault {
		t.Fatalf("expected ErrNoVault, got %v", err)
	}
}
