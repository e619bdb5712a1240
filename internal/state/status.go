package state

import (
	"fmt"
	"strings"
	"time"
)

// TreeStatus renders a one-line summary of the tree service.
func (s *State) TreeStatus() string {
	if s == nil {
		return ""
	}
	return formatTreeStatus(s.Tree)
}

func formatTreeStatus(svc TreeService) string {
	if svc == nil {
		return ""
	}

	stats := svc.Stats()
	parts := []string{
		fmt.Sprintf("Tree: %d pages", stats.Pages),
		fmt.Sprintf("pending %d", stats.Pending),
	}
	if !stats.LastRebuild.IsZero() {
		parts = append(parts, fmt.Sprintf("rebuilt %s", formatRebuildTime(stats.LastRebuild)))
	}

	return strings.Join(parts, " · ")
}

func formatRebuildTime(t time.Time) string {
	return t.Local().Format("15:04")
}
