// Package sink receives complete crawl batches. A sink either stores the
// whole batch or returns an error.
package sink

import (
	"context"
	"fmt"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

type Sink interface {
	SaveMany(ctx context.Context, projects []project.Project) error
}

// Multi hands the batch to each sink in order and stops at the first
// failure; later sinks never see a batch an earlier one rejected.
type Multi []Sink

func (m Multi) SaveMany(ctx context.Context, projects []project.Project) error {
	for i, s := range m {
		if err := s.SaveMany(ctx, projects); err != nil {
			return fmt.Errorf("sink %d (%T): %w", i, s, err)
		}
	}
	return nil
}

// batchPlatform names the platform a batch belongs to, "mixed" when it
// spans several.
func batchPlatform(projects []project.Project) string {
	if len(projects) == 0 {
		return "empty"
	}
	first := projects[0].Key().Platform
	for _, p := range projects[1:] {
		if p.Key().Platform != first {
			return "mixed"
		}
	}
	return string(first)
}
