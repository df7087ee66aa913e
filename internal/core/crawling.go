// Package core runs crawlers against listing pages and hands the
// resulting batch to a sink.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baxromumarov/gig-crawler/internal/observability"
	"github.com/baxromumarov/gig-crawler/internal/project"
	"github.com/baxromumarov/gig-crawler/internal/scraper"
	"github.com/baxromumarov/gig-crawler/internal/sink"
)

const (
	DefaultConcurrency = 10
	DefaultPacing      = 500 * time.Millisecond
)

// Summary describes one completed run.
type Summary struct {
	Platform project.Platform `json:"platform"`
	Listed   int              `json:"listed"`
	Fetched  int              `json:"fetched"`
	Hidden   int              `json:"hidden"`
	Duration time.Duration    `json:"duration"`
}

type Option func(*CrawlingService)

// WithConcurrency bounds in-flight page visits. Values below one keep the default.
func WithConcurrency(n int) Option {
	return func(s *CrawlingService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithPacing sets the pause taken after every page visit. Zero disables it.
func WithPacing(d time.Duration) Option {
	return func(s *CrawlingService) {
		if d >= 0 {
			s.pacing = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *CrawlingService) {
		if l != nil {
			s.logger = l
		}
	}
}

type CrawlingService struct {
	crawler     scraper.Crawler
	sink        sink.Sink
	concurrency int
	pacing      time.Duration
	logger      *slog.Logger
}

func NewCrawlingService(c scraper.Crawler, out sink.Sink, opts ...Option) *CrawlingService {
	s := &CrawlingService{
		crawler:     c,
		sink:        out,
		concurrency: DefaultConcurrency,
		pacing:      DefaultPacing,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("platform", string(c.Platform()))
	return s
}

// Run lists every listing URL, fetches each distinct project once and saves
// the batch. Any failure aborts the run and nothing is saved.
func (s *CrawlingService) Run(ctx context.Context, listingURLs []string) (Summary, error) {
	start := time.Now()
	platform := s.crawler.Platform()
	summary := Summary{Platform: platform}

	s.logger.Info("crawl run started", "stage", "list", "listing_urls", len(listingURLs))

	lists := make([][]string, len(listingURLs))
	err := s.fanOut(ctx, len(listingURLs), func(i int) error {
		ids, err := s.crawler.ListProjectIDs(ctx, listingURLs[i])
		if err != nil {
			return err
		}
		observability.IncListingPagesRead(string(platform))
		lists[i] = ids
		return nil
	})
	if err != nil {
		return s.fail(summary, start, "list", err)
	}

	ids := flatten(lists)
	summary.Listed = len(ids)
	s.logger.Info("listing complete", "stage", "list", "projects", len(ids))

	projects := make([]project.Project, len(ids))
	err = s.fanOut(ctx, len(ids), func(i int) error {
		p, err := s.crawler.Detail(ctx, ids[i])
		if err != nil {
			return err
		}
		observability.IncProjectsFetched(string(platform), p.IsHidden())
		projects[i] = p
		return nil
	})
	if err != nil {
		return s.fail(summary, start, "detail", err)
	}

	summary.Fetched = len(projects)
	for _, p := range projects {
		if p.IsHidden() {
			summary.Hidden++
		}
	}

	if err := s.sink.SaveMany(ctx, projects); err != nil {
		return s.fail(summary, start, "sink", fmt.Errorf("save batch: %w", err))
	}
	observability.AddProjectsSaved(len(projects))

	summary.Duration = time.Since(start)
	observability.ObserveRun(true, summary.Duration.Seconds())
	s.logger.Info("crawl run finished",
		"stage", "sink",
		"listed", summary.Listed,
		"fetched", summary.Fetched,
		"hidden", summary.Hidden,
		"duration", summary.Duration,
	)
	return summary, nil
}

// fanOut runs task for 0..n-1 with bounded concurrency. After the first
// failure no new task starts; tasks already in flight are not cancelled and
// settle before the first error is returned.
func (s *CrawlingService) fanOut(ctx context.Context, n int, task func(i int) error) error {
	var (
		g      errgroup.Group
		failed atomic.Bool
	)
	g.SetLimit(s.concurrency)
	for i := 0; i < n; i++ {
		i := i
		if failed.Load() {
			break
		}
		g.Go(func() error {
			if failed.Load() {
				return nil
			}
			err := task(i)
			if err == nil {
				err = s.pause(ctx)
			}
			if err != nil {
				failed.Store(true)
			}
			return err
		})
	}
	return g.Wait()
}

func (s *CrawlingService) pause(ctx context.Context) error {
	if s.pacing <= 0 {
		return nil
	}
	t := time.NewTimer(s.pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *CrawlingService) fail(summary Summary, start time.Time, stage string, err error) (Summary, error) {
	summary.Duration = time.Since(start)
	errType := observability.Classify(err)
	observability.IncError(errType, string(summary.Platform))
	observability.ObserveRun(false, summary.Duration.Seconds())
	s.logger.Error("crawl run failed", "stage", stage, "error_type", errType, "error", err)
	return summary, err
}

// flatten concatenates id lists in input order, keeping the first occurrence
// of each id.
func flatten(lists [][]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, ids := range lists {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
