package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/gig-crawler/internal/config"
	"github.com/baxromumarov/gig-crawler/internal/project"
	"github.com/baxromumarov/gig-crawler/internal/scraper"
)

type fakeCrawler struct {
	lists   map[string][]string
	listErr error
	failID  string
	hidden  map[string]bool
	delay   time.Duration

	detailCalls atomic.Int64
	inflight    atomic.Int64
	maxInflight atomic.Int64
}

func (f *fakeCrawler) Platform() project.Platform { return project.Lancers }

func (f *fakeCrawler) ListProjectIDs(_ context.Context, u string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.lists[u], nil
}

func (f *fakeCrawler) Detail(_ context.Context, id string) (project.Project, error) {
	f.detailCalls.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		m := f.maxInflight.Load()
		if n <= m || f.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if id == f.failID {
		return nil, &scraper.DetailError{Platform: project.Lancers, ExternalID: id, Field: "title", Err: errors.New("boom")}
	}
	if f.hidden[id] {
		return &project.Hidden{Platform: project.Lancers, ExternalID: id}, nil
	}
	return &project.FixedWage{Visible: project.Visible{
		Platform:        project.Lancers,
		ExternalID:      id,
		Title:           "案件 " + id,
		PublicationDate: time.Date(2025, 1, 30, 0, 0, 0, 0, project.JST),
	}}, nil
}

type recordingSink struct {
	mu      sync.Mutex
	calls   int
	batches [][]project.Project
}

func (r *recordingSink) SaveMany(_ context.Context, ps []project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.batches = append(r.batches, ps)
	return nil
}

func keys(ps []project.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Key().ExternalID
	}
	return out
}

func TestRunSavesDedupedBatchInListingOrder(t *testing.T) {
	c := &fakeCrawler{
		lists: map[string][]string{
			"https://www.lancers.jp/work/search?page=1": {"1", "2", "3"},
			"https://www.lancers.jp/work/search?page=2": {"3", "4"},
		},
		hidden: map[string]bool{"2": true},
	}
	out := &recordingSink{}
	svc := NewCrawlingService(c, out, WithPacing(0))

	summary, err := svc.Run(context.Background(), []string{
		"https://www.lancers.jp/work/search?page=1",
		"https://www.lancers.jp/work/search?page=2",
	})
	require.NoError(t, err)

	require.Equal(t, 1, out.calls)
	assert.Equal(t, []string{"1", "2", "3", "4"}, keys(out.batches[0]))
	assert.Equal(t, project.Lancers, summary.Platform)
	assert.Equal(t, 4, summary.Listed)
	assert.Equal(t, 4, summary.Fetched)
	assert.Equal(t, 1, summary.Hidden)
	assert.EqualValues(t, 4, c.detailCalls.Load())
}

func TestRunBoundsConcurrency(t *testing.T) {
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprint(1000 + i)
	}
	c := &fakeCrawler{lists: map[string][]string{"list": ids}, delay: 20 * time.Millisecond}
	out := &recordingSink{}
	svc := NewCrawlingService(c, out, WithConcurrency(10), WithPacing(0))

	_, err := svc.Run(context.Background(), []string{"list"})
	require.NoError(t, err)

	assert.LessOrEqual(t, c.maxInflight.Load(), int64(10))
	assert.Greater(t, c.maxInflight.Load(), int64(1))
	require.Len(t, out.batches, 1)
	assert.Len(t, out.batches[0], 25)
}

func TestRunDetailFailureSkipsSink(t *testing.T) {
	c := &fakeCrawler{lists: map[string][]string{"list": {"1", "2", "3", "4", "5"}}, failID: "3"}
	out := &recordingSink{}
	svc := NewCrawlingService(c, out, WithPacing(0), WithConcurrency(1))

	_, err := svc.Run(context.Background(), []string{"list"})
	var detailErr *scraper.DetailError
	require.ErrorAs(t, err, &detailErr)
	assert.Equal(t, "3", detailErr.ExternalID)
	assert.Equal(t, "title", detailErr.Field)

	assert.Zero(t, out.calls)
	assert.EqualValues(t, 3, c.detailCalls.Load())
}

func TestRunStopsStartingDetailsAfterFailure(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	c := &fakeCrawler{lists: map[string][]string{"list": ids}, failID: "0"}
	out := &recordingSink{}
	svc := NewCrawlingService(c, out, WithPacing(0), WithConcurrency(1))

	_, err := svc.Run(context.Background(), []string{"list"})
	var detailErr *scraper.DetailError
	require.ErrorAs(t, err, &detailErr)
	assert.Equal(t, "0", detailErr.ExternalID)
	assert.EqualValues(t, 1, c.detailCalls.Load())
	assert.Zero(t, out.calls)
}

func TestRunLetsInFlightDetailsSettle(t *testing.T) {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	c := &fakeCrawler{lists: map[string][]string{"list": ids}, failID: "0", delay: 20 * time.Millisecond}
	out := &recordingSink{}
	svc := NewCrawlingService(c, out, WithPacing(0), WithConcurrency(4))

	_, err := svc.Run(context.Background(), []string{"list"})
	require.Error(t, err)
	assert.GreaterOrEqual(t, c.detailCalls.Load(), int64(1))
	assert.Less(t, c.detailCalls.Load(), int64(len(ids)))
	assert.Zero(t, c.inflight.Load())
}

func TestRunListFailureSkipsSink(t *testing.T) {
	c := &fakeCrawler{listErr: &scraper.StructuralError{Field: "job links"}}
	out := &recordingSink{}
	svc := NewCrawlingService(c, out, WithPacing(0))

	_, err := svc.Run(context.Background(), []string{"list"})
	var structural *scraper.StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Zero(t, out.calls)
	assert.Zero(t, c.detailCalls.Load())
}

func TestRunEmptyListingSavesEmptyBatch(t *testing.T) {
	c := &fakeCrawler{lists: map[string][]string{"list": {}}}
	out := &recordingSink{}
	svc := NewCrawlingService(c, out, WithPacing(0))

	summary, err := svc.Run(context.Background(), []string{"list"})
	require.NoError(t, err)
	assert.Zero(t, summary.Listed)
	require.Equal(t, 1, out.calls)
	assert.Empty(t, out.batches[0])
}

func TestRunPacingHonoursContext(t *testing.T) {
	c := &fakeCrawler{lists: map[string][]string{"list": {"1"}}}
	out := &recordingSink{}
	svc := NewCrawlingService(c, out, WithPacing(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Run(ctx, []string{"list"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, out.calls)
}

type fakeRunner struct {
	err   error
	calls atomic.Int64
}

func (r *fakeRunner) Run(context.Context, []string) (Summary, error) {
	r.calls.Add(1)
	return Summary{}, r.err
}

type fakeExpirer struct{ calls atomic.Int64 }

func (e *fakeExpirer) DeleteExpired(context.Context, time.Duration) (int64, error) {
	e.calls.Add(1)
	return 2, nil
}

func TestSchedulerContinuesPastFailingTarget(t *testing.T) {
	coconala := &fakeRunner{err: errors.New("navigation failed")}
	lancers := &fakeRunner{}
	targets := []config.Target{
		{Platform: project.Coconala, URLs: []string{"https://coconala.com/requests"}},
		{Platform: project.CrowdWorks, URLs: []string{"https://crowdworks.jp/public/jobs/search"}},
		{Platform: project.Lancers, URLs: []string{"https://www.lancers.jp/work/search"}},
	}
	s := NewScheduler("@every 1h", targets, map[project.Platform]Runner{
		project.Coconala: coconala,
		project.Lancers:  lancers,
	})

	s.RunOnce(context.Background())
	assert.EqualValues(t, 1, coconala.calls.Load())
	assert.EqualValues(t, 1, lancers.calls.Load())
}

func TestSchedulerStartRunsImmediately(t *testing.T) {
	r := &fakeRunner{}
	exp := &fakeExpirer{}
	targets := []config.Target{{Platform: project.Lancers, URLs: []string{"https://www.lancers.jp/work/search"}}}
	s := NewScheduler("@every 1h", targets, map[project.Platform]Runner{project.Lancers: r}, WithRetention(exp, 24*time.Hour))

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { <-s.Stop().Done() })

	require.Eventually(t, func() bool {
		return r.calls.Load() == 1 && exp.calls.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler("every now and then", nil, nil)
	err := s.Start(context.Background())
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "every now and then", cfgErr.Input)
}

func TestFlattenKeepsFirstOccurrence(t *testing.T) {
	got := flatten([][]string{{"b", "a"}, nil, {"a", "c", "b"}})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}
