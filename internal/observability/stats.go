package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	ListingPagesRead  uint64            `json:"listing_pages_read"`
	ProjectsFetched   uint64            `json:"projects_fetched"`
	ProjectsHidden    uint64            `json:"projects_hidden"`
	ProjectsSaved     uint64            `json:"projects_saved"`
	RunsSucceeded     uint64            `json:"runs_succeeded"`
	RunsFailed        uint64            `json:"runs_failed"`
	ErrorsTotal       uint64            `json:"errors_total"`
	RunSecondsAvg     float64           `json:"run_seconds_avg"`
	FetchedByPlatform map[string]uint64 `json:"fetched_by_platform,omitempty"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByPlatform  map[string]uint64 `json:"errors_by_platform,omitempty"`
}

var (
	listingPagesRead uint64
	projectsFetched  uint64
	projectsHidden   uint64
	projectsSaved    uint64
	runsSucceeded    uint64
	runsFailed       uint64
	errorsTotal      uint64

	runCount uint64
	runNanos uint64

	statsMu           sync.Mutex
	fetchedByPlatform = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByPlatform  = map[string]uint64{}
)

func IncListingPagesRead(_ string) {
	atomic.AddUint64(&listingPagesRead, 1)
}

func IncProjectsFetched(platform string, hidden bool) {
	atomic.AddUint64(&projectsFetched, 1)
	if hidden {
		atomic.AddUint64(&projectsHidden, 1)
	}
	statsMu.Lock()
	fetchedByPlatform[orUnknown(platform)]++
	statsMu.Unlock()
}

func AddProjectsSaved(n int) {
	if n > 0 {
		atomic.AddUint64(&projectsSaved, uint64(n))
	}
}

// ObserveRun records one orchestrator run and its wall time.
func ObserveRun(succeeded bool, seconds float64) {
	if succeeded {
		atomic.AddUint64(&runsSucceeded, 1)
	} else {
		atomic.AddUint64(&runsFailed, 1)
	}
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&runCount, 1)
	atomic.AddUint64(&runNanos, uint64(seconds*1e9))
}

func IncError(errType, platform string) {
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[orUnknown(errType)]++
	errorsByPlatform[orUnknown(platform)]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	fetchedCopy := copyMap(fetchedByPlatform)
	errorsTypeCopy := copyMap(errorsByType)
	errorsPlatformCopy := copyMap(errorsByPlatform)
	statsMu.Unlock()

	count := atomic.LoadUint64(&runCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&runNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		ListingPagesRead:  atomic.LoadUint64(&listingPagesRead),
		ProjectsFetched:   atomic.LoadUint64(&projectsFetched),
		ProjectsHidden:    atomic.LoadUint64(&projectsHidden),
		ProjectsSaved:     atomic.LoadUint64(&projectsSaved),
		RunsSucceeded:     atomic.LoadUint64(&runsSucceeded),
		RunsFailed:        atomic.LoadUint64(&runsFailed),
		ErrorsTotal:       atomic.LoadUint64(&errorsTotal),
		RunSecondsAvg:     avg,
		FetchedByPlatform: fetchedCopy,
		ErrorsByType:      errorsTypeCopy,
		ErrorsByPlatform:  errorsPlatformCopy,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
