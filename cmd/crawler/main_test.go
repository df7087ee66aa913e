package main

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/gig-crawler/internal/config"
	"github.com/baxromumarov/gig-crawler/internal/project"
	"github.com/baxromumarov/gig-crawler/internal/urlutil"
)

func TestInvalidInputIsRejectedBeforeCrawling(t *testing.T) {
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"unknown platform", []string{"crawl", "upwork", "https://www.upwork.com/nx/search/jobs"}, project.ErrUnknownPlatform},
		{"missing url", []string{"crawl", "lancers"}, nil},
		{"wrong host", []string{"crawl", "coconala", "https://crowdworks.jp/public/jobs/search"}, urlutil.ErrWrongHost},
		{"relative url", []string{"crawl", "lancers", "/work/search"}, urlutil.ErrNotAbsolute},
		{"detail url", []string{"crawl", "lancers", "https://www.lancers.jp/work/detail/5012345"}, urlutil.ErrNotListing},
		{"no targets", []string{"schedule"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			cmd := newRootCommand()
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			var cfgErr *config.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

type recordingLimiter map[string]time.Duration

func (r recordingLimiter) SetHostLimit(host string, per time.Duration, _ int) {
	r[host] = per
}

func TestApplyHostLimitsUsesPlatformHosts(t *testing.T) {
	cfg := &config.Config{
		HostBurst: 1,
		HostLimits: map[project.Platform]time.Duration{
			project.Lancers:  3 * time.Second,
			project.Coconala: time.Second,
		},
	}
	got := recordingLimiter{}
	applyHostLimits(got, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, recordingLimiter{
		"www.lancers.jp": 3 * time.Second,
		"coconala.com":   time.Second,
	}, got)
}

func TestSinkOrderWritesFileLast(t *testing.T) {
	assert.Equal(t,
		[]string{config.SinkPostgres, config.SinkRedis, config.SinkFile},
		sinkOrder([]string{config.SinkFile, config.SinkPostgres, config.SinkRedis}))
	assert.Equal(t, []string{config.SinkRedis}, sinkOrder([]string{config.SinkRedis}))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, unavailable before Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
