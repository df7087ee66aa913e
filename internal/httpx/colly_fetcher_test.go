package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *CollyFetcher {
	return NewCollyFetcher("gig-crawler-test", WithDefaultRate(time.Millisecond, 10), WithTimeout(5*time.Second))
}

func TestFetchBytesReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "gig-crawler-test", r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer srv.Close()

	body, status, err := newTestFetcher().FetchBytes(context.Background(), srv.URL+"/work/detail/1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "<title>ok</title>")
}

func TestFetchBytesReportsNotFoundWithoutRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, status, err := newTestFetcher().FetchBytes(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchBytesRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	body, status, err := newTestFetcher().FetchBytes(context.Background(), srv.URL+"/flaky")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchBytesHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := newTestFetcher().FetchBytes(ctx, "https://example.invalid/")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestShouldBackoff(t *testing.T) {
	assert.True(t, shouldBackoff(http.StatusTooManyRequests))
	assert.True(t, shouldBackoff(http.StatusBadGateway))
	assert.False(t, shouldBackoff(http.StatusNotFound))
	assert.False(t, shouldBackoff(http.StatusOK))
}

func TestSetHostLimitOverridesDefaultForHost(t *testing.T) {
	f := newTestFetcher()
	f.SetHostLimit("www.lancers.jp", 3*time.Second, 1)

	lancers := f.hostPolicy("lancers.jp").limiter
	assert.Equal(t, rate.Every(3*time.Second), lancers.Limit())
	assert.Equal(t, 1, lancers.Burst())

	other := f.hostPolicy("coconala.com").limiter
	assert.Equal(t, rate.Every(time.Millisecond), other.Limit())
	assert.Equal(t, 10, other.Burst())
}
