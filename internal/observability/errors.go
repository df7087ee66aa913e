package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/baxromumarov/gig-crawler/internal/browser"
	"github.com/baxromumarov/gig-crawler/internal/config"
	"github.com/baxromumarov/gig-crawler/internal/httpx"
	"github.com/baxromumarov/gig-crawler/internal/normalize"
	"github.com/baxromumarov/gig-crawler/internal/project"
	"github.com/baxromumarov/gig-crawler/internal/scraper"
)

const (
	ErrorNavigation    = "navigation"
	ErrorRateLimit     = "rate_limit"
	ErrorTimeout       = "timeout"
	ErrorStructural    = "structural"
	ErrorParsing       = "parsing"
	ErrorConfiguration = "configuration"
	ErrorCanceled      = "canceled"
	ErrorUnknown       = "unknown"
)

// Classify buckets a crawl failure for the error counters. Structural
// failures are checked before navigation since they mean the scraper needs
// maintenance.
func Classify(err error) string {
	if err == nil {
		return ErrorUnknown
	}

	var se *scraper.StructuralError
	if errors.As(err, &se) {
		return ErrorStructural
	}
	var pe *normalize.ParseError
	if errors.As(err, &pe) {
		return ErrorParsing
	}
	var ce *config.ConfigurationError
	if errors.As(err, &ce) || errors.Is(err, project.ErrUnknownPlatform) {
		return ErrorConfiguration
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ErrorCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTimeout
	}

	var fe *httpx.FetchError
	if errors.As(err, &fe) && fe.Status == http.StatusTooManyRequests {
		return ErrorRateLimit
	}
	var ne *browser.NavigationError
	if errors.As(err, &ne) {
		if ne.Status == http.StatusTooManyRequests {
			return ErrorRateLimit
		}
		return ErrorNavigation
	}
	return ErrorUnknown
}
