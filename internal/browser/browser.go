// Package browser is the shared session crawlers load pages through. A
// Browser hands out Pages; each Page belongs to one task and must be closed
// by it.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

var ErrClosed = errors.New("browser closed")

type Browser interface {
	NewPage(ctx context.Context) (Page, error)
}

type Page interface {
	// Goto loads url, replacing the current document.
	Goto(ctx context.Context, url string) error
	Document() *goquery.Document
	URL() string
	Close() error
}

// NavigationError reports a page that failed to load: transport failure,
// timeout, or an HTTP error status.
type NavigationError struct {
	URL    string
	Status int
	Err    error
}

func (e *NavigationError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("navigate %s: status %d: %v", e.URL, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("navigate %s: status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
	}
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

func (e *NavigationError) NotFound() bool {
	return e.Status == http.StatusNotFound || e.Status == http.StatusGone
}

// IsNotFound reports whether err is a navigation that ended in 404 or 410.
func IsNotFound(err error) bool {
	var nav *NavigationError
	return errors.As(err, &nav) && nav.NotFound()
}
