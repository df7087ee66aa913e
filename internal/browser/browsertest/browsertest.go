// Package browsertest provides an in-memory browser.Browser that serves
// fixture HTML by URL and records page lifecycle for assertions.
package browsertest

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/baxromumarov/gig-crawler/internal/browser"
)

type response struct {
	status int
	body   string
	err    error
}

type Browser struct {
	// Delay is applied to every navigation, honouring the context.
	Delay time.Duration

	mu      sync.Mutex
	routes  map[string]response
	visits  []string
	open    int
	maxOpen int
	opened  int
	closed  int
}

func New() *Browser {
	return &Browser{routes: make(map[string]response)}
}

func (b *Browser) Serve(url, html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[url] = response{status: http.StatusOK, body: html}
}

// ServeFile serves the contents of a fixture file, failing t when it
// cannot be read.
func (b *Browser) ServeFile(t testing.TB, url, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	b.Serve(url, string(data))
}

func (b *Browser) ServeStatus(url string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[url] = response{status: status}
}

func (b *Browser) ServeError(url string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[url] = response{err: err}
}

func (b *Browser) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open++
	b.opened++
	if b.open > b.maxOpen {
		b.maxOpen = b.open
	}
	return &page{browser: b}, nil
}

func (b *Browser) Open() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// MaxOpen is the highest number of simultaneously open pages observed.
func (b *Browser) MaxOpen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxOpen
}

func (b *Browser) Opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

func (b *Browser) Closed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Browser) Visits() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.visits...)
}

type page struct {
	browser *Browser
	url     string
	doc     *goquery.Document
	once    sync.Once
}

func (p *page) Goto(ctx context.Context, url string) error {
	b := p.browser
	if b.Delay > 0 {
		select {
		case <-ctx.Done():
			return &browser.NavigationError{URL: url, Err: ctx.Err()}
		case <-time.After(b.Delay):
		}
	}

	b.mu.Lock()
	b.visits = append(b.visits, url)
	resp, ok := b.routes[url]
	b.mu.Unlock()

	switch {
	case !ok:
		return &browser.NavigationError{URL: url, Status: http.StatusNotFound}
	case resp.err != nil:
		return &browser.NavigationError{URL: url, Err: resp.err}
	case resp.status >= 400:
		return &browser.NavigationError{URL: url, Status: resp.status}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.body))
	if err != nil {
		return &browser.NavigationError{URL: url, Status: resp.status, Err: err}
	}
	p.url = url
	p.doc = doc
	return nil
}

func (p *page) Document() *goquery.Document {
	if p.doc == nil {
		doc, _ := goquery.NewDocumentFromReader(strings.NewReader(""))
		return doc
	}
	return p.doc
}

func (p *page) URL() string {
	return p.url
}

func (p *page) Close() error {
	p.once.Do(func() {
		b := p.browser
		b.mu.Lock()
		b.open--
		b.closed++
		b.mu.Unlock()
	})
	return nil
}
