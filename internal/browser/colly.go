package browser

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const DefaultNavigationTimeout = 60 * time.Second

// Fetcher is the transport behind Colly, satisfied by *httpx.CollyFetcher.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, int, error)
}

// Colly is a Browser backed by a static fetcher: pages are parsed HTML
// documents, no script runs.
type Colly struct {
	fetcher    Fetcher
	navTimeout time.Duration

	open   atomic.Int64
	opened atomic.Int64
	closed atomic.Bool
}

func NewColly(fetcher Fetcher, navTimeout time.Duration) *Colly {
	if navTimeout <= 0 {
		navTimeout = DefaultNavigationTimeout
	}
	return &Colly{fetcher: fetcher, navTimeout: navTimeout}
}

func (b *Colly) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.closed.Load() {
		return nil, ErrClosed
	}
	b.open.Add(1)
	b.opened.Add(1)
	return &collyPage{browser: b}, nil
}

// OpenPages is the number of pages handed out and not yet closed.
func (b *Colly) OpenPages() int64 {
	return b.open.Load()
}

func (b *Colly) OpenedPages() int64 {
	return b.opened.Load()
}

// Close refuses new pages. Pages already open stay usable until closed.
func (b *Colly) Close() error {
	b.closed.Store(true)
	return nil
}

type collyPage struct {
	browser *Colly
	url     string
	doc     *goquery.Document
	once    sync.Once
	closed  atomic.Bool
}

func (p *collyPage) Goto(ctx context.Context, url string) error {
	if p.closed.Load() {
		return &NavigationError{URL: url, Err: ErrClosed}
	}
	ctx, cancel := context.WithTimeout(ctx, p.browser.navTimeout)
	defer cancel()

	body, status, err := p.browser.fetcher.FetchBytes(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return &NavigationError{URL: url, Status: status, Err: err}
	}
	if status >= 400 {
		return &NavigationError{URL: url, Status: status}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return &NavigationError{URL: url, Status: status, Err: fmt.Errorf("parse document: %w", err)}
	}
	p.url = url
	p.doc = doc
	return nil
}

func (p *collyPage) Document() *goquery.Document {
	if p.doc == nil {
		doc, _ := goquery.NewDocumentFromReader(bytes.NewReader(nil))
		return doc
	}
	return p.doc
}

func (p *collyPage) URL() string {
	return p.url
}

func (p *collyPage) Close() error {
	p.once.Do(func() {
		p.closed.Store(true)
		p.doc = nil
		p.browser.open.Add(-1)
	})
	return nil
}
