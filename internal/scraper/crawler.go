// Package scraper extracts freelance listings from Coconala, CrowdWorks and
// Lancers. Each platform has page objects that read raw text through
// locator chains and a crawler that normalizes it into project records.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/baxromumarov/gig-crawler/internal/browser"
	"github.com/baxromumarov/gig-crawler/internal/normalize"
	"github.com/baxromumarov/gig-crawler/internal/project"
	"github.com/baxromumarov/gig-crawler/internal/urlutil"
)

type Crawler interface {
	Platform() project.Platform
	// ListProjectIDs returns the external ids on one listing page in page
	// order. A page reporting no results yields an empty slice.
	ListProjectIDs(ctx context.Context, listingURL string) ([]string, error)
	Detail(ctx context.Context, externalID string) (project.Project, error)
}

type Option func(*settings)

type settings struct {
	baseURL string
	logger  *slog.Logger
}

// WithBaseURL serves detail pages from base instead of the platform host.
func WithBaseURL(base string) Option {
	return func(s *settings) {
		s.baseURL = base
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// base carries what every platform crawler shares: the browser, the
// platform and its settings.
type base struct {
	platform project.Platform
	browser  browser.Browser
	settings

	// notFoundHidden treats a 404 detail page as a hidden listing.
	notFoundHidden bool
}

func newBase(p project.Platform, b browser.Browser, opts []Option) base {
	s := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	s.logger = s.logger.With("platform", string(p))
	return base{platform: p, browser: b, settings: s}
}

func (c *base) Platform() project.Platform {
	return c.platform
}

func (c *base) detailURL(id string) string {
	return urlutil.DetailURL(c.baseURL, c.platform, id)
}

func (c *base) extractID(href string) (string, bool) {
	return urlutil.ExternalID(c.platform, href)
}

// visit opens a page, loads url and hands the document to fn. The page is
// closed on every return path.
func (c *base) visit(ctx context.Context, url string, fn func(*goquery.Document) error) error {
	page, err := c.browser.NewPage(ctx)
	if err != nil {
		return err
	}
	defer page.Close()

	if err := page.Goto(ctx, url); err != nil {
		return err
	}
	return fn(page.Document())
}

// list loads a listing page. A visible no-results marker yields an empty
// slice; a page with neither ids nor the marker is a structural failure.
func (c *base) list(ctx context.Context, listingURL string, items Field, read func(pom) (ids []string, noHit bool)) ([]string, error) {
	var ids []string
	err := c.visit(ctx, listingURL, func(doc *goquery.Document) error {
		found, noHit := read(newPOM(doc))
		switch {
		case noHit:
			ids = []string{}
		case len(found) == 0:
			return &StructuralError{Field: items.Name, Tried: items.tried()}
		default:
			ids = found
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s list %s: %w", c.platform, listingURL, err)
	}
	c.logger.Info("listing page read", "url", listingURL, "count", len(ids))
	return ids, nil
}

// detail loads the detail page of id and lets read assemble the record.
// Failures come back as *DetailError.
func (c *base) detail(ctx context.Context, id string, read func(r *fieldReader) project.Project) (project.Project, error) {
	var out project.Project
	err := c.visit(ctx, c.detailURL(id), func(doc *goquery.Document) error {
		r := &fieldReader{pom: newPOM(doc)}
		p := read(r)
		if r.err != nil {
			return c.detailFailure(id, r.field, r.err)
		}
		out = p
		return nil
	})
	switch {
	case err == nil:
	case c.notFoundHidden && browser.IsNotFound(err):
		return c.hidden(id), nil
	case errors.As(err, new(*DetailError)):
		return nil, err
	default:
		return nil, c.detailFailure(id, "page", err)
	}
	c.logger.Debug("detail read", "external_id", id, "hidden", out.IsHidden())
	return out, nil
}

func (c *base) hidden(id string) *project.Hidden {
	c.logger.Info("listing hidden", "external_id", id)
	return &project.Hidden{Platform: c.platform, ExternalID: id}
}

// detailFailure wraps err with the listing and field it came from.
func (c *base) detailFailure(id, field string, err error) error {
	return &DetailError{Platform: c.platform, ExternalID: id, Field: field, Err: err}
}

// fieldReader reads fields in order and remembers the first failure, so a
// detail page can be read top to bottom and checked once.
type fieldReader struct {
	pom   pom
	field string
	err   error
}

func (r *fieldReader) text(f Field) string {
	if r.err != nil {
		return ""
	}
	v, err := r.pom.text(f)
	if err != nil {
		r.field, r.err = f.Name, err
	}
	return v
}

func (r *fieldReader) html(f Field) string {
	if r.err != nil {
		return ""
	}
	v, err := r.pom.html(f)
	if err != nil {
		r.field, r.err = f.Name, err
	}
	return v
}

// parse runs a normalizer over raw under the given field name.
func parse[T any](r *fieldReader, field, raw string, fn func(string) (*T, error)) *T {
	if r.err != nil {
		return nil
	}
	v, err := fn(raw)
	if err != nil {
		r.field, r.err = field, err
		return nil
	}
	return v
}

// required is parse for a value that must be present.
func required[T any](r *fieldReader, field, raw string, fn func(string) (*T, error)) T {
	var zero T
	v := parse(r, field, raw, fn)
	if r.err != nil {
		return zero
	}
	if v == nil {
		r.field, r.err = field, &normalize.ParseError{Kind: field, Input: raw}
		return zero
	}
	return *v
}

