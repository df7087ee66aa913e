package scraper

import (
	"fmt"

	"github.com/baxromumarov/gig-crawler/internal/browser"
	"github.com/baxromumarov/gig-crawler/internal/project"
)

// New returns a fresh crawler for p bound to b. Every call yields an
// independent instance.
func New(p project.Platform, b browser.Browser, opts ...Option) (Crawler, error) {
	switch p {
	case project.Coconala:
		return NewCoconalaCrawler(b, opts...), nil
	case project.CrowdWorks:
		return NewCrowdWorksCrawler(b, opts...), nil
	case project.Lancers:
		return NewLancersCrawler(b, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", project.ErrUnknownPlatform, string(p))
	}
}
