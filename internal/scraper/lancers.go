package scraper

import (
	"context"
	"time"

	"github.com/baxromumarov/gig-crawler/internal/browser"
	"github.com/baxromumarov/gig-crawler/internal/normalize"
	"github.com/baxromumarov/gig-crawler/internal/project"
)

// LancersCrawler reads lancers.jp work listings. A detail page that is gone
// (404 or a not-found notice) is reported as hidden.
type LancersCrawler struct {
	base
}

func NewLancersCrawler(b browser.Browser, opts ...Option) *LancersCrawler {
	c := &LancersCrawler{base: newBase(project.Lancers, b, opts)}
	c.notFoundHidden = true
	return c
}

func (c *LancersCrawler) ListProjectIDs(ctx context.Context, listingURL string) ([]string, error) {
	return c.list(ctx, listingURL, lancersList.Items, func(p pom) ([]string, bool) {
		page := lancersListPage{p}
		if page.noResult() {
			return nil, true
		}
		return page.projectIDs(c.extractID), false
	})
}

func (c *LancersCrawler) Detail(ctx context.Context, id string) (project.Project, error) {
	return c.detail(ctx, id, func(r *fieldReader) project.Project {
		page := lancersDetailPage{r}
		if page.notFound() {
			return c.hidden(id)
		}

		v := project.Visible{
			Platform:     c.platform,
			ExternalID:   id,
			Title:        page.title(),
			Category:     page.category(),
			Description:  page.description(),
			IsRecruiting: page.recruiting(),
		}
		v.PublicationDate = required(r, "publication date", page.publicationDate(), normalize.ParseDate)
		v.RecruitingLimit = parse(r, "recruiting limit", page.recruitingLimit(), func(s string) (*time.Time, error) {
			return normalize.ParseRelativeDate(s, v.PublicationDate)
		})

		if page.fixedWage() {
			return &project.FixedWage{
				Visible:      v,
				Budget:       parse(r, "budget", page.budget(), normalize.ParseMoney),
				DeliveryDate: parse(r, "delivery date", page.deliveryDate(), normalize.ParseDate),
			}
		}
		return &project.TimeWage{
			Visible:      v,
			HourlyBudget: parse(r, "hourly budget", page.budget(), normalize.ParseMoney),
			WorkingTime:  parse(r, "working time", page.workingTime(), normalize.ParseWorkingTime),
			Period:       parse(r, "period", page.period(), normalize.ParsePeriod),
		}
	})
}
