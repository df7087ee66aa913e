package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/baxromumarov/gig-crawler/internal/browser"
	"github.com/baxromumarov/gig-crawler/internal/normalize"
	"github.com/baxromumarov/gig-crawler/internal/project"
)

// CrowdWorksCrawler reads crowdworks.jp job offers, fixed or hourly.
type CrowdWorksCrawler struct {
	base
}

func NewCrowdWorksCrawler(b browser.Browser, opts ...Option) *CrowdWorksCrawler {
	return &CrowdWorksCrawler{base: newBase(project.CrowdWorks, b, opts)}
}

func (c *CrowdWorksCrawler) ListProjectIDs(ctx context.Context, listingURL string) ([]string, error) {
	return c.list(ctx, listingURL, crowdworksList.Links, func(p pom) ([]string, bool) {
		page := crowdworksListPage{p}
		if ids, ok := page.searchResult(); ok {
			return ids, len(ids) == 0
		}
		return page.linkIDs(c.extractID), false
	})
}

func (c *CrowdWorksCrawler) Detail(ctx context.Context, id string) (project.Project, error) {
	return c.detail(ctx, id, func(r *fieldReader) project.Project {
		page := crowdworksDetailPage{r}

		title := page.title()
		if r.err == nil && strings.Contains(title, "非公開のお仕事") {
			return c.hidden(id)
		}

		v := project.Visible{
			Platform:     c.platform,
			ExternalID:   id,
			Title:        title,
			Category:     page.category(),
			Description:  page.description(),
			IsRecruiting: page.recruiting(),
		}
		v.RecruitingLimit = parse(r, "recruiting limit", page.recruitingLimit(), normalize.ParseDate)
		v.PublicationDate = required(r, "publication date", page.publicationDate(), normalize.ParseDate)

		if page.fixedWage() {
			budget := parse(r, "budget", page.fixedBudget(), normalize.ParseMoney)
			delivery := parse(r, "delivery date", page.deliveryDate(), func(s string) (*time.Time, error) {
				return normalize.ParseDateOr(s, "-")
			})
			return &project.FixedWage{Visible: v, Budget: budget, DeliveryDate: delivery}
		}

		return &project.TimeWage{
			Visible:      v,
			HourlyBudget: parse(r, "hourly budget", page.hourlyBudget(), normalize.ParseMoney),
			WorkingTime:  parse(r, "working time", page.workingTime(), normalize.ParseWorkingTime),
			Period:       parse(r, "period", page.period(), normalize.ParsePeriod),
		}
	})
}
