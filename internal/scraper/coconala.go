package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/baxromumarov/gig-crawler/internal/browser"
	"github.com/baxromumarov/gig-crawler/internal/normalize"
	"github.com/baxromumarov/gig-crawler/internal/project"
)

// CoconalaCrawler reads coconala.com requests. Every request there is fixed
// wage.
type CoconalaCrawler struct {
	base
}

func NewCoconalaCrawler(b browser.Browser, opts ...Option) *CoconalaCrawler {
	return &CoconalaCrawler{base: newBase(project.Coconala, b, opts)}
}

func (c *CoconalaCrawler) ListProjectIDs(ctx context.Context, listingURL string) ([]string, error) {
	return c.list(ctx, listingURL, coconalaList.Items, func(p pom) ([]string, bool) {
		page := coconalaListPage{p}
		if page.noHit() {
			return nil, true
		}
		return page.projectIDs(c.extractID), false
	})
}

func (c *CoconalaCrawler) Detail(ctx context.Context, id string) (project.Project, error) {
	return c.detail(ctx, id, func(r *fieldReader) project.Project {
		page := coconalaDetailPage{r}

		title := page.title()
		if r.err == nil && strings.Contains(title, "非公開") {
			return c.hidden(id)
		}

		v := project.Visible{
			Platform:    c.platform,
			ExternalID:  id,
			Title:       title,
			Category:    page.category(),
			Description: page.description(),
		}
		budget := parse(r, "budget", page.budget(), normalize.ParseMoney)
		delivery := parse(r, "delivery date", page.deliveryDate(), func(s string) (*time.Time, error) {
			return normalize.ParseDateOr(s, "ご相談")
		})
		v.RecruitingLimit = parse(r, "recruiting limit", page.recruitingLimit(), normalize.ParseDate)
		v.PublicationDate = required(r, "publication date", page.publicationDate(), normalize.ParseDate)
		v.IsRecruiting = !page.closed()

		return &project.FixedWage{Visible: v, Budget: budget, DeliveryDate: delivery}
	})
}
