package scraper

import (
	"regexp"
	"strings"
)

func lancersTerm(label string) Sibling {
	return Sibling{
		Label: ".c-definitionList__term",
		Text:  label,
		Value: ".c-definitionList__description",
		Exact: true,
	}
}

var lancersList = struct {
	Items, NoResult Field
}{
	Items: Field{Name: "work links", Attr: "href", Locators: []Locator{
		CSS(".c-media__title a"),
		CSS(".search-result-list .item-title a"),
		CSS(".job-offer-item a"),
		CSS(`a[href*="/work/detail/"]`),
	}},
	NoResult: Field{Name: "no result", Locators: []Locator{
		CSS(".search-result-none"),
	}},
}

var lancersDetail = struct {
	NotFound, Title, Category, Closed, Budget, Deadline, Published Field
	DeliveryDate, WorkingTime, Period, Description                 Field
}{
	// A 404 status is handled by the crawler; this catches the error page
	// served with 200. The listing title heading never counts.
	NotFound: Field{Name: "not found", Locators: []Locator{
		Contains{Selector: "h1:not(.c-heading--lv1), h2, p", Text: "ページが見つかりません"},
	}},
	Title: Field{Name: "title", Required: true, Locators: []Locator{
		CSS("h1.c-heading--lv1"),
		CSS("title"),
	}},
	Category: Field{Name: "category", Required: true, Locators: []Locator{
		CSS(".c-breadcrumb__item:nth-child(3)"),
		CSS(".project-category"),
	}},
	Closed: Field{Name: "closed badge", Locators: []Locator{
		CSS(".c-badge--closed"),
	}},
	Budget: Field{Name: "budget", Locators: []Locator{
		lancersTerm("予算"),
		lancersTerm("報酬"),
		lancersTerm("価格"),
	}},
	Deadline: Field{Name: "recruiting limit", Locators: []Locator{
		lancersTerm("応募期限"),
		lancersTerm("募集期限"),
	}},
	Published: Field{Name: "publication date", Required: true, Locators: []Locator{
		lancersTerm("登録日時"),
		lancersTerm("掲載日"),
	}},
	DeliveryDate: Field{Name: "delivery date", Locators: []Locator{
		lancersTerm("納期"),
		lancersTerm("希望納期"),
	}},
	WorkingTime: Field{Name: "working time", Locators: []Locator{
		lancersTerm("稼働時間"),
	}},
	Period: Field{Name: "period", Locators: []Locator{
		lancersTerm("期間"),
	}},
	Description: Field{Name: "description", Required: true, Locators: []Locator{
		CSS(".p-jobdetail__content"),
		CSS(".job-description"),
	}},
}

var (
	lancersTitleSuffix = regexp.MustCompile(`\s*\|\s*ランサーズ.*$`)
	lancersTimeWords   = []string{"時間単価", "時給", "時間", "/時"}
	lancersFixedWords  = []string{"固定", "一括"}
)

type lancersListPage struct{ pom }

func (p lancersListPage) noResult() bool {
	return p.visible(lancersList.NoResult)
}

func (p lancersListPage) projectIDs(extract func(string) (string, bool)) []string {
	return p.ids(lancersList.Items, extract)
}

type lancersDetailPage struct{ *fieldReader }

func (p lancersDetailPage) notFound() bool {
	return p.pom.visible(lancersDetail.NotFound)
}

func (p lancersDetailPage) title() string {
	return strings.TrimSpace(lancersTitleSuffix.ReplaceAllString(p.text(lancersDetail.Title), ""))
}

func (p lancersDetailPage) recruiting() bool {
	return !p.pom.visible(lancersDetail.Closed)
}

// fixedWage reads the reward-like terms for hourly or fixed keywords, in
// that order, and assumes fixed when none say.
func (p lancersDetailPage) fixedWage() bool {
	for _, loc := range lancersDetail.Budget.Locators {
		s := Field{Locators: []Locator{loc}}.find(p.pom.root)
		if s == nil {
			continue
		}
		text := collapse(s.Text())
		for _, w := range lancersTimeWords {
			if strings.Contains(text, w) {
				return false
			}
		}
		for _, w := range lancersFixedWords {
			if strings.Contains(text, w) {
				return true
			}
		}
	}
	return true
}

func (p lancersDetailPage) category() string        { return p.text(lancersDetail.Category) }
func (p lancersDetailPage) budget() string          { return p.text(lancersDetail.Budget) }
func (p lancersDetailPage) recruitingLimit() string { return p.text(lancersDetail.Deadline) }
func (p lancersDetailPage) publicationDate() string { return p.text(lancersDetail.Published) }
func (p lancersDetailPage) deliveryDate() string    { return p.text(lancersDetail.DeliveryDate) }
func (p lancersDetailPage) workingTime() string     { return p.text(lancersDetail.WorkingTime) }
func (p lancersDetailPage) period() string          { return p.text(lancersDetail.Period) }
func (p lancersDetailPage) description() string     { return p.html(lancersDetail.Description) }
