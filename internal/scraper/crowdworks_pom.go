package scraper

import (
	"encoding/json"
	"strings"
)

func crowdworksRow(label string) Labeled {
	return Labeled{Row: "tr", Label: "th", Text: label, Value: "td", Exact: true}
}

var crowdworksList = struct {
	Container, Links Field
}{
	Container: Field{Name: "search result data", Attr: "data", Locators: []Locator{
		CSS("#vue-container"),
	}},
	Links: Field{Name: "job links", Attr: "href", Locators: []Locator{
		CSS(`a[href^="/public/jobs/"]`),
		CSS(`a[href*="crowdworks.jp/public/jobs/"]`),
	}},
}

var crowdworksDetail = struct {
	Title, Closed, FixedMarker, Category, FixedBudget, HourlyBudget     Field
	DeliveryDate, Deadline, Published, WorkingTime, Period, Description Field
}{
	Title: Field{Name: "title", Required: true, Locators: []Locator{
		CSS("h1 .title"),
		CSS("h1"),
		CSS("title"),
	}},
	Closed: Field{Name: "closed notice", Locators: []Locator{
		Contains{Selector: "span, p, div", Text: "このお仕事の募集は終了しています。"},
	}},
	FixedMarker: Field{Name: "wage type", Locators: []Locator{
		Contains{Selector: ".summary th", Text: "固定報酬制"},
	}},
	Category: Field{Name: "category", Required: true, Locators: []Locator{
		CSS(".subtitle > a"),
	}},
	FixedBudget: Field{Name: "budget", Locators: []Locator{
		crowdworksRow("固定報酬制"),
	}},
	HourlyBudget: Field{Name: "hourly budget", Locators: []Locator{
		crowdworksRow("時間単価制"),
	}},
	DeliveryDate: Field{Name: "delivery date", Locators: []Locator{
		crowdworksRow("納品希望日"),
	}},
	Deadline: Field{Name: "recruiting limit", Required: true, Locators: []Locator{
		crowdworksRow("応募期限"),
	}},
	Published: Field{Name: "publication date", Required: true, Locators: []Locator{
		crowdworksRow("掲載日"),
	}},
	WorkingTime: Field{Name: "working time", Locators: []Locator{
		crowdworksRow("稼働時間/週"),
		crowdworksRow("稼働時間"),
	}},
	Period: Field{Name: "period", Locators: []Locator{
		crowdworksRow("期間"),
	}},
	Description: Field{Name: "description", Required: true, Locators: []Locator{
		CSS(".confirm_outside_link"),
	}},
}

// crowdworksSearch is the JSON the listing page embeds in #vue-container.
type crowdworksSearch struct {
	SearchResult *struct {
		JobOffers []struct {
			JobOffer struct {
				ID json.RawMessage `json:"id"`
			} `json:"job_offer"`
		} `json:"job_offers"`
	} `json:"searchResult"`
}

type crowdworksListPage struct{ pom }

// searchResult decodes the embedded search data. ok is false when the
// container is missing or does not hold a search result.
func (p crowdworksListPage) searchResult() (ids []string, ok bool) {
	raw, _ := p.text(crowdworksList.Container)
	if raw == "" {
		return nil, false
	}
	var data crowdworksSearch
	if err := json.Unmarshal([]byte(raw), &data); err != nil || data.SearchResult == nil {
		return nil, false
	}
	ids = []string{}
	for _, o := range data.SearchResult.JobOffers {
		id := strings.Trim(string(o.JobOffer.ID), `"`)
		if id != "" && id != "null" {
			ids = append(ids, id)
		}
	}
	return ids, true
}

func (p crowdworksListPage) linkIDs(extract func(string) (string, bool)) []string {
	return p.ids(crowdworksList.Links, extract)
}

type crowdworksDetailPage struct{ *fieldReader }

// title drops the site suffix the <title> fallback carries.
func (p crowdworksDetailPage) title() string {
	t := p.text(crowdworksDetail.Title)
	if i := strings.Index(t, "| 在宅"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

func (p crowdworksDetailPage) recruiting() bool {
	return !p.pom.visible(crowdworksDetail.Closed)
}

func (p crowdworksDetailPage) fixedWage() bool {
	return p.pom.visible(crowdworksDetail.FixedMarker)
}

func (p crowdworksDetailPage) category() string        { return p.text(crowdworksDetail.Category) }
func (p crowdworksDetailPage) fixedBudget() string     { return p.text(crowdworksDetail.FixedBudget) }
func (p crowdworksDetailPage) hourlyBudget() string    { return p.text(crowdworksDetail.HourlyBudget) }
func (p crowdworksDetailPage) deliveryDate() string    { return p.text(crowdworksDetail.DeliveryDate) }
func (p crowdworksDetailPage) recruitingLimit() string { return p.text(crowdworksDetail.Deadline) }
func (p crowdworksDetailPage) publicationDate() string { return p.text(crowdworksDetail.Published) }
func (p crowdworksDetailPage) period() string          { return p.text(crowdworksDetail.Period) }
func (p crowdworksDetailPage) description() string     { return p.html(crowdworksDetail.Description) }

// workingTime reads the weekly hours cell; the label carries the unit, so a
// bare "30時間以下" becomes "30時間以下/週".
func (p crowdworksDetailPage) workingTime() string {
	t := p.text(crowdworksDetail.WorkingTime)
	if t != "" && !strings.Contains(t, "/") && !strings.HasPrefix(t, "週") && !strings.HasPrefix(t, "月") {
		t += "/週"
	}
	return t
}
