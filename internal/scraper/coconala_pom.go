package scraper

func coconalaRow(label, value string) Labeled {
	return Labeled{
		Row:   ".c-requestOutlineRow",
		Label: ".c-requestOutlineRow_title",
		Text:  label,
		Value: value,
	}
}

var coconalaList = struct {
	Items, NoHit Field
}{
	Items: Field{Name: "request links", Attr: "href", Locators: []Locator{
		CSS(".c-itemInfo_title a"),
		CSS("a.c-searchItem_detailLink"),
		CSS(`a[href*="/requests/"]`),
	}},
	NoHit: Field{Name: "no hit", Locators: []Locator{
		CSS(".c-searchNoHit"),
		Contains{Selector: "p, div, span", Text: "該当する仕事が見つかりませんでした"},
	}},
}

var coconalaDetail = struct {
	Title, Category, Budget, DeliveryDate, Deadline, Published, Status, Description Field
}{
	Title: Field{Name: "title", Required: true, Locators: []Locator{
		CSS(".c-requestTitle_heading"),
		CSS("h1"),
	}},
	Category: Field{Name: "category", Required: true, Locators: []Locator{
		CSS(".c-requestTitle_category"),
	}},
	Budget: Field{Name: "budget", Locators: []Locator{
		coconalaRow("予算", ".c-requestOutlineRowContent_budget"),
		coconalaRow("予算", ".c-requestOutlineRow_content"),
	}},
	DeliveryDate: Field{Name: "delivery date", Locators: []Locator{
		coconalaRow("納品希望日", ".c-requestOutlineRow_content"),
	}},
	Deadline: Field{Name: "recruiting limit", Locators: []Locator{
		coconalaRow("募集期限", ".c-requestOutlineRowContent_additional"),
	}},
	Published: Field{Name: "publication date", Required: true, Locators: []Locator{
		Labeled{Row: ".c-requestOutlineRow", Text: "掲載日", Value: ".c-requestOutlineRowContent_additional"},
		coconalaRow("掲載日", ".c-requestOutlineRow_content"),
	}},
	Status: Field{Name: "status", Locators: []Locator{
		CSS(".c-requestTitle_status"),
		coconalaRow("募集期限", ".c-requestOutlineRow_content"),
	}},
	Description: Field{Name: "description", Required: true, Locators: []Locator{
		CSS(".c-detailRowContentText"),
	}},
}

type coconalaListPage struct{ pom }

func (p coconalaListPage) noHit() bool {
	return p.visible(coconalaList.NoHit)
}

func (p coconalaListPage) projectIDs(extract func(string) (string, bool)) []string {
	return p.ids(coconalaList.Items, extract)
}

type coconalaDetailPage struct{ *fieldReader }

func (p coconalaDetailPage) title() string        { return p.text(coconalaDetail.Title) }
func (p coconalaDetailPage) category() string     { return p.text(coconalaDetail.Category) }
func (p coconalaDetailPage) budget() string       { return p.text(coconalaDetail.Budget) }
func (p coconalaDetailPage) deliveryDate() string { return p.text(coconalaDetail.DeliveryDate) }
func (p coconalaDetailPage) description() string  { return p.html(coconalaDetail.Description) }

// recruitingLimit is the date after 締切日 in the deadline row.
func (p coconalaDetailPage) recruitingLimit() string {
	return after(p.text(coconalaDetail.Deadline), "締切日")
}

func (p coconalaDetailPage) publicationDate() string {
	raw := p.text(coconalaDetail.Published)
	if v := after(raw, "掲載日"); v != "" {
		return v
	}
	return raw
}

func (p coconalaDetailPage) closed() bool {
	return contains(p.text(coconalaDetail.Status), "募集終了")
}
