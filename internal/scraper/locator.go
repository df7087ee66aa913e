package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Locator finds candidate elements for a field under root.
type Locator interface {
	Find(root *goquery.Selection) *goquery.Selection
	String() string
}

// CSS is a plain selector.
type CSS string

func (c CSS) Find(root *goquery.Selection) *goquery.Selection {
	return root.Find(string(c))
}

func (c CSS) String() string {
	return string(c)
}

// Labeled matches Row elements whose Label cell carries Text and returns
// their Value cells. An empty Label matches against the whole row.
type Labeled struct {
	Row, Label, Text, Value string
	Exact                   bool
}

func (l Labeled) Find(root *goquery.Selection) *goquery.Selection {
	rows := root.Find(l.Row).FilterFunction(func(_ int, row *goquery.Selection) bool {
		label := row
		if l.Label != "" {
			label = row.Find(l.Label).First()
		}
		return labelMatches(label.Text(), l.Text, l.Exact)
	})
	return rows.Find(l.Value)
}

func (l Labeled) String() string {
	return fmt.Sprintf("%s[%s=%q] %s", l.Row, l.Label, l.Text, l.Value)
}

// Sibling matches Label elements carrying Text and returns the element
// directly after each one when it matches Value.
type Sibling struct {
	Label, Text, Value string
	Exact              bool
}

func (s Sibling) Find(root *goquery.Selection) *goquery.Selection {
	return root.Find(s.Label).FilterFunction(func(_ int, label *goquery.Selection) bool {
		return labelMatches(label.Text(), s.Text, s.Exact)
	}).NextFiltered(s.Value)
}

func (s Sibling) String() string {
	return fmt.Sprintf("%s[%q] + %s", s.Label, s.Text, s.Value)
}

// Contains matches the innermost Selector elements whose text includes Text.
type Contains struct {
	Selector, Text string
}

func (c Contains) Find(root *goquery.Selection) *goquery.Selection {
	has := func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), c.Text)
	}
	return root.Find(c.Selector).FilterFunction(has).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(c.Selector).FilterFunction(has).Length() == 0
	})
}

func (c Contains) String() string {
	return fmt.Sprintf("%s:contains(%q)", c.Selector, c.Text)
}

func labelMatches(got, want string, exact bool) bool {
	got = collapse(got)
	if exact {
		return got == want
	}
	return strings.Contains(got, want)
}

// Field is a named value on a page with its locators in priority order.
// The first locator producing a visible element with a non-empty value
// wins. Attr reads an attribute instead of text.
type Field struct {
	Name     string
	Required bool
	Attr     string
	Locators []Locator
}

func (f Field) find(root *goquery.Selection) *goquery.Selection {
	for _, loc := range f.Locators {
		var found *goquery.Selection
		loc.Find(root).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !visible(s) || f.value(s) == "" {
				return true
			}
			found = s
			return false
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every visible element of the first locator that has any.
func (f Field) findAll(root *goquery.Selection) []*goquery.Selection {
	for _, loc := range f.Locators {
		var out []*goquery.Selection
		loc.Find(root).Each(func(_ int, s *goquery.Selection) {
			if visible(s) && f.value(s) != "" {
				out = append(out, s)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func (f Field) value(s *goquery.Selection) string {
	if f.Attr != "" {
		v, _ := s.Attr(f.Attr)
		return strings.TrimSpace(v)
	}
	return collapse(s.Text())
}

func (f Field) tried() []string {
	out := make([]string, len(f.Locators))
	for i, loc := range f.Locators {
		out[i] = loc.String()
	}
	return out
}

// visible walks s and its ancestors looking for hidden markers: the hidden
// attribute, aria-hidden="true", or an inline display:none or
// visibility:hidden style.
func visible(s *goquery.Selection) bool {
	for n := s.Get(0); n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hiddenNode(n) {
			return false
		}
	}
	return true
}

func hiddenNode(n *html.Node) bool {
	switch n.Data {
	case "template", "noscript":
		return true
	}
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(strings.TrimSpace(a.Val), "true") {
				return true
			}
		case "style":
			style := strings.ToLower(strings.Join(strings.Fields(a.Val), ""))
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// pom reads fields off one loaded document.
type pom struct {
	root *goquery.Selection
}

func newPOM(doc *goquery.Document) pom {
	return pom{root: doc.Selection}
}

func (p pom) resolve(f Field) (*goquery.Selection, error) {
	if s := f.find(p.root); s != nil {
		return s, nil
	}
	if f.Required {
		return nil, &StructuralError{Field: f.Name, Tried: f.tried()}
	}
	return nil, nil
}

// text returns the whitespace-collapsed value of f, "" when an optional
// field is absent.
func (p pom) text(f Field) (string, error) {
	s, err := p.resolve(f)
	if err != nil || s == nil {
		return "", err
	}
	return f.value(s), nil
}

// html returns the inner HTML of f.
func (p pom) html(f Field) (string, error) {
	s, err := p.resolve(f)
	if err != nil || s == nil {
		return "", err
	}
	out, err := s.Html()
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.Name, err)
	}
	return strings.TrimSpace(out), nil
}

func (p pom) visible(f Field) bool {
	return f.find(p.root) != nil
}

// ids maps the elements of f through extract, keeping first occurrences.
func (p pom) ids(f Field, extract func(string) (string, bool)) []string {
	for _, loc := range f.Locators {
		single := Field{Name: f.Name, Attr: f.Attr, Locators: []Locator{loc}}
		seen := make(map[string]struct{})
		var out []string
		for _, s := range single.findAll(p.root) {
			id, ok := extract(single.value(s))
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// after returns the text following marker, "" when marker is absent.
func after(s, marker string) string {
	if _, rest, ok := strings.Cut(s, marker); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

func contains(s, sub string) bool {
	return sub != "" && strings.Contains(s, sub)
}
