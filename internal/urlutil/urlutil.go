package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

var (
	ErrNotAbsolute  = errors.New("url must be absolute http(s)")
	ErrWrongHost    = errors.New("url host does not belong to platform")
	ErrNotListing   = errors.New("url is a detail page, not a listing")
	ErrUnknownRoute = errors.New("no route for platform")
)

type route struct {
	domain  string
	base    string
	detail  string
	idInURL *regexp.Regexp
}

var routes = map[project.Platform]route{
	project.Coconala: {
		domain:  "coconala.com",
		base:    "https://coconala.com",
		detail:  "/requests/%s",
		idInURL: regexp.MustCompile(`/requests/(\d+)`),
	},
	project.CrowdWorks: {
		domain:  "crowdworks.jp",
		base:    "https://crowdworks.jp",
		detail:  "/public/jobs/%s",
		idInURL: regexp.MustCompile(`/public/jobs/(\d+)`),
	},
	project.Lancers: {
		domain:  "lancers.jp",
		base:    "https://www.lancers.jp",
		detail:  "/work/detail/%s",
		idInURL: regexp.MustCompile(`/work/detail/(\d+)`),
	},
}

// Normalize lowercases the host, drops the fragment and tracking
// parameters, and sorts the remaining query.
func Normalize(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = normalizePath(u.Path)
	u.RawQuery = normalizeQuery(u.RawQuery)
	return u.String(), u.Hostname(), nil
}

// ValidateListingURL checks that raw is an absolute http(s) URL on the
// platform's domain and returns its normalized form.
func ValidateListingURL(p project.Platform, raw string) (string, error) {
	r, ok := routes[p]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, p)
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAbsolute, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrNotAbsolute
	}
	if !HostMatches(u.Hostname(), r.domain) {
		return "", fmt.Errorf("%w: %s is not %s", ErrWrongHost, u.Hostname(), r.domain)
	}
	if r.idInURL.MatchString(u.Path) {
		return "", ErrNotListing
	}
	normalized, _, err := Normalize(u.String())
	if err != nil {
		return "", err
	}
	return normalized, nil
}

// HostMatches reports whether host is domain or one of its subdomains.
func HostMatches(host, domain string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// BaseURL is the scheme and host detail pages are served from.
func BaseURL(p project.Platform) string {
	return routes[p].base
}

// DetailURL builds the detail page URL for id. An empty base uses the
// platform default.
func DetailURL(base string, p project.Platform, id string) string {
	r := routes[p]
	if base == "" {
		base = r.base
	}
	return strings.TrimSuffix(base, "/") + fmt.Sprintf(r.detail, url.PathEscape(id))
}

// ExternalID extracts the listing id from a detail link, absolute or
// relative.
func ExternalID(p project.Platform, href string) (string, bool) {
	r, ok := routes[p]
	if !ok {
		return "", false
	}
	m := r.idInURL.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean(p)
	if clean == "." {
		return "/"
	}
	return clean
}

func normalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	for key := range values {
		lk := strings.ToLower(key)
		if strings.HasPrefix(lk, "utm_") || lk == "gclid" || lk == "fbclid" || lk == "ref" {
			delete(values, key)
		}
	}
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	normalized := url.Values{}
	for _, k := range keys {
		normalized[k] = values[k]
	}
	return normalized.Encode()
}
