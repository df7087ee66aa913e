package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

var (
	datePattern     = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	relativePattern = regexp.MustCompile(`^(?:あと)?(\d+)日間$`)
)

// ParseDate finds a YYYY年M月D日 date and returns midnight of that day in
// UTC+9. Blank input is absent (nil, nil).
func ParseDate(raw string) (*time.Time, error) {
	s := compact(raw)
	if s == "" {
		return nil, nil
	}
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, parseErr("date", raw)
	}
	// datePattern bounds every group, so these conversions cannot fail.
	y, _ := atoi(m[1])
	mo, _ := atoi(m[2])
	d, _ := atoi(m[3])
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, project.JST)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return nil, parseErr("date", raw)
	}
	return &t, nil
}

// ParseDateOr is ParseDate where any of the absent strings also mean
// "no date", e.g. "ご相談" or "-".
func ParseDateOr(raw string, absent ...string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, a := range absent {
		if s == a {
			return nil, nil
		}
	}
	return ParseDate(s)
}

// ParseRelativeDate accepts "N日間" as N days after base, falling back to
// ParseDate for absolute dates.
func ParseRelativeDate(raw string, base time.Time) (*time.Time, error) {
	if m := relativePattern.FindStringSubmatch(compact(raw)); m != nil {
		days, err := atoi(m[1])
		if err != nil {
			return nil, parseErr("date", raw)
		}
		b := base.In(project.JST)
		t := time.Date(b.Year(), b.Month(), b.Day()+days, 0, 0, 0, 0, project.JST)
		return &t, nil
	}
	return ParseDate(raw)
}
