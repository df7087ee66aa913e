package normalize

import (
	"math"
	"regexp"
	"strings"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

const weeksPerMonth = 4

var periodPattern = regexp.MustCompile(`^(\d+)(週間|週|[ヶかカヵケ箇]月間?)?$`)

// ParsePeriod converts an engagement period to weeks. Supports "A〜B"
// (either end optional, a bare left number takes the right unit), "X以上",
// "X以内", "X未満" and a single value. "程度" is ignored.
func ParsePeriod(raw string) (*project.Range[project.Weeks], error) {
	s := compact(raw)
	if s == "" || s == "不問" {
		return nil, nil
	}
	s = strings.TrimSuffix(s, "程度")

	if left, right, ok := cutRange(s); ok {
		var lo, hi *project.Weeks
		unit := ""
		if right != "" {
			v, u, err := periodValue(right, "")
			if err != nil {
				return nil, parseErr("period", raw)
			}
			hi, unit = &v, u
		}
		if left != "" {
			v, _, err := periodValue(left, unit)
			if err != nil {
				return nil, parseErr("period", raw)
			}
			lo = &v
		}
		if lo == nil && hi == nil {
			return nil, parseErr("period", raw)
		}
		r, err := project.NewRange(lo, hi)
		if err != nil {
			return nil, parseErr("period", raw)
		}
		return r, nil
	}

	if v, ok := strings.CutSuffix(s, "以上"); ok {
		w, _, err := periodValue(v, "")
		if err != nil {
			return nil, parseErr("period", raw)
		}
		return project.AtLeast(w), nil
	}

	for _, suffix := range []string{"以内", "未満"} {
		if v, ok := strings.CutSuffix(s, suffix); ok {
			w, _, err := periodValue(v, "")
			if err != nil {
				return nil, parseErr("period", raw)
			}
			return project.AtMost(w), nil
		}
	}

	w, _, err := periodValue(s, "")
	if err != nil {
		return nil, parseErr("period", raw)
	}
	return project.Point(w), nil
}

// periodValue parses "N週間" or "Nヶ月". A number without a unit takes
// inherit, and fails when inherit is empty.
func periodValue(s, inherit string) (project.Weeks, string, error) {
	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", parseErr("period", s)
	}
	unit := m[2]
	if unit == "" {
		unit = inherit
	}
	n, err := atoi(m[1])
	if err != nil || n > math.MaxInt/weeksPerMonth {
		return 0, "", parseErr("period", s)
	}
	switch {
	case unit == "":
		return 0, "", parseErr("period", s)
	case strings.HasPrefix(unit, "週"):
		return project.Weeks(n), unit, nil
	default:
		return project.Weeks(n * weeksPerMonth), unit, nil
	}
}
