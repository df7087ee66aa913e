package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

// moneySentinels mean the client wants a quote; the budget is absent.
var moneySentinels = map[string]struct{}{
	"":          {},
	"見積り希望":     {},
	"見積もり希望":    {},
	"ワーカーと相談する": {},
	"相談して決める":   {},
	"応相談":       {},
}

// Digit groups are bounded so the total always fits in an int64.
var yenPattern = regexp.MustCompile(`^(?:(\d{1,9})万)?(?:(\d{1,9})千)?(\d{0,15})円?$`)

// ParseMoney parses a budget string. Accepted forms, checked in order:
// a negotiable sentinel (nil result), "X未満", "X以上", "A〜B" with either
// end optional, and a single amount.
func ParseMoney(raw string) (*project.Range[project.Yen], error) {
	s := compact(raw)
	if _, ok := moneySentinels[s]; ok {
		return nil, nil
	}

	if v, ok := strings.CutSuffix(s, "未満"); ok {
		yen, err := parseYen(v)
		if err != nil {
			return nil, parseErr("money", raw)
		}
		return project.AtMost(yen), nil
	}

	if v, ok := strings.CutSuffix(s, "以上"); ok {
		yen, err := parseYen(v)
		if err != nil {
			return nil, parseErr("money", raw)
		}
		return project.AtLeast(yen), nil
	}

	if left, right, ok := cutRange(s); ok {
		if left == "" && right == "" {
			return nil, parseErr("money", raw)
		}
		var lo, hi *project.Yen
		if left != "" {
			v, err := parseYen(left)
			if err != nil {
				return nil, parseErr("money", raw)
			}
			lo = &v
		}
		if right != "" {
			v, err := parseYen(right)
			if err != nil {
				return nil, parseErr("money", raw)
			}
			hi = &v
		}
		r, err := project.NewRange(lo, hi)
		if err != nil {
			return nil, parseErr("money", raw)
		}
		return r, nil
	}

	v, err := parseYen(s)
	if err != nil {
		return nil, parseErr("money", raw)
	}
	return project.Point(v), nil
}

// parseYen reads one amount in the unit grammar: 万 and 千 magnitudes,
// comma-grouped digits and an optional 円 suffix. Hourly decorations such as
// a 時給 prefix or a /時間 suffix are accepted.
func parseYen(s string) (project.Yen, error) {
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "時給")
	s = strings.TrimPrefix(s, "¥")
	for _, suffix := range []string{"/時間", "/時", "/h"} {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.ReplaceAll(s, ",", "")

	m := yenPattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return 0, parseErr("money", s)
	}
	var total int64
	for i, mult := range []int64{10000, 1000, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return 0, parseErr("money", s)
		}
		total += n * mult
	}
	return project.Yen(total), nil
}
