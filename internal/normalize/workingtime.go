package normalize

import (
	"regexp"
	"strings"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

var (
	leadingNumber     = regexp.MustCompile(`\d+`)
	prefixUnitPattern = regexp.MustCompile(`^(週|月)(?:に)?(\d+)時間`)
)

// ParseWorkingTime reads "<amount>/<unit>" ("30時間/週", "10時間以下/週")
// or "<unit><amount>時間" ("週20時間程度").
func ParseWorkingTime(raw string) (*project.WorkingTime, error) {
	s := compact(raw)
	if s == "" || s == "不問" {
		return nil, nil
	}

	if amountPart, unitPart, ok := strings.Cut(s, "/"); ok {
		unit, ok := workingUnit(unitPart)
		if !ok {
			return nil, parseErr("working time", raw)
		}
		n := leadingNumber.FindString(amountPart)
		if n == "" {
			return nil, parseErr("working time", raw)
		}
		amount, err := atoi(n)
		if err != nil {
			return nil, parseErr("working time", raw)
		}
		return &project.WorkingTime{Unit: unit, Amount: amount}, nil
	}

	if m := prefixUnitPattern.FindStringSubmatch(s); m != nil {
		unit, _ := workingUnit(m[1])
		amount, err := atoi(m[2])
		if err != nil {
			return nil, parseErr("working time", raw)
		}
		return &project.WorkingTime{Unit: unit, Amount: amount}, nil
	}

	return nil, parseErr("working time", raw)
}

func workingUnit(s string) (project.WorkingTimeUnit, bool) {
	switch s {
	case "週":
		return project.PerWeek, true
	case "月":
		return project.PerMonth, true
	default:
		return "", false
	}
}
