package project

import (
	"cmp"
	"errors"
	"fmt"
)

type WageType string

const (
	WageFixed WageType = "fixed"
	WageTime  WageType = "time"
)

// Yen is an amount of money in Japanese yen.
type Yen int64

// Weeks is an engagement length; one month counts as four weeks.
type Weeks int

// ErrInvertedRange reports a range whose min exceeds its max.
var ErrInvertedRange = errors.New("range min exceeds max")

// Range is an interval whose ends are independently optional.
// A nil end is open. Min never exceeds Max when both are set.
type Range[T cmp.Ordered] struct {
	Min *T `json:"min,omitempty"`
	Max *T `json:"max,omitempty"`
}

// NewRange builds a range from optional ends, rejecting min > max.
func NewRange[T cmp.Ordered](min, max *T) (*Range[T], error) {
	r := &Range[T]{Min: min, Max: max}
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %v > %v", ErrInvertedRange, *min, *max)
	}
	return r, nil
}

// Point is a closed range holding a single value.
func Point[T cmp.Ordered](v T) *Range[T] {
	lo, hi := v, v
	return &Range[T]{Min: &lo, Max: &hi}
}

func AtMost[T cmp.Ordered](v T) *Range[T] {
	return &Range[T]{Max: &v}
}

func AtLeast[T cmp.Ordered](v T) *Range[T] {
	return &Range[T]{Min: &v}
}

func (r *Range[T]) Valid() bool {
	if r == nil || r.Min == nil || r.Max == nil {
		return true
	}
	return *r.Min <= *r.Max
}

type WorkingTimeUnit string

const (
	PerWeek  WorkingTimeUnit = "week"
	PerMonth WorkingTimeUnit = "month"
)

// WorkingTime is an expected workload in hours per Unit.
type WorkingTime struct {
	Unit   WorkingTimeUnit `json:"unit"`
	Amount int             `json:"amount"`
}
