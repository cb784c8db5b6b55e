package domain

import (
	"fmt"
	"sort"
	"time"
)

// FirstSeason is the first Formula 1 world championship season.
const FirstSeason = 1950

// CurrentSeason returns the season for the given instant.
func CurrentSeason(now time.Time) int {
	return now.Year()
}

// SeasonRange is an inclusive range of seasons.
type SeasonRange struct {
	From int
	To   int
}

// DefaultSeasonRange returns FirstSeason..current year.
func DefaultSeasonRange(now time.Time) SeasonRange {
	return SeasonRange{From: FirstSeason, To: CurrentSeason(now)}
}

// Validate checks the range lies inside FirstSeason..current year.
func (r SeasonRange) Validate(now time.Time) error {
	if r.From < FirstSeason {
		return fmt.Errorf("%w: season %d is before %d", ErrInvalidInput, r.From, FirstSeason)
	}
	if r.To > CurrentSeason(now) {
		return fmt.Errorf("%w: season %d is in the future", ErrInvalidInput, r.To)
	}
	if r.From > r.To {
		return fmt.Errorf("%w: range %d..%d is empty", ErrInvalidInput, r.From, r.To)
	}
	return nil
}

// Years lists every season in the range in ascending order.
func (r SeasonRange) Years() []int {
	if r.From > r.To {
		return nil
	}
	years := make([]int, 0, r.To-r.From+1)
	for y := r.From; y <= r.To; y++ {
		years = append(years, y)
	}
	return years
}

// Contains reports whether year falls inside the range.
func (r SeasonRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// YearSet is a set of seasons.
type YearSet map[int]struct{}

// NewYearSet builds a set from a list of years.
func NewYearSet(years ...int) YearSet {
	s := make(YearSet, len(years))
	for _, y := range years {
		s[y] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s YearSet) Has(year int) bool {
	_, ok := s[year]
	return ok
}

// Intersect returns the years present in both sets.
func (s YearSet) Intersect(other YearSet) YearSet {
	out := make(YearSet)
	for y := range s {
		if other.Has(y) {
			out[y] = struct{}{}
		}
	}
	return out
}

// Minus returns the years in s that are not in other.
func (s YearSet) Minus(other YearSet) YearSet {
	out := make(YearSet)
	for y := range s {
		if !other.Has(y) {
			out[y] = struct{}{}
		}
	}
	return out
}

// Sorted returns the years in ascending order.
func (s YearSet) Sorted() []int {
	years := make([]int, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
