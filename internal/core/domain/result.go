package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PositionDNF is stored when the source has no finishing position.
const PositionDNF = "DNF"

// Result is one driver's classification in one race.
//
// Round ties the result to the race it came from. The upsert and
// deduplication key is (Season, CircuitID, DriverRef).
type Result struct {
	Season         int
	Round          int
	CircuitID      string
	DriverRef      string
	ConstructorRef string

	// Grid is the starting position, nil when unknown.
	Grid *int

	// Position is the finishing position or PositionDNF.
	Position string

	Points float64
	Status string

	Embedding []float32
}

// ResultKey is the natural key of a result row. Round is not part of it, so
// two races held at the same circuit in one season (2020 Austrian and Styrian
// Grands Prix) share keys and only the later round's results are kept.
type ResultKey struct {
	Season    int
	CircuitID string
	DriverRef string
}

// Key returns the natural key.
func (r Result) Key() ResultKey {
	return ResultKey{Season: r.Season, CircuitID: r.CircuitID, DriverRef: r.DriverRef}
}

// DriverKey returns the (driver, season) reference the result depends on.
func (r Result) DriverKey() DriverKey {
	return DriverKey{DriverRef: r.DriverRef, Season: r.Season}
}

// Validate checks references and fills the position sentinel.
func (r *Result) Validate() error {
	if r.Season < FirstSeason {
		return fmt.Errorf("%w: result has season %d", ErrMalformedRecord, r.Season)
	}
	if r.Round <= 0 {
		return fmt.Errorf("%w: result in %d has round %d", ErrMalformedRecord, r.Season, r.Round)
	}
	if strings.TrimSpace(r.CircuitID) == "" || strings.TrimSpace(r.DriverRef) == "" {
		return fmt.Errorf("%w: result %d/%d is missing circuit or driver", ErrMalformedRecord, r.Season, r.Round)
	}
	if r.Position == "" {
		r.Position = PositionDNF
	}
	return nil
}

// Kind implements Embeddable.
func (r Result) Kind() EntityKind { return KindResult }

// EntityID implements Embeddable.
func (r Result) EntityID() string {
	return fmt.Sprintf("%d/%s/%s", r.Season, r.CircuitID, r.DriverRef)
}

// Describe implements Embeddable.
func (r Result) Describe() string {
	grid := "an unknown grid slot"
	if r.Grid != nil {
		grid = "grid position " + strconv.Itoa(*r.Grid)
	}
	finish := "finished in position " + r.Position
	if r.Position == PositionDNF {
		finish = "did not finish"
	}
	return fmt.Sprintf("In round %d of the %d season at circuit %s, driver %s driving for %s started from %s, %s (%s) and scored %s points.",
		r.Round, r.Season, r.CircuitID, r.DriverRef, r.ConstructorRef, grid, finish, r.Status,
		strconv.FormatFloat(r.Points, 'f', -1, 64))
}
