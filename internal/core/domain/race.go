package domain

import (
	"fmt"
	"strings"
	"time"
)

// Race is one round of a season. (Season, Round) is the natural key.
type Race struct {
	Season    int
	Round     int
	CircuitID string
	Name      string

	// Date is the race day in YYYY-MM-DD form.
	Date string

	// Time is the UTC start time, empty for older seasons.
	Time string

	URL string

	Embedding []float32
}

// Validate checks the natural key and the circuit reference.
func (r *Race) Validate() error {
	if r.Season < FirstSeason {
		return fmt.Errorf("%w: race has season %d", ErrMalformedRecord, r.Season)
	}
	if r.Round <= 0 {
		return fmt.Errorf("%w: race %d has round %d", ErrMalformedRecord, r.Season, r.Round)
	}
	r.CircuitID = strings.TrimSpace(r.CircuitID)
	if r.CircuitID == "" {
		return fmt.Errorf("%w: race %d/%d has no circuit", ErrMalformedRecord, r.Season, r.Round)
	}
	if r.Date != "" {
		if _, err := time.Parse(time.DateOnly, r.Date); err != nil {
			return fmt.Errorf("%w: race %d/%d has date %q", ErrMalformedRecord, r.Season, r.Round, r.Date)
		}
	}
	return nil
}

// Kind implements Embeddable.
func (r Race) Kind() EntityKind { return KindRace }

// EntityID implements Embeddable.
func (r Race) EntityID() string { return fmt.Sprintf("%d/%d", r.Season, r.Round) }

// Describe implements Embeddable.
func (r Race) Describe() string {
	s := fmt.Sprintf("The %d %s was round %d of the season, held at circuit %s",
		r.Season, r.Name, r.Round, r.CircuitID)
	if r.Date != "" {
		s += " on " + r.Date
	}
	return s + "."
}
