package ergast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

func toCircuit(c apiCircuit) (domain.Circuit, error) {
	out := domain.Circuit{
		CircuitID: c.CircuitID,
		Name:      c.CircuitName,
		Locality:  c.Location.Locality,
		Country:   c.Location.Country,
		URL:       c.URL,
	}
	var err error
	if out.Latitude, err = parseFloat(c.Location.Lat); err != nil {
		return out, fmt.Errorf("%w: circuit %s latitude: %w", domain.ErrMalformedRecord, c.CircuitID, err)
	}
	if out.Longitude, err = parseFloat(c.Location.Long); err != nil {
		return out, fmt.Errorf("%w: circuit %s longitude: %w", domain.ErrMalformedRecord, c.CircuitID, err)
	}
	return out, out.Validate()
}

func toDriver(d apiDriver, season int) (domain.Driver, error) {
	out := domain.Driver{
		DriverRef:   d.DriverID,
		Season:      season,
		Number:      d.PermanentNumber,
		Code:        d.Code,
		GivenName:   d.GivenName,
		FamilyName:  d.FamilyName,
		DateOfBirth: d.DateOfBirth,
		Nationality: d.Nationality,
		URL:         d.URL,
	}
	return out, out.Validate()
}

func toConstructor(c apiConstructor, season int) (domain.Constructor, error) {
	out := domain.Constructor{
		ConstructorRef: c.ConstructorID,
		Season:         season,
		Name:           c.Name,
		Nationality:    c.Nationality,
		URL:            c.URL,
	}
	return out, out.Validate()
}

func toRace(r apiRace, season int) (domain.Race, error) {
	round, err := strconv.Atoi(r.Round)
	if err != nil {
		return domain.Race{}, fmt.Errorf("%w: race %q round %q", domain.ErrMalformedRecord, r.RaceName, r.Round)
	}
	out := domain.Race{
		Season:    season,
		Round:     round,
		CircuitID: r.Circuit.CircuitID,
		Name:      r.RaceName,
		Date:      r.Date,
		Time:      r.Time,
		URL:       r.URL,
	}
	return out, out.Validate()
}

// toResult builds a result from a row and the race object it was nested in,
// so the round always matches the race.
func toResult(res apiResult, race domain.Race) (domain.Result, error) {
	out := domain.Result{
		Season:         race.Season,
		Round:          race.Round,
		CircuitID:      race.CircuitID,
		DriverRef:      res.Driver.DriverID,
		ConstructorRef: res.Constructor.ConstructorID,
		Position:       res.Position,
		Status:         res.Status,
	}
	if g := strings.TrimSpace(res.Grid); g != "" {
		grid, err := strconv.Atoi(g)
		if err != nil {
			return out, fmt.Errorf("%w: result %s grid %q", domain.ErrMalformedRecord, res.Driver.DriverID, res.Grid)
		}
		out.Grid = &grid
	}
	points, err := parseFloat(res.Points)
	if err != nil {
		return out, fmt.Errorf("%w: result %s points %q", domain.ErrMalformedRecord, res.Driver.DriverID, res.Points)
	}
	out.Points = points
	return out, out.Validate()
}

// parseFloat treats an empty string as zero.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseCount reads the MRData counters, treating garbage as zero.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
