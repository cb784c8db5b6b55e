package domain

import (
	"fmt"
	"strings"
	"time"
)

// DriverProfileURL is the reference page used for placeholder drivers.
const DriverProfileURL = "https://en.wikipedia.org/wiki/Formula_1"

// PlaceholderBirthDate is the date of birth given to synthesised drivers.
const PlaceholderBirthDate = "1900-01-01"

// Driver is a driver entry for one season.
// (DriverRef, Season) is the natural key.
type Driver struct {
	DriverRef string
	Season    int

	// Number is the permanent car number, empty when the source has none.
	Number string

	// Code is the three-letter abbreviation, empty when the source has none.
	Code string

	GivenName   string
	FamilyName  string
	DateOfBirth string
	Nationality string
	URL         string

	Embedding []float32
}

// PlaceholderDriver synthesises a driver referenced by a result that the
// season's driver table does not contain.
func PlaceholderDriver(ref string, season int) Driver {
	return Driver{
		DriverRef:   ref,
		Season:      season,
		GivenName:   capitalise(ref),
		FamilyName:  Unknown,
		DateOfBirth: PlaceholderBirthDate,
		Nationality: Unknown,
		URL:         DriverProfileURL,
	}
}

// Validate checks the natural key and the date format.
func (d *Driver) Validate() error {
	d.DriverRef = strings.TrimSpace(d.DriverRef)
	if d.DriverRef == "" {
		return fmt.Errorf("%w: driver without reference", ErrMalformedRecord)
	}
	if d.Season < FirstSeason {
		return fmt.Errorf("%w: driver %s has season %d", ErrMalformedRecord, d.DriverRef, d.Season)
	}
	if d.DateOfBirth != "" {
		if _, err := time.Parse(time.DateOnly, d.DateOfBirth); err != nil {
			return fmt.Errorf("%w: driver %s has date of birth %q", ErrMalformedRecord, d.DriverRef, d.DateOfBirth)
		}
	}
	if d.Nationality == "" {
		d.Nationality = Unknown
	}
	return nil
}

// FullName joins given and family names.
func (d Driver) FullName() string {
	return strings.TrimSpace(d.GivenName + " " + d.FamilyName)
}

// Kind implements Embeddable.
func (d Driver) Kind() EntityKind { return KindDriver }

// EntityID implements Embeddable.
func (d Driver) EntityID() string { return fmt.Sprintf("%s/%d", d.DriverRef, d.Season) }

// Describe implements Embeddable.
func (d Driver) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %s driver", d.FullName(), d.Nationality)
	if d.DateOfBirth != "" {
		fmt.Fprintf(&b, " born on %s", d.DateOfBirth)
	}
	fmt.Fprintf(&b, " who raced in the %d season", d.Season)
	if d.Number != "" {
		fmt.Fprintf(&b, " with car number %s", d.Number)
	}
	if d.Code != "" {
		fmt.Fprintf(&b, " under the code %s", d.Code)
	}
	b.WriteString(".")
	return b.String()
}

// DriverKey identifies a driver in one season.
type DriverKey struct {
	DriverRef string
	Season    int
}
