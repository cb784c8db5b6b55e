package domain

import (
	"fmt"
	"strings"
)

// Constructor is a team entry for one season.
// (ConstructorRef, Season) is the natural key.
type Constructor struct {
	ConstructorRef string
	Season         int
	Name           string
	Nationality    string
	URL            string

	Embedding []float32
}

// Validate checks the natural key.
func (c *Constructor) Validate() error {
	c.ConstructorRef = strings.TrimSpace(c.ConstructorRef)
	if c.ConstructorRef == "" {
		return fmt.Errorf("%w: constructor without reference", ErrMalformedRecord)
	}
	if c.Season < FirstSeason {
		return fmt.Errorf("%w: constructor %s has season %d", ErrMalformedRecord, c.ConstructorRef, c.Season)
	}
	if c.Name == "" {
		c.Name = capitalise(c.ConstructorRef)
	}
	if c.Nationality == "" {
		c.Nationality = Unknown
	}
	return nil
}

// Kind implements Embeddable.
func (c Constructor) Kind() EntityKind { return KindConstructor }

// EntityID implements Embeddable.
func (c Constructor) EntityID() string { return fmt.Sprintf("%s/%d", c.ConstructorRef, c.Season) }

// Describe implements Embeddable.
func (c Constructor) Describe() string {
	return fmt.Sprintf("%s is a %s constructor that competed in the %d season.",
		c.Name, c.Nationality, c.Season)
}
