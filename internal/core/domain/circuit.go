package domain

import (
	"fmt"
	"strings"
)

// CircuitListURL is the reference page used for placeholder circuits.
const CircuitListURL = "https://en.wikipedia.org/wiki/List_of_Formula_One_circuits"

// Unknown is the sentinel used for placeholder text fields.
const Unknown = "Unknown"

// Circuit is a racing venue. Circuits are not partitioned by season.
type Circuit struct {
	// CircuitID is the upstream slug, unique across the catalog.
	CircuitID string

	Name      string
	Locality  string
	Country   string
	Latitude  float64
	Longitude float64
	URL       string

	// Embedding is the inline copy of the row's vector, if generated.
	Embedding []float32
}

// PlaceholderCircuit synthesises a circuit referenced by a result before the
// catalog contained it.
func PlaceholderCircuit(circuitID string) Circuit {
	return Circuit{
		CircuitID: circuitID,
		Name:      "Circuit " + capitalise(circuitID),
		Locality:  Unknown,
		Country:   Unknown,
		URL:       CircuitListURL,
	}
}

// Validate checks required fields and fills geographic defaults.
func (c *Circuit) Validate() error {
	c.CircuitID = strings.TrimSpace(c.CircuitID)
	if c.CircuitID == "" {
		return fmt.Errorf("%w: circuit without id", ErrMalformedRecord)
	}
	if c.Name == "" {
		c.Name = "Circuit " + capitalise(c.CircuitID)
	}
	if c.Locality == "" {
		c.Locality = Unknown
	}
	if c.Country == "" {
		c.Country = Unknown
	}
	return nil
}

// Kind implements Embeddable.
func (c Circuit) Kind() EntityKind { return KindCircuit }

// EntityID implements Embeddable.
func (c Circuit) EntityID() string { return c.CircuitID }

// Describe implements Embeddable.
func (c Circuit) Describe() string {
	return fmt.Sprintf("The %s circuit is located in %s, %s (latitude %.4f, longitude %.4f).",
		c.Name, c.Locality, c.Country, c.Latitude, c.Longitude)
}
