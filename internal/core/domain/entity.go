package domain

import (
	"fmt"
	"strings"
)

// EntityKind identifies a mirrored record type. The value doubles as the
// table name in the backing store.
type EntityKind string

// Entity kinds in dependency order: a later kind may reference an earlier one.
const (
	KindCircuit     EntityKind = "circuits"
	KindConstructor EntityKind = "constructors"
	KindRace        EntityKind = "races"
	KindDriver      EntityKind = "drivers"
	KindResult      EntityKind = "results"
)

// AllKinds returns every entity kind in sync order.
func AllKinds() []EntityKind {
	return []EntityKind{KindCircuit, KindConstructor, KindRace, KindDriver, KindResult}
}

// SeasonKinds returns the kinds that are partitioned by season.
func SeasonKinds() []EntityKind {
	return []EntityKind{KindConstructor, KindRace, KindDriver, KindResult}
}

// IsValid reports whether k is a known entity kind.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindCircuit, KindConstructor, KindRace, KindDriver, KindResult:
		return true
	}
	return false
}

// Partitioned reports whether rows of this kind carry a season.
func (k EntityKind) Partitioned() bool {
	return k.IsValid() && k != KindCircuit
}

// String returns the kind name.
func (k EntityKind) String() string {
	return string(k)
}

// ParseEntityKind accepts singular or plural names, case-insensitively.
func ParseEntityKind(s string) (EntityKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasSuffix(name, "s") {
		name += "s"
	}
	k := EntityKind(name)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
	return k, nil
}

// Embeddable is implemented by every mirrored record.
// Describe renders the record as one natural-language sentence; that sentence
// is what gets embedded and what retrieval hands to the chat model.
type Embeddable interface {
	// Kind returns the record's entity kind.
	Kind() EntityKind

	// EntityID returns a stable identifier derived from the natural key.
	EntityID() string

	// Describe renders the record as a sentence.
	Describe() string
}

// capitalise upper-cases the first letter of an identifier slug.
func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
