package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

type seasonKey struct {
	ref    string
	season int
}

type raceKey struct {
	season int
	round  int
}

// RecordStore is an in-memory implementation of driven.RecordStore.
// Upserts keep an existing row's embedding; only the EmbeddingStore writes vectors.
type RecordStore struct {
	mu           sync.RWMutex
	circuits     map[string]domain.Circuit
	constructors map[seasonKey]domain.Constructor
	races        map[raceKey]domain.Race
	drivers      map[domain.DriverKey]domain.Driver
	results      map[domain.ResultKey]domain.Result
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		circuits:     make(map[string]domain.Circuit),
		constructors: make(map[seasonKey]domain.Constructor),
		races:        make(map[raceKey]domain.Race),
		drivers:      make(map[domain.DriverKey]domain.Driver),
		results:      make(map[domain.ResultKey]domain.Result),
	}
}

// UpsertCircuits inserts or updates circuits by id.
func (s *RecordStore) UpsertCircuits(_ context.Context, circuits []domain.Circuit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range circuits {
		if old, ok := s.circuits[c.CircuitID]; ok && c.Embedding == nil {
			c.Embedding = old.Embedding
		}
		s.circuits[c.CircuitID] = c
	}
	return nil
}

// UpsertConstructors inserts or updates constructors by (ref, season).
func (s *RecordStore) UpsertConstructors(_ context.Context, constructors []domain.Constructor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range constructors {
		k := seasonKey{c.ConstructorRef, c.Season}
		if old, ok := s.constructors[k]; ok && c.Embedding == nil {
			c.Embedding = old.Embedding
		}
		s.constructors[k] = c
	}
	return nil
}

// UpsertRaces inserts or updates races by (season, round).
func (s *RecordStore) UpsertRaces(_ context.Context, races []domain.Race) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range races {
		k := raceKey{r.Season, r.Round}
		if old, ok := s.races[k]; ok && r.Embedding == nil {
			r.Embedding = old.Embedding
		}
		s.races[k] = r
	}
	return nil
}

// UpsertDrivers inserts or updates drivers by (ref, season).
func (s *RecordStore) UpsertDrivers(_ context.Context, drivers []domain.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range drivers {
		k := domain.DriverKey{DriverRef: d.DriverRef, Season: d.Season}
		if old, ok := s.drivers[k]; ok && d.Embedding == nil {
			d.Embedding = old.Embedding
		}
		s.drivers[k] = d
	}
	return nil
}

// UpsertResults inserts or updates results by (season, circuit, driver).
func (s *RecordStore) UpsertResults(_ context.Context, results []domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		k := r.Key()
		if old, ok := s.results[k]; ok && r.Embedding == nil {
			r.Embedding = old.Embedding
		}
		s.results[k] = r
	}
	return nil
}

// ListCircuits returns circuits ordered by id.
func (s *RecordStore) ListCircuits(_ context.Context) ([]domain.Circuit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Circuit, 0, len(s.circuits))
	for _, c := range s.circuits {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Circuit) int { return cmp.Compare(a.CircuitID, b.CircuitID) })
	return out, nil
}

// ListConstructors returns constructors ordered by season then ref.
func (s *RecordStore) ListConstructors(_ context.Context, season int) ([]domain.Constructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Constructor
	for _, c := range s.constructors {
		if season == 0 || c.Season == season {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Constructor) int {
		return cmp.Or(cmp.Compare(a.Season, b.Season), cmp.Compare(a.ConstructorRef, b.ConstructorRef))
	})
	return out, nil
}

// ListRaces returns races ordered by season then round.
func (s *RecordStore) ListRaces(_ context.Context, season int) ([]domain.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Race
	for _, r := range s.races {
		if season == 0 || r.Season == season {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b domain.Race) int {
		return cmp.Or(cmp.Compare(a.Season, b.Season), cmp.Compare(a.Round, b.Round))
	})
	return out, nil
}

// ListDrivers returns drivers ordered by season then ref.
func (s *RecordStore) ListDrivers(_ context.Context, season int) ([]domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Driver
	for _, d := range s.drivers {
		if season == 0 || d.Season == season {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b domain.Driver) int {
		return cmp.Or(cmp.Compare(a.Season, b.Season), cmp.Compare(a.DriverRef, b.DriverRef))
	})
	return out, nil
}

// ListResults returns results ordered by season, round, then driver.
func (s *RecordStore) ListResults(_ context.Context, season int) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Result
	for _, r := range s.results {
		if season == 0 || r.Season == season {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b domain.Result) int {
		return cmp.Or(cmp.Compare(a.Season, b.Season), cmp.Compare(a.Round, b.Round), cmp.Compare(a.DriverRef, b.DriverRef))
	})
	return out, nil
}

// ExistingCircuits returns the subset of ids already stored.
func (s *RecordStore) ExistingCircuits(_ context.Context, ids []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]bool)
	for _, id := range ids {
		if _, ok := s.circuits[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

// ExistingDrivers returns the subset of keys already stored.
func (s *RecordStore) ExistingDrivers(_ context.Context, keys []domain.DriverKey) (map[domain.DriverKey]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[domain.DriverKey]bool)
	for _, k := range keys {
		if _, ok := s.drivers[k]; ok {
			found[k] = true
		}
	}
	return found, nil
}

// Seasons returns the distinct seasons present for kind, ascending.
func (s *RecordStore) Seasons(_ context.Context, kind domain.EntityKind) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(domain.YearSet)
	switch kind {
	case domain.KindConstructor:
		for k := range s.constructors {
			set[k.season] = struct{}{}
		}
	case domain.KindRace:
		for k := range s.races {
			set[k.season] = struct{}{}
		}
	case domain.KindDriver:
		for k := range s.drivers {
			set[k.Season] = struct{}{}
		}
	case domain.KindResult:
		for k := range s.results {
			set[k.Season] = struct{}{}
		}
	case domain.KindCircuit:
		return nil, domain.ErrNotPartitioned
	default:
		return nil, domain.ErrUnsupportedKind
	}
	return set.Sorted(), nil
}

// Count returns the number of rows of kind.
func (s *RecordStore) Count(_ context.Context, kind domain.EntityKind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch kind {
	case domain.KindCircuit:
		return len(s.circuits), nil
	case domain.KindConstructor:
		return len(s.constructors), nil
	case domain.KindRace:
		return len(s.races), nil
	case domain.KindDriver:
		return len(s.drivers), nil
	case domain.KindResult:
		return len(s.results), nil
	}
	return 0, domain.ErrUnsupportedKind
}

// setEmbedding writes a vector onto the row identified by kind and entity id.
func (s *RecordStore) setEmbedding(kind domain.EntityKind, entityID string, vec []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case domain.KindCircuit:
		if c, ok := s.circuits[entityID]; ok {
			c.Embedding = vec
			s.circuits[entityID] = c
			return nil
		}
	case domain.KindConstructor:
		for k, c := range s.constructors {
			if c.EntityID() == entityID {
				c.Embedding = vec
				s.constructors[k] = c
				return nil
			}
		}
	case domain.KindRace:
		for k, r := range s.races {
			if r.EntityID() == entityID {
				r.Embedding = vec
				s.races[k] = r
				return nil
			}
		}
	case domain.KindDriver:
		for k, d := range s.drivers {
			if d.EntityID() == entityID {
				d.Embedding = vec
				s.drivers[k] = d
				return nil
			}
		}
	case domain.KindResult:
		for k, r := range s.results {
			if r.EntityID() == entityID {
				r.Embedding = vec
				s.results[k] = r
				return nil
			}
		}
	default:
		return domain.ErrUnsupportedKind
	}
	return domain.ErrNotFound
}
