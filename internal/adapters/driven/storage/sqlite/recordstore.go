package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// maxQueryParams keeps IN lists under SQLite's host parameter limit.
const maxQueryParams = 500

// recordStore implements driven.RecordStore.
// An upserted row without an embedding keeps the stored one.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// tableFor maps an entity kind to its table.
func tableFor(kind domain.EntityKind) (string, error) {
	switch kind {
	case domain.KindCircuit:
		return "circuits", nil
	case domain.KindConstructor:
		return "constructors", nil
	case domain.KindRace:
		return "races", nil
	case domain.KindDriver:
		return "drivers", nil
	case domain.KindResult:
		return "results", nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
}

// UpsertCircuits inserts or updates circuits by id.
func (s *recordStore) UpsertCircuits(ctx context.Context, circuits []domain.Circuit) error {
	err := s.store.execBatch(ctx, `
		INSERT INTO circuits (entity_id, name, locality, country, lat, lng, url, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			name = excluded.name,
			locality = excluded.locality,
			country = excluded.country,
			lat = excluded.lat,
			lng = excluded.lng,
			url = excluded.url,
			embedding = COALESCE(excluded.embedding, circuits.embedding)
	`, len(circuits), func(i int) ([]any, error) {
		c := circuits[i]
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return []any{c.CircuitID, c.Name, c.Locality, c.Country, c.Latitude, c.Longitude, c.URL,
			float32SliceToBytes(c.Embedding)}, nil
	})
	if err != nil {
		return fmt.Errorf("saving circuits: %w", err)
	}
	return nil
}

// UpsertConstructors inserts or updates constructors by (ref, season).
func (s *recordStore) UpsertConstructors(ctx context.Context, constructors []domain.Constructor) error {
	err := s.store.execBatch(ctx, `
		INSERT INTO constructors (entity_id, constructor_ref, season, name, nationality, url, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			name = excluded.name,
			nationality = excluded.nationality,
			url = excluded.url,
			embedding = COALESCE(excluded.embedding, constructors.embedding)
	`, len(constructors), func(i int) ([]any, error) {
		c := constructors[i]
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return []any{c.EntityID(), c.ConstructorRef, c.Season, c.Name, c.Nationality, c.URL,
			float32SliceToBytes(c.Embedding)}, nil
	})
	if err != nil {
		return fmt.Errorf("saving constructors: %w", err)
	}
	return nil
}

// UpsertRaces inserts or updates races by (season, round).
func (s *recordStore) UpsertRaces(ctx context.Context, races []domain.Race) error {
	err := s.store.execBatch(ctx, `
		INSERT INTO races (entity_id, season, round, circuit_id, name, race_date, race_time, url, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			circuit_id = excluded.circuit_id,
			name = excluded.name,
			race_date = excluded.race_date,
			race_time = excluded.race_time,
			url = excluded.url,
			embedding = COALESCE(excluded.embedding, races.embedding)
	`, len(races), func(i int) ([]any, error) {
		r := races[i]
		if err := r.Validate(); err != nil {
			return nil, err
		}
		return []any{r.EntityID(), r.Season, r.Round, r.CircuitID, r.Name, r.Date, r.Time, r.URL,
			float32SliceToBytes(r.Embedding)}, nil
	})
	if err != nil {
		return fmt.Errorf("saving races: %w", err)
	}
	return nil
}

// UpsertDrivers inserts or updates drivers by (ref, season).
func (s *recordStore) UpsertDrivers(ctx context.Context, drivers []domain.Driver) error {
	err := s.store.execBatch(ctx, `
		INSERT INTO drivers (entity_id, driver_ref, season, number, code, given_name, family_name,
			date_of_birth, nationality, url, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			number = excluded.number,
			code = excluded.code,
			given_name = excluded.given_name,
			family_name = excluded.family_name,
			date_of_birth = excluded.date_of_birth,
			nationality = excluded.nationality,
			url = excluded.url,
			embedding = COALESCE(excluded.embedding, drivers.embedding)
	`, len(drivers), func(i int) ([]any, error) {
		d := drivers[i]
		if err := d.Validate(); err != nil {
			return nil, err
		}
		return []any{d.EntityID(), d.DriverRef, d.Season, d.Number, d.Code, d.GivenName, d.FamilyName,
			d.DateOfBirth, d.Nationality, d.URL, float32SliceToBytes(d.Embedding)}, nil
	})
	if err != nil {
		return fmt.Errorf("saving drivers: %w", err)
	}
	return nil
}

// UpsertResults inserts or updates results by (season, circuit, driver).
// The circuit and driver must already exist.
func (s *recordStore) UpsertResults(ctx context.Context, results []domain.Result) error {
	err := s.store.execBatch(ctx, `
		INSERT INTO results (entity_id, season, round, circuit_id, driver_ref, constructor_ref,
			grid, position, points, status, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			round = excluded.round,
			constructor_ref = excluded.constructor_ref,
			grid = excluded.grid,
			position = excluded.position,
			points = excluded.points,
			status = excluded.status,
			embedding = COALESCE(excluded.embedding, results.embedding)
	`, len(results), func(i int) ([]any, error) {
		r := results[i]
		if err := r.Validate(); err != nil {
			return nil, err
		}
		var grid any
		if r.Grid != nil {
			grid = *r.Grid
		}
		return []any{r.EntityID(), r.Season, r.Round, r.CircuitID, r.DriverRef, r.ConstructorRef,
			grid, r.Position, r.Points, r.Status, float32SliceToBytes(r.Embedding)}, nil
	})
	if err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	return nil
}

// ListCircuits returns circuits ordered by id.
func (s *recordStore) ListCircuits(ctx context.Context) ([]domain.Circuit, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT entity_id, name, locality, country, lat, lng, url, embedding
		FROM circuits ORDER BY entity_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying circuits: %w", err)
	}
	return collect(rows, "circuits", func(r rowScanner) (domain.Circuit, error) {
		var c domain.Circuit
		var blob []byte
		if err := r.Scan(&c.CircuitID, &c.Name, &c.Locality, &c.Country,
			&c.Latitude, &c.Longitude, &c.URL, &blob); err != nil {
			return c, err
		}
		vec, err := bytesToFloat32Slice(blob)
		c.Embedding = vec
		return c, err
	})
}

// ListConstructors returns constructors ordered by season then ref.
func (s *recordStore) ListConstructors(ctx context.Context, season int) ([]domain.Constructor, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT constructor_ref, season, name, nationality, url, embedding
		FROM constructors WHERE (? = 0 OR season = ?)
		ORDER BY season, constructor_ref
	`, season, season)
	if err != nil {
		return nil, fmt.Errorf("querying constructors: %w", err)
	}
	return collect(rows, "constructors", func(r rowScanner) (domain.Constructor, error) {
		var c domain.Constructor
		var blob []byte
		if err := r.Scan(&c.ConstructorRef, &c.Season, &c.Name, &c.Nationality, &c.URL, &blob); err != nil {
			return c, err
		}
		vec, err := bytesToFloat32Slice(blob)
		c.Embedding = vec
		return c, err
	})
}

// ListRaces returns races ordered by season then round.
func (s *recordStore) ListRaces(ctx context.Context, season int) ([]domain.Race, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT season, round, circuit_id, name, race_date, race_time, url, embedding
		FROM races WHERE (? = 0 OR season = ?)
		ORDER BY season, round
	`, season, season)
	if err != nil {
		return nil, fmt.Errorf("querying races: %w", err)
	}
	return collect(rows, "races", func(r rowScanner) (domain.Race, error) {
		var race domain.Race
		var blob []byte
		if err := r.Scan(&race.Season, &race.Round, &race.CircuitID, &race.Name,
			&race.Date, &race.Time, &race.URL, &blob); err != nil {
			return race, err
		}
		vec, err := bytesToFloat32Slice(blob)
		race.Embedding = vec
		return race, err
	})
}

// ListDrivers returns drivers ordered by season then ref.
func (s *recordStore) ListDrivers(ctx context.Context, season int) ([]domain.Driver, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT driver_ref, season, number, code, given_name, family_name, date_of_birth,
			nationality, url, embedding
		FROM drivers WHERE (? = 0 OR season = ?)
		ORDER BY season, driver_ref
	`, season, season)
	if err != nil {
		return nil, fmt.Errorf("querying drivers: %w", err)
	}
	return collect(rows, "drivers", func(r rowScanner) (domain.Driver, error) {
		var d domain.Driver
		var blob []byte
		if err := r.Scan(&d.DriverRef, &d.Season, &d.Number, &d.Code, &d.GivenName, &d.FamilyName,
			&d.DateOfBirth, &d.Nationality, &d.URL, &blob); err != nil {
			return d, err
		}
		vec, err := bytesToFloat32Slice(blob)
		d.Embedding = vec
		return d, err
	})
}

// ListResults returns results ordered by season, round and driver.
func (s *recordStore) ListResults(ctx context.Context, season int) ([]domain.Result, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT season, round, circuit_id, driver_ref, constructor_ref, grid, position,
			points, status, embedding
		FROM results WHERE (? = 0 OR season = ?)
		ORDER BY season, round, driver_ref
	`, season, season)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	return collect(rows, "results", func(r rowScanner) (domain.Result, error) {
		var res domain.Result
		var grid sql.NullInt64
		var blob []byte
		if err := r.Scan(&res.Season, &res.Round, &res.CircuitID, &res.DriverRef, &res.ConstructorRef,
			&grid, &res.Position, &res.Points, &res.Status, &blob); err != nil {
			return res, err
		}
		if grid.Valid {
			g := int(grid.Int64)
			res.Grid = &g
		}
		vec, err := bytesToFloat32Slice(blob)
		res.Embedding = vec
		return res, err
	})
}

// ExistingCircuits returns the subset of ids already stored.
func (s *recordStore) ExistingCircuits(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool, len(ids))
	err := s.existing(ctx, "circuits", ids, func(id string) { found[id] = true })
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ExistingDrivers returns the subset of (driver, season) keys already stored.
func (s *recordStore) ExistingDrivers(ctx context.Context, keys []domain.DriverKey) (map[domain.DriverKey]bool, error) {
	byID := make(map[string]domain.DriverKey, len(keys))
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = domain.Driver{DriverRef: k.DriverRef, Season: k.Season}.EntityID()
		byID[ids[i]] = k
	}

	found := make(map[domain.DriverKey]bool, len(keys))
	err := s.existing(ctx, "drivers", ids, func(id string) { found[byID[id]] = true })
	if err != nil {
		return nil, err
	}
	return found, nil
}

// existing reports which entity ids are present in table, in chunks.
func (s *recordStore) existing(ctx context.Context, table string, ids []string, mark func(string)) error {
	for start := 0; start < len(ids); start += maxQueryParams {
		chunk := ids[start:min(start+maxQueryParams, len(ids))]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		//nolint:gosec // table comes from a fixed set
		query := fmt.Sprintf("SELECT entity_id FROM %s WHERE entity_id IN (%s)", table, placeholders(len(chunk)))
		rows, err := s.store.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("querying %s: %w", table, err)
		}
		present, err := collect(rows, table, func(r rowScanner) (string, error) {
			var id string
			return id, r.Scan(&id)
		})
		if err != nil {
			return err
		}
		for _, id := range present {
			mark(id)
		}
	}
	return nil
}

// Seasons returns the distinct seasons present for a partitioned kind.
func (s *recordStore) Seasons(ctx context.Context, kind domain.EntityKind) ([]int, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
	}
	if !kind.Partitioned() {
		return nil, domain.ErrNotPartitioned
	}
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // table comes from a fixed set
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT season FROM %s ORDER BY season", table))
	if err != nil {
		return nil, fmt.Errorf("querying %s seasons: %w", kind, err)
	}
	return collect(rows, table, func(r rowScanner) (int, error) {
		var season int
		return season, r.Scan(&season)
	})
}

// Count returns the number of rows of a kind.
func (s *recordStore) Count(ctx context.Context, kind domain.EntityKind) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	//nolint:gosec // table comes from a fixed set
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", kind, err)
	}
	return n, nil
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, what string, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T //nolint:prealloc // size unknown from query
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", what, err)
	}
	return out, nil
}
