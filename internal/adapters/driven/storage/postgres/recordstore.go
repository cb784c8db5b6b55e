package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore.
// An upserted row without an embedding keeps the stored one.
type recordStore struct {
	pool *pgxpool.Pool
}

var _ driven.RecordStore = (*recordStore)(nil)

// tableFor maps an entity kind to its table and key column.
func tableFor(kind domain.EntityKind) (table, key string, err error) {
	switch kind {
	case domain.KindCircuit:
		return "circuits", "circuit_id", nil
	case domain.KindConstructor:
		return "constructors", "entity_id", nil
	case domain.KindRace:
		return "races", "entity_id", nil
	case domain.KindDriver:
		return "drivers", "entity_id", nil
	case domain.KindResult:
		return "results", "entity_id", nil
	}
	return "", "", fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
}

func (s *recordStore) UpsertCircuits(ctx context.Context, circuits []domain.Circuit) error {
	err := sendBatch(ctx, s.pool, `
		INSERT INTO circuits (circuit_id, name, locality, country, lat, lng, url, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (circuit_id) DO UPDATE SET
			name = EXCLUDED.name,
			locality = EXCLUDED.locality,
			country = EXCLUDED.country,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			url = EXCLUDED.url,
			embedding = COALESCE(EXCLUDED.embedding, circuits.embedding)
	`, len(circuits), func(i int) ([]any, error) {
		c := circuits[i]
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return []any{c.CircuitID, c.Name, c.Locality, c.Country, c.Latitude, c.Longitude, c.URL, c.Embedding}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert circuits: %w", err)
	}
	return nil
}

func (s *recordStore) UpsertConstructors(ctx context.Context, constructors []domain.Constructor) error {
	err := sendBatch(ctx, s.pool, `
		INSERT INTO constructors (entity_id, constructor_ref, season, name, nationality, url, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (entity_id) DO UPDATE SET
			name = EXCLUDED.name,
			nationality = EXCLUDED.nationality,
			url = EXCLUDED.url,
			embedding = COALESCE(EXCLUDED.embedding, constructors.embedding)
	`, len(constructors), func(i int) ([]any, error) {
		c := constructors[i]
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return []any{c.EntityID(), c.ConstructorRef, c.Season, c.Name, c.Nationality, c.URL, c.Embedding}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert constructors: %w", err)
	}
	return nil
}

func (s *recordStore) UpsertRaces(ctx context.Context, races []domain.Race) error {
	err := sendBatch(ctx, s.pool, `
		INSERT INTO races (entity_id, season, round, circuit_id, name, race_date, race_time, url, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (entity_id) DO UPDATE SET
			circuit_id = EXCLUDED.circuit_id,
			name = EXCLUDED.name,
			race_date = EXCLUDED.race_date,
			race_time = EXCLUDED.race_time,
			url = EXCLUDED.url,
			embedding = COALESCE(EXCLUDED.embedding, races.embedding)
	`, len(races), func(i int) ([]any, error) {
		r := races[i]
		if err := r.Validate(); err != nil {
			return nil, err
		}
		return []any{r.EntityID(), r.Season, r.Round, r.CircuitID, r.Name, r.Date, r.Time, r.URL, r.Embedding}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert races: %w", err)
	}
	return nil
}

func (s *recordStore) UpsertDrivers(ctx context.Context, drivers []domain.Driver) error {
	err := sendBatch(ctx, s.pool, `
		INSERT INTO drivers (entity_id, driver_ref, season, number, code, given_name, family_name,
			date_of_birth, nationality, url, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (entity_id) DO UPDATE SET
			number = EXCLUDED.number,
			code = EXCLUDED.code,
			given_name = EXCLUDED.given_name,
			family_name = EXCLUDED.family_name,
			date_of_birth = EXCLUDED.date_of_birth,
			nationality = EXCLUDED.nationality,
			url = EXCLUDED.url,
			embedding = COALESCE(EXCLUDED.embedding, drivers.embedding)
	`, len(drivers), func(i int) ([]any, error) {
		d := drivers[i]
		if err := d.Validate(); err != nil {
			return nil, err
		}
		return []any{d.EntityID(), d.DriverRef, d.Season, d.Number, d.Code, d.GivenName, d.FamilyName,
			d.DateOfBirth, d.Nationality, d.URL, d.Embedding}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert drivers: %w", err)
	}
	return nil
}

func (s *recordStore) UpsertResults(ctx context.Context, results []domain.Result) error {
	err := sendBatch(ctx, s.pool, `
		INSERT INTO results (entity_id, season, round, circuit_id, driver_ref, constructor_ref,
			grid, position, points, status, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (entity_id) DO UPDATE SET
			round = EXCLUDED.round,
			constructor_ref = EXCLUDED.constructor_ref,
			grid = EXCLUDED.grid,
			position = EXCLUDED.position,
			points = EXCLUDED.points,
			status = EXCLUDED.status,
			embedding = COALESCE(EXCLUDED.embedding, results.embedding)
	`, len(results), func(i int) ([]any, error) {
		r := results[i]
		if err := r.Validate(); err != nil {
			return nil, err
		}
		return []any{r.EntityID(), r.Season, r.Round, r.CircuitID, r.DriverRef, r.ConstructorRef,
			r.Grid, r.Position, r.Points, r.Status, r.Embedding}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert results: %w", err)
	}
	return nil
}

func (s *recordStore) ListCircuits(ctx context.Context) ([]domain.Circuit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT circuit_id, name, locality, country, lat, lng, url, embedding
		FROM circuits ORDER BY circuit_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query circuits: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Circuit, error) {
		var c domain.Circuit
		err := row.Scan(&c.CircuitID, &c.Name, &c.Locality, &c.Country, &c.Latitude, &c.Longitude, &c.URL, &c.Embedding)
		return c, err
	})
}

func (s *recordStore) ListConstructors(ctx context.Context, season int) ([]domain.Constructor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT constructor_ref, season, name, nationality, url, embedding
		FROM constructors WHERE ($1 = 0 OR season = $1)
		ORDER BY season, constructor_ref
	`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query constructors: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Constructor, error) {
		var c domain.Constructor
		err := row.Scan(&c.ConstructorRef, &c.Season, &c.Name, &c.Nationality, &c.URL, &c.Embedding)
		return c, err
	})
}

func (s *recordStore) ListRaces(ctx context.Context, season int) ([]domain.Race, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT season, round, circuit_id, name, race_date, race_time, url, embedding
		FROM races WHERE ($1 = 0 OR season = $1)
		ORDER BY season, round
	`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Race, error) {
		var r domain.Race
		err := row.Scan(&r.Season, &r.Round, &r.CircuitID, &r.Name, &r.Date, &r.Time, &r.URL, &r.Embedding)
		return r, err
	})
}

func (s *recordStore) ListDrivers(ctx context.Context, season int) ([]domain.Driver, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT driver_ref, season, number, code, given_name, family_name, date_of_birth,
			nationality, url, embedding
		FROM drivers WHERE ($1 = 0 OR season = $1)
		ORDER BY season, driver_ref
	`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Driver, error) {
		var d domain.Driver
		err := row.Scan(&d.DriverRef, &d.Season, &d.Number, &d.Code, &d.GivenName, &d.FamilyName,
			&d.DateOfBirth, &d.Nationality, &d.URL, &d.Embedding)
		return d, err
	})
}

func (s *recordStore) ListResults(ctx context.Context, season int) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT season, round, circuit_id, driver_ref, constructor_ref, grid, position,
			points, status, embedding
		FROM results WHERE ($1 = 0 OR season = $1)
		ORDER BY season, round, driver_ref
	`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Result, error) {
		var r domain.Result
		err := row.Scan(&r.Season, &r.Round, &r.CircuitID, &r.DriverRef, &r.ConstructorRef,
			&r.Grid, &r.Position, &r.Points, &r.Status, &r.Embedding)
		return r, err
	})
}

func (s *recordStore) ExistingCircuits(ctx context.Context, ids []string) (map[string]bool, error) {
	found, err := s.existing(ctx, "SELECT circuit_id FROM circuits WHERE circuit_id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check circuits: %w", err)
	}
	return found, nil
}

func (s *recordStore) ExistingDrivers(ctx context.Context, keys []domain.DriverKey) (map[domain.DriverKey]bool, error) {
	byID := make(map[string]domain.DriverKey, len(keys))
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = domain.Driver{DriverRef: k.DriverRef, Season: k.Season}.EntityID()
		byID[ids[i]] = k
	}

	found, err := s.existing(ctx, "SELECT entity_id FROM drivers WHERE entity_id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check drivers: %w", err)
	}
	out := make(map[domain.DriverKey]bool, len(found))
	for id := range found {
		out[byID[id]] = true
	}
	return out, nil
}

func (s *recordStore) existing(ctx context.Context, query string, ids []string) (map[string]bool, error) {
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	present, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	for _, id := range present {
		found[id] = true
	}
	return found, nil
}

func (s *recordStore) Seasons(ctx context.Context, kind domain.EntityKind) ([]int, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
	}
	if !kind.Partitioned() {
		return nil, domain.ErrNotPartitioned
	}
	table, _, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT season FROM "+table+" ORDER BY season")
	if err != nil {
		return nil, fmt.Errorf("failed to query %s seasons: %w", kind, err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (s *recordStore) Count(ctx context.Context, kind domain.EntityKind) (int, error) {
	table, _, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return n, nil
}
