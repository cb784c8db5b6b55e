package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// ReferenceReport counts what EnsureReferencesExist changed.
type ReferenceReport struct {
	// Placeholders is the number of synthesised circuits and drivers.
	Placeholders int

	// Dropped is the number of results removed for an unresolved driver.
	Dropped int
}

// DedupeResults collapses rows sharing (season, circuit, driver), keeping the
// last occurrence. Overlapping result pages repeat rows, so the later copy wins.
// Each surviving row stays at the position of its key's first appearance.
func DedupeResults(rows []domain.Result) []domain.Result {
	index := make(map[domain.ResultKey]int, len(rows))
	out := make([]domain.Result, 0, len(rows))
	for _, r := range rows {
		k := r.Key()
		if i, ok := index[k]; ok {
			out[i] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}

// EnsureReferencesExist makes every circuit and driver referenced by rows
// present in the store before the results are written.
//
// Missing circuits get placeholder rows. Missing drivers trigger one fetch of
// their season's driver list, then a re-check; results whose driver is still
// absent are logged and dropped, or get a placeholder driver when configured.
// The returned rows never reference an absent circuit or driver.
func (e *SyncEngine) EnsureReferencesExist(
	ctx context.Context,
	season int,
	rows []domain.Result,
) ([]domain.Result, ReferenceReport, error) {
	var report ReferenceReport
	if len(rows) == 0 {
		return rows, report, nil
	}

	circuitsOK, placed, err := e.ensureCircuits(ctx, season, rows)
	if err != nil {
		return nil, report, err
	}
	report.Placeholders += placed

	driversOK, placed, err := e.ensureDrivers(ctx, season, rows)
	if err != nil {
		return nil, report, err
	}
	report.Placeholders += placed

	kept := make([]domain.Result, 0, len(rows))
	for _, r := range rows {
		if !circuitsOK[r.CircuitID] {
			report.Dropped++
			continue
		}
		if !driversOK[r.DriverKey()] {
			report.Dropped++
			continue
		}
		kept = append(kept, r)
	}
	if report.Dropped > 0 {
		e.log.Warn("results dropped for unresolved references",
			zap.Int("season", season), zap.Int("dropped", report.Dropped))
	}
	return kept, report, nil
}

// ensureCircuits inserts placeholders for unknown circuit ids and returns the
// set of ids that are now present.
func (e *SyncEngine) ensureCircuits(ctx context.Context, season int, rows []domain.Result) (map[string]bool, int, error) {
	ids := unique(rows, func(r domain.Result) string { return r.CircuitID })
	present, err := e.store.ExistingCircuits(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("check circuits: %w", err)
	}
	if present == nil {
		present = make(map[string]bool)
	}

	var placeholders []domain.Circuit
	for _, id := range ids {
		if !present[id] {
			placeholders = append(placeholders, domain.PlaceholderCircuit(id))
		}
	}
	if len(placeholders) == 0 {
		return present, 0, nil
	}

	if err := e.store.UpsertCircuits(ctx, placeholders); err != nil {
		e.log.Error("placeholder circuits not written",
			zap.Int("season", season), zap.Int("circuits", len(placeholders)), zap.Error(err))
		return present, 0, nil
	}
	for _, c := range placeholders {
		e.log.Info("placeholder circuit created", zap.String("circuit", c.CircuitID), zap.Int("season", season))
		present[c.CircuitID] = true
	}
	return present, len(placeholders), nil
}

// ensureDrivers backfills missing drivers from the source and returns the set
// of driver keys that are now present.
func (e *SyncEngine) ensureDrivers(ctx context.Context, season int, rows []domain.Result) (map[domain.DriverKey]bool, int, error) {
	keys := unique(rows, func(r domain.Result) domain.DriverKey { return r.DriverKey() })
	present, err := e.store.ExistingDrivers(ctx, keys)
	if err != nil {
		return nil, 0, fmt.Errorf("check drivers: %w", err)
	}
	missing := missingKeys(keys, present)
	if len(missing) == 0 {
		return present, 0, nil
	}

	// One secondary fetch per season that has missing drivers.
	seasons := unique(missing, func(k domain.DriverKey) int { return k.Season })
	for _, s := range seasons {
		drivers, err := e.source.Drivers(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			e.log.Warn("secondary driver fetch failed", zap.Int("season", s), zap.Error(err))
			continue
		}
		report := &domain.KindReport{Kind: domain.KindDriver}
		upsertInBatches(ctx, e, domain.KindDriver, s, drivers, e.store.UpsertDrivers, report)
		e.log.Info("drivers backfilled", zap.Int("season", s), zap.Int("rows", report.RowsWritten))
	}

	present, err = e.store.ExistingDrivers(ctx, keys)
	if err != nil {
		return nil, 0, fmt.Errorf("recheck drivers: %w", err)
	}
	if present == nil {
		present = make(map[domain.DriverKey]bool)
	}
	missing = missingKeys(keys, present)
	if len(missing) == 0 {
		return present, 0, nil
	}

	if !e.cfg.PlaceholderDrivers {
		for _, k := range missing {
			e.log.Warn("driver still missing", zap.String("driver", k.DriverRef), zap.Int("season", k.Season))
		}
		return present, 0, nil
	}

	placeholders := make([]domain.Driver, len(missing))
	for i, k := range missing {
		placeholders[i] = domain.PlaceholderDriver(k.DriverRef, k.Season)
	}
	if err := e.store.UpsertDrivers(ctx, placeholders); err != nil {
		e.log.Error("placeholder drivers not written", zap.Int("season", season), zap.Error(err))
		return present, 0, nil
	}
	for _, k := range missing {
		e.log.Info("placeholder driver created", zap.String("driver", k.DriverRef), zap.Int("season", k.Season))
		present[k] = true
	}
	return present, len(placeholders), nil
}

func missingKeys(keys []domain.DriverKey, present map[domain.DriverKey]bool) []domain.DriverKey {
	var out []domain.DriverKey
	for _, k := range keys {
		if !present[k] {
			out = append(out, k)
		}
	}
	return out
}

// unique extracts distinct keys in order of first appearance.
func unique[T any, K comparable](items []T, key func(T) K) []K {
	seen := make(map[K]struct{}, len(items))
	var out []K
	for _, it := range items {
		k := key(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
