package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
	"github.com/custodia-labs/paddock/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncService = (*SyncEngine)(nil)

// Default sync limits.
const (
	DefaultBatchSize = 1000
	DefaultPageSize  = 30
)

// SyncConfig tunes the sync engine.
type SyncConfig struct {
	// BatchSize caps the rows per upsert call.
	BatchSize int

	// PageSize is the limit used when paging through results.
	PageSize int

	// PlaceholderDrivers synthesises drivers that stay missing after the
	// secondary fetch instead of dropping their results.
	PlaceholderDrivers bool
}

// DefaultSyncConfig returns the standard limits.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		BatchSize: DefaultBatchSize,
		PageSize:  DefaultPageSize,
	}
}

// SyncEngine brings the record store to parity with the racing data API.
type SyncEngine struct {
	source   driven.RaceDataSource
	store    driven.RecordStore
	embedder driving.EmbeddingGenerator
	cfg      SyncConfig
	log      *zap.Logger
	now      func() time.Time

	// Status tracking
	mu     sync.RWMutex
	status *driving.SyncStatus
}

// NewSyncEngine creates a sync engine.
// The embedder is optional - when set, every written batch is embedded.
func NewSyncEngine(
	source driven.RaceDataSource,
	store driven.RecordStore,
	embedder driving.EmbeddingGenerator,
	cfg SyncConfig,
) *SyncEngine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &SyncEngine{
		source:   source,
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		log:      logger.Named("sync"),
		now:      time.Now,
	}
}

// Run executes the full sync plan in dependency order.
func (e *SyncEngine) Run(ctx context.Context, opts domain.SyncOptions) (*domain.SyncReport, error) {
	if !e.begin() {
		return nil, domain.ErrSyncInProgress
	}
	defer e.finish()

	seasons := opts.Seasons
	if seasons == (domain.SeasonRange{}) {
		seasons = domain.DefaultSeasonRange(e.now())
	}
	if err := seasons.Validate(e.now()); err != nil {
		return nil, err
	}

	report := &domain.SyncReport{StartedAt: e.now()}
	logger.Section("Sync")
	e.log.Info("starting sync",
		zap.Int("from", seasons.From), zap.Int("to", seasons.To), zap.Bool("force", opts.ForceUpdate))

	if opts.Includes(domain.KindCircuit) {
		kr, err := e.syncCircuits(ctx)
		if err != nil {
			return nil, err
		}
		report.Kinds = append(report.Kinds, *kr)
	}

	for _, kind := range domain.SeasonKinds() {
		if !opts.Includes(kind) {
			continue
		}
		years := seasons.Years()
		if !opts.ForceUpdate {
			missing, err := e.YearsMissing(ctx, kind, seasons)
			if err != nil {
				return nil, fmt.Errorf("years missing for %s: %w", kind, err)
			}
			years = missing
		}
		kr, err := e.syncEntity(ctx, kind, years)
		if err != nil {
			return nil, err
		}
		report.Kinds = append(report.Kinds, *kr)
	}

	report.EndedAt = e.now()
	e.log.Info("sync complete",
		zap.Int("rows", report.RowsWritten()), zap.Duration("took", report.EndedAt.Sub(report.StartedAt)))
	return report, nil
}

// YearsMissing returns the seasons in range that have no rows for kind.
//
// Results follow the Race+Driver policy: a season is only fetchable once both
// its races and its drivers are stored, so the candidate set is the
// intersection of those seasons rather than the whole range.
func (e *SyncEngine) YearsMissing(ctx context.Context, kind domain.EntityKind, seasons domain.SeasonRange) ([]int, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
	}
	if !kind.Partitioned() {
		return nil, domain.ErrNotPartitioned
	}

	candidates := domain.NewYearSet(seasons.Years()...)
	if kind == domain.KindResult {
		races, err := e.seasonSet(ctx, domain.KindRace)
		if err != nil {
			return nil, err
		}
		drivers, err := e.seasonSet(ctx, domain.KindDriver)
		if err != nil {
			return nil, err
		}
		candidates = candidates.Intersect(races.Intersect(drivers))
	}

	present, err := e.seasonSet(ctx, kind)
	if err != nil {
		return nil, err
	}
	return candidates.Minus(present).Sorted(), nil
}

func (e *SyncEngine) seasonSet(ctx context.Context, kind domain.EntityKind) (domain.YearSet, error) {
	years, err := e.store.Seasons(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s seasons: %w", kind, err)
	}
	return domain.NewYearSet(years...), nil
}

// SyncCircuits fetches the full circuit catalog and upserts it by id.
func (e *SyncEngine) SyncCircuits(ctx context.Context) (*domain.KindReport, error) {
	if !e.begin() {
		return nil, domain.ErrSyncInProgress
	}
	defer e.finish()
	return e.syncCircuits(ctx)
}

func (e *SyncEngine) syncCircuits(ctx context.Context) (*domain.KindReport, error) {
	report := &domain.KindReport{Kind: domain.KindCircuit}
	e.setProgress(domain.KindCircuit, 0)

	circuits, err := e.source.Circuits(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.log.Warn("circuit catalog fetch failed", zap.Error(err))
		e.addErrors(1)
		return report, nil
	}

	written := upsertInBatches(ctx, e, domain.KindCircuit, 0, circuits, e.store.UpsertCircuits, report)
	e.embedWritten(ctx, toEmbeddables(written))
	return report, nil
}

// SyncEntity fetches and upserts kind for each of the given seasons.
// A failed fetch abandons that season only.
func (e *SyncEngine) SyncEntity(ctx context.Context, kind domain.EntityKind, years []int) (*domain.KindReport, error) {
	if !e.begin() {
		return nil, domain.ErrSyncInProgress
	}
	defer e.finish()
	return e.syncEntity(ctx, kind, years)
}

//nolint:gocyclo // one branch per entity kind
func (e *SyncEngine) syncEntity(ctx context.Context, kind domain.EntityKind, years []int) (*domain.KindReport, error) {
	if kind == domain.KindCircuit {
		return e.syncCircuits(ctx)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
	}

	report := &domain.KindReport{Kind: kind, YearsRequested: years}
	if len(years) == 0 {
		e.log.Debug("nothing to fetch", zap.Stringer("kind", kind))
		return report, nil
	}
	e.log.Info("fetching seasons", zap.Stringer("kind", kind), zap.Ints("years", years))

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.setProgress(kind, year)

		var (
			written []domain.Embeddable
			err     error
		)
		switch kind {
		case domain.KindConstructor:
			var rows []domain.Constructor
			if rows, err = e.source.Constructors(ctx, year); err == nil {
				written = toEmbeddables(upsertInBatches(ctx, e, kind, year, rows, e.store.UpsertConstructors, report))
			}
		case domain.KindRace:
			var rows []domain.Race
			if rows, err = e.source.Races(ctx, year); err == nil {
				written = toEmbeddables(upsertInBatches(ctx, e, kind, year, rows, e.store.UpsertRaces, report))
			}
		case domain.KindDriver:
			var rows []domain.Driver
			if rows, err = e.source.Drivers(ctx, year); err == nil {
				written = toEmbeddables(upsertInBatches(ctx, e, kind, year, rows, e.store.UpsertDrivers, report))
			}
		case domain.KindResult:
			written, err = e.syncResultSeason(ctx, year, report)
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.log.Warn("season abandoned", zap.Stringer("kind", kind), zap.Int("season", year), zap.Error(err))
			report.YearsAbandoned = append(report.YearsAbandoned, year)
			e.addErrors(1)
			continue
		}
		e.embedWritten(ctx, written)
	}

	e.log.Info("kind synced",
		zap.Stringer("kind", kind),
		zap.Int("rows", report.RowsWritten),
		zap.Int("failed_batches", report.BatchesFailed),
		zap.Ints("abandoned", report.YearsAbandoned))
	return report, nil
}

// syncResultSeason pages through a season's results, deduplicates them,
// resolves their references and writes what remains.
func (e *SyncEngine) syncResultSeason(ctx context.Context, season int, report *domain.KindReport) ([]domain.Embeddable, error) {
	rows, err := e.fetchResults(ctx, season)
	if err != nil {
		return nil, err
	}
	rows = DedupeResults(rows)

	rows, refs, err := e.EnsureReferencesExist(ctx, season, rows)
	if err != nil {
		return nil, err
	}
	report.Placeholders += refs.Placeholders
	report.Dropped += refs.Dropped

	return toEmbeddables(upsertInBatches(ctx, e, domain.KindResult, season, rows, e.store.UpsertResults, report)), nil
}

// fetchResults reads every page of a season's results. Paging stops at the
// first page without races or once the offset reaches the reported total.
func (e *SyncEngine) fetchResults(ctx context.Context, season int) ([]domain.Result, error) {
	var all []domain.Result
	for offset := 0; ; offset += e.cfg.PageSize {
		page, err := e.source.Results(ctx, season, e.cfg.PageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch results %d offset %d: %w", season, offset, err)
		}
		if page.Races == 0 || len(page.Results) == 0 {
			break
		}
		all = append(all, page.Results...)
		if page.Total > 0 && offset+e.cfg.PageSize >= page.Total {
			break
		}
	}
	return all, nil
}

// Status returns the progress of the running sync.
func (e *SyncEngine) Status(_ context.Context) (*driving.SyncStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.status == nil {
		return &driving.SyncStatus{Running: false}, nil
	}
	// Return a copy to avoid race conditions
	s := *e.status
	return &s, nil
}

func (e *SyncEngine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != nil && e.status.Running {
		return false
	}
	e.status = &driving.SyncStatus{Running: true}
	return true
}

func (e *SyncEngine) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != nil {
		e.status.Running = false
	}
}

func (e *SyncEngine) setProgress(kind domain.EntityKind, season int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != nil {
		e.status.Kind = kind
		e.status.Season = season
	}
}

func (e *SyncEngine) addRows(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != nil {
		e.status.RowsWritten += n
	}
}

func (e *SyncEngine) addErrors(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != nil {
		e.status.ErrorCount += n
	}
}

// embedWritten hands freshly written rows to the embedding generator.
func (e *SyncEngine) embedWritten(ctx context.Context, rows []domain.Embeddable) {
	if e.embedder == nil || len(rows) == 0 {
		return
	}
	n, err := e.embedder.EmbedRows(ctx, rows)
	if err != nil {
		e.log.Warn("embedding written rows failed", zap.Error(err))
		return
	}
	e.log.Debug("embedded written rows", zap.Int("rows", n))
}

// upsertInBatches writes rows in chunks of the configured batch size.
// A failed batch is logged with its index and the remaining batches still run.
// Returns the rows that were written.
func upsertInBatches[T any](
	ctx context.Context,
	e *SyncEngine,
	kind domain.EntityKind,
	season int,
	rows []T,
	upsert func(context.Context, []T) error,
	report *domain.KindReport,
) []T {
	written := make([]T, 0, len(rows))
	for batch, start := 0, 0; start < len(rows); batch, start = batch+1, start+e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(rows))
		chunk := rows[start:end]
		if err := upsert(ctx, chunk); err != nil {
			e.log.Error("batch write failed",
				zap.Stringer("kind", kind),
				zap.Int("season", season),
				zap.Int("batch", batch),
				zap.Int("rows", len(chunk)),
				zap.Error(err))
			report.BatchesFailed++
			e.addErrors(1)
			continue
		}
		written = append(written, chunk...)
		report.RowsWritten += len(chunk)
		e.addRows(len(chunk))
	}
	return written
}

func toEmbeddables[T domain.Embeddable](rows []T) []domain.Embeddable {
	out := make([]domain.Embeddable, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
