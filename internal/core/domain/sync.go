package domain

import "time"

// SyncOptions controls a full sync run.
type SyncOptions struct {
	// Seasons bounds the year-partitioned fetches.
	Seasons SeasonRange

	// Kinds restricts the run. Empty means every kind.
	Kinds []EntityKind

	// ForceUpdate fetches every season in range, not only missing ones.
	ForceUpdate bool
}

// Includes reports whether kind is part of the run.
func (o SyncOptions) Includes(kind EntityKind) bool {
	if len(o.Kinds) == 0 {
		return true
	}
	for _, k := range o.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// KindReport summarises the sync of one entity kind.
type KindReport struct {
	Kind           EntityKind
	YearsRequested []int
	YearsAbandoned []int
	RowsWritten    int
	BatchesFailed  int

	// Placeholders counts circuits or drivers synthesised for references.
	Placeholders int

	// Dropped counts result rows skipped because a driver stayed missing.
	Dropped int
}

// SyncReport summarises a sync run.
type SyncReport struct {
	StartedAt time.Time
	EndedAt   time.Time
	Kinds     []KindReport
}

// RowsWritten totals rows written across kinds.
func (r SyncReport) RowsWritten() int {
	n := 0
	for _, k := range r.Kinds {
		n += k.RowsWritten
	}
	return n
}

// Kind returns the report for one kind, or nil.
func (r *SyncReport) Kind(kind EntityKind) *KindReport {
	for i := range r.Kinds {
		if r.Kinds[i].Kind == kind {
			return &r.Kinds[i]
		}
	}
	return nil
}
