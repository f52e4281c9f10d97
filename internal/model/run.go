package model

import "time"

// SyncRun records the outcome of one list-processing pass in the local
// state database. Runs are append-only history; the engine consults the
// most recent one for context logging.
type SyncRun struct {
	// ID is the unique identifier for this run.
	ID string `json:"id"`

	// List is the name of the list this pass processed.
	List string `json:"list"`

	// StartedAt is when the pass began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the pass completed.
	FinishedAt time.Time `json:"finished_at"`

	// UnitsFetched counts the periods for which a fetch was attempted.
	UnitsFetched int `json:"units_fetched"`

	// UnitsChanged counts the periods whose content materially changed.
	UnitsChanged int `json:"units_changed"`

	// Rebuilt indicates whether the consolidated archive was regenerated.
	Rebuilt bool `json:"rebuilt"`
}

// ListResult is the in-memory outcome of one list's pass, reported to
// the user at the end of a run.
type ListResult struct {
	// List is the name of the processed list.
	List string

	// UnitsFetched counts the periods for which a fetch was attempted.
	UnitsFetched int

	// UnitsChanged counts the periods whose content materially changed.
	UnitsChanged int

	// Rebuilt indicates whether the consolidated archive was regenerated.
	Rebuilt bool

	// ArtifactPath is the delivered archive location when Rebuilt is true.
	ArtifactPath string

	// Err is set when the list's pass was aborted, e.g. by a failed
	// credential lookup.
	Err error
}
