package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS closed_periods (
	list TEXT NOT NULL,
	year INTEGER NOT NULL,
	month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	closed_at TIMESTAMP NOT NULL,
	PRIMARY KEY (list, year, month)
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id TEXT PRIMARY KEY,
	list TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	units_fetched INTEGER NOT NULL DEFAULT 0,
	units_changed INTEGER NOT NULL DEFAULT 0,
	rebuilt INTEGER NOT NULL DEFAULT 0 CHECK (rebuilt IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_list ON sync_runs(list, started_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
