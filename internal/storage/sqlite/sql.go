package sqlite

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	burst        INTEGER NOT NULL,
	state        TEXT NOT NULL,
	error_kind   TEXT NOT NULL DEFAULT '',
	started_at   TEXT NOT NULL,
	completed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quality_reports (
	run_id               TEXT PRIMARY KEY REFERENCES runs(run_id),
	total_samples        INTEGER NOT NULL,
	rejected_samples     INTEGER NOT NULL,
	interpolated_samples INTEGER NOT NULL,
	longest_gap          INTEGER NOT NULL,
	trimmed_leading      INTEGER NOT NULL,
	trimmed_trailing     INTEGER NOT NULL,
	unrepaired_gaps      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS wave_stats (
	run_id             TEXT PRIMARY KEY REFERENCES runs(run_id),
	mean_height        REAL NOT NULL,
	significant_height REAL NOT NULL,
	max_height         REAL NOT NULL,
	mean_period        REAL NOT NULL,
	wave_count         INTEGER NOT NULL,
	insufficient_data  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_completed_at ON runs(completed_at);
`

const selectRunSQL = `
SELECT r.run_id, r.source, r.burst, r.state, r.error_kind, r.started_at, r.completed_at,
       q.total_samples, q.rejected_samples, q.interpolated_samples,
       q.longest_gap, q.trimmed_leading, q.trimmed_trailing, q.unrepaired_gaps,
       s.mean_height, s.significant_height, s.max_height, s.mean_period, s.wave_count, s.insufficient_data
FROM runs r
LEFT JOIN quality_reports q ON q.run_id = r.run_id
LEFT JOIN wave_stats s ON s.run_id = r.run_id`
