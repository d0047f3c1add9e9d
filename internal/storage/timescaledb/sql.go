package timescaledb

const createTableSQL = `CREATE TABLE IF NOT EXISTS wave_stats (
	time timestamptz NOT NULL,
	runid text NOT NULL,
	source text,
	burst int,
	meanheight float8,
	significantheight float8,
	maxheight float8,
	meanperiod float8,
	wavecount int,
	rejectedsamples int,
	interpolatedsamples int
);`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb;`

const createHypertableSQL = `SELECT create_hypertable('wave_stats', 'time', if_not_exists => TRUE);`
