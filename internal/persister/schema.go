package persister

// schema is applied on connect, grounded on the prior
// PostgresOddsSnapshotStorage.initSchema pattern: CREATE TABLE / CREATE INDEX
// IF NOT EXISTS only, so re-running it against an already-provisioned
// database is a no-op. It carries no ALTER TABLE migrations, so columns added
// here later are not applied to tables that already exist.
const schema = `
CREATE TABLE IF NOT EXISTS provider (
	id SMALLINT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	enabled BOOLEAN NOT NULL DEFAULT true,
	driver VARCHAR(20) NOT NULL DEFAULT 'plain-http'
);

CREATE TABLE IF NOT EXISTS sport (
	id SMALLINT PRIMARY KEY,
	name VARCHAR(50) NOT NULL
);

CREATE TABLE IF NOT EXISTS bet_type (
	id INTEGER PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	arity SMALLINT NOT NULL CHECK (arity IN (1, 2, 3))
);

CREATE TABLE IF NOT EXISTS league (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(200) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS match (
	id BIGSERIAL PRIMARY KEY,
	team1_raw VARCHAR(300) NOT NULL,
	team2_raw VARCHAR(300) NOT NULL,
	team1_norm VARCHAR(300) NOT NULL,
	team2_norm VARCHAR(300) NOT NULL,
	sport_id SMALLINT NOT NULL REFERENCES sport(id),
	league_id BIGINT REFERENCES league(id),
	start_time TIMESTAMPTZ NOT NULL,
	external_ids JSONB NOT NULL DEFAULT '{}',
	status VARCHAR(20) NOT NULL DEFAULT 'upcoming',
	UNIQUE (team1_norm, team2_norm, sport_id, start_time)
);
CREATE INDEX IF NOT EXISTS idx_match_sport_start ON match(sport_id, start_time);

CREATE TABLE IF NOT EXISTS current_odds (
	match_id BIGINT NOT NULL REFERENCES match(id) ON DELETE CASCADE,
	provider_id SMALLINT NOT NULL REFERENCES provider(id),
	bet_type_id INTEGER NOT NULL REFERENCES bet_type(id),
	margin NUMERIC(10,3) NOT NULL DEFAULT 0,
	selection VARCHAR(100) NOT NULL DEFAULT '',
	p1 NUMERIC(10,4),
	p2 NUMERIC(10,4),
	p3 NUMERIC(10,4),
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (match_id, provider_id, bet_type_id, margin, selection)
);

CREATE TABLE IF NOT EXISTS odds_history (
	match_id BIGINT NOT NULL REFERENCES match(id) ON DELETE CASCADE,
	provider_id SMALLINT NOT NULL,
	bet_type_id INTEGER NOT NULL,
	margin NUMERIC(10,3) NOT NULL DEFAULT 0,
	selection VARCHAR(100) NOT NULL DEFAULT '',
	p1 NUMERIC(10,4),
	p2 NUMERIC(10,4),
	p3 NUMERIC(10,4),
	observed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_odds_history_match ON odds_history(match_id, observed_at);

CREATE TABLE IF NOT EXISTS arbitrage (
	id BIGSERIAL PRIMARY KEY,
	match_id BIGINT NOT NULL REFERENCES match(id) ON DELETE CASCADE,
	bet_type_id INTEGER NOT NULL,
	margin NUMERIC(10,3) NOT NULL DEFAULT 0,
	profit_pct NUMERIC(10,4) NOT NULL,
	best_legs JSONB NOT NULL,
	stake_split JSONB NOT NULL,
	content_hash VARCHAR(32) NOT NULL UNIQUE,
	detected_at TIMESTAMPTZ NOT NULL,
	last_seen_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	active BOOLEAN NOT NULL DEFAULT true
);
CREATE INDEX IF NOT EXISTS idx_arbitrage_active ON arbitrage(active, expires_at);
`
