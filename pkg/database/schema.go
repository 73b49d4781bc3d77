package database

// Constraint names shared by both dialects. The poll store classifies
// constraint violations by these names.
const (
	ConstraintPollGroupActive = "uq_polls_group_active"
	ConstraintVotePollVoter   = "uq_votes_poll_voter"
	ConstraintVotePoll        = "fk_votes_poll"
	ConstraintVotePollOption  = "fk_votes_poll_option"
)

// PostgresSchema creates the poll tables. Statements are idempotent.
var PostgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS polls (
		id         TEXT PRIMARY KEY,
		group_id   VARCHAR(50)  NOT NULL,
		question   VARCHAR(200) NOT NULL,
		is_active  BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_polls_group_active ON polls (group_id, is_active)`,
	// At most one active poll per group, even if two writers race.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_polls_group_active ON polls (group_id) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS options (
		id         TEXT PRIMARY KEY,
		poll_id    TEXT         NOT NULL REFERENCES polls (id) ON DELETE CASCADE,
		sort_order SMALLINT     NOT NULL,
		text       VARCHAR(100) NOT NULL,
		CONSTRAINT uq_options_poll_id UNIQUE (poll_id, id),
		CONSTRAINT uq_options_poll_order UNIQUE (poll_id, sort_order)
	)`,
	// fk_votes_poll_option is NO ACTION: an option with votes cannot be
	// deleted on its own, but a whole-poll cascade still succeeds because
	// the check runs at the end of the statement.
	`CREATE TABLE IF NOT EXISTS votes (
		id          TEXT PRIMARY KEY,
		poll_id     TEXT        NOT NULL,
		option_id   TEXT        NOT NULL,
		voter_token VARCHAR(64) NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_votes_poll_voter UNIQUE (poll_id, voter_token),
		CONSTRAINT fk_votes_poll FOREIGN KEY (poll_id) REFERENCES polls (id) ON DELETE CASCADE,
		CONSTRAINT fk_votes_poll_option FOREIGN KEY (poll_id, option_id) REFERENCES options (poll_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_poll_option ON votes (poll_id, option_id)`,
}

// SQLiteSchema mirrors PostgresSchema. Timestamps are unix microseconds.
var SQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS polls (
		id         TEXT PRIMARY KEY,
		group_id   TEXT    NOT NULL CHECK (length(group_id) <= 50),
		question   TEXT    NOT NULL CHECK (length(question) <= 200),
		is_active  INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_polls_group_active ON polls (group_id, is_active)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_polls_group_active ON polls (group_id) WHERE is_active = 1`,
	`CREATE TABLE IF NOT EXISTS options (
		id         TEXT PRIMARY KEY,
		poll_id    TEXT    NOT NULL REFERENCES polls (id) ON DELETE CASCADE,
		sort_order INTEGER NOT NULL,
		text       TEXT    NOT NULL CHECK (length(text) <= 100),
		CONSTRAINT uq_options_poll_id UNIQUE (poll_id, id),
		CONSTRAINT uq_options_poll_order UNIQUE (poll_id, sort_order)
	)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id          TEXT PRIMARY KEY,
		poll_id     TEXT    NOT NULL,
		option_id   TEXT    NOT NULL,
		voter_token TEXT    NOT NULL CHECK (length(voter_token) <= 64),
		created_at  INTEGER NOT NULL,
		CONSTRAINT uq_votes_poll_voter UNIQUE (poll_id, voter_token),
		CONSTRAINT fk_votes_poll FOREIGN KEY (poll_id) REFERENCES polls (id) ON DELETE CASCADE,
		CONSTRAINT fk_votes_poll_option FOREIGN KEY (poll_id, option_id) REFERENCES options (poll_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_poll_option ON votes (poll_id, option_id)`,
}

// DropSchema removes the poll tables in dependency order. Valid for both dialects.
var DropSchema = []string{
	`DROP TABLE IF EXISTS votes`,
	`DROP TABLE IF EXISTS options`,
	`DROP TABLE IF EXISTS polls`,
}
