package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"lunchvote/pkg/database"
)

// Postgres SQLSTATE codes for integrity violations
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ConstraintError reports that a write was rejected by a storage constraint.
// Constraint is one of the database.Constraint* names.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %s violated: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// IsConstraint reports whether err was caused by the named constraint
func IsConstraint(err error, constraint string) bool {
	var cerr *ConstraintError
	return errors.As(err, &cerr) && cerr.Constraint == constraint
}

// classifyPgError turns integrity violations into *ConstraintError using the
// constraint name Postgres reports. Other errors are returned unchanged.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgForeignKeyViolation:
		return &ConstraintError{Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

// classifySQLiteError does the same for SQLite. SQLite does not name the
// violated constraint, so the extended result code and the table being
// written identify it; each table has at most one constraint per code.
func classifySQLiteError(err error, table string) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	var constraint string
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		switch table {
		case "votes":
			constraint = database.ConstraintVotePollVoter
		case "polls":
			constraint = database.ConstraintPollGroupActive
		}
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		// votes has two foreign keys; the store narrows this to
		// fk_votes_poll when the poll itself is gone.
		if table == "votes" {
			constraint = database.ConstraintVotePollOption
		}
	}
	if constraint == "" {
		return err
	}
	return &ConstraintError{Constraint: constraint, Err: err}
}
