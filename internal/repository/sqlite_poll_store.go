package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lunchvote/internal/domain"
	"lunchvote/pkg/database"
)

// SQLitePollStore implements PollStore on an embedded SQLite database.
// The handle has a single connection, so transactions are serialized.
type SQLitePollStore struct {
	db *database.SQLiteDB
}

// NewSQLitePollStore creates a poll store backed by SQLite
func NewSQLitePollStore(db *database.SQLiteDB) *SQLitePollStore {
	return &SQLitePollStore{db: db}
}

// CreatePoll runs deactivate-then-insert in one transaction
func (s *SQLitePollStore) CreatePoll(ctx context.Context, poll *domain.Poll, options []domain.Option) (int64, error) {
	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE polls SET is_active = 0 WHERE group_id = ? AND is_active = 1`, poll.GroupID)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate polls: %w", err)
	}
	deactivated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate polls: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO polls (id, group_id, question, is_active, created_at)
		VALUES (?, ?, ?, 1, ?)
	`, poll.ID, poll.GroupID, poll.Question, poll.CreatedAt.UnixMicro())
	if err != nil {
		return 0, fmt.Errorf("failed to insert poll: %w", classifySQLiteError(err, "polls"))
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO options (id, poll_id, sort_order, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare option insert: %w", err)
	}
	defer stmt.Close()

	for _, opt := range options {
		if _, err := stmt.ExecContext(ctx, opt.ID, poll.ID, opt.Position, opt.Text); err != nil {
			return 0, fmt.Errorf("failed to insert options: %w", classifySQLiteError(err, "options"))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit poll: %w", err)
	}

	poll.IsActive = true
	return deactivated, nil
}

// GetPoll retrieves a poll by ID
func (s *SQLitePollStore) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	return s.queryPoll(ctx, `
		SELECT id, group_id, question, is_active, created_at
		FROM polls
		WHERE id = ?
	`, pollID)
}

// GetActivePoll retrieves the active poll of a group
func (s *SQLitePollStore) GetActivePoll(ctx context.Context, groupID string) (*domain.Poll, error) {
	return s.queryPoll(ctx, `
		SELECT id, group_id, question, is_active, created_at
		FROM polls
		WHERE group_id = ? AND is_active = 1
		ORDER BY created_at DESC
		LIMIT 1
	`, groupID)
}

func (s *SQLitePollStore) queryPoll(ctx context.Context, query string, arg string) (*domain.Poll, error) {
	var (
		poll      domain.Poll
		createdAt int64
	)
	err := s.db.DB.QueryRowContext(ctx, query, arg).Scan(
		&poll.ID,
		&poll.GroupID,
		&poll.Question,
		&poll.IsActive,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	poll.CreatedAt = time.UnixMicro(createdAt).UTC()
	return &poll, nil
}

// ListOptions returns the options of a poll in display order
func (s *SQLitePollStore) ListOptions(ctx context.Context, pollID string) ([]domain.Option, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT id, poll_id, sort_order, text
		FROM options
		WHERE poll_id = ?
		ORDER BY sort_order
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Position, &opt.Text); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	return options, nil
}

// ListActiveGroupIDs returns the distinct groups that have an active poll
func (s *SQLitePollStore) ListActiveGroupIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT DISTINCT group_id FROM polls WHERE is_active = 1 ORDER BY group_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active groups: %w", err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var groupID string
		if err := rows.Scan(&groupID); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, groupID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list active groups: %w", err)
	}
	return groups, nil
}

// FindVote retrieves the vote a voter cast in a poll
func (s *SQLitePollStore) FindVote(ctx context.Context, pollID, voterToken string) (*domain.Vote, error) {
	var (
		vote      domain.Vote
		createdAt int64
	)
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT id, poll_id, option_id, voter_token, created_at
		FROM votes
		WHERE poll_id = ? AND voter_token = ?
	`, pollID, voterToken).Scan(
		&vote.ID,
		&vote.PollID,
		&vote.OptionID,
		&vote.VoterToken,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	vote.CreatedAt = time.UnixMicro(createdAt).UTC()
	return &vote, nil
}

// InsertVote records a vote
func (s *SQLitePollStore) InsertVote(ctx context.Context, vote *domain.Vote) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO votes (id, poll_id, option_id, voter_token, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, vote.ID, vote.PollID, vote.OptionID, vote.VoterToken, vote.CreatedAt.UnixMicro())
	if err == nil {
		return nil
	}

	err = classifySQLiteError(err, "votes")
	var cerr *ConstraintError
	if errors.As(err, &cerr) && cerr.Constraint == database.ConstraintVotePollOption {
		poll, lookupErr := s.GetPoll(ctx, vote.PollID)
		if lookupErr == nil && poll == nil {
			cerr.Constraint = database.ConstraintVotePoll
		}
	}
	return fmt.Errorf("failed to create vote: %w", err)
}

// CountVotesByOption returns vote counts keyed by option ID
func (s *SQLitePollStore) CountVotesByOption(ctx context.Context, pollID string) (map[string]int, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT option_id, COUNT(*)
		FROM votes
		WHERE poll_id = ?
		GROUP BY option_id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			optionID string
			count    int
		)
		if err := rows.Scan(&optionID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[optionID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	return counts, nil
}

// DeletePoll removes votes, options, and the poll in that order inside one
// transaction.
func (s *SQLitePollStore) DeletePoll(ctx context.Context, pollID string) (bool, error) {
	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE poll_id = ?`, pollID); err != nil {
		return false, fmt.Errorf("failed to delete votes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM options WHERE poll_id = ?`, pollID); err != nil {
		return false, fmt.Errorf("failed to delete options: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM polls WHERE id = ?`, pollID)
	if err != nil {
		return false, fmt.Errorf("failed to delete poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete poll: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit poll deletion: %w", err)
	}
	return n > 0, nil
}

// Health checks the database handle
func (s *SQLitePollStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
