package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lunchvote/internal/domain"
	"lunchvote/pkg/database"
)

// PostgresPollStore implements PollStore on a pgx pool
type PostgresPollStore struct {
	db *database.PostgresDB
}

// NewPostgresPollStore creates a poll store backed by Postgres
func NewPostgresPollStore(db *database.PostgresDB) *PostgresPollStore {
	return &PostgresPollStore{db: db}
}

// CreatePoll runs deactivate-then-insert in one transaction. A per-group
// advisory lock serializes concurrent creations so the UPDATE always sees
// the poll inserted by the previous writer; uq_polls_group_active backs it up.
func (s *PostgresPollStore) CreatePoll(ctx context.Context, poll *domain.Poll, options []domain.Option) (int64, error) {
	var deactivated int64

	err := pgx.BeginTxFunc(ctx, s.db.Pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, poll.GroupID); err != nil {
			return fmt.Errorf("failed to lock group: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE polls SET is_active = FALSE WHERE group_id = $1 AND is_active`,
			poll.GroupID)
		if err != nil {
			return fmt.Errorf("failed to deactivate polls: %w", err)
		}
		deactivated = tag.RowsAffected()

		_, err = tx.Exec(ctx, `
			INSERT INTO polls (id, group_id, question, is_active, created_at)
			VALUES ($1, $2, $3, TRUE, $4)
		`, poll.ID, poll.GroupID, poll.Question, poll.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert poll: %w", classifyPgError(err))
		}

		batch := &pgx.Batch{}
		for _, opt := range options {
			batch.Queue(`INSERT INTO options (id, poll_id, sort_order, text) VALUES ($1, $2, $3, $4)`,
				opt.ID, poll.ID, opt.Position, opt.Text)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert options: %w", classifyPgError(err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	poll.IsActive = true
	return deactivated, nil
}

// GetPoll retrieves a poll by ID
func (s *PostgresPollStore) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	query := `
		SELECT id, group_id, question, is_active, created_at
		FROM polls
		WHERE id = $1
	`
	return s.queryPoll(ctx, query, pollID)
}

// GetActivePoll retrieves the active poll of a group
func (s *PostgresPollStore) GetActivePoll(ctx context.Context, groupID string) (*domain.Poll, error) {
	query := `
		SELECT id, group_id, question, is_active, created_at
		FROM polls
		WHERE group_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.queryPoll(ctx, query, groupID)
}

func (s *PostgresPollStore) queryPoll(ctx context.Context, query string, arg string) (*domain.Poll, error) {
	var poll domain.Poll
	err := s.db.Pool.QueryRow(ctx, query, arg).Scan(
		&poll.ID,
		&poll.GroupID,
		&poll.Question,
		&poll.IsActive,
		&poll.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	poll.CreatedAt = poll.CreatedAt.UTC()
	return &poll, nil
}

// ListOptions returns the options of a poll in display order
func (s *PostgresPollStore) ListOptions(ctx context.Context, pollID string) ([]domain.Option, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, poll_id, sort_order, text
		FROM options
		WHERE poll_id = $1
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
func (s *PostgresPollStore) ListActiveGroupIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT DISTINCT group_id FROM polls WHERE is_active ORDER BY group_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active groups: %w", err)
	}

	groups, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list active groups: %w", err)
	}
	return groups, nil
}

// FindVote retrieves the vote a voter cast in a poll
func (s *PostgresPollStore) FindVote(ctx context.Context, pollID, voterToken string) (*domain.Vote, error) {
	var vote domain.Vote
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, poll_id, option_id, voter_token, created_at
		FROM votes
		WHERE poll_id = $1 AND voter_token = $2
	`, pollID, voterToken).Scan(
		&vote.ID,
		&vote.PollID,
		&vote.OptionID,
		&vote.VoterToken,
		&vote.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	vote.CreatedAt = vote.CreatedAt.UTC()
	return &vote, nil
}

// InsertVote records a vote. Violations of uq_votes_poll_voter and
// fk_votes_poll_option come back as *ConstraintError.
func (s *PostgresPollStore) InsertVote(ctx context.Context, vote *domain.Vote) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO votes (id, poll_id, option_id, voter_token, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, vote.ID, vote.PollID, vote.OptionID, vote.VoterToken, vote.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vote: %w", classifyPgError(err))
	}
	return nil
}

// CountVotesByOption returns vote counts keyed by option ID
func (s *PostgresPollStore) CountVotesByOption(ctx context.Context, pollID string) (map[string]int, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT option_id, COUNT(*)
		FROM votes
		WHERE poll_id = $1
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
			count    int64
		)
		if err := rows.Scan(&optionID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[optionID] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	return counts, nil
}

// DeletePoll removes votes, options, and the poll in that order inside one
// transaction.
func (s *PostgresPollStore) DeletePoll(ctx context.Context, pollID string) (bool, error) {
	var deleted bool

	err := pgx.BeginFunc(ctx, s.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM votes WHERE poll_id = $1`, pollID); err != nil {
			return fmt.Errorf("failed to delete votes: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM options WHERE poll_id = $1`, pollID); err != nil {
			return fmt.Errorf("failed to delete options: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM polls WHERE id = $1`, pollID)
		if err != nil {
			return fmt.Errorf("failed to delete poll: %w", err)
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// Health checks the database connection
func (s *PostgresPollStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
