package repository

import (
	"context"

	"lunchvote/internal/domain"
)

// PollStore is the durable record of polls, their options, and votes.
// Lookups that miss return nil with a nil error. Uniqueness and ownership
// rules are enforced by the storage engine and reported as *ConstraintError.
type PollStore interface {
	// CreatePoll deactivates the group's current poll and inserts poll with
	// its options in one transaction. It returns how many polls were deactivated.
	CreatePoll(ctx context.Context, poll *domain.Poll, options []domain.Option) (int64, error)

	// GetPoll retrieves a poll by ID regardless of its state
	GetPoll(ctx context.Context, pollID string) (*domain.Poll, error)

	// GetActivePoll retrieves the active poll of a group
	GetActivePoll(ctx context.Context, groupID string) (*domain.Poll, error)

	// ListOptions returns the options of a poll in display order
	ListOptions(ctx context.Context, pollID string) ([]domain.Option, error)

	// ListActiveGroupIDs returns the distinct groups that have an active poll
	ListActiveGroupIDs(ctx context.Context) ([]string, error)

	// FindVote retrieves the vote a voter cast in a poll
	FindVote(ctx context.Context, pollID, voterToken string) (*domain.Vote, error)

	// InsertVote records a vote
	InsertVote(ctx context.Context, vote *domain.Vote) error

	// CountVotesByOption returns vote counts keyed by option ID. Options
	// without votes are absent.
	CountVotesByOption(ctx context.Context, pollID string) (map[string]int, error)

	// DeletePoll removes a poll with its options and votes. It reports
	// whether the poll existed.
	DeletePoll(ctx context.Context, pollID string) (bool, error)

	// Health checks the connection to the store
	Health(ctx context.Context) error
}
