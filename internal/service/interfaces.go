package service

import (
	"context"
	"time"

	"lunchvote/internal/domain"
)

// PollLifecycle creates polls and exposes the active poll of each group
type PollLifecycle interface {
	// CreatePoll replaces the group's active poll with a new one
	CreatePoll(ctx context.Context, req domain.CreatePollRequest) (*domain.CreatePollResponse, error)

	// GetActivePoll returns the group's active poll with its options
	GetActivePoll(ctx context.Context, groupID string) (*domain.ActivePoll, error)

	// ListActiveGroupIDs returns the groups that currently have an active poll
	ListActiveGroupIDs(ctx context.Context) ([]string, error)

	// DeletePoll tears down a poll with its options and votes
	DeletePoll(ctx context.Context, pollID string) error
}

// VoteRecorder records at most one vote per voter per poll
type VoteRecorder interface {
	// SubmitVote validates and records a vote
	SubmitVote(ctx context.Context, req domain.SubmitVoteRequest) (*domain.SubmitVoteResponse, error)
}

// TallyEngine computes poll results on demand
type TallyEngine interface {
	// GetResults returns per-option counts and the total for a poll
	GetResults(ctx context.Context, pollID string) (*domain.PollResults, error)
}

// Services aggregates all service interfaces
type Services struct {
	Polls  PollLifecycle
	Votes  VoteRecorder
	Tally  TallyEngine
	Health *HealthService
}

// DefaultStoreTimeout bounds each poll store call
const DefaultStoreTimeout = 5 * time.Second

// withStoreTimeout derives the context for one store call. The caller's
// cancellation still applies.
func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
