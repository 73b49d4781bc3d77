package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"lunchvote/internal/domain"
	"lunchvote/internal/repository"
	apperrors "lunchvote/pkg/errors"
)

// TallyService computes results from the current set of votes. Nothing is
// cached, so results always match the stored votes at read time.
type TallyService struct {
	store   repository.PollStore
	logger  *zap.Logger
	timeout time.Duration
}

// NewTallyService creates a new tally service
func NewTallyService(store repository.PollStore, logger *zap.Logger, timeout time.Duration) *TallyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TallyService{store: store, logger: logger, timeout: timeout}
}

// GetResults returns per-option counts in option order. Options without
// votes report zero and TotalVotes is the sum of the counts.
func (s *TallyService) GetResults(ctx context.Context, pollID string) (*domain.PollResults, error) {
	if strings.TrimSpace(pollID) == "" {
		return nil, apperrors.NewNotFoundError("Poll not found.")
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	poll, err := s.store.GetPoll(storeCtx, pollID)
	observeStore("get_poll", start)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to load poll.", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("Poll not found.")
	}

	start = time.Now()
	options, err := s.store.ListOptions(storeCtx, pollID)
	observeStore("list_options", start)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to load poll options.", err)
	}

	start = time.Now()
	counts, err := s.store.CountVotesByOption(storeCtx, pollID)
	observeStore("count_votes", start)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to count votes.", err)
	}

	return tally(poll, options, counts), nil
}

func tally(poll *domain.Poll, options []domain.Option, counts map[string]int) *domain.PollResults {
	results := &domain.PollResults{
		PollID:   poll.ID,
		Question: poll.Question,
		IsActive: poll.IsActive,
		Results:  make([]domain.OptionResult, 0, len(options)),
	}
	for _, opt := range options {
		count := counts[opt.ID]
		results.Results = append(results.Results, domain.OptionResult{
			OptionID: opt.ID,
			Text:     opt.Text,
			Count:    count,
		})
		results.TotalVotes += count
	}
	return results
}
