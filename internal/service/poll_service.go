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

// PollService manages the poll lifecycle: creating a poll replaces the
// group's active one atomically.
type PollService struct {
	store   repository.PollStore
	cache   *CacheService
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewPollService creates a new poll service
func NewPollService(store repository.PollStore, cache *CacheService, logger *zap.Logger, timeout time.Duration) *PollService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollService{
		store:   store,
		cache:   cache,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// CreatePoll validates the request and stores the poll, deactivating the
// group's previous poll in the same transaction.
func (s *PollService) CreatePoll(ctx context.Context, req domain.CreatePollRequest) (*domain.CreatePollResponse, error) {
	if details := domain.Validate(req); details != nil {
		return nil, apperrors.NewInvalidInputError("Invalid poll request.", details)
	}

	poll, options := domain.NewPoll(req, s.now())

	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	deactivated, err := s.store.CreatePoll(storeCtx, poll, options)
	observeStore("create_poll", start)
	if err != nil {
		s.logger.Error("Failed to create poll",
			zap.String("group_id", req.GroupID),
			zap.Error(err))
		return nil, apperrors.NewStorageError("Failed to create poll.", err)
	}

	if deactivated > 0 {
		s.logger.Info("Deactivated existing poll",
			zap.String("group_id", poll.GroupID),
			zap.Int64("count", deactivated))
	}
	pollsCreated.Inc()
	s.logger.Info("Created new poll",
		zap.String("poll_id", poll.ID),
		zap.String("group_id", poll.GroupID),
		zap.Int("options", len(options)))

	return &domain.CreatePollResponse{PollID: poll.ID}, nil
}

// GetActivePoll returns the group's active poll with options in display order
func (s *PollService) GetActivePoll(ctx context.Context, groupID string) (*domain.ActivePoll, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, apperrors.NewInvalidInputError("groupId is required.", map[string]interface{}{
			"groupId": "must not be empty",
		})
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	poll, err := s.store.GetActivePoll(storeCtx, groupID)
	observeStore("get_active_poll", start)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to load active poll.", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("No active poll found for this group.")
	}

	start = time.Now()
	options, err := s.store.ListOptions(storeCtx, poll.ID)
	observeStore("list_options", start)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to load poll options.", err)
	}
	if options == nil {
		options = []domain.Option{}
	}

	return &domain.ActivePoll{
		PollID:   poll.ID,
		GroupID:  poll.GroupID,
		Question: poll.Question,
		Options:  options,
	}, nil
}

// ListActiveGroupIDs returns the groups that currently have an active poll
func (s *PollService) ListActiveGroupIDs(ctx context.Context) ([]string, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	groups, err := s.store.ListActiveGroupIDs(storeCtx)
	observeStore("list_active_groups", start)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to list groups.", err)
	}
	if groups == nil {
		groups = []string{}
	}
	return groups, nil
}

// DeletePoll tears down a poll with its options and votes. Voter markers of
// the poll are dropped afterwards.
func (s *PollService) DeletePoll(ctx context.Context, pollID string) error {
	if strings.TrimSpace(pollID) == "" {
		return apperrors.NewInvalidInputError("pollId is required.", nil)
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	deleted, err := s.store.DeletePoll(storeCtx, pollID)
	observeStore("delete_poll", start)
	if err != nil {
		s.logger.Error("Failed to delete poll", zap.String("poll_id", pollID), zap.Error(err))
		return apperrors.NewStorageError("Failed to delete poll.", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("Poll not found.")
	}

	s.logger.Info("Deleted poll", zap.String("poll_id", pollID))

	if s.cache.Enabled() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = s.cache.InvalidatePoll(ctx, pollID)
		}()
	}
	return nil
}
