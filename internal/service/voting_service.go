package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lunchvote/internal/domain"
	"lunchvote/internal/repository"
	"lunchvote/pkg/database"
	apperrors "lunchvote/pkg/errors"
)

// VoteRecordedMessage is returned on a successful submission
const VoteRecordedMessage = "Vote recorded successfully."

// VotingService records votes, one per voter token per poll.
//
// Duplicates are rejected in three places: the Redis voter marker, a read
// of the store, and finally the uq_votes_poll_voter constraint. Only the
// constraint is authoritative; the first two just avoid a failed insert.
type VotingService struct {
	store   repository.PollStore
	cache   *CacheService
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewVotingService creates a new voting service
func NewVotingService(store repository.PollStore, cache *CacheService, logger *zap.Logger, timeout time.Duration) *VotingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VotingService{
		store:   store,
		cache:   cache,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// SubmitVote validates the vote against its poll and option and records it
func (s *VotingService) SubmitVote(ctx context.Context, req domain.SubmitVoteRequest) (*domain.SubmitVoteResponse, error) {
	if details := domain.Validate(req); details != nil {
		votesSubmitted.WithLabelValues(outcomeRejected).Inc()
		return nil, apperrors.NewInvalidInputError("Invalid vote request.", details)
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.checkTarget(storeCtx, req); err != nil {
		votesSubmitted.WithLabelValues(outcomeFor(err)).Inc()
		return nil, err
	}

	if s.cache.HasVoted(storeCtx, req.PollID, req.VoterToken) {
		votesSubmitted.WithLabelValues(outcomeAlreadyVoted).Inc()
		return nil, apperrors.NewAlreadyVotedError(nil)
	}

	start := time.Now()
	existing, err := s.store.FindVote(storeCtx, req.PollID, req.VoterToken)
	observeStore("find_vote", start)
	if err != nil {
		votesSubmitted.WithLabelValues(outcomeStorageFailed).Inc()
		return nil, apperrors.NewStorageError("Failed to check existing vote.", err)
	}
	if existing != nil {
		s.cache.MarkVotedAsync(req.PollID, req.VoterToken)
		votesSubmitted.WithLabelValues(outcomeAlreadyVoted).Inc()
		return nil, apperrors.NewAlreadyVotedError(nil)
	}

	vote := &domain.Vote{
		ID:         domain.NewID(),
		PollID:     req.PollID,
		OptionID:   req.OptionID,
		VoterToken: req.VoterToken,
		CreatedAt:  s.now().UTC(),
	}

	start = time.Now()
	err = s.store.InsertVote(storeCtx, vote)
	observeStore("insert_vote", start)
	if err != nil {
		return nil, s.classifyInsertError(storeCtx, req, err)
	}

	s.cache.MarkVotedAsync(req.PollID, req.VoterToken)
	votesSubmitted.WithLabelValues(outcomeRecorded).Inc()
	s.logger.Info("Vote recorded",
		zap.String("vote_id", vote.ID),
		zap.String("poll_id", vote.PollID),
		zap.String("option_id", vote.OptionID))

	return &domain.SubmitVoteResponse{OK: true, Message: VoteRecordedMessage}, nil
}

// checkTarget resolves the poll and option a vote refers to
func (s *VotingService) checkTarget(ctx context.Context, req domain.SubmitVoteRequest) error {
	start := time.Now()
	poll, err := s.store.GetPoll(ctx, req.PollID)
	observeStore("get_poll", start)
	if err != nil {
		return apperrors.NewStorageError("Failed to load poll.", err)
	}
	if poll == nil {
		return apperrors.NewInvalidPollError()
	}
	if !poll.IsActive {
		return apperrors.NewPollClosedError()
	}

	start = time.Now()
	options, err := s.store.ListOptions(ctx, req.PollID)
	observeStore("list_options", start)
	if err != nil {
		return apperrors.NewStorageError("Failed to load poll options.", err)
	}
	for _, opt := range options {
		if opt.ID == req.OptionID {
			return nil
		}
	}
	return apperrors.NewInvalidOptionError()
}

// classifyInsertError maps constraint violations raised by the insert to
// the outcome the pre-checks would have produced. Everything else is a
// storage failure with the cause preserved.
func (s *VotingService) classifyInsertError(ctx context.Context, req domain.SubmitVoteRequest, err error) error {
	switch {
	case repository.IsConstraint(err, database.ConstraintVotePollVoter):
		duplicateVotesRaced.Inc()
		votesSubmitted.WithLabelValues(outcomeAlreadyVoted).Inc()
		s.logger.Info("Duplicate vote caught by storage constraint",
			zap.String("poll_id", req.PollID))
		s.cache.MarkVotedAsync(req.PollID, req.VoterToken)
		return apperrors.NewAlreadyVotedError(err)

	case repository.IsConstraint(err, database.ConstraintVotePoll):
		votesSubmitted.WithLabelValues(outcomeRejected).Inc()
		return apperrors.NewInvalidPollError()

	case repository.IsConstraint(err, database.ConstraintVotePollOption):
		votesSubmitted.WithLabelValues(outcomeRejected).Inc()
		// Postgres may report the option key when the whole poll was torn
		// down after the pre-check; the poll lookup tells the two apart.
		if poll, lookupErr := s.store.GetPoll(ctx, req.PollID); lookupErr == nil && poll == nil {
			return apperrors.NewInvalidPollError()
		}
		return apperrors.NewInvalidOptionError()

	default:
		votesSubmitted.WithLabelValues(outcomeStorageFailed).Inc()
		s.logger.Error("Failed to save vote",
			zap.String("poll_id", req.PollID),
			zap.Error(err))
		return apperrors.NewStorageError("Failed to save vote.", err)
	}
}

func outcomeFor(err error) string {
	if appErr := apperrors.As(err); appErr.Type == apperrors.ErrorTypeStorage {
		return outcomeStorageFailed
	}
	return outcomeRejected
}
