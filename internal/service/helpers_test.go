package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lunchvote/internal/domain"
	"lunchvote/internal/repository"
	"lunchvote/pkg/database"
	"lunchvote/pkg/redis"
)

func newTestStore(t *testing.T) repository.PollStore {
	t.Helper()
	db, err := database.NewSQLiteDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewSQLitePollStore(db)
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *CacheService) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, NewCacheService(client, nil)
}

type testServices struct {
	store repository.PollStore
	polls *PollService
	votes *VotingService
	tally *TallyService
}

func newTestServices(t *testing.T, store repository.PollStore, cache *CacheService) *testServices {
	t.Helper()
	if store == nil {
		store = newTestStore(t)
	}
	return &testServices{
		store: store,
		polls: NewPollService(store, cache, nil, 0),
		votes: NewVotingService(store, cache, nil, 0),
		tally: NewTallyService(store, nil, 0),
	}
}

// createPoll creates a poll and returns it as the active poll view
func (s *testServices) createPoll(t *testing.T, groupID string, options ...string) *domain.ActivePoll {
	t.Helper()
	ctx := context.Background()
	resp, err := s.polls.CreatePoll(ctx, domain.CreatePollRequest{
		GroupID:  groupID,
		Question: "Where should we eat?",
		Options:  options,
	})
	require.NoError(t, err)

	active, err := s.polls.GetActivePoll(ctx, groupID)
	require.NoError(t, err)
	require.Equal(t, resp.PollID, active.PollID)
	return active
}

func (s *testServices) vote(pollID, optionID, token string) error {
	_, err := s.votes.SubmitVote(context.Background(), domain.SubmitVoteRequest{
		PollID:     pollID,
		OptionID:   optionID,
		VoterToken: token,
	})
	return err
}

// mockStore is a testify mock of repository.PollStore
type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreatePoll(ctx context.Context, poll *domain.Poll, options []domain.Option) (int64, error) {
	args := m.Called(ctx, poll, options)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	args := m.Called(ctx, pollID)
	poll, _ := args.Get(0).(*domain.Poll)
	return poll, args.Error(1)
}

func (m *mockStore) GetActivePoll(ctx context.Context, groupID string) (*domain.Poll, error) {
	args := m.Called(ctx, groupID)
	poll, _ := args.Get(0).(*domain.Poll)
	return poll, args.Error(1)
}

func (m *mockStore) ListOptions(ctx context.Context, pollID string) ([]domain.Option, error) {
	args := m.Called(ctx, pollID)
	options, _ := args.Get(0).([]domain.Option)
	return options, args.Error(1)
}

func (m *mockStore) ListActiveGroupIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	groups, _ := args.Get(0).([]string)
	return groups, args.Error(1)
}

func (m *mockStore) FindVote(ctx context.Context, pollID, voterToken string) (*domain.Vote, error) {
	args := m.Called(ctx, pollID, voterToken)
	vote, _ := args.Get(0).(*domain.Vote)
	return vote, args.Error(1)
}

func (m *mockStore) InsertVote(ctx context.Context, vote *domain.Vote) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *mockStore) CountVotesByOption(ctx context.Context, pollID string) (map[string]int, error) {
	args := m.Called(ctx, pollID)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

func (m *mockStore) DeletePoll(ctx context.Context, pollID string) (bool, error) {
	args := m.Called(ctx, pollID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// blindStore hides existing votes from FindVote so every submission reaches
// the insert, as two racing requests would.
type blindStore struct {
	repository.PollStore
}

func (blindStore) FindVote(context.Context, string, string) (*domain.Vote, error) {
	return nil, nil
}

var _ repository.PollStore = (*mockStore)(nil)
