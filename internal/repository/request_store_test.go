package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/store"
)

const testTable = "requests"

func newTestRequestStore(t *testing.T) (RequestStore, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	logger := zap.NewNop()
	guard := store.NewGuard(time.Second, logger)
	retrier := store.NewRetrier(config.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2,
	}, logger)
	return NewRequestStore(mem, testTable, guard, retrier, logger), mem
}

func sampleRequest(id string) *domain.Request {
	return &domain.Request{
		ID:           id,
		Status:       domain.RequestStatusNew,
		Location:     "Room 204",
		IssueType:    "Plumbing",
		ReporterID:   "hk-1",
		ReporterName: "Maria",
		CreatedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestRequestStore_AppendAndGetRoundTrip(t *testing.T) {
	repo, _ := newTestRequestStore(t)
	ctx := context.Background()

	want := sampleRequest("req-1")
	require.NoError(t, repo.Append(ctx, want))

	got, err := repo.GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, domain.RequestStatusNew, got.Status)
	assert.Equal(t, "Room 204", got.Location)
	assert.Equal(t, "Maria", got.ReporterName)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Nil(t, got.AcceptedAt)
	assert.Nil(t, got.CompletedAt)
}

func TestRequestStore_CommitPromotesDraft(t *testing.T) {
	repo, _ := newTestRequestStore(t)
	ctx := context.Background()

	draft := sampleRequest("req-1")
	draft.Status = domain.RequestStatusCreating
	require.NoError(t, repo.Append(ctx, draft))

	require.NoError(t, repo.Commit(ctx, "req-1", "https://blob/photo.jpg"))

	got, err := repo.GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusNew, got.Status)
	assert.Equal(t, "https://blob/photo.jpg", got.PhotoURL)
}

func TestRequestStore_AcceptRecordsAssignee(t *testing.T) {
	repo, _ := newTestRequestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, sampleRequest("req-1")))

	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	accepted, err := repo.Accept(ctx, "req-1", "tech-7", "Ivan", at)
	require.NoError(t, err)
	assert.True(t, accepted)

	got, err := repo.GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusInProgress, got.Status)
	assert.Equal(t, "tech-7", got.AssigneeID)
	assert.Equal(t, "Ivan", got.AssigneeName)
	require.NotNil(t, got.AcceptedAt)
	assert.True(t, at.Equal(*got.AcceptedAt))
	assert.True(t, got.Accepted())
}

func TestRequestStore_AcceptRejectsNonNewStatus(t *testing.T) {
	repo, _ := newTestRequestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, sampleRequest("req-1")))

	first, err := repo.Accept(ctx, "req-1", "tech-7", "Ivan", time.Now().UTC())
	require.NoError(t, err)
	require.True(t, first)

	second, err := repo.Accept(ctx, "req-1", "tech-9", "Olga", time.Now().UTC())
	require.NoError(t, err, "a lost race is a rejection, not a fault")
	assert.False(t, second)

	got, err := repo.GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "tech-7", got.AssigneeID, "the winner's claim must stand")
}

func TestRequestStore_AcceptMissingRowRejects(t *testing.T) {
	repo, _ := newTestRequestStore(t)

	accepted, err := repo.Accept(context.Background(), "ghost", "tech-7", "Ivan", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, accepted)
}

func TestRequestStore_ConcurrentAcceptHasOneWinner(t *testing.T) {
	repo, _ := newTestRequestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, sampleRequest("req-1")))

	const racers = 8
	wins := make([]bool, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := repo.Accept(ctx, "req-1", "tech", "Tech", time.Now().UTC())
			assert.NoError(t, err)
			wins[i] = ok
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one accept may win")
}

func TestRequestStore_CompleteRequiresAssignee(t *testing.T) {
	repo, _ := newTestRequestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, sampleRequest("req-1")))

	_, err := repo.Accept(ctx, "req-1", "tech-7", "Ivan", time.Now().UTC())
	require.NoError(t, err)

	completed, err := repo.Complete(ctx, "req-1", "tech-9", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, completed, "only the assignee may complete")

	completed, err = repo.Complete(ctx, "req-1", "tech-7", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, completed)

	got, err := repo.GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestRequestStore_CompleteRejectsWrongStatus(t *testing.T) {
	repo, _ := newTestRequestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, sampleRequest("req-1")))

	completed, err := repo.Complete(ctx, "req-1", "tech-7", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, completed, "a request never accepted cannot be completed")
}

func TestRequestStore_DeleteRemovesRow(t *testing.T) {
	repo, _ := newTestRequestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, sampleRequest("req-1")))

	deleted, err := repo.Delete(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetByID(ctx, "req-1")
	assert.ErrorIs(t, err, store.ErrRowNotFound)

	deleted, err = repo.Delete(ctx, "req-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRequestStore_ListSkipsMalformedRows(t *testing.T) {
	repo, mem := newTestRequestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, sampleRequest("req-1")))
	require.NoError(t, mem.AppendRow(ctx, testTable, []string{"req-bad", "new", "Hall", "Other", "", "hk-2", "Ana", "not-a-timestamp"}))
	require.NoError(t, repo.Append(ctx, sampleRequest("req-2")))

	requests, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "req-1", requests[0].ID)
	assert.Equal(t, "req-2", requests[1].ID)
}
