package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/store"
)

func newTestUserStore(t *testing.T) (UserStore, *store.MemoryStore) {
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
	return NewUserStore(mem, "users", guard, retrier, logger), mem
}

func TestUserStore_ListAllSkipsRowsWithoutID(t *testing.T) {
	repo, mem := newTestUserStore(t)
	mem.Seed("users", [][]string{
		{"u1", "Maria", "housekeeper"},
		{"", "Ghost", "technician"},
		{"u2", "Ivan", "technician"},
	})

	users, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, domain.RoleHousekeeper, users[0].Role)
	assert.Equal(t, "Ivan", users[1].Name)
}

func TestUserStore_AppendThenList(t *testing.T) {
	repo, _ := newTestUserStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, domain.User{ID: "u1", Name: "Maria", Role: domain.RoleHousekeeper}))

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
}

func TestUserStore_DeleteAbsentReturnsFalse(t *testing.T) {
	repo, _ := newTestUserStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, domain.User{ID: "u1", Name: "Maria", Role: domain.RoleHousekeeper}))

	deleted, err := repo.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUserStore_UpdateName(t *testing.T) {
	repo, _ := newTestUserStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, domain.User{ID: "u1", Name: "Maria", Role: domain.RoleHousekeeper}))

	updated, err := repo.UpdateName(ctx, "u1", "Maria K.")
	require.NoError(t, err)
	assert.True(t, updated)

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Maria K.", users[0].Name)
	assert.Equal(t, domain.RoleHousekeeper, users[0].Role, "rename must not touch the role")

	updated, err = repo.UpdateName(ctx, "ghost", "X")
	require.NoError(t, err)
	assert.False(t, updated)
}
