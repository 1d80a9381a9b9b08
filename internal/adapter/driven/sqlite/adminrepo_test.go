package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

func makeAdmin(username string) model.Administrator {
	return model.Administrator{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuuS2Xx4H5w0rQ0bm1vXZ3JkYq7r6hFz1W",
		CreatedAt:    time.Date(2026, 1, 15, 10, 0, 0, 123456000, time.UTC),
	}
}

func TestAdminRepo_InsertAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepo(db)
	ctx := context.Background()

	want := makeAdmin("jake")
	require.NoError(t, repo.Insert(ctx, want))

	got, err := repo.FindByUsername(ctx, "jake")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Username, got.Username)
	assert.Equal(t, want.PasswordHash, got.PasswordHash)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	byID, err := repo.FindByID(ctx, want.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "jake", byID.Username)
}

func TestAdminRepo_FindMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepo(db)
	ctx := context.Background()

	got, err := repo.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAdminRepo_FindByUsernameIsExact(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, makeAdmin("jake")))

	for _, name := range []string{"Jake", "JAKE", "jake ", "jak"} {
		got, err := repo.FindByUsername(ctx, name)
		require.NoError(t, err)
		assert.Nil(t, got, "lookup %q must not match", name)
	}
}

func TestAdminRepo_InsertDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, makeAdmin("jake")))

	err := repo.Insert(ctx, makeAdmin("jake"))
	assert.ErrorIs(t, err, driven.ErrUsernameTaken)
}

func TestAdminRepo_InsertDuplicateIDIsNotUsernameTaken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepo(db)
	ctx := context.Background()

	first := makeAdmin("jake")
	require.NoError(t, repo.Insert(ctx, first))

	clash := makeAdmin("someone-else")
	clash.ID = first.ID
	err := repo.Insert(ctx, clash)
	require.Error(t, err)
	assert.NotErrorIs(t, err, driven.ErrUsernameTaken)
	assert.ErrorIs(t, err, driven.ErrStoreUnavailable)
}

func TestAdminRepo_Count(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepo(db)
	ctx := context.Background()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.Insert(ctx, makeAdmin("jake")))
	require.NoError(t, repo.Insert(ctx, makeAdmin("other")))

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAdminRepo_InsertFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertFirst(ctx, makeAdmin("jake")))

	err := repo.InsertFirst(ctx, makeAdmin("other"))
	assert.ErrorIs(t, err, driven.ErrNotEmpty)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAdminRepo_InsertFirstConcurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepo(db)
	ctx := context.Background()

	const attempts = 10
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := range attempts {
		go func() {
			defer wg.Done()
			errs[i] = repo.InsertFirst(ctx, makeAdmin(fmt.Sprintf("admin%d", i)))
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, driven.ErrNotEmpty)
	}
	assert.Equal(t, 1, ok)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAdminRepo_ClosedDBIsStoreUnavailable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepo(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := repo.Count(ctx)
	assert.ErrorIs(t, err, driven.ErrStoreUnavailable)

	_, err = repo.FindByUsername(ctx, "jake")
	assert.ErrorIs(t, err, driven.ErrStoreUnavailable)

	err = repo.Insert(ctx, makeAdmin("jake"))
	assert.ErrorIs(t, err, driven.ErrStoreUnavailable)
}
