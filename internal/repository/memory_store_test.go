package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	contracts, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, contracts, "fresh store should be empty")

	saved := []models.Contract{
		{ID: "c1", Title: "NDA", Status: models.StatusDraft},
		{ID: "c2", Title: "MSA", Status: models.StatusDraft},
	}
	require.NoError(t, store.SaveAll(ctx, saved))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "c1", loaded[0].ID)
	assert.Equal(t, "c2", loaded[1].ID)

	// Mutating what LoadAll handed out must not leak into the store.
	loaded[0].Title = "changed"
	again, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NDA", again[0].Title)
}

func TestMemoryStoreLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Two writers that loaded the same snapshot both save; the second
	// write clobbers the first. This is the documented default.
	require.NoError(t, store.SaveAll(ctx, []models.Contract{{ID: "a", Title: "first"}}))
	require.NoError(t, store.SaveAll(ctx, []models.Contract{{ID: "a", Title: "second"}}))

	contracts, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, "second", contracts[0].Title)
}

func TestMemoryStoreRevisionCheck(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	contracts, revision, err := store.LoadAllVersioned(ctx)
	require.NoError(t, err)
	assert.Empty(t, contracts)
	assert.EqualValues(t, 0, revision)

	require.NoError(t, store.SaveAllIfRevision(ctx, []models.Contract{{ID: "a"}}, revision))

	// A writer holding the stale revision is refused.
	err = store.SaveAllIfRevision(ctx, []models.Contract{{ID: "b"}}, revision)
	assert.ErrorIs(t, err, ErrRevisionMismatch)

	_, revision, err = store.LoadAllVersioned(ctx)
	require.NoError(t, err)
	require.NoError(t, store.SaveAllIfRevision(ctx, []models.Contract{{ID: "a"}, {ID: "b"}}, revision))

	final, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, final, 2)
}

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	u := &models.User{Email: "alice@example.com", Name: "Alice"}
	require.NoError(t, store.CreateUser(ctx, u))
	assert.NotEmpty(t, u.ID, "CreateUser should assign an id")

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	assert.Error(t, store.CreateUser(ctx, &models.User{Email: "alice@example.com"}))
}
