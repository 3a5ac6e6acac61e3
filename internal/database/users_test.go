package database

import (
	"context"
	"database/sql"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	found, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)
	assert.Equal(t, "alice@example.com", found.Email)

	found.Name = "Alice Cooper"
	require.NoError(t, db.UpdateUser(ctx, found))

	found, err = db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", found.Name)

	createTestUser(t, db, "Bob", "bob@example.com")
	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, db.DeleteUser(ctx, user.ID))
	_, err = db.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserMissingRows(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, err := db.GetUser(ctx, 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	err = db.DeleteUser(ctx, 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEmailTaken(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice", "Alice@Example.com")

	taken, err := db.EmailTaken(ctx, "alice@example.COM", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = db.EmailTaken(ctx, "alice@example.com", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own email does not count")

	taken, err = db.EmailTaken(ctx, "nobody@example.com", 0)
	require.NoError(t, err)
	assert.False(t, taken)

	createTestUser(t, db, "Ivan", "ИВАН@example.com")
	taken, err = db.EmailTaken(ctx, "иван@EXAMPLE.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestEmailUniqueIndexFoldsCase(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	createTestUser(t, db, "Ivan", "ИВАН@example.com")

	dup := models.User{Name: "Ivan", Email: "иван@example.com"}
	assert.Error(t, db.CreateUser(context.Background(), &dup))
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	createTestItem(t, db, owner, "Drill", true)

	require.NoError(t, db.DeleteUser(ctx, owner.ID))

	items, err := db.ListItemsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
