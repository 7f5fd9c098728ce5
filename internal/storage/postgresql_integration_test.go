package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

func TestStorage_CreateUserAndGet(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := uuid.New().String()

	err := storage.CreateUser(ctx, models.User{
		UID:          userUID,
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
	}, models.RoleClient)
	require.NoError(t, err)

	got, err := storage.GetUserByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, userUID, got.UID)
	assert.Equal(t, "testuser", got.Username)
	assert.Equal(t, []models.Role{models.RoleClient}, got.Roles)
	assert.Nil(t, got.EmailVerifiedAt)
	assert.False(t, got.Verified())

	byUID, err := storage.GetUserByUID(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, got.Email, byUID.Email)
}

func TestStorage_CreateUser_UnknownRole(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	err := storage.CreateUser(ctx, models.User{
		UID:          uuid.New().String(),
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
	}, models.Role("superuser"))
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Транзакция откатилась, пользователь не появился
	exists, err := storage.UsernameExists(ctx, "testuser")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStorage_Exists(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, uuid.New().String(), "testuser", "test@example.com", "hashedpassword", "client")

	taken, err := storage.UsernameExists(ctx, "testuser")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = storage.UsernameExists(ctx, "otheruser")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = storage.EmailExists(ctx, "test@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = storage.EmailExists(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestStorage_SetEmailVerified(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := uuid.New().String()
	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "client")

	first, err := storage.SetEmailVerified(ctx, userUID)
	require.NoError(t, err)
	assert.True(t, first)

	// Повторная отметка состояние не меняет
	again, err := storage.SetEmailVerified(ctx, userUID)
	require.NoError(t, err)
	assert.False(t, again)

	got, err := storage.GetUserByUID(ctx, userUID)
	require.NoError(t, err)
	assert.True(t, got.Verified())
}

func TestStorage_UpdatePassword(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := uuid.New().String()
	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "oldhash", "client")

	require.NoError(t, storage.UpdatePassword(ctx, userUID, "newhash"))

	got, err := storage.GetUserByUID(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)

	err = storage.UpdatePassword(ctx, uuid.New().String(), "newhash")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_Tokens(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := uuid.New().String()
	factory := NewTestDataFactory(storage)
	factory.CreateVerifiedUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "client")

	require.NoError(t, storage.CreateToken(ctx, "digest-1", userUID))
	require.NoError(t, storage.CreateToken(ctx, "digest-2", userUID))

	t.Run("find user by digest touches last_used_at", func(t *testing.T) {
		got, err := storage.FindUserByTokenDigest(ctx, "digest-1")
		require.NoError(t, err)
		assert.Equal(t, userUID, got.UID)

		var lastUsed sql.NullTime
		err = storage.DB.QueryRow("SELECT last_used_at FROM access_tokens WHERE token_hash = $1", "digest-1").
			Scan(&lastUsed)
		require.NoError(t, err)
		assert.True(t, lastUsed.Valid)
	})

	t.Run("unknown digest", func(t *testing.T) {
		_, err := storage.FindUserByTokenDigest(ctx, "unknown-digest")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("delete single token", func(t *testing.T) {
		deleted, err := storage.DeleteToken(ctx, "digest-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		// Вторая сессия жива
		_, err = storage.FindUserByTokenDigest(ctx, "digest-2")
		require.NoError(t, err)

		deleted, err = storage.DeleteToken(ctx, "digest-1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
	})

	t.Run("delete all tokens for user", func(t *testing.T) {
		require.NoError(t, storage.CreateToken(ctx, "digest-3", userUID))

		deleted, err := storage.DeleteAllTokensForUser(ctx, userUID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		verification := NewTestVerification(storage)
		verification.VerifyTokenCount(t, userUID, 0)
	})
}

func TestStorage_ResetTokens(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, storage.UpsertResetToken(ctx, "test@example.com", "digest-1"))

	digest, createdAt, err := storage.GetResetToken(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, "digest-1", digest)
	assert.WithinDuration(t, time.Now(), createdAt, time.Minute)

	// Повторный запрос сброса заменяет старый токен
	require.NoError(t, storage.UpsertResetToken(ctx, "test@example.com", "digest-2"))
	digest, _, err = storage.GetResetToken(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, "digest-2", digest)

	require.NoError(t, storage.DeleteResetToken(ctx, "test@example.com"))
	_, _, err = storage.GetResetToken(ctx, "test@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_ListRoles(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	roles, err := storage.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 3)

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	assert.ElementsMatch(t, []string{"admin", "developer", "client"}, names)
}
