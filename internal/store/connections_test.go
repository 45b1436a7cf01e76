package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markb/socialite/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	database, err := db.New(t.TempDir() + "/test.db")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	t.Cleanup(func() { database.Close() })
	return New(database.DB)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "u123_x", Key("u123", "x"))
	assert.Equal(t, "unknown_x", Key("unknown", "x"))
}

func TestUpsertAndGet(t *testing.T) {
	s := setupTestStore(t)

	expires := int64(1700000000000)
	err := s.Upsert(&Connection{
		Key:          "u123_x",
		UID:          "u123",
		Provider:     "x",
		AccessToken:  "AT1",
		RefreshToken: "RT1",
		TokenType:    "bearer",
		ExpiresAtMs:  &expires,
	})
	require.NoError(t, err)

	conn, err := s.Get("u123_x")
	require.NoError(t, err)
	assert.Equal(t, "u123", conn.UID)
	assert.Equal(t, "x", conn.Provider)
	assert.Equal(t, "AT1", conn.AccessToken)
	assert.Equal(t, "RT1", conn.RefreshToken)
	assert.Equal(t, "bearer", conn.TokenType)
	require.NotNil(t, conn.ExpiresAtMs)
	assert.Equal(t, expires, *conn.ExpiresAtMs)
	assert.Positive(t, conn.UpdatedAtMs)
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := setupTestStore(t)

	conn := &Connection{
		Key:         "u123_x",
		UID:         "u123",
		Provider:    "x",
		AccessToken: "AT1",
		TokenType:   "bearer",
	}
	require.NoError(t, s.Upsert(conn))
	first, err := s.Get("u123_x")
	require.NoError(t, err)

	require.NoError(t, s.Upsert(conn))
	second, err := s.Get("u123_x")
	require.NoError(t, err)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.GreaterOrEqual(t, second.UpdatedAtMs, first.UpdatedAtMs)
	assert.Equal(t, first.AccessToken, second.AccessToken)
}

func TestUpsertMergePreservesOmittedFields(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Upsert(&Connection{
		Key:          "u123_x",
		UID:          "u123",
		Provider:     "x",
		AccessToken:  "AT1",
		RefreshToken: "RT1",
		TokenType:    "bearer",
	}))

	// A later write without a refresh token keeps the stored one.
	require.NoError(t, s.Upsert(&Connection{
		Key:         "u123_x",
		UID:         "u123",
		Provider:    "x",
		AccessToken: "AT2",
	}))

	conn, err := s.Get("u123_x")
	require.NoError(t, err)
	assert.Equal(t, "AT2", conn.AccessToken)
	assert.Equal(t, "RT1", conn.RefreshToken)
	assert.Equal(t, "bearer", conn.TokenType)
}

func TestUpsertNilExpiryOverwrites(t *testing.T) {
	s := setupTestStore(t)

	expires := int64(1700000000000)
	require.NoError(t, s.Upsert(&Connection{
		Key: "u123_x", UID: "u123", Provider: "x",
		AccessToken: "AT1", ExpiresAtMs: &expires,
	}))
	require.NoError(t, s.Upsert(&Connection{
		Key: "u123_x", UID: "u123", Provider: "x",
		AccessToken: "AT2",
	}))

	conn, err := s.Get("u123_x")
	require.NoError(t, err)
	assert.Nil(t, conn.ExpiresAtMs)
}

func TestGetNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Get("nobody_x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeparateKeysSeparateRecords(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Upsert(&Connection{Key: "u1_x", UID: "u1", Provider: "x", AccessToken: "A"}))
	require.NoError(t, s.Upsert(&Connection{Key: "u2_x", UID: "u2", Provider: "x", AccessToken: "B"}))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
