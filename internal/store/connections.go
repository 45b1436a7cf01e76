// Package store persists linked credentials as keyed documents with
// merge-upsert semantics.
package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when no connection exists at a key.
var ErrNotFound = errors.New("connection not found")

// Connection is the persisted credential for one (subject, provider) pair.
// At most one record exists per key; duplicate callback deliveries overwrite
// it rather than creating a second record.
type Connection struct {
	Key          string
	UID          string
	Provider     string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAtMs  *int64 // nil when the provider issued no expiry
	UpdatedAtMs  int64
}

// Key builds the document key for a subject/provider pair.
func Key(uid, provider string) string {
	return uid + "_" + provider
}

// Store writes and reads connection records.
type Store struct {
	db *sql.DB
}

// New creates a store over an open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Upsert merge-writes the record at conn.Key, stamping UpdatedAtMs. Optional
// fields that are empty on this write keep their stored values, so a retried
// callback whose exchange omitted refresh_token does not erase the one on
// disk. ExpiresAtMs is always written, nil included: a provider that stopped
// returning expires_in means the stored expiry is no longer meaningful.
func (s *Store) Upsert(conn *Connection) error {
	conn.UpdatedAtMs = time.Now().UnixMilli()

	_, err := s.db.Exec(`
		INSERT INTO connections (key, uid, provider, access_token, refresh_token, token_type, expires_at_ms, updated_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			uid = excluded.uid,
			provider = excluded.provider,
			access_token = COALESCE(excluded.access_token, connections.access_token),
			refresh_token = COALESCE(excluded.refresh_token, connections.refresh_token),
			token_type = COALESCE(excluded.token_type, connections.token_type),
			expires_at_ms = excluded.expires_at_ms,
			updated_at_ms = excluded.updated_at_ms`,
		conn.Key, conn.UID, conn.Provider,
		nullIfEmpty(conn.AccessToken), nullIfEmpty(conn.RefreshToken), nullIfEmpty(conn.TokenType),
		nullableInt(conn.ExpiresAtMs), conn.UpdatedAtMs)
	return err
}

// Get retrieves the record at key, or ErrNotFound.
func (s *Store) Get(key string) (*Connection, error) {
	var conn Connection
	var accessToken, refreshToken, tokenType sql.NullString
	var expiresAt sql.NullInt64

	err := s.db.QueryRow(`
		SELECT key, uid, provider, access_token, refresh_token, token_type, expires_at_ms, updated_at_ms
		FROM connections WHERE key = ?`, key).
		Scan(&conn.Key, &conn.UID, &conn.Provider, &accessToken, &refreshToken, &tokenType,
			&expiresAt, &conn.UpdatedAtMs)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	conn.AccessToken = accessToken.String
	conn.RefreshToken = refreshToken.String
	conn.TokenType = tokenType.String
	if expiresAt.Valid {
		conn.ExpiresAtMs = &expiresAt.Int64
	}
	return &conn, nil
}

// Count returns the number of stored connections. Used by tests to assert
// upsert idempotence.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM connections").Scan(&n)
	return n, err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
