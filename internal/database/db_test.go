package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "tx_test.db"),
		Profile: ProfileStandard,
		Name:    "tx_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Conn().Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT NOT NULL)")
	require.NoError(t, err)

	return db
}

func countItems(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	return count
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO items (label) VALUES (?)", "kept")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countItems(t, db.Conn()))
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO items (label) VALUES (?)", "discarded"); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	// The insert that preceded the error must not be visible
	assert.Equal(t, 0, countItems(t, db.Conn()))
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO items (label) VALUES (?)", "discarded"); err != nil {
			return err
		}
		panic("worker died")
	})
	require.Error(t, err)

	assert.Equal(t, 0, countItems(t, db.Conn()))
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, db.QuickCheck(context.Background()))
}
