package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/asmstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals lets a test run InitStores and CloseCaching again.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	t.Cleanup(func() {
		CloseCaching()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite backends", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath))
		assert.NotNil(t, Manager.GetResponseStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		CloseCaching()
		_, err := os.Stat(cachePath)
		assert.NoError(t, err, "cache database file should exist")
		_, err = os.Stat(historyPath)
		assert.NoError(t, err, "history database file should exist")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)
		path := filepath.Join(t.TempDir(), "cache.db")

		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		assert.Nil(t, Manager.GetHistoryStore())

		CloseCaching()
		CloseCaching()
	})

	t.Run("none backends leave stores unset", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))
		assert.Nil(t, Manager.GetResponseStore())
		assert.Nil(t, Manager.GetHistoryStore())
	})

	t.Run("unsupported backend", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores("bogus", "", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize response caching")
	})

	t.Run("history failure closes the response store", func(t *testing.T) {
		resetGlobals(t)
		path := filepath.Join(t.TempDir(), "cache.db")
		err := InitStores(schema.SQLiteBackend, path, "bogus", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize history store")
		assert.Nil(t, Manager.GetResponseStore())
	})
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "response_cache", false},
		{"leading underscore", "_cache", false},
		{"mixed case and digits", "Cache2", false},
		{"empty", "", true},
		{"leading digit", "1cache", true},
		{"hyphen", "response-cache", true},
		{"injection", "cache; DROP TABLE users", true},
		{"quoted", `"cache"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`response_cache`", quoteTableName("response_cache", schema.MySQLBackend))
	assert.Equal(t, `"response_cache"`, quoteTableName("response_cache", schema.PostgreSQLBackend))
	assert.Equal(t, `"response_cache"`, quoteTableName("response_cache", schema.SQLiteBackend))
}

func TestDriverFor(t *testing.T) {
	for backend, want := range map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	} {
		got, err := driverFor(backend)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := driverFor(schema.NoneBackend)
	assert.Error(t, err)
}

func TestCacheStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(responseTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	now := time.Now().Unix()
	require.NoError(t, store.Set("k1", []byte(`{"reports":[]}`), 1, now))

	value, version, ts, err := store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, `{"reports":[]}`, string(value))
	assert.Equal(t, 1, version)
	assert.Equal(t, now, ts)

	// Upsert replaces the whole entry
	require.NoError(t, store.Set("k1", []byte("v2"), 2, now+10))
	value, version, ts, err = store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(value))
	assert.Equal(t, 2, version)
	assert.Equal(t, now+10, ts)

	require.NoError(t, store.Set("k2", []byte("v"), 1, now-100))
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(now+10, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(now-100, 0), status.OldestEntryTime)
	assert.Greater(t, status.TableSizeBytes, int64(0))
}

func TestCacheStoreEmptyStatus(t *testing.T) {
	store, err := NewCacheStore(responseTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalEntries)
	assert.True(t, status.LastEntryTime.IsZero())
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(responseTable, schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Set("k", []byte("v"), 1, 0))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, "")
	assert.Error(t, err)

	_, err = NewCacheStore(responseTable, "bogus", "")
	assert.Error(t, err)
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, "INSERT OR REPLACE INTO"},
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key) DO UPDATE"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			cs := &CacheStoreImpl{tableName: responseTable, backend: tt.backend}
			assert.Contains(t, cs.getUpsertQuery(), tt.want)
		})
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery(responseTable, schema.MySQLBackend), "MEDIUMBLOB")
	assert.Contains(t, getCreateTableQuery(responseTable, schema.PostgreSQLBackend), "BYTEA")
	q := getCreateTableQuery(responseTable, schema.SQLiteBackend)
	assert.Contains(t, q, `CREATE TABLE IF NOT EXISTS "response_cache"`)
	assert.True(t, strings.Contains(q, "BLOB"))
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(responseTable, schema.SQLiteBackend, path)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache("bogus", "", ""))
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	mgr := &CacheStoreManager{}
	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_ = mgr.GetResponseStore()
			_ = mgr.GetHistoryStore()
		})
	}
	wg.Wait()
}
