package dyntag

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newSQLiteStorage(t *testing.T) *SQLCatalogStorage {
	t.Helper()
	config := DefaultSQLConfig(SQLDialectSQLite, filepath.Join(t.TempDir(), "catalogs.db"))
	config.AutoMigrate = true
	storage, err := NewSQLCatalogStorage(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestSQLCatalogStorage_SQLite(t *testing.T) {
	runCatalogStorageSuite(t, func(t *testing.T) CatalogStorage {
		return newSQLiteStorage(t)
	})
}

func TestSQLCatalogStorage_Config(t *testing.T) {
	t.Run("unknown dialect", func(t *testing.T) {
		_, err := NewSQLCatalogStorage(SQLConfig{Dialect: "oracle", ConnectionString: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnknownDialect)
	})

	t.Run("empty connection string", func(t *testing.T) {
		_, err := NewSQLCatalogStorage(SQLConfig{Dialect: SQLDialectSQLite})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgEmptyConnString)
	})

	t.Run("defaults", func(t *testing.T) {
		config := DefaultSQLConfig(SQLDialectPostgres, "postgres://localhost/db")
		assert.Equal(t, SQLDefaultTablePrefix, config.TablePrefix)
		assert.Equal(t, SQLDefaultQueryTimeout, config.QueryTimeout)
		assert.False(t, config.AutoMigrate)
	})
}

func TestSQLCatalogStorage_Placeholders(t *testing.T) {
	pg := &SQLCatalogStorage{config: SQLConfig{Dialect: SQLDialectPostgres}}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.bind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &SQLCatalogStorage{config: SQLConfig{Dialect: SQLDialectSQLite}}
	assert.Equal(t, "WHERE x = ?", lite.bind("WHERE x = ?"))
}

func TestSQLCatalogStorage_Migrations(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)

	config := DefaultSQLConfig(SQLDialectSQLite, filepath.Join(t.TempDir(), "catalogs.db"))
	config.Logger = zap.New(core)
	storage, err := NewSQLCatalogStorage(config)
	require.NoError(t, err)
	defer storage.Close()

	version, err := storage.CurrentSchemaVersion(ctx)
	assert.Error(t, err, "migrations table does not exist before migrating")
	assert.Equal(t, 0, version)

	require.NoError(t, storage.RunMigrations(ctx))
	require.NoError(t, storage.RunMigrations(ctx))
	assert.Equal(t, 1, logs.FilterMessage(LogMsgStorageMigrated).Len())

	version, err = storage.CurrentSchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestSQLCatalogStorage_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalogs.db")

	first, err := OpenCatalogStorage(StorageDriverNameSQLite, path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, &StoredCatalog{Name: "shop", Definition: shopDefinition(), CreatedBy: "alice"}))
	require.NoError(t, first.Close())
	assert.Error(t, first.Close())

	second, err := OpenCatalogStorage(StorageDriverNameSQLite, path)
	require.NoError(t, err)
	defer second.Close()

	sc, err := second.Get(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, 1, sc.Version)
	assert.Equal(t, "alice", sc.CreatedBy)

	catalog, err := LoadStoredCatalog(ctx, second, "shop")
	require.NoError(t, err)
	mod, ok := catalog.Modifier("round")
	require.True(t, ok)
	require.NotNil(t, mod.Args[0].Default)
	assert.Equal(t, "2", *mod.Args[0].Default)
}

func TestSQLCatalogStorage_TablePrefix(t *testing.T) {
	ctx := context.Background()
	config := DefaultSQLConfig(SQLDialectSQLite, filepath.Join(t.TempDir(), "catalogs.db"))
	config.TablePrefix = "custom_"
	config.AutoMigrate = true
	storage, err := NewSQLCatalogStorage(config)
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, storage.Save(ctx, &StoredCatalog{Name: "shop", Definition: shopDefinition()}))

	var n int
	require.NoError(t, storage.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM custom_catalogs").Scan(&n))
	assert.Equal(t, 1, n)
}
