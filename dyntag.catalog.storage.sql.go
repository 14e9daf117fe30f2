package dyntag

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLDialect names a supported SQL backend.
type SQLDialect string

// Supported dialects
const (
	SQLDialectPostgres SQLDialect = "postgres"
	SQLDialectSQLite   SQLDialect = "sqlite"
)

// placeholder returns the bind parameter for position n (1-based).
func (d SQLDialect) placeholder(n int) string {
	if d == SQLDialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d SQLDialect) valid() bool {
	return d == SQLDialectPostgres || d == SQLDialectSQLite
}

// SQLConfig configures SQLCatalogStorage.
type SQLConfig struct {
	// Dialect selects the database driver.
	Dialect SQLDialect

	// ConnectionString is the driver DSN: a postgres URL or a SQLite file
	// path.
	ConnectionString string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 2
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime.
	// Default: 5 minutes
	ConnMaxLifetime time.Duration

	// TablePrefix customizes table names.
	// Default: "dyntag_"
	TablePrefix string

	// AutoMigrate runs schema migrations on open.
	AutoMigrate bool

	// QueryTimeout bounds every query.
	// Default: 30 seconds
	QueryTimeout time.Duration

	// Logger receives migration logs. Default: no logging.
	Logger *zap.Logger
}

// DefaultSQLConfig returns a configuration with defaults for dialect.
func DefaultSQLConfig(dialect SQLDialect, connectionString string) SQLConfig {
	return SQLConfig{
		Dialect:          dialect,
		ConnectionString: connectionString,
		MaxOpenConns:     SQLDefaultMaxOpenConns,
		MaxIdleConns:     SQLDefaultMaxIdleConns,
		ConnMaxLifetime:  SQLDefaultConnMaxLifetime,
		TablePrefix:      SQLDefaultTablePrefix,
		QueryTimeout:     SQLDefaultQueryTimeout,
	}
}

// SQLCatalogStorage stores versioned catalogs in a SQL table, the definition
// held as JSON text.
type SQLCatalogStorage struct {
	db     *sql.DB
	config SQLConfig
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// SQLCatalogStorageDriver opens SQLCatalogStorage instances for one dialect.
type SQLCatalogStorageDriver struct {
	Dialect SQLDialect
}

func init() {
	RegisterCatalogStorageDriver(StorageDriverNamePostgres, &SQLCatalogStorageDriver{Dialect: SQLDialectPostgres})
	RegisterCatalogStorageDriver(StorageDriverNameSQLite, &SQLCatalogStorageDriver{Dialect: SQLDialectSQLite})
}

// Open creates a storage and migrates the schema.
func (d *SQLCatalogStorageDriver) Open(connectionString string) (CatalogStorage, error) {
	config := DefaultSQLConfig(d.Dialect, connectionString)
	config.AutoMigrate = true
	return NewSQLCatalogStorage(config)
}

// NewSQLCatalogStorage connects to the database and, if configured, runs
// migrations.
func NewSQLCatalogStorage(config SQLConfig) (*SQLCatalogStorage, error) {
	if !config.Dialect.valid() {
		return nil, &StorageError{Message: ErrMsgUnknownDialect, Name: string(config.Dialect)}
	}
	if config.ConnectionString == "" {
		return nil, &StorageError{Message: ErrMsgEmptyConnString}
	}

	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = SQLDefaultMaxOpenConns
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = SQLDefaultMaxIdleConns
	}
	if config.ConnMaxLifetime == 0 {
		config.ConnMaxLifetime = SQLDefaultConnMaxLifetime
	}
	if config.TablePrefix == "" {
		config.TablePrefix = SQLDefaultTablePrefix
	}
	if config.QueryTimeout == 0 {
		config.QueryTimeout = SQLDefaultQueryTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open(string(config.Dialect), config.ConnectionString)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgStorageConnect, Cause: err}
	}

	if config.Dialect == SQLDialectSQLite {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		config.MaxOpenConns = 1
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), config.QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &StorageError{Message: ErrMsgStorageConnect, Cause: err}
	}
	if config.Dialect == SQLDialectSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, &StorageError{Message: ErrMsgStorageConnect, Cause: err}
		}
	}

	storage := &SQLCatalogStorage{db: db, config: config, logger: logger}
	if config.AutoMigrate {
		if err := storage.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return storage, nil
}

func (s *SQLCatalogStorage) tableName() string {
	return s.config.TablePrefix + "catalogs"
}

func (s *SQLCatalogStorage) migrationsTableName() string {
	return s.config.TablePrefix + "schema_migrations"
}

// bind rewrites `?` placeholders for the dialect.
func (s *SQLCatalogStorage) bind(query string) string {
	if s.config.Dialect != SQLDialectPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(s.config.Dialect.placeholder(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Get retrieves the latest version of a catalog.
func (s *SQLCatalogStorage) Get(ctx context.Context, name string) (*StoredCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := s.bind(fmt.Sprintf(`
		SELECT id, name, version, definition, created_at, created_by
		FROM %s
		WHERE name = ?
		ORDER BY version DESC
		LIMIT 1`, s.tableName()))

	sc, err := s.scan(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewCatalogNotFoundError(name)
		}
		return nil, NewStorageError(ErrMsgStorageQuery, name, err)
	}
	return sc, nil
}

// GetVersion retrieves one version of a catalog.
func (s *SQLCatalogStorage) GetVersion(ctx context.Context, name string, version int) (*StoredCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := s.bind(fmt.Sprintf(`
		SELECT id, name, version, definition, created_at, created_by
		FROM %s
		WHERE name = ? AND version = ?`, s.tableName()))

	sc, err := s.scan(s.db.QueryRowContext(ctx, query, name, version))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewVersionNotFoundError(name, version)
		}
		return nil, &StorageError{Message: ErrMsgStorageQuery, Name: name, Version: version, Cause: err}
	}
	return sc, nil
}

// Save inserts a new version inside a transaction.
func (s *SQLCatalogStorage) Save(ctx context.Context, sc *StoredCatalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkSave(sc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	definition, err := json.Marshal(sc.Definition)
	if err != nil {
		return NewStorageError(ErrMsgStorageWrite, sc.Name, err)
	}

	var opts *sql.TxOptions
	if s.config.Dialect == SQLDialectPostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return NewStorageError(ErrMsgStorageWrite, sc.Name, err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxVersion int
	err = tx.QueryRowContext(ctx,
		s.bind(fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s WHERE name = ?", s.tableName())),
		sc.Name).Scan(&maxVersion)
	if err != nil {
		return NewStorageError(ErrMsgStorageQuery, sc.Name, err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	id := uuid.NewString()
	next := maxVersion + 1

	_, err = tx.ExecContext(ctx, s.bind(fmt.Sprintf(`
		INSERT INTO %s (id, name, version, definition, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?)`, s.tableName())),
		id, sc.Name, next, string(definition), now.UnixMilli(), sc.CreatedBy)
	if err != nil {
		return NewStorageError(ErrMsgStorageWrite, sc.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return NewStorageError(ErrMsgStorageWrite, sc.Name, err)
	}

	sc.ID = id
	sc.Version = next
	sc.CreatedAt = now
	return nil
}

// Delete removes all versions of a catalog.
func (s *SQLCatalogStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		s.bind(fmt.Sprintf("DELETE FROM %s WHERE name = ?", s.tableName())), name)
	if err != nil {
		return NewStorageError(ErrMsgStorageDelete, name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NewStorageError(ErrMsgStorageDelete, name, err)
	}
	if n == 0 {
		return NewCatalogNotFoundError(name)
	}
	return nil
}

// List returns the stored catalog names, sorted.
func (s *SQLCatalogStorage) List(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "",
		fmt.Sprintf("SELECT DISTINCT name FROM %s ORDER BY name", s.tableName()))
}

// ListVersions returns the version numbers of a catalog, newest first.
func (s *SQLCatalogStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	values, err := s.queryStrings(ctx, name,
		s.bind(fmt.Sprintf("SELECT version FROM %s WHERE name = ? ORDER BY version DESC", s.tableName())), name)
	if err != nil {
		return nil, err
	}
	versions := make([]int, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, NewStorageError(ErrMsgStorageQuery, name, err)
		}
		versions = append(versions, n)
	}
	return versions, nil
}

// Close releases the database connections.
func (s *SQLCatalogStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &StorageError{Message: ErrMsgStorageAlreadyClosed}
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLCatalogStorage) queryStrings(ctx context.Context, name, query string, args ...any) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError(ErrMsgStorageQuery, name, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, NewStorageError(ErrMsgStorageQuery, name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(ErrMsgStorageQuery, name, err)
	}
	return out, nil
}

func (s *SQLCatalogStorage) scan(row *sql.Row) (*StoredCatalog, error) {
	var (
		sc         StoredCatalog
		definition string
		createdAt  int64
		createdBy  sql.NullString
	)
	if err := row.Scan(&sc.ID, &sc.Name, &sc.Version, &definition, &createdAt, &createdBy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(definition), &sc.Definition); err != nil {
		return nil, err
	}
	sc.CreatedAt = time.UnixMilli(createdAt).UTC()
	sc.CreatedBy = createdBy.String
	return &sc, nil
}

// RunMigrations applies pending schema migrations.
func (s *SQLCatalogStorage) RunMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version     INTEGER PRIMARY KEY,
			applied_at  BIGINT NOT NULL,
			description VARCHAR(255)
		)`, s.migrationsTableName()))
	if err != nil {
		return &StorageError{Message: ErrMsgStorageMigrate, Cause: err}
	}

	applied := make(map[int]bool)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT version FROM %s", s.migrationsTableName()))
	if err != nil {
		return &StorageError{Message: ErrMsgStorageMigrate, Cause: err}
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return &StorageError{Message: ErrMsgStorageMigrate, Cause: err}
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range s.migrations() {
		if applied[m.Version] {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return &StorageError{Message: ErrMsgStorageMigrate, Cause: err}
		}
		for _, stmt := range m.Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return &StorageError{
					Message: ErrMsgStorageMigrate,
					Cause:   fmt.Errorf("migration %d failed: %w", m.Version, err),
				}
			}
		}
		if _, err := tx.ExecContext(ctx,
			s.bind(fmt.Sprintf("INSERT INTO %s (version, applied_at, description) VALUES (?, ?, ?)", s.migrationsTableName())),
			m.Version, time.Now().UnixMilli(), m.Description); err != nil {
			_ = tx.Rollback()
			return &StorageError{Message: ErrMsgStorageMigrate, Cause: err}
		}
		if err := tx.Commit(); err != nil {
			return &StorageError{Message: ErrMsgStorageMigrate, Cause: err}
		}
		s.logger.Info(LogMsgStorageMigrated,
			zap.String(LogFieldDriver, string(s.config.Dialect)),
			zap.Int(LogFieldVersion, m.Version))
	}
	return nil
}

// CurrentSchemaVersion returns the highest applied migration.
func (s *SQLCatalogStorage) CurrentSchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT MAX(version) FROM %s", s.migrationsTableName())).Scan(&version)
	if err != nil {
		return 0, &StorageError{Message: ErrMsgStorageQuery, Cause: err}
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

type sqlMigration struct {
	Version     int
	Description string
	Statements  []string
}

func (s *SQLCatalogStorage) migrations() []sqlMigration {
	table := s.tableName()
	return []sqlMigration{
		{
			Version:     1,
			Description: "catalogs table",
			Statements: []string{
				fmt.Sprintf(`
					CREATE TABLE IF NOT EXISTS %s (
						id         VARCHAR(36) PRIMARY KEY,
						name       VARCHAR(255) NOT NULL,
						version    INTEGER NOT NULL,
						definition TEXT NOT NULL,
						created_at BIGINT NOT NULL,
						created_by VARCHAR(255),
						CONSTRAINT %s_name_version_unique UNIQUE (name, version)
					)`, table, table),
				fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_name ON %s(name)", table, table),
			},
		},
	}
}
