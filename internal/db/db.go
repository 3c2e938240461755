package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var (
	ErrConnectFailed = errors.New("database connect failed")
	ErrMigrateFailed = errors.New("database migration failed")
)

type Config struct {
	ConnString     string
	MigrationsPath string
	// ScanPageSize is used when a scan does not ask for a page size.
	ScanPageSize int
	// MaxConns overrides the pool size parsed from ConnString when set.
	MaxConns int32
}

// DB is the PostgreSQL backend of the device record table.
type DB struct {
	connString     string
	migrationsPath string
	scanPageSize   int
	pool           *pgxpool.Pool
}

// Migrate applies every pending migration under migrationsPath. An already
// current schema is not an error.
func (db *DB) Migrate(ctx context.Context) error {
	const fn = "DB:Migrate"
	slog.InfoContext(ctx, "Running database migrations...", "path", db.migrationsPath)
	m, err := migrate.New("file://"+db.migrationsPath, db.connString)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrMigrateFailed, err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s:%w:%w", fn, ErrMigrateFailed, err)
	}
	version, dirty, err := m.Version()
	if err == nil {
		slog.InfoContext(ctx, "Database schema ready", "version", version, "dirty", dirty)
	}
	return nil
}

// Init connects the pool, checks the server answers and migrates the
// device_records table.
func Init(ctx context.Context, cfg Config) (*DB, error) {
	const fn = "DB:Init"
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrConnectFailed, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrConnectFailed, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrConnectFailed, err)
	}

	pageSize := cfg.ScanPageSize
	if pageSize <= 0 {
		pageSize = defaultScanPageSize
	}
	db := &DB{
		pool:           pool,
		connString:     cfg.ConnString,
		migrationsPath: cfg.MigrationsPath,
		scanPageSize:   pageSize,
	}
	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s:%w", fn, err)
	}
	return db, nil
}

func (db *DB) Close() {
	db.pool.Close()
}
