package db

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MikeMC777/farm-market/internal/product"
)

//go:embed schema.sql
var schemaSQL string

// Connect opens a pgx pool and checks the server answers.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres pool")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return pool, nil
}

// Migrate applies the products schema. Statements are idempotent. Exec with
// no arguments goes over the simple protocol, which accepts several statements.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}

// OpenSQLite opens path with GORM and creates the products table.
func OpenSQLite(path string, silent bool) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	gdb, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// one connection: sqlite has a single writer, and ":memory:" is per connection
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&product.Product{}); err != nil {
		return nil, errors.Wrap(err, "migrate sqlite")
	}
	return gdb, nil
}
