package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the shared pool. It stays nil when the server runs without a
// database; every connection then resolves as anonymous.
var DB *pgxpool.Pool

// Connect builds the pool from POSTGRES_USER, POSTGRES_PASSWORD, PG_HOST,
// PG_PORT and PG_DATABASE. An unset PG_HOST means "run without a database"
// and is reported as an error for the caller to log and ignore.
func Connect(ctx context.Context) error {
	host := os.Getenv("PG_HOST")
	if host == "" {
		return fmt.Errorf("PG_HOST not set")
	}
	port := os.Getenv("PG_PORT")
	if port == "" {
		port = "5432"
	}

	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		port,
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("db ping: %w", err)
	}

	DB = pool
	return nil
}

// Close releases the pool if one was connected.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}
