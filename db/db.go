package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"quick-quote/logger"
)

// DB holds the database connection
var DB *sql.DB

// schema creates the tables the service needs
const schema = `
CREATE TABLE IF NOT EXISTS saved_quotes (
	id             BIGSERIAL PRIMARY KEY,
	session_id     TEXT NOT NULL,
	customer_email TEXT NOT NULL DEFAULT '',
	job_details    JSONB NOT NULL,
	responses      JSONB NOT NULL,
	result         JSONB NOT NULL,
	final_total    NUMERIC(12, 2) NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS saved_quotes_created_at_idx ON saved_quotes (created_at DESC);
`

// InitDB opens and pings the database at connStr
func InitDB(ctx context.Context, connStr string) error {
	if connStr == "" {
		return fmt.Errorf("database connection string not set. Set DATABASE_URL")
	}

	conn, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = conn
	logger.GetLogger().Infow("✓ Database connection established successfully",
		"dsn", logger.MaskConnectionString(connStr))
	return nil
}

// EnsureSchema creates missing tables
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
