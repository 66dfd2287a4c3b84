package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/wellchat-api/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger       *zap.Logger
	queryTimeout time.Duration
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return WrapDB(db, cfg.QueryTimeout, logger), nil
}

// WrapDB wraps an open pool. A zero queryTimeout leaves statements bounded
// only by the caller's context.
func WrapDB(db *sql.DB, queryTimeout time.Duration, logger *zap.Logger) *DB {
	return &DB{
		DB:           db,
		logger:       logger,
		queryTimeout: queryTimeout,
	}
}

// queryContext bounds a single statement by the configured query timeout
func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check if we can query
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Local users, one row per Supabase subject
		CREATE TABLE IF NOT EXISTS app_users (
			id UUID PRIMARY KEY,
			supabase_user_id VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255),
			role VARCHAR(20) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
			subscription VARCHAR(50),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Chat conversations and messages
		CREATE TABLE IF NOT EXISTS chat_conversations (
			id UUID PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL REFERENCES app_users(supabase_user_id) ON DELETE CASCADE,
			service VARCHAR(20) NOT NULL,
			title VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS chat_messages (
			id UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES chat_conversations(id) ON DELETE CASCADE,
			sender VARCHAR(20) NOT NULL,
			kind VARCHAR(20) NOT NULL DEFAULT 'text',
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Personality test uploads
		CREATE TABLE IF NOT EXISTS personality_results (
			id UUID PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL REFERENCES app_users(supabase_user_id) ON DELETE CASCADE,
			test_type VARCHAR(100) NOT NULL,
			file_key TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'RECEIVED',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_chat_conversations_owner_id ON chat_conversations(owner_id);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation_id ON chat_messages(conversation_id);
		CREATE INDEX IF NOT EXISTS idx_personality_results_owner_id ON personality_results(owner_id);
		CREATE INDEX IF NOT EXISTS idx_personality_results_created_at ON personality_results(created_at);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
