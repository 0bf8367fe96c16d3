package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Postgres driver registration.
	_ "github.com/lib/pq"

	"github.com/google/uuid"
	"github.com/kmazur/interview-copilot/internal/models"
)

// PostgresStore is the durable store. Each operation is a single
// statement relying on Postgres transaction semantics; no multi-step
// transactions span the pipeline.
type PostgresStore struct {
	db        *sql.DB
	retention int
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to Postgres, verifies the connection and makes
// sure the schema exists. retention bounds history per session; 0 keeps
// everything.
func OpenPostgres(databaseURL string, retention int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db, retention: retention}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping verifies connectivity; used by the health surface.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			hashed_password TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS interview_contexts (
			session_key TEXT PRIMARY KEY,
			cv TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			custom_system_prompt TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS interview_history (
			id BIGSERIAL PRIMARY KEY,
			session_key TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_session_created
			ON interview_history (session_key, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// GetContext returns the stored context for the key, or the empty
// context when none exists yet.
func (s *PostgresStore) GetContext(ctx context.Context, sessionKey string) (models.Context, error) {
	var c models.Context
	query := `
		SELECT cv, company, position, custom_system_prompt
		FROM interview_contexts
		WHERE session_key = $1
	`

	err := s.db.QueryRowContext(ctx, query, sessionKey).Scan(
		&c.CV,
		&c.Company,
		&c.Position,
		&c.CustomSystemPrompt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Context{}, nil
	}
	if err != nil {
		return models.Context{}, fmt.Errorf("failed to get context: %w", err)
	}

	return c, nil
}

// SetContext upserts the context for the key; latest write wins.
func (s *PostgresStore) SetContext(ctx context.Context, sessionKey string, c models.Context) error {
	query := `
		INSERT INTO interview_contexts (session_key, cv, company, position, custom_system_prompt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (session_key) DO UPDATE
		SET cv = EXCLUDED.cv,
		    company = EXCLUDED.company,
		    position = EXCLUDED.position,
		    custom_system_prompt = EXCLUDED.custom_system_prompt,
		    updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, sessionKey, c.CV, c.Company, c.Position, c.CustomSystemPrompt); err != nil {
		return fmt.Errorf("failed to set context: %w", err)
	}
	return nil
}

// AppendHistory inserts one entry, then drops entries past the
// retention limit when one is configured.
func (s *PostgresStore) AppendHistory(ctx context.Context, sessionKey string, entry models.HistoryEntry) error {
	query := `
		INSERT INTO interview_history (session_key, question, answer, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.ExecContext(ctx, query, sessionKey, entry.Question, entry.Answer, entry.Timestamp); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	if s.retention > 0 {
		prune := `
			DELETE FROM interview_history
			WHERE session_key = $1 AND id NOT IN (
				SELECT id FROM interview_history
				WHERE session_key = $1
				ORDER BY created_at DESC, id DESC
				LIMIT $2
			)
		`
		if _, err := s.db.ExecContext(ctx, prune, sessionKey, s.retention); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
	}

	return nil
}

// GetHistory returns up to limit entries, newest first.
func (s *PostgresStore) GetHistory(ctx context.Context, sessionKey string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT question, answer, created_at
		FROM interview_history
		WHERE session_key = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, sessionKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var entry models.HistoryEntry
		if err := rows.Scan(&entry.Question, &entry.Answer, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return entries, nil
}

// ClearHistory removes all entries for the key.
func (s *PostgresStore) ClearHistory(ctx context.Context, sessionKey string) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM interview_history WHERE session_key = $1`, sessionKey)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(affected), nil
}

// CreateUser inserts a new account.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, hashed_password, full_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING
	`

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.FullName,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrEmailTaken
	}

	return nil
}

// GetUserByEmail retrieves an account by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `WHERE email = $1`, email)
}

// GetUserByID retrieves an account by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.getUser(ctx, `WHERE id = $1`, parsed)
}

func (s *PostgresStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, hashed_password, full_name, is_active, created_at, updated_at
		FROM users
	` + where

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.FullName,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
