// Package store holds the persistence interfaces for contexts, history
// and users, with an in-process implementation for development and
// tests and a Postgres implementation for durable deployments. The
// implementation is chosen once at process start and injected into the
// pipeline; nothing reads ambient global state.
package store

import (
	"context"
	"errors"

	"github.com/kmazur/interview-copilot/internal/models"
)

// ErrNotFound is returned by user lookups that match nothing. Context
// reads never return it: a missing context reads as the empty value.
var ErrNotFound = errors.New("store: not found")

// ErrEmailTaken is returned when registering an already-known email.
var ErrEmailTaken = errors.New("store: email already registered")

// ContextStore keeps at most one live Context per session key. Reads
// of an unknown key yield an empty Context; writes replace wholesale.
type ContextStore interface {
	GetContext(ctx context.Context, sessionKey string) (models.Context, error)
	SetContext(ctx context.Context, sessionKey string, c models.Context) error
}

// HistoryStore is an append-only per-session question/answer log.
// Entries come back newest first. A retention limit of 0 means
// unbounded growth.
type HistoryStore interface {
	AppendHistory(ctx context.Context, sessionKey string, entry models.HistoryEntry) error
	GetHistory(ctx context.Context, sessionKey string, limit int) ([]models.HistoryEntry, error)
	ClearHistory(ctx context.Context, sessionKey string) (int, error)
}

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store bundles the three concerns behind one injection point.
type Store interface {
	ContextStore
	HistoryStore
	UserStore
}
