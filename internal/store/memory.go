package store

import (
	"context"
	"sync"

	"github.com/kmazur/interview-copilot/internal/models"
)

// MemoryStore is the in-process fallback store. All maps are guarded by
// one RWMutex, so same-session concurrent writes serialize instead of
// racing. Data does not survive a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	contexts  map[string]models.Context
	history   map[string][]models.HistoryEntry
	users     map[string]*models.User
	retention int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process store. retention bounds
// history length per session; 0 keeps everything.
func NewMemoryStore(retention int) *MemoryStore {
	return &MemoryStore{
		contexts:  make(map[string]models.Context),
		history:   make(map[string][]models.HistoryEntry),
		users:     make(map[string]*models.User),
		retention: retention,
	}
}

// GetContext returns the stored context for the key, or the empty
// context when none exists yet.
func (s *MemoryStore) GetContext(_ context.Context, sessionKey string) (models.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contexts[sessionKey], nil
}

// SetContext replaces the context for the key.
func (s *MemoryStore) SetContext(_ context.Context, sessionKey string, c models.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[sessionKey] = c
	return nil
}

// AppendHistory records one entry, evicting the oldest entries beyond
// the retention limit.
func (s *MemoryStore) AppendHistory(_ context.Context, sessionKey string, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.history[sessionKey], entry)
	if s.retention > 0 && len(entries) > s.retention {
		entries = entries[len(entries)-s.retention:]
	}
	s.history[sessionKey] = entries
	return nil
}

// GetHistory returns up to limit entries, newest first. limit <= 0
// returns everything retained.
func (s *MemoryStore) GetHistory(_ context.Context, sessionKey string, limit int) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[sessionKey]
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	out := make([]models.HistoryEntry, 0, limit)
	for i := len(entries) - 1; i >= len(entries)-limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// ClearHistory removes all entries for the key and reports how many
// were dropped.
func (s *MemoryStore) ClearHistory(_ context.Context, sessionKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.history[sessionKey])
	delete(s.history, sessionKey)
	return n, nil
}

// CreateUser stores a new account keyed by email.
func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return ErrEmailTaken
	}
	s.users[user.Email] = user
	return nil
}

// GetUserByEmail looks up an account by email.
func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetUserByID looks up an account by its ID.
func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.ID.String() == id {
			return user, nil
		}
	}
	return nil, ErrNotFound
}
