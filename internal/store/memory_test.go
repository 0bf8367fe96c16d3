package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kmazur/interview-copilot/internal/models"
)

func TestMemoryContextRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0)
	ctx := context.Background()

	want := models.Context{
		CV:                 "ten years of Go",
		Company:            "Acme",
		Position:           "Staff Engineer",
		CustomSystemPrompt: "answer in English",
	}
	if err := s.SetContext(ctx, "session-a", want); err != nil {
		t.Fatalf("SetContext: %v", err)
	}

	got, err := s.GetContext(ctx, "session-a")
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if got != want {
		t.Errorf("GetContext = %+v, want %+v", got, want)
	}

	// A second session is unaffected and reads the empty context.
	other, err := s.GetContext(ctx, "session-b")
	if err != nil {
		t.Fatalf("GetContext(other): %v", err)
	}
	if other != (models.Context{}) {
		t.Errorf("unrelated session context = %+v, want empty", other)
	}
}

func TestMemoryContextLastWriteWins(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0)
	ctx := context.Background()

	_ = s.SetContext(ctx, "k", models.Context{Company: "first"})
	_ = s.SetContext(ctx, "k", models.Context{Company: "second"})

	got, _ := s.GetContext(ctx, "k")
	if got.Company != "second" {
		t.Errorf("Company = %q, want %q", got.Company, "second")
	}
	if got.CV != "" {
		t.Error("wholesale replace must clear fields absent from the new value")
	}
}

func TestMemoryHistoryOrderAndLimit(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		entry := models.HistoryEntry{
			Question:  "q",
			Answer:    "a",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.AppendHistory(ctx, "k", entry); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	entries, err := s.GetHistory(ctx, "k", 3)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Error("entries must be ordered newest first")
		}
	}
	if !entries[0].Timestamp.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("first entry timestamp = %v, want newest", entries[0].Timestamp)
	}
}

func TestMemoryHistoryRetention(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = s.AppendHistory(ctx, "k", models.HistoryEntry{
			Question:  "q",
			Answer:    "a",
			Timestamp: time.Date(2025, 6, 1, 12, i, 0, 0, time.UTC),
		})
	}

	entries, _ := s.GetHistory(ctx, "k", 0)
	if len(entries) != 2 {
		t.Errorf("retention=2 kept %d entries, want 2", len(entries))
	}
}

func TestMemoryClearHistory(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0)
	ctx := context.Background()

	_ = s.AppendHistory(ctx, "k", models.HistoryEntry{Question: "q", Answer: "a", Timestamp: time.Now()})
	_ = s.AppendHistory(ctx, "k", models.HistoryEntry{Question: "q2", Answer: "a2", Timestamp: time.Now()})

	n, err := s.ClearHistory(ctx, "k")
	if err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared %d entries, want 2", n)
	}

	entries, _ := s.GetHistory(ctx, "k", 0)
	if len(entries) != 0 {
		t.Errorf("history not empty after clear: %d entries", len(entries))
	}
}

func TestMemoryUsers(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0)
	ctx := context.Background()

	user := &models.User{
		ID:             uuid.New(),
		Email:          "jan@example.com",
		HashedPassword: "hash",
		IsActive:       true,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := s.CreateUser(ctx, &models.User{ID: uuid.New(), Email: "jan@example.com"}); err != ErrEmailTaken {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}

	byEmail, err := s.GetUserByEmail(ctx, "jan@example.com")
	if err != nil || byEmail.ID != user.ID {
		t.Errorf("GetUserByEmail = %v, %v", byEmail, err)
	}

	byID, err := s.GetUserByID(ctx, user.ID.String())
	if err != nil || byID.Email != user.Email {
		t.Errorf("GetUserByID = %v, %v", byID, err)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); err != ErrNotFound {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}
