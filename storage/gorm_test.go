package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), nil, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateUserDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same username", "alice", "other@example.com"},
		{"same email", "someone", "alice@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateUser(ctx, tt.username, tt.email, "secret123")
			if !errors.Is(err, ErrDuplicate) {
				t.Errorf("CreateUser() error = %v, want ErrDuplicate", err)
			}
		})
	}

	// The collision must not have created a second row.
	if _, err := store.GetUserByID(ctx, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID(2) error = %v, want ErrNotFound", err)
	}
}

func TestVerifyUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "bob", "bob@example.com", "hunter22")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if created.PasswordHash == "hunter22" {
		t.Fatal("CreateUser() stored the plaintext password")
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"correct credentials", "bob@example.com", "hunter22", true},
		{"wrong password", "bob@example.com", "hunter23", false},
		{"unknown email", "nobody@example.com", "hunter22", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := store.VerifyUser(ctx, tt.email, tt.password)
			if err != nil {
				t.Fatalf("VerifyUser() error = %v", err)
			}
			if got := user != nil; got != tt.want {
				t.Errorf("VerifyUser() matched = %v, want %v", got, tt.want)
			}
			if tt.want && user.ID != created.ID {
				t.Errorf("VerifyUser() returned user %d, want %d", user.ID, created.ID)
			}
		})
	}
}

func TestPredictionsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "carol", "carol@example.com", "secret123")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	for _, sentiment := range []string{"Positive", "Negative", "Neutral", "Negative"} {
		if _, err := store.AddPrediction(ctx, user.ID, "vid123", sentiment); err != nil {
			t.Fatalf("AddPrediction() error = %v", err)
		}
		time.Sleep(2 * time.Millisecond) // distinct timestamps
	}

	preds, err := store.ListPredictions(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("ListPredictions() error = %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("ListPredictions(limit=2) returned %d rows, want 2", len(preds))
	}
	if preds[0].Timestamp.Before(preds[1].Timestamp) {
		t.Error("ListPredictions() not ordered newest first")
	}
	if preds[0].Sentiment != "Negative" {
		t.Errorf("newest prediction = %q, want Negative", preds[0].Sentiment)
	}

	all, err := store.ListPredictions(ctx, user.ID, 0)
	if err != nil {
		t.Fatalf("ListPredictions() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ListPredictions(limit=0) returned %d rows, want 4", len(all))
	}

	stats, err := store.SentimentStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("SentimentStats() error = %v", err)
	}
	want := map[string]int{"Positive": 1, "Negative": 2, "Neutral": 1}
	for label, count := range want {
		if stats[label] != count {
			t.Errorf("SentimentStats()[%s] = %d, want %d", label, stats[label], count)
		}
	}
}

func TestAddTrackerHistorySplitsPlots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "dave", "dave@example.com", "secret123")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	plots := []string{
		"images/tracker/vid123_views_1700000000.png",
		"images/tracker/vid123_likes_1700000000.png",
		"images/tracker/vid123_subscribers_1700000000.png",
	}
	entry, err := store.AddTrackerHistory(ctx, user.ID, "vid123", plots)
	if err != nil {
		t.Fatalf("AddTrackerHistory() error = %v", err)
	}

	if entry.ViewsPlotPath == nil || *entry.ViewsPlotPath != plots[0] {
		t.Errorf("ViewsPlotPath = %v, want %q", entry.ViewsPlotPath, plots[0])
	}
	if entry.LikesPlotPath == nil || *entry.LikesPlotPath != plots[1] {
		t.Errorf("LikesPlotPath = %v, want %q", entry.LikesPlotPath, plots[1])
	}
	if entry.SubscribersPlotPath == nil || *entry.SubscribersPlotPath != plots[2] {
		t.Errorf("SubscribersPlotPath = %v, want %q", entry.SubscribersPlotPath, plots[2])
	}

	// A partial session leaves the missing slots null.
	partial, err := store.AddTrackerHistory(ctx, user.ID, "vid456", plots[:1])
	if err != nil {
		t.Fatalf("AddTrackerHistory() error = %v", err)
	}
	if partial.LikesPlotPath != nil || partial.SubscribersPlotPath != nil {
		t.Error("AddTrackerHistory() filled slots with no matching plot")
	}

	history, err := store.ListTrackerHistory(ctx, user.ID, 1)
	if err != nil {
		t.Fatalf("ListTrackerHistory() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("ListTrackerHistory(limit=1) returned %d rows, want 1", len(history))
	}
	if history[0].VideoID != "vid456" {
		t.Errorf("newest history entry video = %q, want vid456", history[0].VideoID)
	}
}
