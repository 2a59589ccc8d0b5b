// Package storage provides durable persistence for accounts, sentiment
// predictions and tracker history.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common storage conditions.
var (
	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicate indicates a unique column collision (username or email).
	ErrDuplicate = errors.New("storage: already exists")
	// ErrInvalidInput indicates invalid or malformed input was provided.
	ErrInvalidInput = errors.New("storage: invalid input")
)

// StorageError wraps storage errors with operation and entity context.
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("failed to %s %s: %v\n", storErr.Op, storErr.Entity, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("create", "read", "list").
	Op string
	// Entity is the record type ("user", "prediction", "tracker_history").
	Entity string
	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }

// Store is the persistence interface used by the web layer.
// Implementations must be safe for concurrent use. Every operation is an
// independent single-statement transaction.
type Store interface {
	// CreateUser hashes the password and inserts a new account.
	// Returns ErrDuplicate when the username or email is taken.
	CreateUser(ctx context.Context, username, email, password string) (*User, error)
	// VerifyUser returns the account matching email whose stored hash
	// validates password. A wrong email or password returns (nil, nil),
	// not an error.
	VerifyUser(ctx context.Context, email, password string) (*User, error)
	// GetUserByID fetches an account by its id.
	GetUserByID(ctx context.Context, id uint) (*User, error)

	// AddPrediction records one completed sentiment analysis.
	AddPrediction(ctx context.Context, userID uint, videoID, sentiment string) (*Prediction, error)
	// ListPredictions returns a user's predictions, newest first.
	// limit <= 0 means no cap.
	ListPredictions(ctx context.Context, userID uint, limit int) ([]Prediction, error)
	// SentimentStats returns per-label prediction counts for a user.
	SentimentStats(ctx context.Context, userID uint) (map[string]int, error)

	// AddTrackerHistory records one completed tracking session, splitting the
	// generated chart paths into the views/likes/subscribers slots.
	AddTrackerHistory(ctx context.Context, userID uint, videoID string, plots []string) (*TrackerHistory, error)
	// ListTrackerHistory returns a user's tracking sessions, newest first.
	ListTrackerHistory(ctx context.Context, userID uint, limit int) ([]TrackerHistory, error)

	// Close releases the underlying database resources.
	Close() error
}
