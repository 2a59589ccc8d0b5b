package storage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore implements Store on top of a SQLite database.
type GormStore struct {
	db    *gorm.DB
	cache *StatsCache
	log   *slog.Logger
}

// Open opens (creating if needed) the SQLite database at path and runs
// migrations for the three tables. cache may be nil to disable the
// sentiment-stats cache.
func Open(path string, cache *StatsCache, log *slog.Logger) (*GormStore, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &StorageError{Op: "open", Entity: "database", Err: err}
	}

	if err := db.AutoMigrate(&User{}, &Prediction{}, &TrackerHistory{}); err != nil {
		return nil, &StorageError{Op: "migrate", Entity: "database", Err: err}
	}

	log.Info("database initialized", "path", path)
	return &GormStore{db: db, cache: cache, log: log}, nil
}

// Close releases the underlying database connection.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateUser hashes the password with bcrypt and inserts the account.
func (s *GormStore) CreateUser(ctx context.Context, username, email, password string) (*User, error) {
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &StorageError{Op: "create", Entity: "user", Err: err}
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, &StorageError{Op: "create", Entity: "user", Err: err}
	}
	return user, nil
}

// VerifyUser checks email+password. A wrong email or a wrong password both
// yield (nil, nil): "no match" is an expected outcome, not a failure.
func (s *GormStore) VerifyUser(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "user", Err: err}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return &user, nil
}

// GetUserByID fetches an account by id, returning ErrNotFound when absent.
func (s *GormStore) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "user", Err: err}
	}
	return &user, nil
}

// AddPrediction inserts an immutable prediction row and invalidates the
// user's cached sentiment tallies.
func (s *GormStore) AddPrediction(ctx context.Context, userID uint, videoID, sentiment string) (*Prediction, error) {
	pred := &Prediction{
		UserID:    userID,
		VideoID:   videoID,
		Sentiment: sentiment,
		Timestamp: time.Now(),
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(pred).Error; err != nil {
		return nil, &StorageError{Op: "create", Entity: "prediction", Err: err}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return pred, nil
}

// ListPredictions returns the user's predictions newest first.
func (s *GormStore) ListPredictions(ctx context.Context, userID uint, limit int) ([]Prediction, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var preds []Prediction
	if err := q.Find(&preds).Error; err != nil {
		return nil, &StorageError{Op: "list", Entity: "prediction", Err: err}
	}
	return preds, nil
}

// SentimentStats returns per-label prediction counts, consulting the cache
// first when one is configured. Cache failures are logged and ignored.
func (s *GormStore) SentimentStats(ctx context.Context, userID uint) (map[string]int, error) {
	if s.cache != nil {
		if stats, ok := s.cache.Get(ctx, userID); ok {
			return stats, nil
		}
	}

	type row struct {
		Sentiment string
		Count     int
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&Prediction{}).
		Select("sentiment, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("sentiment").
		Scan(&rows).Error
	if err != nil {
		return nil, &StorageError{Op: "list", Entity: "prediction", Err: err}
	}

	stats := make(map[string]int, len(rows))
	for _, r := range rows {
		stats[r.Sentiment] = r.Count
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, stats)
	}
	return stats, nil
}

// AddTrackerHistory splits the chart paths into the three typed slots by
// substring match and inserts the session row.
func (s *GormStore) AddTrackerHistory(ctx context.Context, userID uint, videoID string, plots []string) (*TrackerHistory, error) {
	entry := &TrackerHistory{
		UserID:    userID,
		VideoID:   videoID,
		Timestamp: time.Now(),
	}
	for _, plot := range plots {
		p := plot
		switch {
		case strings.Contains(plot, "views"):
			entry.ViewsPlotPath = &p
		case strings.Contains(plot, "likes"):
			entry.LikesPlotPath = &p
		case strings.Contains(plot, "subscribers"):
			entry.SubscribersPlotPath = &p
		}
	}

	if err := s.db.WithContext(ctx).Omit("User").Create(entry).Error; err != nil {
		return nil, &StorageError{Op: "create", Entity: "tracker_history", Err: err}
	}
	return entry, nil
}

// ListTrackerHistory returns the user's tracking sessions newest first.
func (s *GormStore) ListTrackerHistory(ctx context.Context, userID uint, limit int) ([]TrackerHistory, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []TrackerHistory
	if err := q.Find(&entries).Error; err != nil {
		return nil, &StorageError{Op: "list", Entity: "tracker_history", Err: err}
	}
	return entries, nil
}
