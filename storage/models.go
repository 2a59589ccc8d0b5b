package storage

import "time"

// User represents one account. Accounts are created at signup and read at
// login; they are never updated or deleted in-app.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// Prediction is one persisted sentiment-analysis outcome for a (user, video)
// pair. Rows are immutable once written.
type Prediction struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE"`
	VideoID   string    `gorm:"not null"`
	Sentiment string    `gorm:"not null"`
	Timestamp time.Time `gorm:"not null;index"`
}

// TrackerHistory is one completed tracking session. The three plot paths are
// nullable: a chart that failed to render leaves its slot empty.
type TrackerHistory struct {
	ID                  uint   `gorm:"primaryKey"`
	UserID              uint   `gorm:"not null;index"`
	User                User   `gorm:"constraint:OnUpdate:CASCADE"`
	VideoID             string `gorm:"not null"`
	ViewsPlotPath       *string
	LikesPlotPath       *string
	SubscribersPlotPath *string
	Timestamp           time.Time `gorm:"not null;index"`
}

// TableName keeps the historical table name.
func (TrackerHistory) TableName() string { return "tracker_history" }

// ViewsPlot returns the views chart path, or "" when the slot is empty.
func (t TrackerHistory) ViewsPlot() string { return deref(t.ViewsPlotPath) }

// LikesPlot returns the likes chart path, or "" when the slot is empty.
func (t TrackerHistory) LikesPlot() string { return deref(t.LikesPlotPath) }

// SubscribersPlot returns the subscribers chart path, or "" when the slot is empty.
func (t TrackerHistory) SubscribersPlot() string { return deref(t.SubscribersPlotPath) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
