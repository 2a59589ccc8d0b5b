package tracker

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tubepulse/youtube"
)

// sample is one row of the transient record file. Time keeps the full
// sub-second precision of the iso column; with short intervals several
// samples can share the same Unix second, and the chart X axis needs
// distinct values.
type sample struct {
	Unix        int64
	Time        time.Time
	Views       *int64
	Likes       *int64
	Subscribers *int64
}

var recordHeader = []string{"timestamp_unix", "iso", "views", "likes", "subscribers"}

// recordFile is the append-only CSV record of one tracking session. It only
// lives for the duration of the session.
type recordFile struct {
	path string
}

// newRecordFile creates a fresh record file with the header row.
func newRecordFile(dir, videoID string) (*recordFile, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", videoID, uuid.NewString()))

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create record file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordHeader); err != nil {
		return nil, fmt.Errorf("write record header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write record header: %w", err)
	}
	return &recordFile{path: path}, nil
}

// append writes one sample row. Missing values become empty cells.
func (r *recordFile) append(ts time.Time, stats youtube.Stats) error {
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open record file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		strconv.FormatInt(ts.Unix(), 10),
		ts.Format(time.RFC3339Nano),
		formatCount(stats.Views),
		formatCount(stats.Likes),
		formatCount(stats.Subscribers),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("append record row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// readAll parses the record back into samples, ordered as written.
func (r *recordFile) readAll() ([]sample, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	samples := make([]sample, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(recordHeader) {
			continue
		}
		unix, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, row[1])
		if err != nil {
			ts = time.Unix(unix, 0)
		}
		samples = append(samples, sample{
			Unix:        unix,
			Time:        ts,
			Views:       parseCount(row[2]),
			Likes:       parseCount(row[3]),
			Subscribers: parseCount(row[4]),
		})
	}
	return samples, nil
}

func (r *recordFile) remove() error { return os.Remove(r.path) }

func formatCount(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func parseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// forwardFill carries the last known value of each metric into missing cells.
// Leading gaps (no earlier value to carry) stay missing.
func forwardFill(samples []sample) {
	var views, likes, subs *int64
	for i := range samples {
		s := &samples[i]
		if s.Views != nil {
			views = s.Views
		} else {
			s.Views = views
		}
		if s.Likes != nil {
			likes = s.Likes
		} else {
			s.Likes = likes
		}
		if s.Subscribers != nil {
			subs = s.Subscribers
		} else {
			s.Subscribers = subs
		}
	}
}
