// Package tracker runs bounded video-statistics sampling sessions and renders
// their time-series charts.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tubepulse/youtube"
)

// Tracker samples a video's statistics at a fixed interval and turns the
// collected record into charts. One Run is one tracker session; the call
// blocks for the session's full duration.
type Tracker struct {
	live    youtube.StatsSource // nil when no API key is configured
	sim     youtube.StatsSource
	dataDir string
	plotDir string
	relBase string
	loc     *time.Location
	log     *slog.Logger
}

// Config holds the tracker's file locations and chart settings.
type Config struct {
	// Live is the API-backed stats source; nil degrades to simulated mode.
	Live youtube.StatsSource
	// DataDir holds the transient record files.
	DataDir string
	// PlotDir is where chart PNGs are written.
	PlotDir string
	// RelBase is the chart path prefix relative to the static root.
	RelBase string
	// Timezone labels the chart time axis.
	Timezone string
}

// New builds a tracker.
func New(cfg Config, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	if cfg.RelBase == "" {
		cfg.RelBase = "images/tracker"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("unknown timezone, falling back to UTC", "timezone", cfg.Timezone)
		loc = time.UTC
	}

	return &Tracker{
		live:    cfg.Live,
		sim:     &youtube.SimulatedStatsSource{},
		dataDir: cfg.DataDir,
		plotDir: cfg.PlotDir,
		relBase: cfg.RelBase,
		loc:     loc,
		log:     log,
	}
}

// Run samples the video's statistics `samples` times, `intervalMin` minutes
// apart, and returns the generated chart paths relative to the static root.
// Fewer than two collected rows yield no charts. The transient record file is
// removed before returning. Cancelling ctx stops sampling early; the rows
// collected so far are still charted.
func (t *Tracker) Run(ctx context.Context, videoID string, intervalMin, samples int) ([]string, error) {
	source := t.live
	mode := "live"
	if source == nil {
		source = t.sim
		mode = "simulated"
	}
	t.log.Info("tracking session started",
		"video_id", videoID, "mode", mode, "interval_min", intervalMin, "samples", samples)

	record, err := newRecordFile(t.dataDir, videoID)
	if err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}
	defer func() {
		if err := record.remove(); err != nil {
			t.log.Warn("record file cleanup failed", "path", record.path, "error", err)
		}
	}()

	for i := 0; i < samples; i++ {
		ts := time.Now().In(t.loc)

		stats, err := source.Fetch(ctx, videoID)
		if err != nil {
			// Best effort: an empty row is forward-filled later.
			t.log.Warn("stats fetch failed", "video_id", videoID, "sample", i+1, "error", err)
			stats = youtube.Stats{}
		}
		if err := record.append(ts, stats); err != nil {
			return nil, fmt.Errorf("tracker: %w", err)
		}
		t.log.Info("sample collected", "video_id", videoID,
			"sample", fmt.Sprintf("%d/%d", i+1, samples),
			"views", formatCount(stats.Views),
			"likes", formatCount(stats.Likes),
			"subscribers", formatCount(stats.Subscribers))

		if i == samples-1 {
			break
		}
		select {
		case <-time.After(time.Duration(intervalMin) * time.Minute):
		case <-ctx.Done():
			t.log.Warn("tracking session cancelled", "video_id", videoID, "collected", i+1)
		}
		if ctx.Err() != nil {
			break
		}
	}

	rows, err := record.readAll()
	if err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}
	if len(rows) < 2 {
		t.log.Warn("not enough samples to chart", "video_id", videoID, "rows", len(rows))
		return nil, nil
	}

	forwardFill(rows)
	paths := t.renderCharts(rows, videoID)
	t.log.Info("tracking session complete", "video_id", videoID, "charts", len(paths))
	return paths, nil
}
