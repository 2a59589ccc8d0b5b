package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tubepulse/assistant"
	"tubepulse/classifier"
	"tubepulse/config"
	"tubepulse/storage"
	"tubepulse/tracker"
	"tubepulse/web"
	"tubepulse/youtube"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.SessionSecret == config.DefaultSessionSecret {
		log.Warn("SESSION_SECRET not set, using the development default")
	}

	var cache *storage.StatsCache
	if cfg.RedisAddr != "" {
		cache, err = storage.NewStatsCache(ctx, cfg.RedisAddr, log)
		if err != nil {
			log.Warn("stats cache unavailable, continuing without it", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	store, err := storage.Open(cfg.DatabasePath, cache, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var cls classifier.Classifier
	if c, err := classifier.New(cfg.EmotionAPIURL, cfg.EmotionAPIToken, log); err == nil {
		cls = c
	} else {
		log.Warn("emotion classifier unavailable, comments will not be classified", "error", err)
	}

	var lister youtube.CommentLister
	var statsSource youtube.StatsSource
	if l, err := youtube.NewAPICommentLister(ctx, cfg.YouTubeAPIKey); err == nil {
		lister = l
	} else if !errors.Is(err, youtube.ErrServiceUnavailable) {
		return err
	}
	if s, err := youtube.NewAPIStatsSource(ctx, cfg.YouTubeAPIKey); err == nil {
		statsSource = s
	} else if !errors.Is(err, youtube.ErrServiceUnavailable) {
		return err
	}
	if lister == nil {
		log.Warn("no YouTube API key configured, comment analysis disabled and tracker simulated")
	}

	analyzer := youtube.NewAnalyzer(lister, cls, log)

	trk := tracker.New(tracker.Config{
		Live:     statsSource,
		DataDir:  cfg.DataDir,
		PlotDir:  cfg.PlotDir,
		Timezone: cfg.Timezone,
	}, log)

	asst, err := assistant.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		return err
	}

	server := web.New(web.Config{
		Store:     store,
		Analyzer:  analyzer,
		Tracker:   trk,
		Assistant: asst,
		Sessions:  web.NewSessionManager(cfg.SessionSecret),
		ViewsDir:  "web/views",
		StaticDir: cfg.StaticDir,
		Log:       log,
	})

	errc := make(chan error, 1)
	go func() { errc <- server.Listen(cfg.ListenAddr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return server.Shutdown()
	}
}
