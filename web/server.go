// Package web is the HTTP front controller: it binds user input to the
// analyzer, tracker and assistant, and renders the results.
package web

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"

	"tubepulse/assistant"
	"tubepulse/storage"
	"tubepulse/youtube"
)

// CommentAnalyzer is the slice of the analyzer the handlers need.
type CommentAnalyzer interface {
	AnalyzeComments(ctx context.Context, videoID string) (*youtube.Analysis, error)
}

// StatsTracker runs one bounded tracking session.
type StatsTracker interface {
	Run(ctx context.Context, videoID string, intervalMin, samples int) ([]string, error)
}

// Config wires the server's collaborators.
type Config struct {
	Store     storage.Store
	Analyzer  CommentAnalyzer
	Tracker   StatsTracker
	Assistant assistant.Assistant
	Sessions  *SessionManager
	// ViewsDir holds the HTML templates.
	ViewsDir string
	// StaticDir is served under /static (chart images live there).
	StaticDir string
	Log       *slog.Logger
}

// Server is the web front controller.
type Server struct {
	app       *fiber.App
	store     storage.Store
	analyzer  CommentAnalyzer
	tracker   StatsTracker
	assistant assistant.Assistant
	sessions  *SessionManager
	log       *slog.Logger
}

// New builds the fiber application and registers all routes.
func New(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	engine := html.New(cfg.ViewsDir, ".html")
	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/main",
	})

	s := &Server{
		app:       app,
		store:     cfg.Store,
		analyzer:  cfg.Analyzer,
		tracker:   cfg.Tracker,
		assistant: cfg.Assistant,
		sessions:  cfg.Sessions,
		log:       log,
	}

	app.Use(s.sessions.Attach())
	if cfg.StaticDir != "" {
		app.Static("/static", cfg.StaticDir)
	}

	app.Get("/", s.home)

	app.Get("/login", s.loginPage)
	app.Post("/login", s.login)
	app.Get("/signup", s.signupPage)
	app.Post("/signup", s.signup)
	app.Get("/logout", s.logout)

	app.Get("/chatbot", s.chatbotPage)
	app.Post("/chat/:prompt", s.chat)

	app.Get("/predict", s.requireLogin("Please log in to make predictions"), s.predictPage)
	app.Post("/predict", s.requireLogin("Please log in to make predictions"), s.predict)
	app.Get("/dashboard", s.requireLogin("Please log in to view your dashboard"), s.dashboard)
	app.Get("/youtube_tracker", s.requireLogin("Please log in to use the tracker"), s.trackerPage)
	app.Post("/youtube_tracker", s.requireLogin("Please log in to use the tracker"), s.trackVideo)

	return s
}

// Listen blocks serving HTTP on addr.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// App exposes the fiber application for tests.
func (s *Server) App() *fiber.App { return s.app }

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error { return s.app.Shutdown() }

// requireLogin redirects anonymous requests to the login page with a flash.
func (s *Server) requireLogin(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentSession(c) == nil {
			flashNext(c, message, "error")
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// render wraps c.Render, always passing the session and pending flashes.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	bind["Session"] = currentSession(c)
	bind["Flashes"] = takeFlashes(c)
	return c.Render(name, bind)
}
