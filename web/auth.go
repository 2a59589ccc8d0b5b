package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tubepulse/storage"
)

func (s *Server) home(c *fiber.Ctx) error {
	return s.render(c, "home", nil)
}

func (s *Server) loginPage(c *fiber.Ctx) error {
	return s.render(c, "login", nil)
}

func (s *Server) login(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	if email == "" || password == "" {
		flashNow(c, "Please fill in all fields", "error")
		return s.render(c, "login", nil)
	}

	user, err := s.store.VerifyUser(c.Context(), email, password)
	if err != nil {
		s.log.Error("credential check failed", "error", err)
		flashNow(c, "Something went wrong, please try again", "error")
		return s.render(c, "login", nil)
	}
	if user == nil {
		flashNow(c, "Invalid email or password", "error")
		return s.render(c, "login", nil)
	}

	if err := s.sessions.Issue(c, user); err != nil {
		s.log.Error("session issue failed", "error", err)
		flashNow(c, "Something went wrong, please try again", "error")
		return s.render(c, "login", nil)
	}

	flashNext(c, fmt.Sprintf("Welcome back, %s!", user.Username), "success")
	return c.Redirect("/predict")
}

func (s *Server) signupPage(c *fiber.Ctx) error {
	return s.render(c, "signup", nil)
}

func (s *Server) signup(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	confirm := c.FormValue("confirm_password")

	switch {
	case username == "" || email == "" || password == "":
		flashNow(c, "Please fill in all fields", "error")
	case !strings.Contains(email, "@") || !strings.Contains(email, "."):
		flashNow(c, "Please enter a valid email address", "error")
	case len(password) < 6:
		flashNow(c, "Password must be at least 6 characters long", "error")
	case password != confirm:
		flashNow(c, "Passwords do not match", "error")
	default:
		_, err := s.store.CreateUser(c.Context(), username, email, password)
		if errors.Is(err, storage.ErrDuplicate) {
			flashNow(c, "Username or email already exists", "error")
			break
		}
		if err != nil {
			s.log.Error("signup failed", "error", err)
			flashNow(c, "Something went wrong, please try again", "error")
			break
		}
		flashNext(c, "Account created successfully! Please log in.", "success")
		return c.Redirect("/login")
	}

	return s.render(c, "signup", nil)
}

func (s *Server) logout(c *fiber.Ctx) error {
	s.sessions.Clear(c)
	flashNext(c, "You have been logged out successfully", "success")
	return c.Redirect("/")
}
