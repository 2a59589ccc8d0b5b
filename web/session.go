package web

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"tubepulse/storage"
)

const (
	sessionCookieName = "session"
	flashCookieName   = "flash"
	sessionTTL        = 24 * time.Hour

	localsSession = "session"
	localsFlashes = "flashes"
)

// Session is the authenticated-user marker carried by the session cookie.
// Absence of a session means the request is anonymous.
type Session struct {
	UserID   uint
	Username string
}

// SessionManager issues and parses the signed session cookie.
type SessionManager struct {
	secret []byte
}

// NewSessionManager builds a manager signing with the configured secret.
func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{secret: []byte(secret)}
}

type sessionClaims struct {
	Username string `json:"name"`
	jwt.RegisteredClaims
}

// Issue signs a session for the user and sets the cookie.
func (m *SessionManager) Issue(c *fiber.Ctx, user *storage.User) error {
	now := time.Now()
	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  now.Add(sessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Parse validates the session cookie, returning nil for anonymous requests.
func (m *SessionManager) Parse(c *fiber.Ctx) *Session {
	raw := c.Cookies(sessionCookieName)
	if raw == "" {
		return nil
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	var userID uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return nil
	}
	return &Session{UserID: userID, Username: claims.Username}
}

// Attach is middleware that puts the parsed session into the request locals.
func (m *SessionManager) Attach() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sess := m.Parse(c); sess != nil {
			c.Locals(localsSession, sess)
		}
		return c.Next()
	}
}

// currentSession returns the request's session, or nil when anonymous.
func currentSession(c *fiber.Ctx) *Session {
	sess, _ := c.Locals(localsSession).(*Session)
	return sess
}

// Flash is a one-shot user-facing message.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// flashNow queues a message for the page rendered by this same request.
func flashNow(c *fiber.Ctx, message, category string) {
	flashes, _ := c.Locals(localsFlashes).([]Flash)
	c.Locals(localsFlashes, append(flashes, Flash{Message: message, Category: category}))
}

// flashNext stores a message in the flash cookie so it survives the redirect
// that follows.
func flashNext(c *fiber.Ctx, message, category string) {
	flashes := readFlashCookie(c)
	flashes = append(flashes, Flash{Message: message, Category: category})

	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString(data),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// takeFlashes collects this request's messages: the ones queued during
// handling plus any carried over the preceding redirect. The cookie is
// cleared so each message shows exactly once.
func takeFlashes(c *fiber.Ctx) []Flash {
	carried := readFlashCookie(c)
	if len(carried) > 0 || c.Cookies(flashCookieName) != "" {
		c.Cookie(&fiber.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	queued, _ := c.Locals(localsFlashes).([]Flash)
	return append(carried, queued...)
}

func readFlashCookie(c *fiber.Ctx) []Flash {
	raw := c.Cookies(flashCookieName)
	if raw == "" {
		return nil
	}
	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
