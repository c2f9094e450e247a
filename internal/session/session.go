// Package session implements the bare-identifier login: the user id
// lives in an httpOnly cookie and is the sole authorization boundary.
package session

import (
	"net/http"

	"github.com/riftnotes/riftnotes/internal/apperr"
)

const maxAge = 60 * 60 * 24 * 365 // one year

// Manager reads and writes the session cookie
type Manager struct {
	cookieName string
	secure     bool
}

// New creates a Manager. secure marks the cookie HTTPS-only.
func New(cookieName string, secure bool) *Manager {
	return &Manager{cookieName: cookieName, secure: secure}
}

// UserID returns the authenticated user id or ErrAuthRequired
func (m *Manager) UserID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return "", apperr.ErrAuthRequired
	}
	return cookie.Value, nil
}

// Peek returns the user id without requiring one
func (m *Manager) Peek(r *http.Request) string {
	id, err := m.UserID(r)
	if err != nil {
		return ""
	}
	return id
}

// Set writes the session cookie
func (m *Manager) Set(w http.ResponseWriter, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    userID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}

// Clear removes the session cookie
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}
