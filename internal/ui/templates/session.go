package templates

import (
	"context"
	"net/http"
)

const (
	ThemeCookie = "theme"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// Session is the per-browser UI state. It travels with the request and is
// handed to every render; nothing about it is process-wide.
type Session struct {
	Theme string
}

func (s Session) Dark() bool { return s.Theme == ThemeDark }

// Toggled returns the session with the other theme.
func (s Session) Toggled() Session {
	if s.Dark() {
		return Session{Theme: ThemeLight}
	}
	return Session{Theme: ThemeDark}
}

func (s Session) Cookie() *http.Cookie {
	return &http.Cookie{
		Name:     ThemeCookie,
		Value:    s.Theme,
		Path:     "/",
		MaxAge:   365 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionFromRequest reads the theme cookie; anything unexpected means light.
func SessionFromRequest(r *http.Request) Session {
	if c, err := r.Cookie(ThemeCookie); err == nil && c.Value == ThemeDark {
		return Session{Theme: ThemeDark}
	}
	return Session{Theme: ThemeLight}
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by WithSession, or a light one.
func SessionFrom(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionKey{}).(Session); ok {
		return s
	}
	return Session{Theme: ThemeLight}
}
