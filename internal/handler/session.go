package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"ctfboard/internal/auth"
	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/model"
)

const (
	tokenContextKey   = "user"
	sessionContextKey = "session"
)

// LoadSession resolves the verified cookie token into the server-side session.
// Requests without a live session continue anonymously.
func LoadSession(store auth.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok || token == nil {
				return next(c)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.ID == "" {
				return next(c)
			}

			session, err := store.Get(c.Request().Context(), claims.ID)
			if err != nil {
				if !errors.Is(err, auth.ErrSessionNotFound) {
					slog.ErrorContext(c.Request().Context(), "failed to load session", "error", err)
				}
				return next(c)
			}
			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}

// requireSession returns apperrors.ErrNotAuthenticated for anonymous requests.
func requireSession(c echo.Context) error {
	if CurrentSession(c) == nil {
		return apperrors.ErrNotAuthenticated
	}
	return nil
}

// RequireLogin sends anonymous browsers back to the login page.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := requireSession(c); err != nil {
			return c.Redirect(http.StatusFound, "/")
		}
		return next(c)
	}
}

// RequireLoginJSON answers anonymous API calls with a JSON failure.
func RequireLoginJSON(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := requireSession(c); err != nil {
			return c.JSON(http.StatusOK, Result{Success: false, Message: apperrors.MapErrorToHTTP(err).Message})
		}
		return next(c)
	}
}

// CurrentSession returns the session of the request, or nil when anonymous.
func CurrentSession(c echo.Context) *auth.Session {
	session, _ := c.Get(sessionContextKey).(*auth.Session)
	return session
}

func currentIdentity(c echo.Context) model.Identity {
	if s := CurrentSession(c); s != nil {
		return s.Identity
	}
	return model.Identity{}
}

// Result is the JSON body of flag submissions and review actions.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Pages renders HTML pages and keeps flash messages for the next one.
type Pages struct {
	sessions auth.SessionStore
}

// NewPages creates a page helper backed by the session store.
func NewPages(sessions auth.SessionStore) *Pages {
	return &Pages{sessions: sessions}
}

// Render draws name with the identity and pending flashes merged into data.
func (p *Pages) Render(c echo.Context, status int, name string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	if s := CurrentSession(c); s != nil {
		identity := s.Identity
		data["User"] = &identity
		flashes, err := p.sessions.PopFlashes(c.Request().Context(), s.ID)
		if err != nil {
			slog.WarnContext(c.Request().Context(), "failed to read flashes", "error", err)
		}
		data["Flashes"] = flashes
	}
	return c.Render(status, name, data)
}

// Flash queues a message for the next rendered page. Anonymous requests drop it.
func (p *Pages) Flash(c echo.Context, level auth.FlashLevel, message string) {
	s := CurrentSession(c)
	if s == nil {
		return
	}
	if err := p.sessions.AddFlash(c.Request().Context(), s.ID, auth.Flash{Level: level, Message: message}); err != nil {
		slog.WarnContext(c.Request().Context(), "failed to store flash", "error", err)
	}
}

// Redirect queues a flash and redirects to location.
func (p *Pages) Redirect(c echo.Context, level auth.FlashLevel, message, location string) error {
	p.Flash(c, level, message)
	return c.Redirect(http.StatusFound, location)
}

// Fail logs an unexpected error and shows the generic error page.
func (p *Pages) Fail(c echo.Context, err error) error {
	slog.ErrorContext(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
	httpErr := apperrors.MapErrorToHTTP(err)
	return p.Render(c, httpErr.StatusCode, "error.html", echo.Map{
		"Title":   "Error",
		"Message": httpErr.Message,
	})
}
