package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ctfboard/internal/auth"
	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/service"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	identityService service.IdentityService
	pages           *Pages
	cookieSecure    bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(identityService service.IdentityService, pages *Pages, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		identityService: identityService,
		pages:           pages,
		cookieSecure:    cookieSecure,
	}
}

// LoginRequest is the login form.
type LoginRequest struct {
	User     string `form:"user"`
	Password string `form:"password"`
}

// Login godoc
// @Summary Log in
// @Description Any non-empty username and password pair starts a session.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce html
// @Param user formData string true "Username"
// @Param password formData string true "Password"
// @Success 302 "Redirect to the dashboard"
// @Failure 200 "Login page with an error message"
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return h.loginError(c, "Please enter both username and password")
	}

	session, token, err := h.identityService.Login(c.Request().Context(), req.User, req.Password)
	if err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			return h.loginError(c, verr.Message)
		}
		return h.pages.Fail(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.CreatedAt.Add(auth.SessionExpiry),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) loginError(c echo.Context, message string) error {
	return h.pages.Render(c, http.StatusOK, "login.html", echo.Map{"Title": "Login", "Error": message})
}

// Logout godoc
// @Summary Log out
// @Tags auth
// @Success 302 "Redirect to the login page"
// @Router /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	if s := CurrentSession(c); s != nil {
		if err := h.identityService.Logout(c.Request().Context(), s.ID); err != nil {
			return h.pages.Fail(c, err)
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, "/")
}
