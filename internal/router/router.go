package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"ctfboard/internal/auth"
	"ctfboard/internal/config"
	"ctfboard/internal/handler"
)

// Handlers groups every route handler.
type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Challenge *handler.ChallengeHandler
	File      *handler.FileHandler
	Custom    *handler.CustomHandler
	Review    *handler.ReviewHandler
	Generate  *handler.GenerateHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	sessions auth.SessionStore,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig()))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	// A missing or invalid cookie leaves the request anonymous.
	e.Use(echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + auth.CookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ParseToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	}))
	e.Use(handler.LoadSession(sessions))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.GET("/", h.Dashboard.Index)
	e.POST("/login", h.Auth.Login)
	e.GET("/logout", h.Auth.Logout)

	// JSON routes
	e.POST("/submit_flag", h.Challenge.SubmitFlag, handler.RequireLoginJSON, submitRateLimiter(cfg))
	e.POST("/review_action", h.Review.Action, handler.RequireLoginJSON)

	// Browser routes
	secured := e.Group("", handler.RequireLogin)
	secured.GET("/challenge/:id", h.Challenge.Show)
	secured.GET("/custom_challenge/:id", h.Challenge.ShowCustom)
	secured.GET("/create_custom", h.Custom.Form)
	secured.POST("/create_custom", h.Custom.Create, middleware.BodyLimit("16M"))
	secured.GET("/review", h.Review.Page)
	secured.GET("/file/:challengeId/:filename", h.File.View)
	secured.GET("/download/:challengeId/:filename", h.File.Download)
	secured.GET("/custom_file/:challengeId/:filename", h.File.CustomFile)
	secured.GET("/generate", h.Generate.Form)
	secured.POST("/generate", h.Generate.Generate)
}

func requestLoggerConfig() middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}
}

// submitRateLimiter throttles flag guesses per session, falling back to the client address.
func submitRateLimiter(cfg *config.Config) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.SubmitRate),
		Burst:     cfg.SubmitBurst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if s := handler.CurrentSession(c); s != nil {
				return s.ID, nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, handler.Result{Success: false, Message: "Access denied"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, handler.Result{Success: false, Message: "Too many submissions. Slow down!"})
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
