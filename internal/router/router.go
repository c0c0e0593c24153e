package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/plexusfit/fitplan/internal/config"
	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/handler"
	"github.com/plexusfit/fitplan/internal/session"
)

// Register wires routes, middleware, and the authorization gates.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	core *session.Core,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	planHandler *handler.PlanHandler,
	adminHandler *handler.AdminHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.SignUp)
	api.POST("/auth/signin", authHandler.SignIn)
	api.POST("/auth/signout", authHandler.SignOut)
	api.POST("/auth/confirm", authHandler.ConfirmEmail)
	api.POST("/auth/resend-confirmation", authHandler.ResendConfirmation)
	api.POST("/auth/reset-password", authHandler.ResetPasswordRequest)
	api.POST("/auth/reset-password/complete", authHandler.ResetPasswordComplete)
	api.POST("/profile/draft", profileHandler.StashDraft)

	// Secured routes: token must verify, and the core must be ready.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}), RequireAuth(core))

	secured.GET("/me", profileHandler.GetMe)
	secured.PUT("/me", profileHandler.UpdateMe)
	secured.PUT("/auth/password", authHandler.UpdatePassword)

	secured.GET("/plans/:kind/latest", planHandler.Latest)
	secured.GET("/plans/:kind/history", planHandler.History)
	secured.DELETE("/plans/:id", planHandler.Delete)

	// Creating a fresh plan on demand is a subscriber feature.
	subscribed := secured.Group("", RequireSubscription(core))
	subscribed.POST("/plans/:kind", planHandler.Create)

	admin := secured.Group("/admin", RequireAdmin(core))
	admin.GET("/users", adminHandler.ListUsers)
	admin.PATCH("/users/:id/active", adminHandler.SetActive)
}

// RequireAuth admits only a ready authenticated state. A loading core means
// "unknown", which is answered with 503 rather than 401.
func RequireAuth(core *session.Core) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := core.Snapshot()
			if state.Loading {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session state is loading")
			}
			if !state.Ready() {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrNoSession)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}

// RequireAdmin admits only sessions whose derived admin flag is set.
func RequireAdmin(core *session.Core) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !core.Snapshot().IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "administrator access required")
			}
			return next(c)
		}
	}
}

// RequireSubscription admits only profiles with a live subscription.
func RequireSubscription(core *session.Core) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := core.Snapshot()
			p := state.Profile
			ok := p != nil && p.Subscribed &&
				(p.SubscriptionUntil == nil || p.SubscriptionUntil.After(time.Now()))
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "active subscription required")
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
