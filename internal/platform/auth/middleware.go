package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// publicPaths are reachable without a session token.
var publicPaths = map[string]bool{
	"/health":       true,
	"/metrics":      true,
	"/api/v1/login": true,
}

func isPublic(path string) bool {
	return publicPaths[path]
}

// Middleware authenticates requests with a Bearer session token and places
// the resulting Session in the request context.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isPublic(c.Path()) || isPublic(c.Request().URL.Path) {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header must be a bearer token")
			}

			session, err := ParseToken(secret, tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			ctx := WithSession(c.Request().Context(), session)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// DevMiddleware grants every request an administrator session. Only wired in
// when ENV=development.
func DevMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := &Session{
				StaffID:  "dev",
				Username: "dev",
				Name:     "Development User",
				Admin:    true,
			}
			ctx := WithSession(c.Request().Context(), session)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireModule returns middleware enforcing that the session may use the
// named module: administrators pass, otherwise the permission map decides.
func RequireModule(module string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := FromContext(c.Request().Context())
			if session == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !session.CanAccess(module) {
				return echo.NewHTTPError(http.StatusForbidden, "access to module "+module+" denied")
			}
			return next(c)
		}
	}
}
