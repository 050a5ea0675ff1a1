// Package auth verifies access tokens issued by the hosted auth provider.
// Token issuing is the provider's job; this package only checks signatures
// and exposes the caller's identity on the request context.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRoleKey  contextKey = "user_role"
	UserEmailKey contextKey = "user_email"
)

// DevUserHeader selects the caller's identity under DevAuthMiddleware.
const DevUserHeader = "X-User-ID"

// Claims is the token payload of the hosted auth provider.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

type JWTConfig struct {
	// Secret is the provider's HS256 signing secret.
	Secret   []byte
	Issuer   string
	Audience string
	// Optional lets requests without an Authorization header through as
	// anonymous. A header that is present must still verify.
	Optional bool
	// QueryParam names a query parameter that carries the token on
	// websocket handshakes, which browsers cannot add headers to. It is
	// ignored on ordinary requests.
	QueryParam string
}

// tokenFromRequest returns the raw token and whether the request carried
// one at all. A malformed Authorization header is an error.
func tokenFromRequest(r *http.Request, queryParam string) (token string, ok bool, err error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if queryParam != "" && websocketUpgrade(r) {
			if t := strings.TrimSpace(r.URL.Query().Get(queryParam)); t != "" {
				return t, true, nil
			}
		}
		return "", false, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true, echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}
	return parts[1], true, nil
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		return cfg.Secret, nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok, err := tokenFromRequest(c.Request(), cfg.QueryParam)
			if err != nil {
				return err
			}
			if !ok {
				if cfg.Optional {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, keyFunc, opts...)
			if err != nil || !token.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), claims.Subject, claims.Role, claims.Email)))
			return next(c)
		}
	}
}

// DevAuthMiddleware trusts the X-User-ID header. Requests without it stay
// anonymous so public routes behave as in production.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid := strings.TrimSpace(c.Request().Header.Get(DevUserHeader)); uid != "" {
				c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), uid, "authenticated", "")))
			}
			return next(c)
		}
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if UserIDFromContext(c.Request().Context()) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// WithUser returns ctx carrying the caller's identity.
func WithUser(ctx context.Context, userID, role, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	return ctx
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}
