package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"payment-ledger-sync/internal/dto"
	"payment-ledger-sync/internal/model"
	"payment-ledger-sync/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	ContextUserID = "user_id"
	ContextUser   = "user"
)

// JWTAuth accepts HS256 bearer tokens signed with secret and stores the
// subject under ContextUserID.
func JWTAuth(secret []byte, issuer string) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if len(secret) == 0 {
			return nil, fmt.Errorf("jwt secret is not configured")
		}
		return secret, nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return unauthorized(c, "missing bearer token")
			}

			var claims jwt.RegisteredClaims
			token, err := parser.ParseWithClaims(tokenString, &claims, keyFunc)
			if err != nil || !token.Valid {
				return unauthorized(c, "invalid token")
			}
			if claims.Subject == "" {
				return unauthorized(c, "token has no subject")
			}

			c.Set(ContextUserID, claims.Subject)
			return next(c)
		}
	}
}

// RequireAdmin loads the authenticated user and lets only admins through.
func RequireAdmin(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextUserID).(string)
			if userID == "" {
				return unauthorized(c, "unauthorized")
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) {
				return unauthorized(c, "unknown user")
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load user", Details: err.Error()})
			}
			if user.Role != model.RoleAdmin {
				return unauthorized(c, "admin access required")
			}

			c.Set(ContextUser, user)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: msg})
}
