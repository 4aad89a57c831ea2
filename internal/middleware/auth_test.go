package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payment-ledger-sync/internal/model"
	"payment-ledger-sync/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

type stubUsers struct {
	users map[string]*model.User
	err   error
}

func (s *stubUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (s *stubUsers) Create(ctx context.Context, user *model.User) error { return nil }

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func serve(t *testing.T, users repository.UserRepository, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(secret, "ledger")(RequireAdmin(users)(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}))
	require.NoError(t, h(c))
	return rec, c
}

func validClaims(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    "ledger",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestAdminPasses(t *testing.T) {
	users := &stubUsers{users: map[string]*model.User{"admin-1": {ID: "admin-1", Role: model.RoleAdmin}}}

	rec, c := serve(t, users, "Bearer "+sign(t, jwt.SigningMethodHS256, secret, validClaims("admin-1")))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "admin-1", c.Get(ContextUserID))
	user, ok := c.Get(ContextUser).(*model.User)
	require.True(t, ok)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestRejectsBadTokens(t *testing.T) {
	users := &stubUsers{users: map[string]*model.User{"admin-1": {ID: "admin-1", Role: model.RoleAdmin}}}

	expired := validClaims("admin-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := validClaims("admin-1")
	wrongIssuer.Issuer = "someone-else"

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Basic dXNlcjpwYXNz",
		"garbage":      "Bearer not-a-jwt",
		"wrong secret": "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims("admin-1")),
		"wrong alg":    "Bearer " + sign(t, jwt.SigningMethodHS512, secret, validClaims("admin-1")),
		"expired":      "Bearer " + sign(t, jwt.SigningMethodHS256, secret, expired),
		"issuer":       "Bearer " + sign(t, jwt.SigningMethodHS256, secret, wrongIssuer),
		"no subject":   "Bearer " + sign(t, jwt.SigningMethodHS256, secret, validClaims("")),
	}

	for name, header := range cases {
		rec, _ := serve(t, users, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Contains(t, rec.Body.String(), `"error"`, name)
	}
}

func TestRejectsNonAdminAndUnknownUser(t *testing.T) {
	users := &stubUsers{users: map[string]*model.User{"member-1": {ID: "member-1", Role: model.RoleMember}}}

	rec, c := serve(t, users, "Bearer "+sign(t, jwt.SigningMethodHS256, secret, validClaims("member-1")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, c.Get(ContextUser))

	rec, _ = serve(t, users, "Bearer "+sign(t, jwt.SigningMethodHS256, secret, validClaims("ghost")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserLookupFailure(t *testing.T) {
	users := &stubUsers{err: errors.New("db down")}

	rec, _ := serve(t, users, "Bearer "+sign(t, jwt.SigningMethodHS256, secret, validClaims("admin-1")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
