package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_api/internal/tokens"
)

func newTestEcho(t *testing.T) (*echo.Echo, *tokens.Issuer) {
	t.Helper()
	issuer := tokens.NewIssuer([]byte("mw-secret"), tokens.DefaultTTL)
	m := NewBearerAuth(issuer)

	e := echo.New()
	whoami := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"id": UserID(c), "role": Role(c)})
	}
	e.GET("/me", whoami, m.VerifyToken, m.RequireAuthenticated)
	e.GET("/admin", whoami, m.VerifyToken, m.RequireAdmin)
	e.GET("/bare", whoami, m.RequireAuthenticated)
	return e, issuer
}

func do(e *echo.Echo, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestVerifyToken(t *testing.T) {
	e, issuer := newTestEcho(t)
	id := uuid.NewString()
	token, err := issuer.Issue(id, "user")
	require.NoError(t, err)

	rec := do(e, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)

	tests := []struct {
		name  string
		authz string
		msg   string
	}{
		{"missing header", "", MsgMissingToken},
		{"wrong scheme", "Basic " + token, MsgMissingToken},
		{"empty bearer", "Bearer ", MsgMissingToken},
		{"garbage", "Bearer abc.def.ghi", MsgInvalidToken},
		{"tampered", "Bearer " + token + "x", MsgInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, "/me", tt.authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.msg)
		})
	}
}

func TestRequireAuthenticated_WithoutVerify(t *testing.T) {
	e, _ := newTestEcho(t)
	rec := do(e, "/bare", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgNotAuthenticated)
}

func TestRequireAdmin(t *testing.T) {
	e, issuer := newTestEcho(t)

	user, err := issuer.Issue(uuid.NewString(), "user")
	require.NoError(t, err)
	admin, err := issuer.Issue(uuid.NewString(), "admin")
	require.NoError(t, err)

	rec := do(e, "/admin", "Bearer "+user)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgInsufficientRight)

	rec = do(e, "/admin", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}
