package middleware

import (
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_api/internal/logging"
	"github.com/Skotchmaster/product_api/internal/models"
	"github.com/Skotchmaster/product_api/internal/tokens"
)

const (
	ctxClaims = "user"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

const (
	MsgMissingToken      = "Unauthorized: Missing token"
	MsgInvalidToken      = "Unauthorized: Invalid token"
	MsgNotAuthenticated  = "Unauthorized: You need to be logged in to perform this action."
	MsgInsufficientRight = "Forbidden: Insufficient privileges"
)

type BearerAuth struct {
	Tokens *tokens.Issuer
}

func NewBearerAuth(issuer *tokens.Issuer) *BearerAuth {
	return &BearerAuth{Tokens: issuer}
}

// VerifyToken checks the Authorization bearer token and stores the caller's id and role.
func (m *BearerAuth) VerifyToken(next echo.HandlerFunc) echo.HandlerFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (any, error) {
			return m.Tokens.Parse(raw)
		},
		SuccessHandler: func(c echo.Context) {
			if claims, ok := c.Get(ctxClaims).(*tokens.Claims); ok {
				c.Set(ctxUserID, claims.ID)
				c.Set(ctxRole, claims.Role)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "verify_token")
			if _, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); !ok {
				l.Warn("verify_token_error", "status", 401, "reason", "missing token")
				return echo.NewHTTPError(http.StatusUnauthorized, MsgMissingToken)
			}
			l.Warn("verify_token_error", "status", 401, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
		},
	})(next)
}

func (m *BearerAuth) RequireAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if UserID(c) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgNotAuthenticated)
		}
		return next(c)
	}
}

func (m *BearerAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if UserID(c) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgNotAuthenticated)
		}
		if Role(c) != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, MsgInsufficientRight)
		}
		return next(c)
	}
}

func UserID(c echo.Context) string {
	id, _ := c.Get(ctxUserID).(string)
	return id
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
