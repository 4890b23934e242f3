package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return NewIssuer([]byte("test-jwt-secret"), DefaultTTL)
}

func TestIssuer_Issue_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()
	userID := uuid.NewString()

	token, err := issuer.Issue(userID, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.ID)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssuer_Issue_EmptyUserID(t *testing.T) {
	t.Parallel()

	_, err := newTestIssuer().Issue("", "user")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Parse_Expired(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()
	issuer.Now = func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) }

	token, err := issuer.Issue(uuid.NewString(), "user")
	require.NoError(t, err)

	_, err = newTestIssuer().Parse(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssuer_Parse_Rejects(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()
	valid, err := issuer.Issue(uuid.NewString(), "user")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	forged, err := NewIssuer([]byte("other-secret"), DefaultTTL).Issue(uuid.NewString(), "admin")
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(issuer.Secret)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: uuid.NewString()}).SignedString(issuer.Secret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-valid-jwt"},
		{name: "empty", token: ""},
		{name: "tampered payload", token: parts[0] + "." + forgedParts[1] + "." + parts[2]},
		{name: "wrong secret", token: forged},
		{name: "alg none", token: noneToken},
		{name: "missing id", token: noID},
		{name: "missing exp", token: noExp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := issuer.Parse(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
