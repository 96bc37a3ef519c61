package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/folio/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuth(t *testing.T) *Authenticator {
	t.Helper()
	a, err := New(config.AuthConfig{
		AdminPassword: config.Secret("hunter2"),
		JWTSecret:     config.Secret(testSecret),
		TokenTTL:      config.Duration(time.Hour),
		Issuer:        "folio-test",
	})
	require.NoError(t, err)
	return a
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(config.AuthConfig{})
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	a := newAuth(t)

	_, err := a.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	tok, err := a.Login("hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)

	claims, err := a.Validate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, Subject, claims.Subject)
	assert.Equal(t, "folio-test", claims.Issuer)
}

func TestLogin_DisabledWithoutPassword(t *testing.T) {
	a, err := New(config.AuthConfig{JWTSecret: config.Secret(testSecret)})
	require.NoError(t, err)
	_, err = a.Login("")
	assert.ErrorIs(t, err, ErrLoginDisabled)

	tok, err := a.Issue()
	require.NoError(t, err)
	_, err = a.Validate(tok.AccessToken)
	assert.NoError(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	a := newAuth(t)

	expired := newAuth(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue()
	require.NoError(t, err)

	otherIssuer, err := New(config.AuthConfig{JWTSecret: config.Secret(testSecret), Issuer: "someone-else"})
	require.NoError(t, err)
	foreign, err := otherIssuer.Issue()
	require.NoError(t, err)

	otherKey, err := New(config.AuthConfig{JWTSecret: config.Secret("ffffffffffffffffffffffffffffffff"), Issuer: "folio-test"})
	require.NoError(t, err)
	forged, err := otherKey.Issue()
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   Subject,
		Issuer:    "folio-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   Subject,
		Issuer:    "folio-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	wrongAlg, err := hs512.SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":      "not.a.token",
		"expired":      old.AccessToken,
		"issuer":       foreign.AccessToken,
		"signature":    forged.AccessToken,
		"alg none":     unsigned,
		"alg mismatch": wrongAlg,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := a.Validate(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	a := newAuth(t)
	tok, err := a.Issue()
	require.NoError(t, err)

	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		claims, ok := c.Get(ContextKey).(*Claims)
		require.True(t, ok)
		return c.String(http.StatusOK, claims.Subject)
	}, a.Middleware())

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + tok.AccessToken, http.StatusOK},
		{"lower-case scheme", "bearer " + tok.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, Subject, rec.Body.String())
			} else {
				assert.NotEmpty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))
			}
		})
	}
}
