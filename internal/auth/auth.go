// Package auth issues and verifies the admin bearer tokens.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/folio/internal/config"
)

// Subject is the only principal: the site owner.
const Subject = "admin"

// ContextKey is the echo context key holding validated *Claims.
const ContextKey = "auth.claims"

var (
	// ErrInvalidCredentials is returned for a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginDisabled is returned when no admin password is configured.
	ErrLoginDisabled = errors.New("admin login is disabled")
	// ErrInvalidToken is returned for missing, malformed, forged or expired
	// tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are the registered claims of an admin token.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is an issued bearer token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Authenticator checks the admin password and signs HS256 tokens.
type Authenticator struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	issuer   string
	now      func() time.Time
}

// New returns an Authenticator for cfg. The JWT secret is required; an empty
// admin password disables Login.
func New(cfg config.AuthConfig) (*Authenticator, error) {
	if !cfg.JWTSecret.IsSet() {
		return nil, fmt.Errorf("auth: jwt secret is required")
	}
	ttl := cfg.TokenTTL.Duration()
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "folio"
	}
	return &Authenticator{
		password: []byte(cfg.AdminPassword.Value()),
		secret:   []byte(cfg.JWTSecret.Value()),
		ttl:      ttl,
		issuer:   issuer,
		now:      time.Now,
	}, nil
}

// Login exchanges the admin password for a token.
func (a *Authenticator) Login(password string) (Token, error) {
	if len(a.password) == 0 {
		return Token{}, ErrLoginDisabled
	}
	// Digests have equal length so the comparison does not leak the password length.
	want := sha256.Sum256(a.password)
	got := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
		return Token{}, ErrInvalidCredentials
	}
	return a.Issue()
}

// Issue signs a token for Subject without checking a password. folioctl uses
// it to mint tokens from the configured secret.
func (a *Authenticator) Issue() (Token, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   Subject,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: exp.UTC()}, nil
}

// Validate parses token and checks its signature, method, issuer, subject
// and expiry.
func (a *Authenticator) Validate(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithSubject(Subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}

// Middleware rejects requests without a valid bearer token with 401 and
// stores the claims under ContextKey.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="folio"`)
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			claims, err := a.Validate(strings.TrimSpace(token))
			if err != nil {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="folio", error="invalid_token"`)
				return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error())
			}
			c.Set(ContextKey, claims)
			return next(c)
		}
	}
}
