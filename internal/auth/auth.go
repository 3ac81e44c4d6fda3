// Package auth gates the read-only admin HTTP API behind a single
// bearer JWT: no OAuth handshake, no external identity provider, just
// a shared secret and a subject name an operator configures out of
// band.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const SubjectContextKey ContextKey = "authSubject"

// Claims identifies the bearer of an admin token. There is no user
// directory behind it — Subject is whatever name the token was minted
// for (an operator, a CI job, a cron invocation).
type Claims struct {
	Subject string `json:"subject"`
	jwt.RegisteredClaims
}

var authConfig *Config

// Config holds the admin API's auth settings.
type Config struct {
	JwtSecret []byte
	Enabled   bool
}

// Initialize sets up the package-level auth configuration. Called once
// at startup from the admin API's entrypoint.
func Initialize(jwtSecret string, enabled bool) {
	authConfig = &Config{JwtSecret: []byte(jwtSecret), Enabled: enabled}
}

// Enabled reports whether the admin API requires a bearer token.
func Enabled() bool {
	return authConfig != nil && authConfig.Enabled
}

// GenerateToken issues a signed token for subject, valid for ttl.
func GenerateToken(subject string, ttl time.Duration) (string, error) {
	if authConfig == nil {
		return "", errors.New("auth: not initialized")
	}
	claims := Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(authConfig.JwtSecret)
}

// ValidateToken parses and verifies tokenString, returning the subject
// it was issued for.
func ValidateToken(tokenString string) (string, error) {
	if authConfig == nil {
		return "", errors.New("auth: not initialized")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return authConfig.JwtSecret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}

// RequireBearer rejects requests without a valid bearer token, unless
// auth is disabled entirely (a local/dev deployment with no Admin
// secret configured), in which case it passes everything through.
func RequireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, err := ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "invalid authentication token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), SubjectContextKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// SubjectFromContext extracts the authenticated subject from a request
// context populated by RequireBearer.
func SubjectFromContext(r *http.Request) string {
	if s, ok := r.Context().Value(SubjectContextKey).(string); ok {
		return s
	}
	return ""
}
