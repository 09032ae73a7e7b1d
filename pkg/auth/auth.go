// Package auth provides bcrypt password hashing and HS256 JWT issuance/parsing.
// Leaf package with no domain dependencies; used by the auth handlers and the
// API middleware.
package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// BCryptCost is the bcrypt work factor. 12 balances login latency against
// offline-cracking resistance.
const BCryptCost = 12

// DefaultTokenExpiryHours applies when JWT_EXPIRY is unset or unparsable.
const DefaultTokenExpiryHours = 24

const (
	envJWTSecret = "JWT_SECRET"
	envJWTExpiry = "JWT_EXPIRY"
)

// jwtSecret reads JWT_SECRET from the environment. Panics when unset so a
// misconfigured deployment fails at startup instead of issuing unsigned tokens.
func jwtSecret() []byte {
	secret := os.Getenv(envJWTSecret)
	if secret == "" {
		panic(envJWTSecret + " environment variable not set — cannot initialize auth")
	}
	return []byte(secret)
}

// tokenExpiry reads JWT_EXPIRY (hours) from the environment.
func tokenExpiry() time.Duration {
	return parseExpiry(os.Getenv(envJWTExpiry))
}

// parseExpiry converts an hour-count string to a Duration, falling back to the
// default for empty or invalid input.
func parseExpiry(expiryStr string) time.Duration {
	if expiryStr == "" {
		return DefaultTokenExpiryHours * time.Hour
	}
	hours, err := strconv.Atoi(expiryStr)
	if err != nil || hours <= 0 {
		return DefaultTokenExpiryHours * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
// Returns false (not an error) for malformed hashes so responses never leak
// hash-format details.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Claims are the JWT claims carried by every Expensa token.
// Role is "employee" or "manager"; approval routes require "manager".
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a JWT for the given user and role.
func GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenExpiry())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a JWT and extracts its claims.
func ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC to prevent algorithm-substitution attacks.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims or signature")
	}
	return claims, nil
}
