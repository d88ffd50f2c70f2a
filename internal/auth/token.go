// Package auth issues and verifies the two token kinds of the API: session
// tokens handed out at login and short-lived signed download tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

const (
	// SessionTTL is how long a login stays valid.
	SessionTTL = 72 * time.Hour
	// DownloadTTL bounds the life of a presigned download URL.
	DownloadTTL = 5 * time.Minute
)

// TokenIssuer signs and verifies HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// IssueSession creates a login token for the given account.
func (t *TokenIssuer) IssueSession(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifySession validates a login token and returns the account email.
func (t *TokenIssuer) VerifySession(signed string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if err := t.parse(signed, claims); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

type downloadClaims struct {
	PackageName string `json:"package_name,omitempty"`
	jwt.RegisteredClaims
}

// IssueDownload creates a presigned token for one file hash.
func (t *TokenIssuer) IssueDownload(hash, packageName string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := downloadClaims{
		PackageName: packageName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   hash,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign download token: %w", err)
	}
	return signed, nil
}

// VerifyDownload validates a presigned token against the requested hash and
// returns the package name embedded at signing time.
func (t *TokenIssuer) VerifyDownload(signed, hash string) (string, error) {
	claims := &downloadClaims{}
	if err := t.parse(signed, claims); err != nil {
		return "", err
	}
	if claims.Subject != hash {
		return "", ErrTokenInvalid
	}
	return claims.PackageName, nil
}

func (t *TokenIssuer) parse(signed string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
