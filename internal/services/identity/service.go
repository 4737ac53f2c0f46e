// Package identity resolves the requester of an assistant conversation from a bearer token.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/pkg/logger"
)

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrInvalidToken   = errors.New("invalid token")
)

// Requester is the identified caller. Tokens are issued by the main platform.
type Requester struct {
	ID   string
	Role string
}

type RequesterClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		logger.Warn(logger.SERVICE, "Malformed Authorization header")
		return ""
	}

	return parts[1]
}

// ValidateToken verifies an HS256 token signed with secret and returns its requester
func ValidateToken(tokenString string, secret []byte) (Requester, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RequesterClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		logger.Debug(logger.SERVICE, "Failed to parse token: %v", err)
		return Requester{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*RequesterClaims)
	if !ok || !token.Valid {
		return Requester{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Requester{}, ErrMissingSubject
	}

	return Requester{ID: claims.Subject, Role: claims.Role}, nil
}

// Resolve returns the requester of r. ok is false for anonymous requests, including every
// request when no JWT secret is configured.
func Resolve(r *http.Request) (requester Requester, ok bool, err error) {
	secret := config.GetJWTSecret()
	if len(secret) == 0 {
		return Requester{}, false, nil
	}

	tokenString := ExtractToken(r)
	if tokenString == "" {
		return Requester{}, false, nil
	}

	requester, err = ValidateToken(tokenString, secret)
	if err != nil {
		return Requester{}, false, err
	}
	return requester, true, nil
}
