// Package auth issues and verifies session credentials.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/port"
)

type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string, ttl time.Duration) port.TokenIssuer {
	return &jwtIssuer{secret: []byte(secret), ttl: ttl}
}

func (j *jwtIssuer) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("token.SignedString: %w", err)
	}

	return token, nil
}

func (j *jwtIssuer) Verify(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperr.New(apperr.KindSessionExpired, "your session has expired, please login again")
		}
		return uuid.Nil, apperr.New(apperr.KindUnauthenticated, "invalid session, please login again")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, apperr.New(apperr.KindUnauthenticated, "invalid session, please login again")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindUnauthenticated, "invalid session, please login again")
	}

	return userID, nil
}
