// Package jwt выпускает и проверяет токены администратора (HS256).
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken токен не прошёл проверку подписи, срока или состава claims.
var ErrInvalidToken = errors.New("invalid token")

// Maker выпускает и разбирает токены администратора.
type Maker interface {
	GenerateToken(username string) (string, error)
	ParseToken(tokenStr string) (*AdminClaims, error)
}

// HMACMaker подписывает токены общим секретом.
type HMACMaker struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт HMACMaker с секретом secretKey и временем жизни токена ttl.
func NewJWTMaker(secretKey string, ttl time.Duration) *HMACMaker {
	return &HMACMaker{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TTL время жизни выпускаемых токенов.
func (m *HMACMaker) TTL() time.Duration {
	return m.tokenTTL
}

// GenerateToken выпускает токен для администратора username.
func (m *HMACMaker) GenerateToken(username string) (string, error) {
	const op = "jwt.GenerateToken"

	now := m.now()
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ParseToken проверяет подпись, срок и издателя и возвращает claims.
func (m *HMACMaker) ParseToken(tokenStr string) (*AdminClaims, error) {
	const op = "jwt.ParseToken"

	token, err := jwt.ParseWithClaims(tokenStr, &AdminClaims{}, func(_ *jwt.Token) (any, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid || claims.Role != RoleAdmin || claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
