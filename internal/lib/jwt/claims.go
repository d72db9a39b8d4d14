package jwt

import "github.com/golang-jwt/jwt/v5"

const (
	// Issuer издатель токенов сервиса.
	Issuer = "license-manager"
	// RoleAdmin единственная роль, которой открыт административный API.
	RoleAdmin = "admin"
)

// AdminClaims claims токена администратора. Имя пользователя хранится в Subject.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
