// Package middlewarectx содержит HTTP middleware сервиса: проверку токена
// администратора и сбор метрик HTTP-запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-manager/internal/http/response"
	"github.com/magabrotheeeer/license-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/license-manager/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ имени администратора в контексте.
const User Key = "username"

// TokenParser проверяет токен администратора.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.AdminClaims, error)
}

// JWTMiddleware пропускает запрос дальше только с действующим токеном
// администратора в заголовке Authorization: Bearer <token>.
// Имя администратора кладётся в контекст под ключом User.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			claims, err := parser.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), User, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext возвращает имя администратора, положенное JWTMiddleware.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(User).(string)
	return username, ok && username != ""
}
