package middlewares

import (
	"catalog-service/app/server/apperr"
	"catalog-service/app/server/constants"
	"catalog-service/app/server/jwt"
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TokenParser interface {
	ParseUser(token string) (*jwt.User, error)
}

type claimsKey struct{}

var (
	errMissingToken = apperr.New(apperr.MissingToken, http.StatusUnauthorized, "Access token not found")
	errInvalidToken = apperr.New(apperr.InvalidOrExpiredToken, http.StatusUnauthorized, "Invalid or expired token")
)

// Authentication verifies the bearer token (or the legacy access_token
// header) and attaches the identity to the request.
func Authentication(tp TokenParser, l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// 提取 token
			token := extractToken(c.Request())
			if token == "" {
				return apperr.Respond(c, errMissingToken)
			}

			// 验证 token
			user, err := tp.ParseUser(token)
			if err != nil {
				l.Debug("rejected token", zap.String("path", c.Path()), zap.Error(err))
				return apperr.Respond(c, errInvalidToken)
			}

			// 设置 context
			c.Set(constants.ContextKeyClaims, user)
			c.SetRequest(c.Request().WithContext(WithClaims(c.Request().Context(), user)))

			// 继续处理
			return next(c)
		}
	}
}

// extractToken 优先使用 Authorization: Bearer，其次是旧的 access_token 头
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get(constants.HeaderAuthorization); authHeader != "" {
		scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
		if ok && strings.ToLower(scheme) == constants.AuthSchemeBearer {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}

	return strings.TrimSpace(r.Header.Get(constants.HeaderLegacyToken))
}

func WithClaims(ctx context.Context, user *jwt.User) context.Context {
	return context.WithValue(ctx, claimsKey{}, user)
}

// ClaimsFromContext returns the identity attached by Authentication.
func ClaimsFromContext(ctx context.Context) (*jwt.User, bool) {
	user, ok := ctx.Value(claimsKey{}).(*jwt.User)
	return user, ok && user != nil
}

func ClaimsFrom(c echo.Context) (*jwt.User, bool) {
	user, ok := c.Get(constants.ContextKeyClaims).(*jwt.User)
	return user, ok && user != nil
}
