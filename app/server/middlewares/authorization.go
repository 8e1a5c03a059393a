package middlewares

import (
	"catalog-service/app/server/apperr"
	"catalog-service/app/server/store"
	"catalog-service/app/server/utils"
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OwnerLookup resolves the user that owns a resource. A missing resource is
// reported with store.ErrNotFound.
type OwnerLookup interface {
	OwnerID(ctx context.Context, id uint) (uint, error)
}

type OwnerLookupFunc func(ctx context.Context, id uint) (uint, error)

func (f OwnerLookupFunc) OwnerID(ctx context.Context, id uint) (uint, error) {
	return f(ctx, id)
}

// Authorization lets the request through only when the authenticated caller
// owns the resource named by the :id path parameter. It must run after
// Authentication.
func Authorization(lookup OwnerLookup, l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// 提取 ID
			id, err := utils.ParseID(c.Param("id"))
			if err != nil {
				return apperr.Respond(c, apperr.New(apperr.InvalidResourceID, http.StatusBadRequest, "Invalid resource ID"))
			}

			user, ok := ClaimsFrom(c)
			if !ok || user.ID == 0 {
				return apperr.Respond(c, apperr.New(apperr.NotAuthenticated, http.StatusUnauthorized, "User not authenticated"))
			}

			// 每次都查询数据库，不使用缓存
			ownerID, err := lookup.OwnerID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return apperr.Respond(c, apperr.New(apperr.ResourceNotFound, http.StatusNotFound, "Resource not found"))
				}
				l.Error("failed to look up resource owner", zap.Uint("id", id), zap.Error(err))
				return apperr.Respond(c, apperr.DataAccess(err))
			}

			if ownerID != user.ID {
				l.Info("rejected non-owner", zap.Uint("id", id), zap.Uint("user", user.ID), zap.String("path", c.Path()))
				return apperr.Respond(c, apperr.New(apperr.NotOwner, http.StatusForbidden, "You are not allowed to modify this resource"))
			}

			// 继续处理
			return next(c)
		}
	}
}
