package handlers

import (
	"catalog-service/app/server/apperr"
	"catalog-service/app/server/store"
	"catalog-service/app/server/utils"
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"strings"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type LoginEnvelope struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // 秒
}

func (a *App) ok(c echo.Context, statusCode int, message string, data any) error {
	return c.JSON(statusCode, &Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// er 输出错误，原始原因只写入日志
func (a *App) er(c echo.Context, err error) error {
	if ae := apperr.As(err); ae.Status >= http.StatusInternalServerError {
		a.l.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return apperr.Respond(c, err)
}

// bind 绑定请求体，支持数组
func (a *App) bind(c echo.Context, v any) *apperr.Error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		a.l.Debug("failed to bind request", zap.Error(err))
		return apperr.Wrap(apperr.InvalidInput, http.StatusBadRequest, "Invalid request body", err)
	}
	return nil
}

func (a *App) checkRequired(v any, prefix string) *apperr.Error {
	err := a.validate.Struct(v)
	if err == nil {
		return nil
	}
	fields, ok := utils.MissingFields(err)
	if !ok {
		return apperr.Wrap(apperr.InvalidInput, http.StatusBadRequest, "Invalid request body", err)
	}
	return apperr.New(apperr.MissingField, http.StatusBadRequest,
		fmt.Sprintf("%sMissing required fields: %s", prefix, strings.Join(fields, ", ")))
}

func (a *App) paramID(c echo.Context) (uint, *apperr.Error) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return 0, apperr.New(apperr.InvalidResourceID, http.StatusBadRequest, "Invalid resource ID")
	}
	return id, nil
}

// storeErr 把数据层错误转换为客户端错误
func storeErr(err error, what string) *apperr.Error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.New(apperr.ResourceNotFound, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrOwnerGone):
		return apperr.New(apperr.NotAuthenticated, http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, store.ErrBadRef):
		return apperr.Wrap(apperr.InvalidInput, http.StatusBadRequest, "Referenced brand or type does not exist", err)
	default:
		return apperr.DataAccess(err)
	}
}
