package handlers

import (
	"catalog-service/app/server/apidocs"
	"catalog-service/app/server/apperr"
	"errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"net/http"
)

// NewServer prepares the echo instance with middlewares and every route.
// Docs are served only when docsJSON is not nil; docsOpts are passed to them.
func NewServer(l *zap.Logger, a *App, docsJSON []byte, docsOpts ...apidocs.Opts) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = a.HTTPErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("method", v.Method),
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("requestID", v.RequestID),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())

	// 添加 API 文档
	if docsJSON != nil {
		e.Pre(apidocs.Doc("/api/docs", docsJSON, docsOpts...))
	}

	a.RegisterHandlers(e)

	return e
}

// HTTPErrorHandler renders errors that escape handlers, including echo's own
// routing errors, in the failure envelope.
func (a *App) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		ae *apperr.Error
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &ae):
	case errors.As(err, &he):
		switch he.Code {
		case http.StatusNotFound:
			ae = apperr.New(apperr.RouteNotFound, he.Code, "Route not found")
		case http.StatusInternalServerError:
			ae = apperr.Wrap(apperr.Internal, he.Code, "Internal server error", err)
		default:
			ae = apperr.Wrap(apperr.BadRequest, he.Code, http.StatusText(he.Code), err)
		}
	default:
		ae = apperr.Wrap(apperr.Internal, http.StatusInternalServerError, "Internal server error", err)
	}

	if ae.Status >= http.StatusInternalServerError {
		a.l.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(ae.Status)
	} else {
		err = apperr.Respond(c, ae)
	}
	if err != nil {
		a.l.Error("failed to write error response", zap.Error(err))
	}
}
