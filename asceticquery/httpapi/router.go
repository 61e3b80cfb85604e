package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/logging"
)

type errorBody struct {
	Error string `json:"error"`
}

// NewRouter creates the echo instance serving h. Every request carries a
// logger tagged with its request id.
func NewRouter(h *Handler, logger *zap.Logger) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = errorHandler(logger)

	router.Use(middleware.Recover())
	router.Use(middleware.RequestID())
	router.Use(requestLogger(logger))

	router.GET("/:entity", h.List)
	return router
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqLogger := logger.With(
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
			)
			ctx := logging.NewContextWithLogger(req.Context(), reqLogger, reqLogger.Core().Enabled(zap.DebugLevel))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var httpErr *echo.HTTPError
		if !errors.As(err, &httpErr) {
			httpErr = echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
		}
		if httpErr.Code >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error("request failed", zap.Error(err))
		}
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		if err := c.JSON(httpErr.Code, errorBody{Error: message}); err != nil {
			logger.Error("unable to write error response", zap.Error(err))
		}
	}
}
