package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/auth"
	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/observability"
	"github.com/Additional-Code/runner/internal/presentation/http/response"
	"github.com/Additional-Code/runner/pkg/errorbank"
)

// Module exposes the HTTP server lifecycle to Fx.
var Module = fx.Module("http_server",
	fx.Provide(NewEcho, NewRoutes),
	fx.Invoke(Run),
)

// Routes are the authenticated API groups handlers register on.
type Routes struct {
	Partner  *echo.Group
	Customer *echo.Group
}

// NewRoutes mounts /api/partner and /api/customer behind bearer authentication.
func NewRoutes(e *echo.Echo, issuer *auth.Issuer) Routes {
	api := e.Group("/api", auth.Middleware(issuer))
	return Routes{
		Partner:  api.Group("/partner"),
		Customer: api.Group("/customer"),
	}
}

// NewEcho configures the Echo router with recovery, request ids, tracing and metrics.
func NewEcho(cfg config.Config, obs *observability.Manager, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if obs != nil && obs.TracingEnabled() {
		e.Use(otelecho.Middleware(cfg.Observability.ServiceName))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if obs != nil && obs.MetricsEnabled() && obs.MetricsHandler() != nil {
		e.GET(cfg.Observability.PrometheusPath, echo.WrapHandler(obs.MetricsHandler()))
	}

	return e
}

// errorHandler renders router errors (unknown route, bad method, panics) in
// the same envelope as handler errors.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		var appErr error = err
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg := http.StatusText(he.Code)
			switch {
			case he.Code == http.StatusNotFound:
				appErr = errorbank.NotFound("route not found")
			case he.Code == http.StatusUnauthorized:
				appErr = errorbank.Unauthorized(msg)
			case he.Code < http.StatusInternalServerError:
				appErr = errorbank.BadRequest(msg)
			default:
				appErr = errorbank.Internal(msg, errorbank.WithCause(err))
			}
		}
		if status >= http.StatusInternalServerError {
			logger.Error("http request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if err := response.New(c).WithStatus(status).WithError(appErr).Build(); err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}

// Run starts the HTTP server and ties it to the Fx lifecycle.
func Run(lc fx.Lifecycle, cfg config.Config, e *echo.Echo, logger *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting HTTP server", zap.String("addr", addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
