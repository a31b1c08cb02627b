// Package server serves chart payloads and top-domain listings to the dashboard.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"ology/internal/metrics"
	"ology/internal/provider"
)

const shutdownTimeout = 10 * time.Second

// Defaults fill query parameters the dashboard leaves out.
type Defaults struct {
	From            time.Time
	To              time.Time
	SubdomainRollup string
}

// Server wires the handlers onto an echo instance.
type Server struct {
	echo     *echo.Echo
	dp       provider.DataProvider
	metrics  *metrics.Metrics
	defaults Defaults
}

type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

// New builds the server and registers its routes.
func New(dp provider.DataProvider, m *metrics.Metrics, d Defaults) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: validator.New()}

	s := &Server{echo: e, dp: dp, metrics: m, defaults: d}
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/api/trend", s.handleTrend)
	e.GET("/api/top-domains", s.handleTopDomains)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("http server shutting down")
		return s.echo.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
