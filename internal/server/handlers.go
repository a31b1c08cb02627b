package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ology/internal/chart"
	"ology/internal/provider/ologyapi"
)

const dateLayout = "2006-01-02"

// trendRequest mirrors the dashboard controls.
type trendRequest struct {
	Domain          string `query:"domain" validate:"required,hostname_rfc1123"`
	StartDate       string `query:"start-date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string `query:"end-date" validate:"omitempty,datetime=2006-01-02"`
	SubdomainRollup string `query:"subdomain-rollup"`
	Trend           string `query:"trend" validate:"omitempty,oneof=on off true false 1 0"`
}

type topDomainsRequest struct {
	StartDate       string `query:"start-date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string `query:"end-date" validate:"omitempty,datetime=2006-01-02"`
	Page            int    `query:"page" validate:"omitempty,gte=1"`
	SubdomainRollup string `query:"subdomain-rollup"`
}

func badRequest(c echo.Context, err error) error {
	slog.Warn("invalid request", "path", c.Path(), "error", err)
	return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func upstreamError(c echo.Context, err error) error {
	slog.Error("analytics API request failed", "path", c.Path(), "error", err)
	status := http.StatusBadGateway
	var se *ologyapi.StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		status = http.StatusNotFound
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// window resolves the request dates against the defaults.
func (s *Server) window(start, end string) (time.Time, time.Time, error) {
	from, to := s.defaults.From, s.defaults.To
	var err error
	if start != "" {
		if from, err = time.ParseInLocation(dateLayout, start, time.UTC); err != nil {
			return from, to, err
		}
	}
	if end != "" {
		if to, err = time.ParseInLocation(dateLayout, end, time.UTC); err != nil {
			return from, to, err
		}
	}
	if to.Before(from) {
		return from, to, errors.New("end-date before start-date")
	}
	return from, to, nil
}

func (s *Server) rollup(v string) string {
	if v != "" {
		return v
	}
	return s.defaults.SubdomainRollup
}

func (s *Server) handleTrend(c echo.Context) error {
	var req trendRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err)
	}
	from, to, err := s.window(req.StartDate, req.EndDate)
	if err != nil {
		return badRequest(c, err)
	}

	series, err := s.dp.FetchHistory(c.Request().Context(), ologyapi.HistoryQuery{
		Domain:          req.Domain,
		From:            from,
		To:              to,
		SubdomainRollup: s.rollup(req.SubdomainRollup),
	})
	if err != nil {
		return upstreamError(c, err)
	}

	on := req.Trend == "on" || req.Trend == "true" || req.Trend == "1"
	out, analysisErr := chart.NewView(on).RenderChecked(req.Domain, series)
	if on && s.metrics != nil {
		s.metrics.ObserveAnalysis(analysisErr)
	}

	slog.Info("trend served", "domain", req.Domain, "points", len(series), "renderer", out.Renderer)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleTopDomains(c echo.Context) error {
	var req topDomainsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err)
	}
	from, to, err := s.window(req.StartDate, req.EndDate)
	if err != nil {
		return badRequest(c, err)
	}

	domains, err := s.dp.FetchTopDomains(c.Request().Context(), ologyapi.TopDomainsQuery{
		From:            from,
		To:              to,
		Page:            max(req.Page, 1),
		SubdomainRollup: s.rollup(req.SubdomainRollup),
	})
	if err != nil {
		return upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, domains)
}
