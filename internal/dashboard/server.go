package dashboard

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"wallet-credit-lab/internal/observability"
	"wallet-credit-lab/internal/plotting"
)

// Server limits.
const (
	DefaultHistogramBins = plotting.DefaultBins
	MaxHistogramBins     = 500
)

// Server exposes a Table over HTTP. The table is never modified, so handlers
// need no locking.
type Server struct {
	*echo.Echo
	table   *Table
	metrics *observability.Metrics
	logger  *zap.Logger
	bins    int // histogram bins when the request has none
}

// NewServer creates the dashboard server. A nil gatherer serves the default
// prometheus registry on /metrics.
func NewServer(table *Table, m *observability.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	s := &Server{Echo: e, table: table, metrics: m, logger: logger, bins: DefaultHistogramBins}
	s.registerRoutes(gatherer)
	return s
}

// WithBins sets the default histogram bin count. Values outside
// [1, MaxHistogramBins] are ignored.
func (s *Server) WithBins(bins int) *Server {
	if bins >= 1 && bins <= MaxHistogramBins {
		s.bins = bins
	}
	return s
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	s.GET("/", s.GetIndex)
	s.GET("/distribution.png", s.GetDistributionImage)
	s.GET("/api/wallets/:name", s.GetWallet)
	s.GET("/api/distribution", s.GetDistribution)
	s.GET("/api/risk-breakdown", s.GetRiskBreakdown)
	s.GET("/health", s.GetHealth)
	s.GET("/metrics", echo.WrapHandler(observability.HandlerFor(gatherer)))
}

func (s *Server) GetIndex(c echo.Context) error {
	data := pageData{
		Wallets:   s.table.Len(),
		Query:     c.QueryParam("name"),
		Tiers:     s.riskTiers(),
		HasImage:  s.table.Len() > 0,
		ScoreName: s.table.scoreColumn,
	}
	if data.Query != "" {
		resp := s.lookup(data.Query)
		data.Lookup = &resp
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) GetWallet(c echo.Context) error {
	return c.JSON(http.StatusOK, s.lookup(c.Param("name")))
}

func (s *Server) GetDistribution(c echo.Context) error {
	bins, err := s.parseBins(c.QueryParam("bins"))
	if err != nil {
		return err
	}

	h := s.table.Histogram(bins)
	resp := DistributionResponse{
		ScoreColumn: s.table.scoreColumn,
		Total:       h.Total,
		Bins:        make([]DistributionBin, len(h.Bins)),
	}
	for i, b := range h.Bins {
		resp.Bins[i] = DistributionBin{Lower: b.Lower, Upper: b.Upper, Count: b.Count}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) GetDistributionImage(c echo.Context) error {
	bins, err := s.parseBins(c.QueryParam("bins"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := plotting.RenderPNG(&buf, s.table.Histogram(bins), plotting.DefaultWidth, plotting.DefaultHeight); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) GetRiskBreakdown(c echo.Context) error {
	return c.JSON(http.StatusOK, RiskBreakdownResponse{Tiers: s.riskTiers()})
}

func (s *Server) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Wallets: s.table.Len()})
}

// ShutdownWithTimeout gracefully stops the server.
func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}

func (s *Server) lookup(name string) LookupResponse {
	res := s.table.Lookup(name)
	s.metrics.RecordLookup(res.Found)
	return toLookupResponse(name, res)
}

func (s *Server) riskTiers() []RiskTier {
	breakdown := s.table.RiskBreakdown()
	tiers := make([]RiskTier, len(breakdown))
	for i, t := range breakdown {
		tiers[i] = RiskTier{Category: t.Category.String(), Count: t.Count}
	}
	return tiers
}

func (s *Server) parseBins(raw string) (int, error) {
	if raw == "" {
		return s.bins, nil
	}
	bins, err := strconv.Atoi(raw)
	if err != nil || bins < 1 || bins > MaxHistogramBins {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "bins must be an integer between 1 and "+strconv.Itoa(MaxHistogramBins))
	}
	return bins, nil
}
