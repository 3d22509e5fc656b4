package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"StockSense/internal/domain/models"
	"StockSense/internal/domain/repository"
	"StockSense/internal/forecast"
	"StockSense/internal/service/ratelimit"
	"StockSense/internal/usecase"
	xhttp "StockSense/pkg/http"
	xlogger "StockSense/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recommender produces recommendations for free-form user text.
type Recommender interface {
	Recommend(ctx context.Context, userInput string) ([]models.Recommendation, error)
}

// HealthChecker is any dependency that can report readiness.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Option func(*RecommendationHandler)

// WithRateLimiter throttles the LLM-backed routes per client IP.
func WithRateLimiter(rl *ratelimit.Limiter) Option {
	return func(h *RecommendationHandler) { h.limiter = rl }
}

// WithRequestTimeout bounds each recommendation or forecast request.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *RecommendationHandler) { h.timeout = d }
}

// WithMetrics records per-route latency.
func WithMetrics(m repository.Metrics) Option {
	return func(h *RecommendationHandler) { h.metrics = m }
}

// WithHealthCheck adds a named dependency to /healthz.
func WithHealthCheck(name string, hc HealthChecker) Option {
	return func(h *RecommendationHandler) {
		if hc != nil {
			h.checks[name] = hc
		}
	}
}

// RecommendationHandler serves recommendations, forecasts and the universe.
type RecommendationHandler struct {
	logger    *xlogger.Logger
	recs      Recommender
	forecasts usecase.ForecastProvider
	limiter   *ratelimit.Limiter
	metrics   repository.Metrics
	timeout   time.Duration
	checks    map[string]HealthChecker
}

func NewRecommendationHandler(logger *xlogger.Logger, recs Recommender, forecasts usecase.ForecastProvider, opts ...Option) *RecommendationHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &RecommendationHandler{
		logger:    logger,
		recs:      recs,
		forecasts: forecasts,
		checks:    map[string]HealthChecker{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *RecommendationHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/healthz", h.Healthz)

	var timed, limited []echo.MiddlewareFunc
	if h.metrics != nil {
		timed = append(timed, RouteLatency(h.metrics))
	}
	limited = append(limited, timed...)
	if h.limiter != nil {
		limited = append(limited, RateLimit(h.limiter))
	}
	e.GET("/stock_recommendation", h.StockRecommendation, limited...)

	g := e.Group("/api/v1")
	g.GET("/recommendations", h.Recommendations, limited...)
	g.GET("/forecast", h.Forecast, timed...)
	g.GET("/universe", h.Universe, timed...)
}

func (h *RecommendationHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Stock recommendation API is running"})
}

func (h *RecommendationHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, hc := range h.checks {
		if err := hc.Health(ctx); err != nil {
			h.logger.Warn("health check failed", xlogger.String("dependency", name), xlogger.Error(err))
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, status)
	}
	return xhttp.SuccessResponse(c, status)
}

// StockRecommendation keeps the original contract: a bare JSON list.
func (h *RecommendationHandler) StockRecommendation(c echo.Context) error {
	recs, err := h.recommend(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *RecommendationHandler) Recommendations(c echo.Context) error {
	recs, err := h.recommend(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, recs)
}

func (h *RecommendationHandler) recommend(c echo.Context) ([]models.Recommendation, error) {
	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return nil, xhttp.BadRequestError("user_input is required").WithParam("errors", verr)
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()
	return h.recs.Recommend(ctx, req.UserInput)
}

func (h *RecommendationHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tickers := parseTickers(req.Tickers)
	if len(tickers) == 0 {
		tickers = h.forecasts.Universe().Tickers()
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	fc, err := h.forecasts.Current(ctx)
	if err != nil {
		return h.errorResponse(c, err)
	}
	slice, missing := fc.Slice(tickers)
	if len(missing) > 0 {
		return xhttp.AppErrorResponse(c,
			xhttp.NotFoundErrorf("no forecast for %s", strings.Join(missing, ", ")).WithParam("tickers", missing))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, slice)
}

func (h *RecommendationHandler) Universe(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.forecasts.Universe().Manifest())
}

func (h *RecommendationHandler) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(c.Request().Context(), h.timeout)
	}
	return context.WithCancel(c.Request().Context())
}

func (h *RecommendationHandler) errorResponse(c echo.Context, err error) error {
	appErr := MapError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			xlogger.String("path", c.Path()),
			xlogger.Int("status", appErr.Status),
			xlogger.Error(err),
		)
	} else {
		h.logger.Debug("request rejected", xlogger.String("path", c.Path()), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// MapError translates domain errors to HTTP application errors.
func MapError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrTickerNotResolved):
		return xhttp.BadRequestError("could not identify a company or ticker in user_input").WithError(err)
	case errors.Is(err, models.ErrMissingAssetData):
		return xhttp.NotFoundError("ticker is not covered by the forecast universe").WithError(err)
	case errors.Is(err, models.ErrInsufficientHistory):
		return xhttp.UnprocessableError("not enough price history to forecast").WithError(err)
	case errors.Is(err, models.ErrForecastUnavailable), errors.Is(err, models.ErrUpstreamService):
		return xhttp.BadGatewayError("an upstream service failed").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.NewAppError("ERR_TIMEOUT", "", "request timed out", http.StatusGatewayTimeout).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

func parseTickers(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		t = forecast.NormalizeTicker(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
