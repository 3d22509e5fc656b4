package api

import (
	"time"

	"StockSense/internal/domain/repository"
	"StockSense/internal/service/ratelimit"
	xhttp "StockSense/pkg/http"

	"github.com/labstack/echo/v4"
)

// RateLimit rejects requests once the client IP has spent its bucket.
func RateLimit(rl *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded, slow down"))
			}
			return next(c)
		}
	}
}

// RouteLatency records handler latency under "http <route>".
func RouteLatency(m repository.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			m.RecordLatency("http "+c.Path(), time.Since(start).Seconds())
			return err
		}
	}
}
