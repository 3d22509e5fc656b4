package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// CORS lets browsers read the API from the given origins. The API is
// read-only, so only GET and its preflight are advertised. An empty list or
// "*" allows any origin.
func CORS(origins []string, maxAge time.Duration) echo.MiddlewareFunc {
	anyOrigin := len(origins) == 0 || slices.Contains(origins, "*")
	age := strconv.Itoa(int(maxAge.Seconds()))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" {
				return next(c)
			}

			h := c.Response().Header()
			h.Add(echo.HeaderVary, echo.HeaderOrigin)
			switch {
			case anyOrigin:
				h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			case slices.Contains(origins, origin):
				h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			default:
				if c.Request().Method == http.MethodOptions {
					return c.NoContent(http.StatusForbidden)
				}
				return next(c)
			}

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}
			h.Set(echo.HeaderAccessControlAllowMethods, "GET, OPTIONS")
			h.Set(echo.HeaderAccessControlAllowHeaders, "Accept, Content-Type")
			h.Set(echo.HeaderAccessControlMaxAge, age)
			return c.NoContent(http.StatusNoContent)
		}
	}
}
