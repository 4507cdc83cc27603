package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets the response headers every API response carries.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Prevent MIME type sniffing
			h.Set("X-Content-Type-Options", "nosniff")

			// Responses are JSON only
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

			h.Set("Referrer-Policy", "no-referrer")

			// Scraped data changes constantly
			if strings.HasPrefix(c.Request().URL.Path, "/api") {
				h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
				h.Set("Pragma", "no-cache")
			}

			return next(c)
		}
	}
}

// ProxyRequestBlock rejects requests whose request line carries an absolute
// URI (GET http://example.com/ HTTP/1.1). Those come from scanners treating
// the server as an open proxy.
func ProxyRequestBlock() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method == http.MethodConnect || isAbsoluteRequestURI(req.RequestURI) {
				return echo.NewHTTPError(http.StatusMisdirectedRequest, "proxy requests are not supported")
			}
			return next(c)
		}
	}
}

func isAbsoluteRequestURI(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
