package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/metrics"
)

// Metrics returns a middleware that records one counter increment and a
// latency observation per handled request, labelled by method, route
// template and status code.
func Metrics(collector *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			collector.RecordHTTPRequest(c.Request().Method, c.Path(), status, time.Since(start))
			return err
		}
	}
}
