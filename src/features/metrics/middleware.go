package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var skipPaths = []string{"/metrics", "/health"}

// Middleware records request count and duration for every route. Dynamic
// path segments are collapsed to the registered route pattern to keep
// label cardinality bounded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, skip := range skipPaths {
			if strings.HasPrefix(path, skip) {
				return c.Next()
			}
		}

		start := time.Now()
		err := c.Next()

		if route := c.Route(); route != nil && route.Path != "/" {
			path = route.Path
		}
		status := strconv.Itoa(c.Response().StatusCode())

		HTTPRequestsTotal.WithLabelValues(c.Method(), path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}
