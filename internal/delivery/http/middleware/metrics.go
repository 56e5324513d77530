package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/matchroute-service/internal/metrics"
)

// Metrics - счётчики и латентность HTTP по шаблону маршрута
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		// route template keeps label cardinality bounded
		path := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())

		m.HTTPRequestsTotal.WithLabelValues(c.Method(), path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())

		return err
	}
}
