package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	metricsOnce sync.Once
	fiberProm   *fiberprometheus.FiberPrometheus
)

// InitMetrics registers the HTTP metrics middleware and exposes /metrics on app.
// The collectors are registered once per process; later calls reuse them.
func InitMetrics(app *fiber.App) {
	metricsOnce.Do(func() {
		fiberProm = fiberprometheus.New("recipebox")
	})
	fiberProm.RegisterAt(app, "/metrics")
	app.Use(fiberProm.Middleware)
}
