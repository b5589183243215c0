package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contadores de negocio expuestos en /metrics.
var (
	ordersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compuestos_orders_submitted_total",
		Help: "Órdenes de producción confirmadas con todas sus deducciones.",
	})
	ordersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compuestos_orders_failed_total",
		Help: "Órdenes rechazadas (validación, fórmula inexistente o fallo del libro mayor).",
	})
	transactionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compuestos_transactions_recorded_total",
		Help: "Asientos del libro mayor registrados vía POST /transactions.",
	})
)

// MetricsHandler expone el registro Prometheus como handler de Fiber.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
