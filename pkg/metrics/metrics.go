package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics colectores Prometheus del servicio.
type Metrics struct {
	bootstrapOutcomes *prometheus.CounterVec
	requests          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
}

// New registra los colectores en reg. Usar prometheus.NewRegistry() en tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bootstrapOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bootstrap_outcomes_total",
				Help: "Resultados de la evaluación de bootstrap del primer administrador",
			},
			[]string{"outcome"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total de peticiones HTTP",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
	reg.MustRegister(m.bootstrapOutcomes, m.requests, m.duration)
	return m
}

// ObserveBootstrap cuenta un resultado de bootstrap.
func (m *Metrics) ObserveBootstrap(outcome string) {
	m.bootstrapOutcomes.WithLabelValues(outcome).Inc()
}

// Middleware mide cada petición. Usa la ruta registrada (no la URL) para acotar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		labels := []string{c.Method(), path, strconv.Itoa(status)}
		m.requests.WithLabelValues(labels...).Inc()
		m.duration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
