package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timetracker-api/pkg/metrics"
)

func TestObserveBootstrap(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveBootstrap("bootstrapped")
	m.ObserveBootstrap("already_admin")
	m.ObserveBootstrap("already_admin")

	n, err := testutil.GatherAndCount(reg, "bootstrap_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "una serie por outcome")
}

func TestMiddleware_UsaRutaRegistrada(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/reports/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for _, path := range []string{"/api/reports/1", "/api/reports/2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	n, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "los ids no deben crear series nuevas")
}
