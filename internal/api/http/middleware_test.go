package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

func TestRequestMetricsUseFinalStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.New(core), metrics, 0)
	app.Get("/denied", func(c *fiber.Ctx) error {
		return errorutil.NewForbidden("no entry")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("kaput")
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/denied", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, `http_requests_total{method="GET",path="/denied",status="403"} 1`)
	assert.Contains(t, text, `http_requests_total{method="GET",path="/boom",status="500"} 1`)
	assert.NotContains(t, text, `path="/denied",status="200"`)

	var statuses []int64
	for _, entry := range logs.FilterMessage("request").All() {
		statuses = append(statuses, entry.ContextMap()["status"].(int64))
	}
	assert.Contains(t, statuses, int64(http.StatusForbidden))
	assert.Contains(t, statuses, int64(http.StatusInternalServerError))
}
