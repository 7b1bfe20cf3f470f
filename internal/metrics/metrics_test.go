package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(TransactionsTotal.WithLabelValues("general"))
	TransactionsTotal.WithLabelValues("general").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(TransactionsTotal.WithLabelValues("general")))
}

func TestMiddleware_ObservesRoute(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/things/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("GET", "/things/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration), "one series")
}
