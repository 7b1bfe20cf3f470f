// Package metrics provides Prometheus metrics for the bookkeeping service.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"bookkeeping-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal counts ledger transactions by kind
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookkeeping",
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Total number of ledger transactions recorded by kind",
		},
		[]string{"kind"},
	)

	// SettlementsTotal counts payroll settlements
	SettlementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookkeeping",
			Subsystem: "payroll",
			Name:      "settlements_total",
			Help:      "Total number of payroll settlements",
		},
	)

	// SettledWorkLogsTotal counts work logs flipped to paid
	SettledWorkLogsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookkeeping",
			Subsystem: "payroll",
			Name:      "settled_work_logs_total",
			Help:      "Total number of work logs paid by settlements",
		},
	)

	// SupplyPurchasesTotal counts supply logs by whether they were paid at creation
	SupplyPurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookkeeping",
			Subsystem: "supply",
			Name:      "purchases_total",
			Help:      "Total number of supply purchases logged",
		},
		[]string{"paid"},
	)

	// ForcedDeletesTotal counts force deletes by parent table
	ForcedDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookkeeping",
			Subsystem: "records",
			Name:      "forced_deletes_total",
			Help:      "Total number of forced deletes removing dependents",
		},
		[]string{"record"},
	)

	// HTTPRequestDuration tracks handled request durations
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookkeeping",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)
)

// Middleware observes every request under its matched route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not written the response yet
			var fe *fiber.Error
			switch {
			case errors.As(err, &fe):
				status = fe.Code
			case apperr.Status(err) != 0:
				status = apperr.Status(err)
			default:
				status = fiber.StatusInternalServerError
			}
		}
		HTTPRequestDuration.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
