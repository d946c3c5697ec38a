package sheets

import (
	"time"

	"github.com/2beens/gymplan/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// ObserveRequest records the outcome and duration of one store call.
func ObserveRequest(metricsManager *metrics.Manager, sheet, method string, begin time.Time, err error) {
	if metricsManager == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metricsManager.CounterSheetRequests.With(prometheus.Labels{
		"sheet":   sheet,
		"method":  method,
		"outcome": outcome,
	}).Inc()
	metricsManager.HistSheetRequestDuration.WithLabelValues(sheet, method).Observe(time.Since(begin).Seconds())
}
