package bodymetrics

import (
	"context"
	"fmt"

	"github.com/2beens/gymplan/internal/gymstats/normalize"
	"github.com/2beens/gymplan/internal/sheets"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

type recordAppender interface {
	AppendRecords(ctx context.Context, name string, records []sheets.Record) error
}

// Logger appends single body measurements. It never reads the sheet back,
// so a fresh measurement shows up in the history only after a reload.
type Logger struct {
	appender       recordAppender
	metricsManager *metrics.Manager
}

func NewLogger(appender recordAppender, metricsManager *metrics.Manager) *Logger {
	return &Logger{
		appender:       appender,
		metricsManager: metricsManager,
	}
}

// Log writes exactly one record dated today. Zero and negative values are
// written as given.
func (l *Logger) Log(ctx context.Context, weight, muscleMass float64, today normalize.Date) (_ Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.bodymetrics.log")
	defer tracing.EndSpanWithErrCheck(span, &err)

	record := Record{
		Date:       today,
		Weight:     weight,
		MuscleMass: muscleMass,
	}
	if err := l.appender.AppendRecords(ctx, sheets.SheetBodyMetrics, []sheets.Record{record.SheetRecord()}); err != nil {
		return Record{}, fmt.Errorf("append body metrics: %w", err)
	}

	if l.metricsManager != nil {
		l.metricsManager.CounterBodyMetricsSaved.Inc()
	}
	log.Debugf("body metrics logged for %s: weight %v, muscle mass %v", today, weight, muscleMass)

	return record, nil
}
