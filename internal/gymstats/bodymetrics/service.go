package bodymetrics

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/gymplan/internal/gymstats/normalize"
	"github.com/2beens/gymplan/internal/sheets"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=bodymetrics_test

type sheetsClient interface {
	FetchSheet(ctx context.Context, name string) ([]sheets.Record, error)
	AppendRecords(ctx context.Context, name string, records []sheets.Record) error
}

type Service struct {
	client sheetsClient
	logger *Logger
	now    func() time.Time
}

func NewService(client sheetsClient, metricsManager *metrics.Manager) *Service {
	return &Service{
		client: client,
		logger: NewLogger(client, metricsManager),
		now:    time.Now,
	}
}

// WithClock replaces the clock used to date new measurements.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Today() normalize.Date {
	return normalize.Today(s.now())
}

// History reads and normalizes the whole Bioimpedancia sheet.
func (s *Service) History(ctx context.Context) (_ History, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.bodymetrics.history")
	defer tracing.EndSpanWithErrCheck(span, &err)

	records, err := s.client.FetchSheet(ctx, sheets.SheetBodyMetrics)
	if err != nil {
		return History{}, fmt.Errorf("fetch body metrics: %w", err)
	}

	history := NormalizeHistory(records)
	span.SetAttributes(
		attribute.Int("points", len(history.Points)),
		attribute.Int("skipped", history.Skipped),
	)

	return history, nil
}

func (s *Service) LogMeasurement(ctx context.Context, weight, muscleMass float64) (Record, error) {
	return s.logger.Log(ctx, weight, muscleMass, s.Today())
}
