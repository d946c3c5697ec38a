package workouts

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

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=workouts_test

type sheetsClient interface {
	FetchSheet(ctx context.Context, name string) ([]sheets.Record, error)
	AppendRecords(ctx context.Context, name string, records []sheets.Record) error
}

type Service struct {
	client         sheetsClient
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(client sheetsClient, metricsManager *metrics.Manager) *Service {
	return &Service{
		client:         client,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// WithClock replaces the clock used to date saved logs.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Today() normalize.Date {
	return normalize.Today(s.now())
}

// LoadCatalog reads the Treinos sheet. Errors are either a
// *sheets.ConnectionError or a *MalformedCatalogError.
func (s *Service) LoadCatalog(ctx context.Context) (_ []CatalogRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.catalog")
	defer tracing.EndSpanWithErrCheck(span, &err)

	records, err := s.client.FetchSheet(ctx, sheets.SheetWorkouts)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	catalog, err := DecodeCatalog(records)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog_rows", len(catalog)))

	return catalog, nil
}

// NewSession loads a fresh catalog and selects planID, or the first plan
// when planID is empty.
func (s *Service) NewSession(ctx context.Context, planID string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.session")
	defer tracing.EndSpanWithErrCheck(span, &err)

	catalog, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	session := NewSession(catalog)
	if planID == "" {
		planID = session.Plans()[0]
	}
	if err := session.SelectPlan(planID); err != nil {
		return session, err
	}
	span.SetAttributes(attribute.String("plan", planID))

	return session, nil
}

func (s *Service) Save(ctx context.Context, session *Session) (_ SubmitResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.save")
	defer tracing.EndSpanWithErrCheck(span, &err)

	result, err := session.Submit(ctx, s.client, s.Today())
	if err != nil {
		return result, err
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterWorkoutLogsSaved.Add(float64(result.Saved))
	}
	span.SetAttributes(attribute.Int("saved", result.Saved))

	return result, nil
}
