// Package costcontrol orchestrates the cost-control pipeline: metrics,
// breakdown, forecast, and alerts, with optional persistence.
package costcontrol

import (
	"context"

	"github.com/rs/zerolog"

	"natacare-cost/internal/alerts"
	"natacare-cost/internal/benchmark"
	"natacare-cost/internal/budget"
	"natacare-cost/internal/evm"
	"natacare-cost/internal/forecast"
	"natacare-cost/pkg/api"
	cerrors "natacare-cost/pkg/errors"
)

// SnapshotStore persists metric snapshots for trend queries.
type SnapshotStore interface {
	SaveMetrics(ctx context.Context, projectID string, m api.EVMMetrics) error
}

// AlertStore persists generated alerts.
type AlertStore interface {
	Insert(ctx context.Context, projectID string, alerts []api.Alert) error
}

// Service runs the pipeline for one project at a time. Calls are
// independent; a single Service may serve concurrent requests.
type Service struct {
	benchmarks *benchmark.Table
	snapshots  SnapshotStore
	alertStore AlertStore
	log        zerolog.Logger
}

// NewService creates a pipeline service. A nil benchmark table falls back
// to the built-in defaults. Stores are optional; without them Run is a
// pure computation.
func NewService(table *benchmark.Table, log zerolog.Logger) *Service {
	if table == nil {
		table = benchmark.Default()
	}
	return &Service{benchmarks: table, log: log}
}

// WithSnapshotStore enables snapshot persistence.
func (s *Service) WithSnapshotStore(store SnapshotStore) *Service {
	s.snapshots = store
	return s
}

// WithAlertStore enables alert persistence.
func (s *Service) WithAlertStore(store AlertStore) *Service {
	s.alertStore = store
	return s
}

// Run executes the full pipeline. The computation itself cannot fail;
// store failures downgrade the report to Degraded instead of erroring,
// because dashboards must always have something to render.
func (s *Service) Run(ctx context.Context, input api.ProjectInput) (*api.CostReport, error) {
	if input.ProjectID == "" {
		return nil, cerrors.NewInvalidInputError("project_id is required", "")
	}

	metrics := evm.Calculate(input.WBSLines, input.Finance, input.PhysicalProgress)
	breakdown := budget.Build(input.WBSLines, input.Ledger)
	fc := forecast.NewGenerator(s.benchmarks).
		WithProjectType(input.ProjectType).
		Generate(metrics)

	alertList := alerts.Generate(metrics, breakdown)
	for i := range alertList {
		alertList[i].ProjectID = input.ProjectID
	}

	report := &api.CostReport{
		ProjectID: input.ProjectID,
		Metrics:   metrics,
		Breakdown: breakdown,
		Forecast:  fc,
		Alerts:    alertList,
	}

	if s.snapshots != nil {
		if err := s.snapshots.SaveMetrics(ctx, input.ProjectID, metrics); err != nil {
			werr := cerrors.NewSnapshotWriteError(input.ProjectID, err)
			s.log.Warn().Err(werr).Str("project_id", input.ProjectID).Msg("snapshot persistence failed")
			report.Degraded = true
		}
	}

	if s.alertStore != nil && len(alertList) > 0 {
		if err := s.alertStore.Insert(ctx, input.ProjectID, alertList); err != nil {
			werr := cerrors.NewAlertWriteError(input.ProjectID, err)
			s.log.Warn().Err(werr).Str("project_id", input.ProjectID).Msg("alert persistence failed")
			report.Degraded = true
		}
	}

	return report, nil
}
