// Package service accepts hazard reports from tourists and lists them for
// the police console.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"abhaya/internal/hazard/metrics"
	"abhaya/internal/hazard/models"
	"abhaya/internal/hazard/store"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/audit"
	"abhaya/pkg/requestcontext"
)

// ReportStore keeps submitted reports.
type ReportStore interface {
	Save(ctx context.Context, r models.Report) error
	ListRecent(ctx context.Context, filter store.ListFilter) ([]models.Report, error)
}

type Service struct {
	reports ReportStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(reports ReportStore, opts ...Option) *Service {
	s := &Service{
		reports: reports,
		logger:  slog.Default(),
		tracer:  otel.Tracer("abhaya/hazard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates req and stores it as a report filed by reporter. An
// anonymous report keeps nothing that identifies the reporter.
func (s *Service) Submit(ctx context.Context, reporter models.Reporter, req models.SubmitRequest) (*models.Report, error) {
	ctx, span := s.tracer.Start(ctx, "hazard.Submit")
	defer span.End()

	if reporter.SessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	report := models.NewReport(req, reporter, requestcontext.Now(ctx))
	span.SetAttributes(
		attribute.String("report_code", report.Code),
		attribute.String("severity", string(report.Severity)),
	)
	if err := s.reports.Save(ctx, *report); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save hazard report")
	}

	s.metrics.IncReported(string(report.Type), string(report.Severity))
	attrs := []any{
		"report_code", report.Code,
		"type", string(report.Type),
		"severity", string(report.Severity),
		"anonymous", report.Anonymous,
	}
	if !report.Anonymous {
		attrs = append(attrs, "session_id", reporter.SessionID.String())
	}
	audit.Log(ctx, s.logger, audit.EventHazardReported, attrs...)
	if report.Severity == models.SeverityCritical {
		s.logger.WarnContext(ctx, "critical hazard reported",
			"report_code", report.Code,
			"type", string(report.Type),
			"location", report.Location,
		)
	}
	return report, nil
}

// ListRecent returns reports for the console, newest first.
func (s *Service) ListRecent(ctx context.Context, filter store.ListFilter) ([]models.Report, error) {
	reports, err := s.reports.ListRecent(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list hazard reports")
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}
