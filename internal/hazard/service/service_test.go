package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ReportStore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"abhaya/internal/hazard/metrics"
	"abhaya/internal/hazard/models"
	"abhaya/internal/hazard/service/mocks"
	"abhaya/internal/hazard/store"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	reports  *mocks.MockReportStore
	metrics  *metrics.Metrics
	logs     *bytes.Buffer
	svc      *Service
	ctx      context.Context
	now      time.Time
	reporter models.Reporter
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.reports = mocks.NewMockReportStore(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logs = &bytes.Buffer{}
	s.svc = New(s.reports,
		WithLogger(slog.New(slog.NewJSONHandler(s.logs, nil))),
		WithMetrics(s.metrics))
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.reporter = models.Reporter{SessionID: id.NewSessionID(), Name: "Asha"}
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func request() models.SubmitRequest {
	return models.SubmitRequest{
		Type:        "Suspicious_Activity",
		Severity:    "Medium",
		Description: " Someone following tourists near the fort gate ",
		Location:    "Amber Fort, Jaipur",
	}
}

func (s *ServiceSuite) TestSubmit() {
	s.Run("stores a normalized report", func() {
		var saved models.Report
		s.reports.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r models.Report) error {
				saved = r
				return nil
			})

		got, err := s.svc.Submit(s.ctx, s.reporter, request())
		s.Require().NoError(err)

		s.Equal(saved, *got)
		s.Regexp(`^HR[0-9A-Z]{6}$`, got.Code)
		s.Equal(models.TypeSuspiciousActivity, got.Type)
		s.Equal(models.SeverityMedium, got.Severity)
		s.Equal("Someone following tourists near the fort gate", got.Description)
		s.Equal(s.now, got.CreatedAt)
		s.Require().NotNil(got.ReporterSessionID)
		s.Equal(s.reporter.SessionID, *got.ReporterSessionID)
		s.InDelta(1, promtest.ToFloat64(s.metrics.Reported.WithLabelValues("suspicious_activity", "medium")), 0)
		s.Contains(s.logs.String(), `"event":"hazard_reported"`)
	})

	s.Run("anonymous report keeps no trace of the reporter", func() {
		s.logs.Reset()
		req := request()
		req.Anonymous = true
		var saved models.Report
		s.reports.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r models.Report) error {
				saved = r
				return nil
			})

		_, err := s.svc.Submit(s.ctx, s.reporter, req)
		s.Require().NoError(err)
		s.Nil(saved.ReporterSessionID)
		s.Empty(saved.ReporterName)
		s.NotContains(s.logs.String(), s.reporter.SessionID.String())
	})

	s.Run("critical report is flagged in the log", func() {
		s.logs.Reset()
		req := request()
		req.Severity = "critical"
		s.reports.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.svc.Submit(s.ctx, s.reporter, req)
		s.Require().NoError(err)
		s.Contains(s.logs.String(), "critical hazard reported")
	})

	s.Run("missing description never reaches the store", func() {
		req := request()
		req.Description = "  "
		_, err := s.svc.Submit(s.ctx, s.reporter, req)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("a report needs a session", func() {
		_, err := s.svc.Submit(s.ctx, models.Reporter{}, request())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("store failure is internal", func() {
		s.reports.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
		_, err := s.svc.Submit(s.ctx, s.reporter, request())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestListRecent() {
	filter := store.ListFilter{Limit: 20, MinSeverity: models.SeverityHigh}

	s.reports.EXPECT().ListRecent(gomock.Any(), filter).Return(nil, nil)
	got, err := s.svc.ListRecent(s.ctx, filter)
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)

	s.reports.EXPECT().ListRecent(gomock.Any(), filter).Return(nil, errors.New("db down"))
	_, err = s.svc.ListRecent(s.ctx, filter)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
