package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	authmodels "abhaya/internal/auth/models"
	"abhaya/internal/hazard/handler/mocks"
	"abhaya/internal/hazard/models"
	"abhaya/internal/hazard/store"
	"abhaya/internal/platform/middleware"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/testutil"
)

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r, passthrough)
	return r, svc
}

func TestSubmitHazard(t *testing.T) {
	body := models.SubmitRequest{
		Type:        "medical_emergency",
		Severity:    "critical",
		Description: "Elderly visitor collapsed at the east gate",
		Location:    "Taj Mahal, Agra",
	}

	t.Run("tourist files a report", func(t *testing.T) {
		router, svc := newRouter(t)
		req, sess := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/hazards", body),
			authmodels.KindTourist, "phone-1")
		report := &models.Report{
			ID:        id.NewReportID(),
			Code:      "HR4K2Z9Q",
			Type:      models.TypeMedicalEmergency,
			Severity:  models.SeverityCritical,
			CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		}
		svc.EXPECT().Submit(gomock.Any(), models.Reporter{SessionID: sess.ID}, body).Return(report, nil)

		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "code", "HR4K2Z9Q")
		testutil.AssertJSONContains(t, rr, "severity", "critical")
	})

	t.Run("validation errors pass through", func(t *testing.T) {
		router, svc := newRouter(t)
		req, _ := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/hazards", models.SubmitRequest{}),
			authmodels.KindTourist, "phone-1")
		svc.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidInput, "type is required"))

		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "invalid_input")
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		router, _ := newRouter(t)
		req, _ := testutil.WithSession(testutil.NewRequestWithBody(t, http.MethodPost, "/hazards", `{"type":`),
			authmodels.KindTourist, "phone-1")
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "bad_request")
	})

	t.Run("officers cannot file reports", func(t *testing.T) {
		router, _ := newRouter(t)
		req, _ := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/hazards", body),
			authmodels.KindPolice, "console")
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusForbidden, "forbidden")
	})
}

func TestHazardConsole(t *testing.T) {
	t.Run("officers list reports with a severity floor", func(t *testing.T) {
		router, svc := newRouter(t)
		req, _ := testutil.WithSession(testutil.NewRequest(t, http.MethodGet, "/console/hazards?limit=500&min_severity=High"),
			authmodels.KindPolice, "console")
		report := models.Report{ID: id.NewReportID(), Code: "HR000001", Severity: models.SeverityHigh}
		svc.EXPECT().ListRecent(gomock.Any(), store.ListFilter{Limit: maxConsoleLimit, MinSeverity: models.SeverityHigh}).
			Return([]models.Report{report}, nil)

		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[ConsoleResponse](t, rr)
		require.Len(t, resp.Reports, 1)
		assert.Equal(t, "HR000001", resp.Reports[0].Code)
	})

	t.Run("default listing", func(t *testing.T) {
		router, svc := newRouter(t)
		req, _ := testutil.WithSession(testutil.NewRequest(t, http.MethodGet, "/console/hazards"),
			authmodels.KindPolice, "console")
		svc.EXPECT().ListRecent(gomock.Any(), store.ListFilter{Limit: defaultConsoleLimit}).Return([]models.Report{}, nil)

		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[ConsoleResponse](t, rr)
		assert.Empty(t, resp.Reports)
	})

	t.Run("unknown severity is rejected", func(t *testing.T) {
		router, _ := newRouter(t)
		req, _ := testutil.WithSession(testutil.NewRequest(t, http.MethodGet, "/console/hazards?min_severity=extreme"),
			authmodels.KindPolice, "console")
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "invalid_input")
	})

	t.Run("tourists are forbidden", func(t *testing.T) {
		router, _ := newRouter(t)
		req, _ := testutil.WithSession(testutil.NewRequest(t, http.MethodGet, "/console/hazards"),
			authmodels.KindTourist, "phone-1")
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusForbidden, "forbidden")
	})
}
