package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	authmodels "abhaya/internal/auth/models"
	"abhaya/internal/hazard/models"
	"abhaya/internal/hazard/store"
	"abhaya/internal/platform/middleware"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/httputil"
)

// Service defines the hazard operations exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, reporter models.Reporter, req models.SubmitRequest) (*models.Report, error)
	ListRecent(ctx context.Context, filter store.ListFilter) ([]models.Report, error)
}

const (
	defaultConsoleLimit = 50
	maxConsoleLimit     = 200
)

// ConsoleResponse lists hazard reports for officers.
type ConsoleResponse struct {
	Reports []models.Report `json:"reports"`
}

type Handler struct {
	svc            Service
	logger         *slog.Logger
	requestTimeout time.Duration
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, requestTimeout: 10 * time.Second}
}

// Register mounts report submission for tourists and the hazard console for
// officers.
func (h *Handler) Register(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.requestTimeout))
		r.Use(requireSession)

		r.With(middleware.RequireKind(authmodels.KindTourist)).Post("/hazards", h.handleSubmit)
		r.With(middleware.RequireKind(authmodels.KindPolice)).Get("/console/hazards", h.handleConsole)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	auth := middleware.GetAuth(ctx)

	var req models.SubmitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	reporter := models.Reporter{SessionID: auth.Session.ID, Name: touristName(auth.Session)}
	report, err := h.svc.Submit(ctx, reporter, req)
	if err != nil {
		h.writeServiceError(ctx, w, "hazard report failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) handleConsole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := store.ListFilter{Limit: defaultConsoleLimit}
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		filter.Limit = min(n, maxConsoleLimit)
	}
	if raw := query.Get("min_severity"); raw != "" {
		severity, err := models.ParseSeverity(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.MinSeverity = severity
	}

	reports, err := h.svc.ListRecent(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, "hazard listing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ConsoleResponse{Reports: reports})
}

func touristName(sess *authmodels.Session) string {
	var profile authmodels.TouristProfile
	if err := json.Unmarshal(sess.Principal, &profile); err != nil {
		return ""
	}
	return profile.Name
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
	}
	httputil.WriteError(w, err)
}
