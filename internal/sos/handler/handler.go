package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"abhaya/internal/auth/models"
	"abhaya/internal/platform/middleware"
	"abhaya/internal/sos/lifecycle"
	"abhaya/internal/sos/service"
	"abhaya/internal/sos/store"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/httputil"
)

// Service defines the SOS operations exposed over HTTP.
type Service interface {
	Start(ctx context.Context, owner service.Owner, loc lifecycle.Location) (*lifecycle.Alert, bool, error)
	Get(ctx context.Context, sessionID id.SessionID, alertID id.AlertID) (*lifecycle.Alert, error)
	Cancel(ctx context.Context, sessionID id.SessionID, alertID id.AlertID) (*lifecycle.Alert, error)
	SilentDispatch(ctx context.Context, sessionID id.SessionID, alertID id.AlertID) (*lifecycle.Alert, error)
	Close(ctx context.Context, sessionID id.SessionID, alertID id.AlertID) error
	ListDispatched(ctx context.Context, limit int) ([]store.Record, error)
	FindDispatched(ctx context.Context, alertID id.AlertID) (*store.Record, error)
}

const (
	defaultConsoleLimit = 50
	maxConsoleLimit     = 200
)

// StartRequest is the body of POST /sos.
type StartRequest struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	LocationName string   `json:"location_name"`
}

// ConsoleResponse lists dispatched alerts for officers.
type ConsoleResponse struct {
	Alerts []store.Record `json:"alerts"`
}

type Handler struct {
	svc            Service
	logger         *slog.Logger
	requestTimeout time.Duration
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, requestTimeout: 10 * time.Second}
}

// Register mounts the tourist SOS routes and the police console behind
// requireSession.
func (h *Handler) Register(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.requestTimeout))
		r.Use(requireSession)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireKind(models.KindTourist))
			r.Post("/sos", h.handleStart)
			r.Get("/sos/{id}", h.handleGet)
			r.Post("/sos/{id}/cancel", h.handleCancel)
			r.Post("/sos/{id}/silent", h.handleSilent)
			r.Delete("/sos/{id}", h.handleClose)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireKind(models.KindPolice))
			r.Get("/console/alerts", h.handleConsole)
			r.Get("/console/alerts/{id}", h.handleConsoleAlert)
		})
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	auth := middleware.GetAuth(ctx)

	var req StartRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "latitude and longitude are required"))
		return
	}

	owner := service.Owner{SessionID: auth.Session.ID, TouristName: touristName(auth.Session)}
	loc := lifecycle.Location{Latitude: *req.Latitude, Longitude: *req.Longitude, Name: req.LocationName}
	alert, created, err := h.svc.Start(ctx, owner, loc)
	if err != nil {
		h.writeServiceError(ctx, w, "sos start failed", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, alert)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.withAlert(w, r, "sos lookup failed", h.svc.Get)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.withAlert(w, r, "sos cancel failed", h.svc.Cancel)
}

func (h *Handler) handleSilent(w http.ResponseWriter, r *http.Request) {
	h.withAlert(w, r, "silent dispatch failed", h.svc.SilentDispatch)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alertID, err := id.ParseAlertID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.svc.Close(ctx, middleware.GetAuth(ctx).Session.ID, alertID); err != nil {
		h.writeServiceError(ctx, w, "sos close failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleConsole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultConsoleLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxConsoleLimit)
	}

	records, err := h.svc.ListDispatched(ctx, limit)
	if err != nil {
		h.writeServiceError(ctx, w, "console listing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ConsoleResponse{Alerts: records})
}

func (h *Handler) handleConsoleAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alertID, err := id.ParseAlertID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.svc.FindDispatched(ctx, alertID)
	if err != nil {
		h.writeServiceError(ctx, w, "console alert lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

type alertOp func(ctx context.Context, sessionID id.SessionID, alertID id.AlertID) (*lifecycle.Alert, error)

func (h *Handler) withAlert(w http.ResponseWriter, r *http.Request, msg string, op alertOp) {
	ctx := r.Context()
	alertID, err := id.ParseAlertID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	alert, err := op(ctx, middleware.GetAuth(ctx).Session.ID, alertID)
	if err != nil {
		h.writeServiceError(ctx, w, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alert)
}

func touristName(sess *models.Session) string {
	var profile models.TouristProfile
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
