package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"abhaya/internal/auth/device"
	"abhaya/internal/auth/heartbeat"
	"abhaya/internal/auth/models"
	"abhaya/internal/platform/middleware"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/httputil"
	"abhaya/pkg/requestcontext"
)

// Service defines the session operations exposed over HTTP.
type Service interface {
	LoginTourist(ctx context.Context, slot, device string, req models.TouristLoginRequest) (*models.LoginResult, error)
	LoginPolice(ctx context.Context, slot, device string, req models.PoliceLoginRequest) (*models.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*models.AuthContext, error)
	Touch(ctx context.Context, slot string, sessionID id.SessionID) (*models.Session, error)
	Logout(ctx context.Context, slot string, sessionID id.SessionID) error
	Heartbeat(slot string, sessionID id.SessionID, extra ...heartbeat.Option) *heartbeat.Heartbeat
}

// Handler serves login, session and heartbeat endpoints.
type Handler struct {
	svc            Service
	logger         *slog.Logger
	requestTimeout time.Duration

	// streams is the parent of every open heartbeat stream.
	streams      context.Context
	closeStreams context.CancelFunc
}

func New(svc Service, logger *slog.Logger) *Handler {
	streams, closeStreams := context.WithCancel(context.Background())
	return &Handler{
		svc:            svc,
		logger:         logger,
		requestTimeout: 30 * time.Second,
		streams:        streams,
		closeStreams:   closeStreams,
	}
}

// CloseStreams ends every open heartbeat stream and makes new ones end
// immediately. http.Server.Shutdown does not wait on its own for long-lived
// responses, so register it with RegisterOnShutdown.
func (h *Handler) CloseStreams() {
	h.closeStreams()
}

// Register registers the session routes with the chi router. The heartbeat
// stream is exempt from the request timeout.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.requestTimeout))
		r.Post("/auth/tourist/login", h.handleTouristLogin)
		r.Post("/auth/police/login", h.handlePoliceLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(h.svc, h.logger))
			r.Get("/auth/session", h.handleGetSession)
			r.Post("/auth/session/activity", h.handleActivity)
			r.Post("/auth/logout", h.handleLogout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(h.svc, h.logger))
		r.Get("/auth/session/heartbeat", h.handleHeartbeat)
	})
}

func (h *Handler) handleTouristLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.TouristLoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid tourist login request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.svc.LoginTourist(ctx, requestcontext.Slot(ctx), device.Label(requestcontext.UserAgent(ctx)), req)
	if err != nil {
		h.writeServiceError(ctx, w, "tourist login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handlePoliceLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.PoliceLoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.svc.LoginPolice(ctx, requestcontext.Slot(ctx), device.Label(requestcontext.UserAgent(ctx)), req)
	if err != nil {
		h.writeServiceError(ctx, w, "police login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuth(r.Context())
	httputil.WriteJSON(w, http.StatusOK, auth.Session.View())
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	auth := middleware.GetAuth(ctx)
	sess, err := h.svc.Touch(ctx, auth.Slot, auth.Session.ID)
	if err != nil {
		h.writeServiceError(ctx, w, "activity update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess.View())
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	auth := middleware.GetAuth(ctx)
	if err := h.svc.Logout(ctx, auth.Slot, auth.Session.ID); err != nil {
		h.writeServiceError(ctx, w, "logout failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHeartbeat streams server-sent events while touching the session
// every heartbeat interval. The stream ends when the client disconnects,
// when CloseStreams is called, or when the session itself is gone; the last
// case is announced with an "expired" event.
func (h *Handler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer context.AfterFunc(h.streams, cancel)()
	auth := middleware.GetAuth(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	writeEvent(w, "ready", fmt.Sprintf(`{"session_id":%q}`, auth.Session.ID.String()))
	flusher.Flush()

	hb := h.svc.Heartbeat(auth.Slot, auth.Session.ID, heartbeat.OnTick(func(t time.Time) {
		writeEvent(w, "tick", fmt.Sprintf(`{"at":%d}`, t.UnixMilli()))
		flusher.Flush()
	}))
	err := hb.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		writeEvent(w, "expired", fmt.Sprintf(`{"error":%q}`, dErrors.CodeOf(err)))
		flusher.Flush()
	}
	h.logger.DebugContext(ctx, "heartbeat stream closed",
		"request_id", middleware.GetRequestID(ctx),
		"slot", auth.Slot,
	)
}

func writeEvent(w http.ResponseWriter, event, data string) {
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
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
