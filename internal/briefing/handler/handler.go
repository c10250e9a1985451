package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"abhaya/internal/briefing"
	"abhaya/internal/platform/middleware"
	"abhaya/internal/providers"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/httputil"
)

// Service defines the briefing operations exposed over HTTP.
type Service interface {
	Get(ctx context.Context, req briefing.Request) (*briefing.Briefing, error)
	Videos(ctx context.Context, query string) ([]providers.VideoItem, error)
	Translate(ctx context.Context, text, targetLanguage string) (*briefing.Translation, error)
}

type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
}

type VideosResponse struct {
	Videos []providers.VideoItem `json:"videos"`
}

type Handler struct {
	svc            Service
	logger         *slog.Logger
	requestTimeout time.Duration
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, requestTimeout: 10 * time.Second}
}

func (h *Handler) Register(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.requestTimeout))
		r.Use(requireSession)
		r.Get("/briefing", h.handleBriefing)
		r.Get("/videos", h.handleVideos)
		r.Post("/translate", h.handleTranslate)
	})
}

func (h *Handler) handleBriefing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	lat, err := parseFloat(q.Get("lat"), "lat")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	lng, err := parseFloat(q.Get("lng"), "lng")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req := briefing.Request{Latitude: lat, Longitude: lng, Location: q.Get("location")}
	if raw := q.Get("score"); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "score must be an integer"))
			return
		}
		req.Score = &score
	}

	res, err := h.svc.Get(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "briefing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videos, err := h.svc.Videos(ctx, r.URL.Query().Get("query"))
	if err != nil {
		h.writeServiceError(ctx, w, "video search failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VideosResponse{Videos: videos})
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req TranslateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.svc.Translate(ctx, req.Text, req.TargetLanguage)
	if err != nil {
		h.writeServiceError(ctx, w, "translation failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func parseFloat(raw, field string) (float64, error) {
	if raw == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" must be a number")
	}
	return v, nil
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
