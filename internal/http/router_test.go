package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abhaya/internal/auth/models"
	"abhaya/internal/platform/metrics"
	"abhaya/internal/platform/middleware"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/httputil"
	"abhaya/pkg/testutil"
)

type tokenAuthenticator struct{ token string }

func (a tokenAuthenticator) Authenticate(_ context.Context, token string) (*models.AuthContext, error) {
	if token != a.token {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	return &models.AuthContext{Session: &models.Session{ID: id.NewSessionID(), Kind: models.KindTourist}}, nil
}

// echoRoutes answers the session kind on GET /whoami.
type echoRoutes struct{}

func (echoRoutes) Register(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.With(requireSession).Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		auth := middleware.GetAuth(r.Context())
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"kind": string(auth.Session.Kind)})
	})
}

func newTestRouter(t *testing.T) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	router := NewRouter(Deps{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:       metrics.New(reg),
		Gatherer:      reg,
		Authenticator: tokenAuthenticator{token: "good"},
		Domains:       []Routes{echoRoutes{}},
	})
	return router, reg
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "status", "ok")
	assert.NotEmpty(t, rr.Header().Get(middleware.HeaderRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	router, _ := newTestRouter(t)
	req := testutil.NewRequest(t, http.MethodGet, "/healthz")
	req.Header.Set(middleware.HeaderRequestID, "req-42")

	rr := testutil.DoRequest(router, req)

	assert.Equal(t, "req-42", rr.Header().Get(middleware.HeaderRequestID))
}

func TestSessionGuard(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("missing token is unauthorized", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/whoami"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("stale token is unauthorized", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/whoami")
		req.Header.Set("Authorization", "Bearer old")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("live token reaches the handler", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/whoami")
		req.Header.Set("Authorization", "Bearer good")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "kind", "tourist")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

	testutil.AssertStatusOK(t, rr)
	body := string(testutil.ReadBody(t, rr))
	require.True(t, strings.Contains(body, "abhaya_http_request_duration_seconds"))
	assert.Contains(t, body, `route="/healthz"`)
}
