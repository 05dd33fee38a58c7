package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VladKvetkin/paywebhook/internal/config"
	"github.com/VladKvetkin/paywebhook/internal/entitlement"
	"github.com/VladKvetkin/paywebhook/internal/entities"
	"github.com/VladKvetkin/paywebhook/internal/handler"
	"github.com/VladKvetkin/paywebhook/internal/metrics"
	"github.com/VladKvetkin/paywebhook/internal/services/jwttoken"
	"github.com/VladKvetkin/paywebhook/internal/services/signature"
	"github.com/VladKvetkin/paywebhook/internal/storage"
	"github.com/VladKvetkin/paywebhook/internal/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checksumKey = "server-test-key"

func newTestServer(t *testing.T) (*httptest.Server, storage.Storage, *jwttoken.Manager) {
	t.Helper()

	db, err := storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := storage.NewSQLStorage(db)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	processor := webhook.NewProcessor(s, entitlement.NewActivator(nil), checksumKey, webhook.WithMetrics(metrics.New(registry)))
	tokens := jwttoken.NewManager("jwt-secret")

	srv := NewServer(config.Config{Address: ":0"}, handler.NewHandler(s, processor), tokens, registry)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts, s, tokens
}

func signedCallback(t *testing.T, orderCode string) string {
	t.Helper()

	fields := map[string]string{"amount": "100000", "code": "00", "desc": "success", "orderCode": orderCode}
	body := map[string]any{
		"code":      "00",
		"desc":      "success",
		"success":   true,
		"data":      map[string]any{"orderCode": json.Number(orderCode), "amount": 100000, "code": "00", "desc": "success"},
		"signature": signature.Sign(fields, checksumKey),
	}

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	return string(encoded)
}

func TestWebhookRouteAcceptsEveryMethod(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			req, err := http.NewRequest(method, ts.URL+WebhookPath, strings.NewReader(`{}`))
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var ack map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
			assert.Equal(t, true, ack["success"])
		})
	}
}

func TestPaidCallbackThenUserAPI(t *testing.T) {
	ts, s, tokens := newTestServer(t)

	require.NoError(t, s.CreateUser(context.Background(), "U1"))
	require.NoError(t, s.CreateOrder(context.Background(), entities.Order{Code: "424242", UserID: "U1", PlanType: entities.PlanYearly}))

	resp, err := http.Post(ts.URL+WebhookPath, "application/json", strings.NewReader(signedCallback(t, "424242")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	token, err := tokens.Generate("U1")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/user/orders/424242", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var order map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.Equal(t, "success", order["status"])

	req, err = http.NewRequest(http.MethodGet, ts.URL+"/api/user/premium", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var premium map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&premium))
	assert.Equal(t, true, premium["is_premium"])
	assert.Equal(t, true, premium["active"])
	assert.Equal(t, "yearly", premium["plan"])
}

func TestUserAPIRequiresToken(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/user/premium")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + WebhookPath)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf strings.Builder
	_, err = io.Copy(&buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `paywebhook_callbacks_total{outcome="health_check"} 1`)
}

type panickingStorage struct {
	storage.Storage
}

func (panickingStorage) GetUser(context.Context, string) (entities.User, error) {
	panic("user lookup exploded")
}

func TestUserAPIPanicReturnsInternalServerError(t *testing.T) {
	registry := prometheus.NewRegistry()
	s := panickingStorage{}
	processor := webhook.NewProcessor(s, entitlement.NewActivator(nil), checksumKey, webhook.WithMetrics(metrics.New(registry)))
	tokens := jwttoken.NewManager("jwt-secret")

	srv := NewServer(config.Config{Address: ":0"}, handler.NewHandler(s, processor), tokens, registry)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	token, err := tokens.Generate("U1")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/user/premium", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
