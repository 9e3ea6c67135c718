package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"defiguard/internal/alert"
	"defiguard/internal/alert/service"
	"defiguard/internal/registry"
	"defiguard/pkg/middleware"
)

type memAlertRepo struct {
	alerts map[string]*alert.Alert
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{alerts: make(map[string]*alert.Alert)}
}

func (m *memAlertRepo) Create(_ context.Context, a *alert.Alert) error {
	cp := *a
	m.alerts[a.ID] = &cp
	return nil
}

func (m *memAlertRepo) GetByID(_ context.Context, id string) (*alert.Alert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, alert.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAlertRepo) ListByUser(_ context.Context, userID int64) ([]*alert.Alert, error) {
	var out []*alert.Alert
	for _, a := range m.alerts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAlertRepo) Replace(_ context.Context, a *alert.Alert) error {
	if _, ok := m.alerts[a.ID]; !ok {
		return alert.ErrNotFound
	}
	cp := *a
	m.alerts[a.ID] = &cp
	return nil
}

func (m *memAlertRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.alerts[id]; !ok {
		return alert.ErrNotFound
	}
	delete(m.alerts, id)
	return nil
}

func injectUser(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(userID int64) (*chi.Mux, *memAlertRepo) {
	repo := newMemAlertRepo()
	svc := service.NewService(repo, registry.Default(), zap.NewNop())
	h := NewAlertHandler(svc, zap.NewNop())

	r := chi.NewRouter()
	r.Use(injectUser(userID))
	r.Post("/api/alerts/create/personalized-market", h.CreatePersonalizedMarket)
	r.Post("/api/alerts/create/personalized-comparison", h.CreatePersonalizedComparison)
	r.Get("/api/alerts", h.List)
	r.Get("/api/alerts/{id}", h.Get)
	r.Put("/api/alerts/{id}", h.Update)
	r.Delete("/api/alerts/{id}", h.Delete)
	return r, repo
}

func marketBody() map[string]interface{} {
	return map[string]interface{}{
		"walletAddress":         "0x7f5c764cbc14f9669b88837ca1490cca17c31607",
		"category":              "PERSONALIZED",
		"actionType":            "SUPPLY",
		"notificationFrequency": "AT_MOST_ONCE_PER_DAY",
		"selectedChains":        []string{"Ethereum"},
		"selectedMarkets": []map[string]interface{}{
			{"chainId": 1, "address": "0xc3d688b66703497daa19211eedff47f25384cdc3"},
		},
		"conditions": []map[string]interface{}{
			{"type": "APR_RISE_ABOVE", "value": "5.0", "severity": "WARNING"},
		},
		"deliveryChannels": []map[string]interface{}{
			{"type": "EMAIL", "email": "a@b.com"},
		},
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateAlert_Success(t *testing.T) {
	r, _ := newTestRouter(42)

	rec := doJSON(t, r, http.MethodPost, "/api/alerts/create/personalized-market", marketBody())

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Ok      bool   `json:"ok"`
		AlertID string `json:"alertId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Ok)
	assert.NotEmpty(t, resp.AlertID)
}

func TestCreateAlert_InvalidConditionIs400(t *testing.T) {
	r, repo := newTestRouter(42)

	body := marketBody()
	body["conditions"] = []map[string]interface{}{
		{"type": "APR_OUTSIDE_RANGE", "min": "2", "max": "1", "severity": "WARNING"},
	}

	rec := doJSON(t, r, http.MethodPost, "/api/alerts/create/personalized-market", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "min must be less than max")
	assert.Empty(t, repo.alerts)
}

func TestCreateAlert_BadJSONIs400(t *testing.T) {
	r, _ := newTestRouter(42)

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/create/personalized-market",
		bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateComparison_ForcesComparisonFlag(t *testing.T) {
	r, _ := newTestRouter(42)

	// without compareProtocols the comparison endpoint must reject
	rec := doJSON(t, r, http.MethodPost, "/api/alerts/create/personalized-comparison", marketBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "compareProtocols")

	body := marketBody()
	body["compareProtocols"] = []string{"Aave", "Spark"}
	rec = doJSON(t, r, http.MethodPost, "/api/alerts/create/personalized-comparison", body)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetAlert_RoundTrip(t *testing.T) {
	r, _ := newTestRouter(42)

	rec := doJSON(t, r, http.MethodPost, "/api/alerts/create/personalized-market", marketBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		AlertID string `json:"alertId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, r, http.MethodGet, "/api/alerts/"+created.AlertID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got alert.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Conditions, 1)
	require.NotNil(t, got.Conditions[0].Threshold)
	assert.Equal(t, "5", got.Conditions[0].Threshold.String())
	require.Len(t, got.DeliveryChannels, 1)
	assert.Equal(t, alert.ChannelEmail, got.DeliveryChannels[0].Type)
}

func TestGetAlert_Missing404(t *testing.T) {
	r, _ := newTestRouter(42)

	rec := doJSON(t, r, http.MethodGet, "/api/alerts/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAlert_ReplacesChildren(t *testing.T) {
	r, _ := newTestRouter(42)

	rec := doJSON(t, r, http.MethodPost, "/api/alerts/create/personalized-market", marketBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		AlertID string `json:"alertId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	body := marketBody()
	body["conditions"] = []map[string]interface{}{
		{"type": "APR_FALLS_BELOW", "value": "1.5", "severity": "CRITICAL"},
	}
	body["deliveryChannels"] = []map[string]interface{}{
		{"type": "WEBHOOK", "webhookUrl": "https://hooks.example.com/defi"},
	}

	rec = doJSON(t, r, http.MethodPut, "/api/alerts/"+created.AlertID, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got alert.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Conditions, 1)
	assert.Equal(t, alert.ConditionAPRFallsBelow, got.Conditions[0].Type)
	require.Len(t, got.DeliveryChannels, 1)
	assert.Equal(t, alert.ChannelWebhook, got.DeliveryChannels[0].Type)
}

func TestDeleteAlert_ReturnsStateThen404(t *testing.T) {
	r, _ := newTestRouter(42)

	rec := doJSON(t, r, http.MethodPost, "/api/alerts/create/personalized-market", marketBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		AlertID string `json:"alertId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, r, http.MethodDelete, "/api/alerts/"+created.AlertID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got alert.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.AlertID, got.ID)

	rec = doJSON(t, r, http.MethodDelete, "/api/alerts/"+created.AlertID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestList_EmptyIsJSONArray(t *testing.T) {
	r, _ := newTestRouter(42)

	rec := doJSON(t, r, http.MethodGet, "/api/alerts", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
