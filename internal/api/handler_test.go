package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/history"
	"herald/internal/inference"
	"herald/internal/logger"
	"herald/internal/orchestrator"
	"herald/internal/routing"
	"herald/internal/rules"
	"herald/internal/triage"
	"herald/internal/urgency"
	"herald/pkg/models"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NopLogger()
	reader := history.ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*history.SenderHistory, error) {
		return nil, nil
	})
	o := orchestrator.New(
		rules.NewEngine(log),
		urgency.NewClassifier(inference.NewStubClient(), reader, log),
		routing.NewClassifier(nil, nil, log),
		log,
	)
	svc := triage.NewService(o, nil, log)

	router := gin.New()
	NewHandler(svc, log).RegisterRoutes(router)
	return router
}

func postClassify(t *testing.T, router *gin.Engine, msg *models.NormalizedMessage) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClassify_FinancialMessageGoesImmediate(t *testing.T) {
	router := newRouter(t)

	msg := models.NewNormalizedMessageBuilder().
		WithMessageID("msg-api-1").
		WithTenant("tenant-1", "user-1").
		WithSender("sender-1").
		WithContent("Sua fatura de R$ 350,00 vence amanhã").
		WithTimestamp(time.Now().Unix()).
		Build()

	w := postClassify(t, router, msg)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ProcessingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.RouteImmediate, result.Decision)
	assert.Equal(t, "msg-api-1", result.MessageID)
	assert.NotEmpty(t, result.AuditTrail)
}

func TestClassify_MalformedMessageReturns400(t *testing.T) {
	router := newRouter(t)

	msg := models.NewNormalizedMessageBuilder().
		WithTenant("tenant-1", "user-1").
		WithSender("sender-1").
		WithContent("oi").
		Build()

	w := postClassify(t, router, msg)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "MALFORMED_MESSAGE", response["error_code"])
}

func TestClassify_InvalidJSONReturns400(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetResult_RequiresTenantID(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/msg-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetResult_UnknownMessageReturns404(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/missing?tenant_id=tenant-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStats_ReturnsRuleCounters(t *testing.T) {
	router := newRouter(t)

	msg := models.NewNormalizedMessageBuilder().
		WithMessageID("msg-stats-1").
		WithTenant("tenant-1", "user-1").
		WithSender("sender-1").
		WithContent("promoção imperdível, desconto exclusivo").
		WithTimestamp(time.Now().Unix()).
		Build()
	postClassify(t, router, msg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats triage.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.RuleEvaluated)
}

func TestGetStats_RejectsBadSince(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats?since=yesterday", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
