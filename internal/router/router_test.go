package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/config"
	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/testutil"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

type apiEnv struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
	f      *testutil.Fixture
	token  string
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	db := testutil.NewDB(t, 0)
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: testSecret, Issuer: "test"},
		Security: config.SecurityConfig{EncryptionKey: "audit-key"},
		Billing:  config.BillingConfig{UpcomingDays: 7, DefaultCurrency: "MXN"},
		App:      config.AppSubConfig{PageSize: 20},
	}
	f := testutil.Seed(t, db, testutil.ContractOpts{})
	token, err := util.GenerateToken(testSecret, "test", f.AgencyID, "agent-7", "", time.Hour)
	require.NoError(t, err)
	return &apiEnv{t: t, db: db, engine: SetupRouter(cfg, db, zaptest.NewLogger(t)), f: f, token: token}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *apiEnv) do(method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

type summaryResp struct {
	TotalInflow string `json:"totalInflow"`
	EntryCount  int    `json:"entryCount"`
}

func decode[T any](t *testing.T, raw json.RawMessage, key string) T {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	var v T
	require.NoError(t, json.Unmarshal(m[key], &v))
	return v
}

func TestAPIRequiresToken(t *testing.T) {
	e := newAPI(t)

	w, env := e.do(http.MethodGet, "/api/schedules", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.CodeAuth, env.Code)

	w, _ = e.do(http.MethodGet, "/api/schedules", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = e.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIScheduleToLedgerFlow(t *testing.T) {
	e := newAPI(t)

	w, env := e.do(http.MethodPost, "/api/schedules", map[string]any{
		"contractId":  e.f.Contract.ID,
		"serviceType": "rent",
		"amount":      "1500.00",
		"dayOfMonth":  31,
	}, e.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sched := decode[models.PaymentSchedule](t, env.Data, "schedule")
	assert.Equal(t, "MXN", sched.Currency)
	assert.Equal(t, "agent-7", sched.CreatedBy)

	w, env = e.do(http.MethodPost, "/api/payments", map[string]any{
		"contractId":  e.f.Contract.ID,
		"scheduleId":  sched.ID,
		"serviceType": "rent",
		"amount":      "1500.00",
		"dueDate":     "2025-01-31",
	}, e.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	payment := decode[models.Payment](t, env.Data, "payment")

	// the same obligation again
	w, env = e.do(http.MethodPost, "/api/payments", map[string]any{
		"contractId":  e.f.Contract.ID,
		"scheduleId":  sched.ID,
		"serviceType": "rent",
		"amount":      "1500.00",
		"dueDate":     "2025-01-31",
	}, e.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, util.CodeConflict, env.Code)

	w, env = e.do(http.MethodPost, "/api/payments/"+payment.ID+"/confirm", map[string]any{
		"paidBy":           "Tomas Tenant",
		"paidDate":         "2025-01-30",
		"paymentReference": "SPEI-77",
		"generateNext":     true,
	}, e.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	next := decode[models.Payment](t, env.Data, "nextPayment")
	assert.Equal(t, "2025-02-28", next.DueDate.UTC().Format("2006-01-02"))
	tx := decode[models.FinancialTransaction](t, env.Data, "transaction")
	assert.Equal(t, models.CategoryRentIncome, tx.Category)

	w, _ = e.do(http.MethodDelete, "/api/payments/"+payment.ID, nil, e.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = e.do(http.MethodGet, "/api/ledger?q=spei", nil, e.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[int64](t, env.Data, "total"))

	w, env = e.do(http.MethodGet, "/api/ledger/summary", nil, e.token)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[summaryResp](t, env.Data, "summary")
	assert.Equal(t, "1500", sum.TotalInflow)
	assert.Equal(t, 1, sum.EntryCount)

	w, _ = e.do(http.MethodGet, "/api/ledger/export/csv", nil, e.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SPEI-77")

	w, _ = e.do(http.MethodGet, "/api/ledger/export/xlsx", nil, e.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, w.Body.Len())

	var audits int64
	require.NoError(t, e.db.Model(&models.AuditLog{}).Where("agency_id = ?", e.f.AgencyID).Count(&audits).Error)
	assert.EqualValues(t, 5, audits, "one row per mutating request")

	w, env = e.do(http.MethodGet, "/api/audit-logs?q=confirm", nil, e.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data, "items"), 1)
}

func TestAPITenantIsolation(t *testing.T) {
	e := newAPI(t)
	other, err := util.GenerateToken(testSecret, "test", "another-agency", "agent-9", "", time.Hour)
	require.NoError(t, err)

	w, env := e.do(http.MethodPost, "/api/schedules", map[string]any{
		"contractId":  e.f.Contract.ID,
		"serviceType": "water",
		"amount":      "200",
		"dayOfMonth":  10,
	}, e.token)
	require.Equal(t, http.StatusOK, w.Code)
	sched := decode[models.PaymentSchedule](t, env.Data, "schedule")

	w, env = e.do(http.MethodGet, "/api/schedules/"+sched.ID, nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, util.CodeNotFound, env.Code)

	w, _ = e.do(http.MethodPost, "/api/schedules", map[string]any{
		"contractId":  e.f.Contract.ID,
		"serviceType": "water",
		"amount":      "200",
		"dayOfMonth":  10,
	}, other)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIValidation(t *testing.T) {
	e := newAPI(t)

	w, env := e.do(http.MethodPost, "/api/schedules", map[string]any{
		"contractId":  e.f.Contract.ID,
		"serviceType": "rent",
		"amount":      "100",
		"dayOfMonth":  32,
	}, e.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.CodeInvalidParam, env.Code)

	w, _ = e.do(http.MethodGet, "/api/payments/upcoming?days=abc", nil, e.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(http.MethodPost, "/api/ledger/no-such-id/reconcile", nil, e.token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, path := range []string{
		"/api/payments?status=settled",
		"/api/payments?service_type=cable",
		"/api/contracts/" + e.f.Contract.ID + "/payments?status=settled",
		"/api/ledger?direction=sideways",
		"/api/ledger?status=void",
	} {
		w, env = e.do(http.MethodGet, path, nil, e.token)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, util.CodeInvalidParam, env.Code, path)
	}

	w, _ = e.do(http.MethodGet, "/api/payments?status=pending&service_type=rent", nil, e.token)
	assert.Equal(t, http.StatusOK, w.Code)
}
