package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"bookkeeping-backend/internal/auth"
	"bookkeeping-backend/internal/models"
	"bookkeeping-backend/internal/server"
	"bookkeeping-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	t     *testing.T
	app   *fiber.App
	db    *gorm.DB
	admin string
	clerk string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testutil.Config()
	db := testutil.DBWith(t, cfg)
	h := &harness{t: t, app: server.New(cfg, db, zap.NewNop()), db: db}
	h.admin = h.token(models.RoleAdmin, "admin@example.com")
	h.clerk = h.token(models.RoleBookkeeper, "clerk@example.com")
	return h
}

func (h *harness) token(role models.UserRole, email string) string {
	h.t.Helper()
	u := &models.User{Name: string(role), Email: email, PasswordHash: "x", Role: role}
	require.NoError(h.t, h.db.Create(u).Error)
	tok, err := auth.GenerateToken(testutil.JWTSecret, u)
	require.NoError(h.t, err)
	return tok
}

// do sends body as JSON and decodes a JSON response into out when given.
func (h *harness) do(method, path, token string, body any, out any) int {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAuthFlow(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.DBWith(t, cfg)
	h := &harness{t: t, app: server.New(cfg, db, zap.NewNop()), db: db}

	creds := map[string]string{"name": "Owner", "email": "Owner@Example.com", "password": "correct-horse"}
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/auth/register-admin", "", creds, nil))
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/auth/register-admin", "", creds, nil))

	var login struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "owner@example.com", "password": "correct-horse"}, &login))
	require.NotEmpty(t, login.Token)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "owner@example.com", "password": "wrong"}, nil))

	var me struct {
		Email string          `json:"email"`
		Role  models.UserRole `json:"role"`
	}
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/auth/me", login.Token, nil, &me))
	assert.Equal(t, "owner@example.com", me.Email)
	assert.Equal(t, models.RoleAdmin, me.Role)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/entities", "", nil, nil))
}

func TestPayrollFlow(t *testing.T) {
	h := newHarness(t)

	var ent struct {
		ID uint `json:"id"`
	}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/entities", h.clerk,
		map[string]string{"name": "Ravi", "email": "ravi@example.com", "phone": "555-0100"}, &ent))

	employee := testutil.RelationshipType(t, h.db, models.RelationshipEmployee)
	var rel struct {
		ID               uint   `json:"id"`
		RelationshipType string `json:"relationship_type"`
	}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/relationships", h.clerk,
		map[string]uint{"entity_id": ent.ID, "relationship_type_id": employee.ID}, &rel))
	assert.Equal(t, models.RelationshipEmployee, rel.RelationshipType)

	excavator := testutil.WorkType(t, h.db, "Excavator Operator")
	var wl struct {
		ID         uint    `json:"id"`
		DuePayment float64 `json:"due_payment"`
	}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/work-logs", h.clerk, map[string]any{
		"start_date": models.Today().Format(models.DateLayout), "work_type_id": excavator.ID,
		"relationship_id": rel.ID, "work_units": 8,
	}, &wl))
	assert.Equal(t, 4000.0, wl.DuePayment)

	var unpaid []map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/work-logs/unpaid/"+itoa(rel.ID), h.clerk, nil, &unpaid))
	require.Len(t, unpaid, 1)
	assert.Equal(t, 4000.0, unpaid[0]["due_payment"])
	assert.Equal(t, models.Today().Format(models.DateLayout), unpaid[0]["start_date"])

	var txn struct {
		Amount          float64 `json:"amount"`
		TransactionType string  `json:"transaction_type"`
		Counterparty    string  `json:"counterparty"`
	}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/payrolls", h.clerk,
		map[string]any{"relationship_id": rel.ID, "work_log_ids": []uint{wl.ID}}, &txn))
	assert.Equal(t, 4000.0, txn.Amount)
	assert.Equal(t, models.TransactionTypePayroll, txn.TransactionType)
	assert.Equal(t, "Ravi", txn.Counterparty)

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/payrolls", h.clerk,
		map[string]any{"relationship_id": rel.ID, "work_log_ids": []uint{wl.ID}}, nil))

	var summary struct {
		TransactionTypes []struct {
			Name  string  `json:"name"`
			Total float64 `json:"total"`
		} `json:"transaction_types"`
	}
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/dashboard", h.clerk, nil, &summary))
	require.NotEmpty(t, summary.TransactionTypes)
	assert.Equal(t, models.TransactionTypePayroll, summary.TransactionTypes[0].Name)
	assert.Equal(t, 4000.0, summary.TransactionTypes[0].Total)

	assert.EqualValues(t, 1, testutil.Count(t, h.db, &models.AuditLog{}, "action = ?", models.AuditActionSettle))
}

func TestDeleteGuardOverHTTP(t *testing.T) {
	h := newHarness(t)
	rel := testutil.SeedEmployee(t, h.db, "Ravi")
	path := "/api/entities/" + itoa(rel.EntityID)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, path+"/delete", h.clerk, nil, nil))

	var warn struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, path+"/delete", h.admin, nil, &warn))
	assert.Equal(t, "warning", warn.Status)
	assert.EqualValues(t, 1, warn.Count)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, path+"/force-delete", h.admin, nil, nil))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, h.clerk, nil, nil))
}

func TestErrorMapping(t *testing.T) {
	h := newHarness(t)

	body := map[string]string{"name": "Acme", "email": "acme@example.com", "phone": "1"}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/entities", h.clerk, body, nil))

	var errBody struct {
		Error string `json:"error"`
	}
	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/entities", h.clerk, body, &errBody))
	assert.Contains(t, errBody.Error, "already exists")

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/entities", h.clerk,
		map[string]string{"name": "No mail"}, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/entities/abc", h.clerk, nil, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet,
		"/api/dashboard?start_date=2024-02-01&end_date=2024-01-01", h.clerk, nil, nil))

	supplier := testutil.SeedSupplier(t, h.db, "Cement Co")
	cement := testutil.SeedSupplyType(t, h.db, "Cement", nil)
	require.NoError(t, h.db.Where("kind = ?", models.KindSupplyPayment).Delete(&models.TransactionType{}).Error)
	assert.Equal(t, http.StatusPreconditionFailed, h.do(http.MethodPost, "/api/supply-logs", h.clerk, map[string]any{
		"supplier_id": supplier.ID, "supply_type_id": cement.ID, "unit_price": 10, "units": 2, "paid": true,
	}, nil))
}

func TestDashboardFormPostAndExport(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard",
		strings.NewReader("start_date=2024-01-01&end_date=2024-01-31"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+h.clerk)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, "2024-01-01", summary.StartDate)
	assert.Equal(t, "2024-01-31", summary.EndDate)

	req = httptest.NewRequest(http.MethodGet, "/api/dashboard/export?start_date=2024-01-01", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+h.clerk)
	resp, err = h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "dashboard-2024-01-01.xlsx")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/api/entities", h.clerk, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "bookkeeping_http_request_duration_seconds")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
