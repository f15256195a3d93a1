package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schooladmin/backend/services/admin-gateway/internal/http/middleware"
	"schooladmin/backend/services/admin-gateway/internal/models"
	"schooladmin/backend/services/admin-gateway/internal/reconcile"
	"schooladmin/backend/services/admin-gateway/internal/registry"
	"schooladmin/backend/services/admin-gateway/internal/service"
)

const admin = "admin-1"

type stubRegistry struct {
	sessions []models.Session
	selected map[string]models.Session
	reloads  int
}

func (s *stubRegistry) Sessions() []models.Session { return s.sessions }

func (s *stubRegistry) Selected(_ context.Context, user string) (models.Session, bool) {
	sess, ok := s.selected[user]
	return sess, ok
}

func (s *stubRegistry) Select(_ context.Context, user, id string) (models.Session, error) {
	for _, sess := range s.sessions {
		if sess.ID == id {
			if s.selected == nil {
				s.selected = map[string]models.Session{}
			}
			s.selected[user] = sess
			return sess, nil
		}
	}
	return models.Session{}, registry.ErrSessionNotFound
}

func (s *stubRegistry) Reload(context.Context) { s.reloads++ }

type stubFees struct {
	view    *service.StudentFeesView
	tx      *models.Transaction
	ensure  *service.EnsureResult
	err     error
	gotID    string
	gotAdmin string
	gotBody  service.PaymentInput
}

func (s *stubFees) StudentFees(_ context.Context, admin, id string) (*service.StudentFeesView, error) {
	s.gotAdmin, s.gotID = admin, id
	return s.view, s.err
}

func (s *stubFees) RecordPayment(_ context.Context, admin, id string, in service.PaymentInput) (*models.Transaction, error) {
	s.gotAdmin, s.gotID = admin, id
	s.gotBody = in
	return s.tx, s.err
}

func (s *stubFees) EnsureFeeStructure(_ context.Context, admin, id string) (*service.EnsureResult, error) {
	s.gotAdmin, s.gotID = admin, id
	return s.ensure, s.err
}

func serve(handler http.HandlerFunc, pattern, method, target, body string) *httptest.ResponseRecorder {
	return serveAs(handler, pattern, method, target, body, admin)
}

func serveAs(handler http.HandlerFunc, pattern, method, target, body, user string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(middleware.WithAuth(req.Context(), middleware.AuthContext{UserID: user, Role: "admin"}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSessionsList(t *testing.T) {
	reg := &stubRegistry{
		sessions: []models.Session{{ID: "1", Name: "2025-26"}},
		selected: map[string]models.Session{admin: {ID: "1", Name: "2025-26"}},
	}
	h := NewSessionsHandlers(reg, zap.NewNop())

	rec := serve(h.List, "/api/sessions", http.MethodGet, "/api/sessions", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":[{"id":"1","name":"2025-26"}],"selected":{"id":"1","name":"2025-26"}}`, rec.Body.String())
}

func TestSessionsReload(t *testing.T) {
	reg := &stubRegistry{}
	h := NewSessionsHandlers(reg, zap.NewNop())

	rec := serve(h.Reload, "/api/sessions/reload", http.MethodPost, "/api/sessions/reload", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, reg.reloads)
	assert.JSONEq(t, `{"sessions":[],"selected":null}`, rec.Body.String())
}

func TestSessionsSelect(t *testing.T) {
	reg := &stubRegistry{sessions: []models.Session{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}}
	h := NewSessionsHandlers(reg, zap.NewNop())

	rec := serve(h.Select, "/api/sessions/selected", http.MethodPut, "/api/sessions/selected", `{"id":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", reg.selected[admin].ID)

	rec = serve(h.Select, "/api/sessions/selected", http.MethodPut, "/api/sessions/selected", `{"id":"9"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h.Select, "/api/sessions/selected", http.MethodPut, "/api/sessions/selected", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionSelectionIsPerAdministrator(t *testing.T) {
	reg := &stubRegistry{sessions: []models.Session{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}}
	h := NewSessionsHandlers(reg, zap.NewNop())

	rec := serveAs(h.Select, "/api/sessions/selected", http.MethodPut, "/api/sessions/selected", `{"id":"2"}`, "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveAs(h.List, "/api/sessions", http.MethodGet, "/api/sessions", "", "bob")
	assert.JSONEq(t, `{"sessions":[{"id":"1","name":"A"},{"id":"2","name":"B"}],"selected":null}`, rec.Body.String())

	rec = serveAs(h.List, "/api/sessions", http.MethodGet, "/api/sessions", "", "alice")
	assert.JSONEq(t, `{"sessions":[{"id":"1","name":"A"},{"id":"2","name":"B"}],"selected":{"id":"2","name":"B"}}`, rec.Body.String())
}

func TestStudentFeesRendersReconciledView(t *testing.T) {
	fees := []models.Fee{{FeesID: "10", Amount: models.NewAmount(1000), PaymentStatus: models.FeeStatusPaid}}
	txs := []models.Transaction{{Amount: models.NewAmount(400), Status: "SUCCESS", Description: "Payment for Fee ID: 10", UserID: "7"}}
	stub := &stubFees{view: &service.StudentFeesView{
		Session:      models.Session{ID: "1", Name: "2025-26"},
		Summary:      reconcile.Reconcile(fees, txs),
		Transactions: txs,
	}}
	h := NewFeesHandlers(stub, zap.NewNop())

	rec := serve(h.StudentFees, "/api/students/{id}/fees", http.MethodGet, "/api/students/7/fees", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", stub.gotID)
	assert.Equal(t, admin, stub.gotAdmin)

	var body struct {
		Fees []struct {
			PaidAmount      float64 `json:"paidAmount"`
			RemainingAmount float64 `json:"remainingAmount"`
			Status          string  `json:"status"`
			ReportedStatus  string  `json:"reportedStatus"`
		} `json:"fees"`
		Totals struct {
			PaymentPercentage int `json:"paymentPercentage"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Fees, 1)
	assert.Equal(t, 400.0, body.Fees[0].PaidAmount)
	assert.Equal(t, 600.0, body.Fees[0].RemainingAmount)
	assert.Equal(t, "Partial", body.Fees[0].Status)
	assert.Equal(t, "PAID", body.Fees[0].ReportedStatus)
	assert.Equal(t, 40, body.Totals.PaymentPercentage)
}

func TestFeesErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantBody string
	}{
		{err: service.ErrNoSessionSelected, wantCode: http.StatusConflict, wantBody: `{"error":"no session selected"}`},
		{err: fmt.Errorf("%w: %w", service.ErrUpstream, context.DeadlineExceeded), wantCode: http.StatusBadGateway, wantBody: `{"error":"school backend unavailable","retryable":true}`},
		{err: reconcile.ErrInvalidAmount, wantCode: http.StatusUnprocessableEntity},
		{err: reconcile.ErrAmountExceedsRemaining, wantCode: http.StatusUnprocessableEntity},
		{err: service.ErrFeeNotFound, wantCode: http.StatusNotFound},
		{err: &service.ValidationError{Fields: map[string]string{"paymentMode": "this field is required"}}, wantCode: http.StatusUnprocessableEntity, wantBody: `{"error":"invalid payment","fields":{"paymentMode":"this field is required"}}`},
		{err: fmt.Errorf("surprise"), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewFeesHandlers(&stubFees{err: tt.err}, zap.NewNop())
			rec := serve(h.RecordPayment, "/api/students/{id}/payments", http.MethodPost, "/api/students/7/payments", `{"feesId":"10","amount":"5","paymentMode":"cash"}`)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRecordPaymentDecodesLenientAmount(t *testing.T) {
	stub := &stubFees{tx: &models.Transaction{TransactionID: "T-1", Amount: models.NewAmount(5)}}
	h := NewFeesHandlers(stub, zap.NewNop())

	rec := serve(h.RecordPayment, "/api/students/{id}/payments", http.MethodPost, "/api/students/7/payments", `{"feesId":"10","amount":"5","paymentMode":"cash"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decimal.NewFromInt(5).Equal(stub.gotBody.Amount.Decimal))
	assert.Equal(t, models.ID("10"), stub.gotBody.FeeID)

	rec = serve(h.RecordPayment, "/api/students/{id}/payments", http.MethodPost, "/api/students/7/payments", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnsureFees(t *testing.T) {
	stub := &stubFees{ensure: &service.EnsureResult{Created: true, Fees: []models.Fee{{FeesID: "11", Amount: models.NewAmount(10000)}}}}
	h := NewFeesHandlers(stub, zap.NewNop())

	rec := serve(h.EnsureFees, "/api/students/{id}/fees/ensure", http.MethodPost, "/api/students/7/fees/ensure", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	stub.ensure = &service.EnsureResult{Fees: stub.ensure.Fees}
	rec = serve(h.EnsureFees, "/api/students/{id}/fees/ensure", http.MethodPost, "/api/students/7/fees/ensure", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
