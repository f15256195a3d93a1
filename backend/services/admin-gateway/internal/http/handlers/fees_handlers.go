package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"schooladmin/backend/services/admin-gateway/internal/models"
	"schooladmin/backend/services/admin-gateway/internal/reconcile"
	"schooladmin/backend/services/admin-gateway/internal/service"
)

// FeesService is the fee workflow used by the handlers.
type FeesService interface {
	StudentFees(ctx context.Context, admin, studentID string) (*service.StudentFeesView, error)
	RecordPayment(ctx context.Context, admin, studentID string, in service.PaymentInput) (*models.Transaction, error)
	EnsureFeeStructure(ctx context.Context, admin, studentID string) (*service.EnsureResult, error)
}

// FeesHandlers serves the fee detail, payment and fee setup endpoints of one student.
type FeesHandlers struct {
	svc    FeesService
	logger *zap.Logger
}

// NewFeesHandlers returns handler.
func NewFeesHandlers(svc FeesService, logger *zap.Logger) *FeesHandlers {
	return &FeesHandlers{svc: svc, logger: logger}
}

// StudentFees handles GET /api/students/{id}/fees.
func (h *FeesHandlers) StudentFees(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDFrom(w, r)
	if !ok {
		return
	}
	view, err := h.svc.StudentFees(r.Context(), adminID(r), studentID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFeesViewDTO(view))
}

// RecordPayment handles POST /api/students/{id}/payments.
func (h *FeesHandlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDFrom(w, r)
	if !ok {
		return
	}
	var in service.PaymentInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	tx, err := h.svc.RecordPayment(r.Context(), adminID(r), studentID, in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"transaction": tx})
}

// EnsureFees handles POST /api/students/{id}/fees/ensure.
func (h *FeesHandlers) EnsureFees(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDFrom(w, r)
	if !ok {
		return
	}
	res, err := h.svc.EnsureFeeStructure(r.Context(), adminID(r), studentID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{"created": res.Created, "fees": res.Fees})
}

func studentIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "student id is required")
		return "", false
	}
	return id, true
}

func (h *FeesHandlers) writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNoSessionSelected):
		writeError(w, http.StatusConflict, "no session selected")
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"error": "invalid payment", "fields": verr.Fields})
	case errors.Is(err, reconcile.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, "amount must be a positive number")
	case errors.Is(err, reconcile.ErrAmountExceedsRemaining):
		writeError(w, http.StatusUnprocessableEntity, "amount exceeds the remaining balance")
	case errors.Is(err, service.ErrFeeNotFound):
		writeError(w, http.StatusNotFound, "fee not found")
	case errors.Is(err, service.ErrUpstream):
		writeRetryable(w, http.StatusBadGateway, "school backend unavailable")
	default:
		h.logger.Error("fees request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
