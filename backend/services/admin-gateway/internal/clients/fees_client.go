package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"schooladmin/backend/services/admin-gateway/internal/models"
)

// FeesClient reads and creates fee records and payment transactions.
type FeesClient struct {
	base *BaseClient
}

// NewFeesClient returns client.
func NewFeesClient(base *BaseClient) *FeesClient {
	return &FeesClient{base: base}
}

// ListFees returns the student's fee records in the session.
func (c *FeesClient) ListFees(ctx context.Context, userID, sessionID string) ([]models.Fee, error) {
	path := "/fees/user/" + url.PathEscape(userID)
	if sessionID != "" {
		path += "?" + url.Values{"sessionId": {sessionID}}.Encode()
	}
	var fees []models.Fee
	if err := c.base.getList(ctx, path, &fees); err != nil {
		return nil, err
	}
	return fees, nil
}

// CreateFee creates a fee record.
func (c *FeesClient) CreateFee(ctx context.Context, req models.CreateFeeRequest) (*models.Fee, error) {
	var raw json.RawMessage
	if err := c.base.DoJSON(ctx, http.MethodPost, "/fees", req, &raw); err != nil {
		return nil, err
	}
	fee := models.Fee{UserID: models.ID(req.UserID), SessionID: models.ID(req.SessionID), Amount: req.Amount}
	if len(raw) > 0 {
		if err := json.Unmarshal(unwrapObject(raw), &fee); err != nil {
			return nil, fmt.Errorf("clients: decode POST /fees: %w", err)
		}
	}
	return &fee, nil
}

// ListTransactions returns every transaction of the session, across all students.
func (c *FeesClient) ListTransactions(ctx context.Context, sessionID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := c.base.getList(ctx, "/transactions/session/"+url.PathEscape(sessionID), &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateTransaction records one payment.
func (c *FeesClient) CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error) {
	var raw json.RawMessage
	if err := c.base.DoJSON(ctx, http.MethodPost, "/transactions", req, &raw); err != nil {
		return nil, err
	}
	tx := models.Transaction{
		Amount:      req.Amount,
		PaymentMode: req.PaymentMode,
		Status:      req.Status,
		PaymentDate: req.PaymentDate,
		Description: req.Description,
		Remarks:     req.Remarks,
		UserID:      models.ID(req.UserID),
		SessionID:   models.ID(req.SessionID),
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(unwrapObject(raw), &tx); err != nil {
			return nil, fmt.Errorf("clients: decode POST /transactions: %w", err)
		}
	}
	return &tx, nil
}
