package reconcile

import (
	"github.com/shopspring/decimal"

	"schooladmin/backend/services/admin-gateway/internal/models"
)

// FeeLine is one fee with its derived payment state.
type FeeLine struct {
	Fee       models.Fee
	Paid      decimal.Decimal
	Remaining decimal.Decimal
	Status    Status
}

// Totals aggregates a student's fees and realized payments.
type Totals struct {
	TotalFees         decimal.Decimal
	TotalPaid         decimal.Decimal
	TotalRemaining    decimal.Decimal
	PaymentPercentage int64
}

// Summary is the full reconciliation of one student.
type Summary struct {
	Fees   []FeeLine
	Totals Totals
}

// Reconcile is shorthand for New(fees, transactions).Summary().
func Reconcile(fees []models.Fee, transactions []models.Transaction) Summary {
	return New(fees, transactions).Summary()
}

// ForUser keeps the transactions that belong to the given student.
func ForUser(transactions []models.Transaction, userID models.ID) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}
