// Package reconcile derives what a student has actually paid per fee from the payment
// transactions, without trusting the paid/remaining/status fields cached on fee records.
package reconcile

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"schooladmin/backend/services/admin-gateway/internal/models"
)

// Status is the derived payment state of a fee.
type Status string

const (
	StatusPaid    Status = "Paid"
	StatusPartial Status = "Partial"
	StatusPending Status = "Pending"
)

var (
	// ErrInvalidAmount is returned for payments that are not a positive number.
	ErrInvalidAmount = errors.New("reconcile: amount must be a positive number")
	// ErrAmountExceedsRemaining is returned for payments larger than what is still owed.
	ErrAmountExceedsRemaining = errors.New("reconcile: amount exceeds remaining balance")
)

var hundred = decimal.NewFromInt(100)

// successStatuses is the one set of realized statuses, used for per-fee sums and totals alike.
var successStatuses = map[string]struct{}{
	"success":   {},
	"completed": {},
	"paid":      {},
}

// IsSuccessful reports whether a transaction status counts as realized money.
func IsSuccessful(status string) bool {
	_, ok := successStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Matches reports whether the transaction description references the fee id.
func Matches(fee models.Fee, tx models.Transaction) bool {
	id := fee.FeesID.String()
	if id == "" {
		return false
	}
	return strings.Contains(tx.Description, id)
}

// Reconciler computes paid amounts for one student's fees and transactions.
// Both slices must already be scoped to that student.
type Reconciler struct {
	fees         []models.Fee
	transactions []models.Transaction

	totalFees decimal.Decimal
	totalPaid decimal.Decimal
}

// New precomputes the totals used by the per-fee apportionment.
func New(fees []models.Fee, transactions []models.Transaction) *Reconciler {
	r := &Reconciler{
		fees:         fees,
		transactions: transactions,
	}
	for _, f := range fees {
		r.totalFees = r.totalFees.Add(f.Amount.Decimal)
	}
	for _, tx := range transactions {
		if IsSuccessful(tx.Status) {
			r.totalPaid = r.totalPaid.Add(tx.Amount.Decimal)
		}
	}
	return r
}

// PaidAmountFor sums the successful transactions whose description names the fee.
// A fee no transaction names gets its share of all realized payments, proportional
// to its amount.
func (r *Reconciler) PaidAmountFor(fee models.Fee) decimal.Decimal {
	var (
		matched bool
		paid    decimal.Decimal
	)
	for _, tx := range r.transactions {
		if !Matches(fee, tx) {
			continue
		}
		matched = true
		if IsSuccessful(tx.Status) {
			paid = paid.Add(tx.Amount.Decimal)
		}
	}
	if matched {
		return paid
	}

	if !r.totalFees.IsPositive() {
		return decimal.Zero
	}
	return fee.Amount.Mul(r.totalPaid).Div(r.totalFees)
}

// RemainingFor is the unpaid part of the fee, never below zero.
func (r *Reconciler) RemainingFor(fee models.Fee) decimal.Decimal {
	return nonNegative(fee.Amount.Sub(r.PaidAmountFor(fee)))
}

// StatusFor classifies the fee from its computed paid amount.
func (r *Reconciler) StatusFor(fee models.Fee) Status {
	return statusOf(fee.Amount.Decimal, r.PaidAmountFor(fee))
}

// Totals aggregates over every fee and realized transaction.
func (r *Reconciler) Totals() Totals {
	t := Totals{
		TotalFees:      r.totalFees,
		TotalPaid:      r.totalPaid,
		TotalRemaining: nonNegative(r.totalFees.Sub(r.totalPaid)),
	}
	if r.totalFees.IsPositive() {
		t.PaymentPercentage = r.totalPaid.Mul(hundred).Div(r.totalFees).Round(0).IntPart()
	}
	return t
}

// Summary returns the per-fee lines in input order plus the totals.
func (r *Reconciler) Summary() Summary {
	lines := make([]FeeLine, 0, len(r.fees))
	for _, f := range r.fees {
		paid := r.PaidAmountFor(f)
		lines = append(lines, FeeLine{
			Fee:       f,
			Paid:      paid,
			Remaining: nonNegative(f.Amount.Sub(paid)),
			Status:    statusOf(f.Amount.Decimal, paid),
		})
	}
	return Summary{Fees: lines, Totals: r.Totals()}
}

// Find returns the fee with the given id.
func (r *Reconciler) Find(feeID models.ID) (models.Fee, bool) {
	for _, f := range r.fees {
		if f.FeesID == feeID {
			return f, true
		}
	}
	return models.Fee{}, false
}

// ValidatePayment accepts 0 < amount <= remaining.
func ValidatePayment(amount, remaining decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(remaining) {
		return ErrAmountExceedsRemaining
	}
	return nil
}

func statusOf(amount, paid decimal.Decimal) Status {
	switch {
	case paid.GreaterThanOrEqual(amount):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusPending
	}
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
