package models

// Server-reported fee payment states. They may be stale; the gateway derives its own.
const (
	FeeStatusUnpaid  = "UNPAID"
	FeeStatusPartial = "PARTIAL"
	FeeStatusPaid    = "PAID"
)

// Fee is a single fee obligation of one student.
type Fee struct {
	FeesID          ID     `json:"feesId"`
	Amount          Amount `json:"amount"`
	PaidAmount      Amount `json:"paidAmount"`
	RemainingAmount Amount `json:"remainingAmount"`
	PaymentStatus   string `json:"paymentStatus"`
	UserID          ID     `json:"userId"`
	SessionID       ID     `json:"sessionId,omitempty"`
	Description     string `json:"description,omitempty"`
}

// CreateFeeRequest is the body of POST /fees.
type CreateFeeRequest struct {
	UserID        string `json:"userId"`
	SessionID     string `json:"sessionId"`
	Amount        Amount `json:"amount"`
	PaymentStatus string `json:"paymentStatus"`
}
