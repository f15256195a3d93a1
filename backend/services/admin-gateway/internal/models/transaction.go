package models

// Transaction is a payment event recorded by the backend.
type Transaction struct {
	ID            ID     `json:"id,omitempty"`
	TransactionID ID     `json:"transactionId,omitempty"`
	Amount        Amount `json:"amount"`
	PaymentMode   string `json:"paymentMode"`
	Status        string `json:"status"`
	PaymentDate   string `json:"paymentDate"`
	Description   string `json:"description"`
	Remarks       string `json:"remarks,omitempty"`
	UserID        ID     `json:"userId"`
	SessionID     ID     `json:"sessionId,omitempty"`
}

// Key returns whichever identifier the backend filled in.
func (t Transaction) Key() ID {
	return FirstID(t.TransactionID, t.ID)
}

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	UserID      string `json:"userId"`
	SessionID   string `json:"sessionId"`
	Amount      Amount `json:"amount"`
	PaymentMode string `json:"paymentMode"`
	Status      string `json:"status"`
	PaymentDate string `json:"paymentDate"`
	Description string `json:"description"`
	Remarks     string `json:"remarks,omitempty"`
}
