package models

// Session is an academic year or term that scopes classes, fees, attendance and transactions.
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
