package models

// Student is the subset of a backend user record the fee views need.
type Student struct {
	ID        ID     `json:"id"`
	UserID    ID     `json:"userId"`
	Name      string `json:"name"`
	ClassID   ID     `json:"classId"`
	ClassName string `json:"className"`
}

// Key returns the student's identifier.
func (s Student) Key() ID {
	return FirstID(s.UserID, s.ID)
}

// Class is a class offered in one session together with its fee.
type Class struct {
	ID        ID     `json:"id"`
	ClassID   ID     `json:"classId"`
	Name      string `json:"name"`
	ClassName string `json:"className"`
	FeeAmount Amount `json:"feeAmount"`
	Fees      Amount `json:"fees"`
}

// Key returns the class identifier.
func (c Class) Key() ID {
	return FirstID(c.ClassID, c.ID)
}

// Label returns the class display name.
func (c Class) Label() string {
	if c.ClassName != "" {
		return c.ClassName
	}
	return c.Name
}

// Fee returns the class fee, preferring feeAmount over fees.
func (c Class) Fee() Amount {
	if c.FeeAmount.IsPositive() {
		return c.FeeAmount
	}
	return c.Fees
}
