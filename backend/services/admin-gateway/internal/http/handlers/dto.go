package handlers

import (
	"github.com/shopspring/decimal"

	"schooladmin/backend/services/admin-gateway/internal/models"
	"schooladmin/backend/services/admin-gateway/internal/reconcile"
	"schooladmin/backend/services/admin-gateway/internal/service"
)

type feeLineDTO struct {
	FeesID          models.ID        `json:"feesId"`
	Amount          models.Amount    `json:"amount"`
	PaidAmount      models.Amount    `json:"paidAmount"`
	RemainingAmount models.Amount    `json:"remainingAmount"`
	Status          reconcile.Status `json:"status"`
	ReportedStatus  string           `json:"reportedStatus,omitempty"`
	Description     string           `json:"description,omitempty"`
}

type totalsDTO struct {
	TotalFees         models.Amount `json:"totalFees"`
	TotalPaid         models.Amount `json:"totalPaid"`
	TotalRemaining    models.Amount `json:"totalRemaining"`
	PaymentPercentage int64         `json:"paymentPercentage"`
}

type feesViewDTO struct {
	Session      models.Session       `json:"session"`
	Student      *models.Student      `json:"student,omitempty"`
	Fees         []feeLineDTO         `json:"fees"`
	Transactions []models.Transaction `json:"transactions"`
	Totals       totalsDTO            `json:"totals"`
}

func money(d decimal.Decimal) models.Amount {
	return models.AmountOf(d.Round(2))
}

func newFeesViewDTO(v *service.StudentFeesView) feesViewDTO {
	out := feesViewDTO{
		Session:      v.Session,
		Student:      v.Student,
		Fees:         make([]feeLineDTO, 0, len(v.Summary.Fees)),
		Transactions: v.Transactions,
		Totals: totalsDTO{
			TotalFees:         money(v.Summary.Totals.TotalFees),
			TotalPaid:         money(v.Summary.Totals.TotalPaid),
			TotalRemaining:    money(v.Summary.Totals.TotalRemaining),
			PaymentPercentage: v.Summary.Totals.PaymentPercentage,
		},
	}
	if out.Transactions == nil {
		out.Transactions = []models.Transaction{}
	}
	for _, line := range v.Summary.Fees {
		out.Fees = append(out.Fees, feeLineDTO{
			FeesID:          line.Fee.FeesID,
			Amount:          money(line.Fee.Amount.Decimal),
			PaidAmount:      money(line.Paid),
			RemainingAmount: money(line.Remaining),
			Status:          line.Status,
			ReportedStatus:  line.Fee.PaymentStatus,
			Description:     line.Fee.Description,
		})
	}
	return out
}
