package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/service/loanservice"
)

type CreateLoanRequestDTO struct {
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0,money" swaggertype:"string" example:"5000"`
	Duration      int             `json:"duration" validate:"required,gt=0" example:"12"`
	RepaymentPlan string          `json:"repaymentPlan" validate:"required" example:"monthly"`
	Purpose       string          `json:"purpose" validate:"required" example:"car purchase"`
}

func (r CreateLoanRequestDTO) Loan() loanservice.LoanRequest {
	return loanservice.LoanRequest{
		Amount:        r.Amount,
		Duration:      r.Duration,
		RepaymentPlan: r.RepaymentPlan,
		Purpose:       r.Purpose,
	}
}

type LoanDTO struct {
	ID             uuid.UUID       `json:"id" example:"3d6e9a1c-5b2f-4c8a-9e7d-1f2a3b4c5d6e"`
	Amount         decimal.Decimal `json:"amount" swaggertype:"string" example:"5000"`
	TotalPayable   decimal.Decimal `json:"totalPayable" swaggertype:"string" example:"0"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment" swaggertype:"string" example:"0"`
	Duration       int             `json:"duration" example:"12"`
	RepaymentPlan  string          `json:"repaymentPlan" example:"monthly"`
	Purpose        string          `json:"purpose" example:"car purchase"`
	Status         string          `json:"status" example:"pending"`
	CreatedAt      time.Time       `json:"createdAt" example:"2024-03-01T10:00:00Z"`
	User           *OwnerDTO       `json:"user,omitempty"`
}

func NewLoanDTO(l *domain.Loan) LoanDTO {
	return LoanDTO{
		ID:             l.ID,
		Amount:         l.Amount,
		TotalPayable:   l.TotalPayable,
		MonthlyPayment: l.MonthlyPayment,
		Duration:       l.Duration,
		RepaymentPlan:  l.RepaymentPlan,
		Purpose:        l.Purpose,
		Status:         string(l.Status),
		CreatedAt:      l.CreatedAt,
		User:           newOwnerDTO(l.Owner),
	}
}

func NewLoanDTOs(loans []domain.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, NewLoanDTO(&loans[i]))
	}
	return out
}
