package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/bankapi/internal/domain"
)

type WalletDTO struct {
	ID                    uuid.UUID       `json:"id" example:"6f1b1a52-3c7d-4f0e-9c0c-0b8f3b1d2e44"`
	Saving                decimal.Decimal `json:"saving" swaggertype:"string" example:"1000.00"`
	Checking              decimal.Decimal `json:"checking" swaggertype:"string" example:"250.50"`
	Currency              string          `json:"currency" example:"USD"`
	SavingAccountNumber   string          `json:"savingAccountNumber" example:"2377225624"`
	CheckingAccountNumber string          `json:"checkingAccountNumber" example:"4539148803"`
	UpdatedAt             time.Time       `json:"updatedAt" example:"2024-03-01T10:00:00Z"`
}

// NewWalletDTO returns nil for a nil wallet so it can be omitted from responses.
func NewWalletDTO(w *domain.Wallet) *WalletDTO {
	if w == nil {
		return nil
	}
	return &WalletDTO{
		ID:                    w.ID,
		Saving:                w.Saving,
		Checking:              w.Checking,
		Currency:              w.Currency,
		SavingAccountNumber:   w.SavingAccountNumber,
		CheckingAccountNumber: w.CheckingAccountNumber,
		UpdatedAt:             w.UpdatedAt,
	}
}

type FundWalletRequestDTO struct {
	Account string          `json:"account" validate:"required,oneof=saving checking" example:"saving"`
	Amount  decimal.Decimal `json:"amount" validate:"required,gt=0,money" swaggertype:"string" example:"500"`
}
