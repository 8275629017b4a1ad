package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/service/transactionservice"
)

const (
	TypeTransfer = "transfer"
	TypeDeposit  = "deposit"
)

// CreateTransactionRequestDTO carries either a transfer or a deposit, selected by Type.
type CreateTransactionRequestDTO struct {
	Type    string          `json:"type" validate:"required,oneof=transfer deposit" example:"transfer"`
	Account string          `json:"account" example:"saving"`
	Amount  decimal.Decimal `json:"amount" validate:"required,gt=0,money" swaggertype:"string" example:"100"`

	Pin             string `json:"pin" validate:"required_if=Type transfer" example:"1234"`
	TransferType    string `json:"transferType" validate:"required_if=Type transfer" example:"internal transfer"`
	BeneficiaryName string `json:"beneficiaryName" example:"John Doe"`
	BeneficiaryAcct string `json:"beneficiaryAcct" example:"2377225624"`
	BeneficiaryBank string `json:"beneficiaryBank" example:"Bank of Example"`
	SwiftCode       string `json:"swiftCode" example:"EXAMGB2L"`
	RoutingNumber   string `json:"routingNumber" example:"021000021"`
	Description     string `json:"description" example:"rent"`
	BankAddress     string `json:"bankAddress" example:"1 Bank St"`

	DepositType    string `json:"depositType" validate:"required_if=Type deposit" example:"card deposit"`
	CardType       string `json:"cardType" example:"visa"`
	CardHolderName string `json:"cardHolderName" example:"Jane Doe"`
	CardNumber     string `json:"cardNumber" example:"4242424242424242"`
	CardCvv        string `json:"cardCvv" example:"123"`
	CardExpiry     string `json:"cardExpiry" example:"12/29"`
	Coin           string `json:"coin" example:"BTC"`
	WalletAddress  string `json:"walletAddress" example:"bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"`
}

func (r CreateTransactionRequestDTO) Transfer() transactionservice.TransferRequest {
	return transactionservice.TransferRequest{
		Pin:             r.Pin,
		TransferType:    domain.TransferType(r.TransferType),
		Account:         domain.Account(r.Account),
		Amount:          r.Amount,
		BeneficiaryName: r.BeneficiaryName,
		BeneficiaryAcct: r.BeneficiaryAcct,
		BeneficiaryBank: r.BeneficiaryBank,
		SwiftCode:       r.SwiftCode,
		RoutingNumber:   r.RoutingNumber,
		Description:     r.Description,
		BankAddress:     r.BankAddress,
	}
}

func (r CreateTransactionRequestDTO) Deposit() transactionservice.DepositRequest {
	return transactionservice.DepositRequest{
		DepositType:    domain.DepositType(r.DepositType),
		Account:        domain.Account(r.Account),
		Amount:         r.Amount,
		CardType:       r.CardType,
		CardHolderName: r.CardHolderName,
		CardNumber:     r.CardNumber,
		CardCvv:        r.CardCvv,
		CardExpiry:     r.CardExpiry,
		Coin:           r.Coin,
		WalletAddress:  r.WalletAddress,
	}
}

type OwnerDTO struct {
	ID       uuid.UUID `json:"id" example:"0b5c3f3e-8a4e-4a8e-9c39-3f0f6a9d1e11"`
	Fullname string    `json:"fullname" example:"Jane Doe"`
	Email    string    `json:"email" example:"jane@example.com"`
	Photo    string    `json:"photo,omitempty" example:"user-1.jpeg"`
}

func newOwnerDTO(o *domain.Owner) *OwnerDTO {
	if o == nil {
		return nil
	}
	return &OwnerDTO{ID: o.ID, Fullname: o.Fullname, Email: o.Email, Photo: o.Photo}
}

// RecordDTO is one entry of the transaction history: a transfer or a deposit.
type RecordDTO struct {
	Type      string          `json:"type" example:"transfer"`
	ID        uuid.UUID       `json:"id" example:"9a0f2a6c-0d1e-4f59-8d57-7f2a1b3c4d5e"`
	Reference string          `json:"reference" example:"tr4821931234"`
	Status    string          `json:"status" example:"pending"`
	Account   string          `json:"account" example:"saving"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"100"`
	CreatedAt time.Time       `json:"createdAt" example:"2024-03-01T10:00:00Z"`
	User      *OwnerDTO       `json:"user,omitempty"`

	Fee             *decimal.Decimal `json:"fee,omitempty" swaggertype:"string" example:"1"`
	TransferType    string           `json:"transferType,omitempty" example:"internal transfer"`
	BeneficiaryName string           `json:"beneficiaryName,omitempty" example:"John Doe"`
	BeneficiaryAcct string           `json:"beneficiaryAcct,omitempty" example:"2377225624"`
	BeneficiaryBank string           `json:"beneficiaryBank,omitempty" example:"Bank of Example"`
	Description     string           `json:"description,omitempty" example:"rent"`

	DepositType   string `json:"depositType,omitempty" example:"card deposit"`
	CardType      string `json:"cardType,omitempty" example:"visa"`
	CardLast4     string `json:"cardLast4,omitempty" example:"4242"`
	Coin          string `json:"coin,omitempty" example:"BTC"`
	WalletAddress string `json:"walletAddress,omitempty" example:"bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"`
}

func NewTransferDTO(t *domain.Transaction) RecordDTO {
	fee := t.Fee
	return RecordDTO{
		Type:            TypeTransfer,
		ID:              t.ID,
		Reference:       t.Reference,
		Status:          string(t.Status),
		Account:         string(t.Account),
		Amount:          t.Amount,
		CreatedAt:       t.CreatedAt,
		User:            newOwnerDTO(t.Owner),
		Fee:             &fee,
		TransferType:    string(t.TransferType),
		BeneficiaryName: t.BeneficiaryName,
		BeneficiaryAcct: t.BeneficiaryAcct,
		BeneficiaryBank: t.BeneficiaryBank,
		Description:     t.Description,
	}
}

func NewDepositDTO(d *domain.Deposit) RecordDTO {
	return RecordDTO{
		Type:          TypeDeposit,
		ID:            d.ID,
		Reference:     d.Reference,
		Status:        string(d.Status),
		Account:       string(d.Account),
		Amount:        d.Amount,
		CreatedAt:     d.CreatedAt,
		User:          newOwnerDTO(d.Owner),
		DepositType:   string(d.DepositType),
		CardType:      d.CardType,
		CardLast4:     d.CardLast4,
		Coin:          d.Coin,
		WalletAddress: d.WalletAddress,
	}
}

func NewRecordDTO(r domain.Record) RecordDTO {
	if r.Kind == domain.KindDeposit && r.Deposit != nil {
		return NewDepositDTO(r.Deposit)
	}
	return NewTransferDTO(r.Transaction)
}

func NewRecordDTOs(records []domain.Record) []RecordDTO {
	out := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, NewRecordDTO(r))
	}
	return out
}

func NewDepositDTOs(deposits []domain.Deposit) []RecordDTO {
	out := make([]RecordDTO, 0, len(deposits))
	for i := range deposits {
		out = append(out, NewDepositDTO(&deposits[i]))
	}
	return out
}

// ListResponseDTO wraps a listing with its size.
type ListResponseDTO struct {
	Results int `json:"results" example:"2"`
	Items   any `json:"items"`
}
