package transactionservice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/pkg/validate"
)

const minWalletAddressLength = 10

type TransferRequest struct {
	Pin             string              `json:"pin"`
	TransferType    domain.TransferType `json:"transferType"`
	Account         domain.Account      `json:"account"`
	Amount          decimal.Decimal     `json:"amount" validate:"gt=0,money"`
	BeneficiaryName string              `json:"beneficiaryName" validate:"required_if=TransferType 'wire transfer',required_if=TransferType 'local transfer'"`
	BeneficiaryAcct string              `json:"beneficiaryAcct" validate:"required"`
	BeneficiaryBank string              `json:"beneficiaryBank" validate:"required_if=TransferType 'wire transfer',required_if=TransferType 'local transfer'"`
	SwiftCode       string              `json:"swiftCode" validate:"required_if=TransferType 'wire transfer'"`
	RoutingNumber   string              `json:"routingNumber" validate:"required_if=TransferType 'wire transfer',required_if=TransferType 'local transfer'"`
	Description     string              `json:"description"`
	BankAddress     string              `json:"bankAddress"`
}

// fieldErrors runs the validate tags of r and returns the collected field
// messages, ready for further checks.
func fieldErrors(r any) (*domain.ValidationError, error) {
	verr := domain.NewValidationError()
	if err := validate.Struct(r); err != nil && !errors.As(err, &verr) {
		return nil, err
	}
	return verr, nil
}

// validate enforces the fields each transfer type needs.
func (r TransferRequest) validate() error {
	verr, err := fieldErrors(r)
	if err != nil {
		return err
	}

	switch r.TransferType {
	case domain.TransferWire, domain.TransferLocal:
	case domain.TransferInternal:
		if r.BeneficiaryAcct != "" && !validate.IsLuna(r.BeneficiaryAcct) {
			verr.Add("beneficiaryAcct", "beneficiary account number is invalid")
		}
	default:
		verr.Add("transferType", fmt.Sprintf("transferType must be one of: %s, %s, %s",
			domain.TransferInternal, domain.TransferWire, domain.TransferLocal))
	}
	return verr.OrNil()
}

func (r TransferRequest) transaction(userID uuid.UUID, account domain.Account, fee decimal.Decimal) *domain.Transaction {
	return &domain.Transaction{
		UserID:          userID,
		TransferType:    r.TransferType,
		Account:         account,
		Amount:          r.Amount,
		Fee:             fee,
		BeneficiaryName: r.BeneficiaryName,
		BeneficiaryAcct: r.BeneficiaryAcct,
		BeneficiaryBank: r.BeneficiaryBank,
		SwiftCode:       r.SwiftCode,
		RoutingNumber:   r.RoutingNumber,
		Description:     r.Description,
		BankAddress:     r.BankAddress,
		Status:          domain.TxStatusPending,
	}
}

type DepositRequest struct {
	DepositType    domain.DepositType `json:"depositType"`
	Account        domain.Account     `json:"account"`
	Amount         decimal.Decimal    `json:"amount" validate:"money"`
	CardType       string             `json:"cardType" validate:"required_if=DepositType 'card deposit'"`
	CardHolderName string             `json:"cardHolderName" validate:"required_if=DepositType 'card deposit'"`
	CardNumber     string             `json:"cardNumber" validate:"required_if=DepositType 'card deposit'"`
	CardCvv        string             `json:"cardCvv" validate:"required_if=DepositType 'card deposit'"`
	CardExpiry     string             `json:"cardExpiry" validate:"required_if=DepositType 'card deposit'"`
	Coin           string             `json:"coin" validate:"required_if=DepositType 'crypto deposit'"`
	WalletAddress  string             `json:"walletAddress" validate:"required_if=DepositType 'crypto deposit'"`
}

// deposit validates the payment method and builds the pending record.
// The card number and CVV never leave this function; only the last four digits are kept.
func (r DepositRequest) deposit(userID uuid.UUID) (*domain.Deposit, error) {
	verr, err := fieldErrors(r)
	if err != nil {
		return nil, err
	}
	if _, rejected := verr.Fields["amount"]; !rejected && r.Amount.LessThan(domain.MinDepositAmount) {
		verr.Add("amount", "minimum deposit amount is "+domain.MinDepositAmount.String())
	}

	d := &domain.Deposit{
		UserID:      userID,
		DepositType: r.DepositType,
		Amount:      r.Amount,
		Status:      domain.TxStatusPending,
	}
	switch r.DepositType {
	case domain.DepositCard:
		if r.Account == "" {
			verr.Add("account", "Please specify account to deposit fund.")
		}
		d.CardType = r.CardType
		d.CardHolderName = r.CardHolderName
		d.CardExpiry = r.CardExpiry
		d.Account = r.Account
	case domain.DepositCrypto:
		if r.WalletAddress != "" && len(strings.TrimSpace(r.WalletAddress)) < minWalletAddressLength {
			verr.Add("walletAddress", fmt.Sprintf("walletAddress must be at least %d characters", minWalletAddressLength))
		}
		d.Coin = r.Coin
		d.WalletAddress = r.WalletAddress
		d.Account = r.Account
		if d.Account == "" {
			d.Account = domain.AccountSaving
		}
	default:
		verr.Add("depositType", fmt.Sprintf("depositType must be one of: %s, %s", domain.DepositCard, domain.DepositCrypto))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if r.DepositType == domain.DepositCard {
		last4, err := cardLast4(r.CardNumber)
		if err != nil {
			return nil, err
		}
		d.CardLast4 = last4
	}
	account, err := domain.ParseAccount(string(d.Account))
	if err != nil {
		return nil, err
	}
	d.Account = account
	return d, nil
}

// cardLast4 accepts only ASCII digits in the final four characters.
func cardLast4(number string) (string, error) {
	digits := []rune(strings.ReplaceAll(strings.TrimSpace(number), " ", ""))
	if len(digits) < 4 {
		return "", fmt.Errorf("%w: invalid card number", domain.ErrInvalidArgument)
	}
	last4 := digits[len(digits)-4:]
	for _, c := range last4 {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: card number must end with 4 digits", domain.ErrInvalidArgument)
		}
	}
	return string(last4), nil
}
