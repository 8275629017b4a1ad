package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ParseID parses a record identifier taken from a request path.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id: %s", ErrInvalidArgument, s)
	}
	return id, nil
}

type NextOfKin struct {
	Name         string `db:"next_kin_name"`
	Email        string `db:"next_kin_email"`
	Phone        string `db:"next_kin_phone"`
	Relationship string `db:"next_kin_relationship"`
	Address      string `db:"next_kin_address"`
}

type User struct {
	ID               uuid.UUID  `db:"id"`
	Fullname         string     `db:"fullname"`
	Email            string     `db:"email"`
	Phone            string     `db:"phone"`
	DOB              time.Time  `db:"dob"`
	Gender           Gender     `db:"gender"`
	Occupation       string     `db:"occupation"`
	Country          string     `db:"country"`
	City             string     `db:"city"`
	Zipcode          string     `db:"zipcode"`
	Address          string     `db:"address"`
	NextOfKin        NextOfKin  `db:"-"`
	Currency         string     `db:"currency"`
	Photo            string     `db:"photo"`
	PassportPhoto    string     `db:"passport_photo"`
	IdentityDocument string     `db:"identity_document"`
	PasswordHash     string     `db:"password_hash"`
	PinHash          string     `db:"pin_hash"`
	KeepSignedIn     bool       `db:"keep_signed_in"`
	Role             Role       `db:"role"`
	Status           UserStatus `db:"status"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// ProfileUpdate carries the fields a user may change on their own profile.
// A nil field is left as stored.
type ProfileUpdate struct {
	Fullname *string
	Email    *string
	Phone    *string
	Gender   *string
	Photo    *string
}

func (p ProfileUpdate) Empty() bool {
	return p.Fullname == nil && p.Email == nil && p.Phone == nil && p.Gender == nil && p.Photo == nil
}

// Owner is the requester identity attached to records in admin listings.
type Owner struct {
	ID       uuid.UUID `db:"id"`
	Fullname string    `db:"fullname"`
	Email    string    `db:"email"`
	Phone    string    `db:"phone"`
	Photo    string    `db:"photo"`
}

type Wallet struct {
	ID                    uuid.UUID       `db:"id"`
	UserID                uuid.UUID       `db:"user_id"`
	Saving                decimal.Decimal `db:"saving"`
	Checking              decimal.Decimal `db:"checking"`
	Currency              string          `db:"currency"`
	SavingAccountNumber   string          `db:"saving_account_number"`
	CheckingAccountNumber string          `db:"checking_account_number"`
	CreatedAt             time.Time       `db:"created_at"`
	UpdatedAt             time.Time       `db:"updated_at"`
}

// Balance returns the current amount held in the named account.
func (w *Wallet) Balance(account Account) (decimal.Decimal, error) {
	switch account {
	case AccountSaving:
		return w.Saving, nil
	case AccountChecking:
		return w.Checking, nil
	default:
		_, err := ParseAccount(string(account))
		return decimal.Zero, err
	}
}

// Transaction is a transfer request. Amount and Fee never change after creation.
type Transaction struct {
	ID              uuid.UUID       `db:"id"`
	UserID          uuid.UUID       `db:"user_id"`
	TransferType    TransferType    `db:"transfer_type"`
	Account         Account         `db:"account"`
	Amount          decimal.Decimal `db:"amount"`
	Fee             decimal.Decimal `db:"fee"`
	BeneficiaryName string          `db:"beneficiary_name"`
	BeneficiaryAcct string          `db:"beneficiary_acct"`
	BeneficiaryBank string          `db:"beneficiary_bank"`
	SwiftCode       string          `db:"swift_code"`
	RoutingNumber   string          `db:"routing_number"`
	Description     string          `db:"description"`
	BankAddress     string          `db:"bank_address"`
	Status          TxStatus        `db:"status"`
	Reference       string          `db:"reference"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
	Owner           *Owner          `db:"-"`
}

// Total is the amount debited from the wallet on approval.
func (t *Transaction) Total() decimal.Decimal {
	return t.Amount.Add(t.Fee)
}

type Deposit struct {
	ID             uuid.UUID       `db:"id"`
	UserID         uuid.UUID       `db:"user_id"`
	DepositType    DepositType     `db:"deposit_type"`
	Account        Account         `db:"account"`
	Amount         decimal.Decimal `db:"amount"`
	CardType       string          `db:"card_type"`
	CardHolderName string          `db:"card_holder_name"`
	CardLast4      string          `db:"card_last4"`
	CardExpiry     string          `db:"card_expiry"`
	Coin           string          `db:"coin"`
	WalletAddress  string          `db:"wallet_address"`
	Status         TxStatus        `db:"status"`
	Reference      string          `db:"reference"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	Owner          *Owner          `db:"-"`
}

type Loan struct {
	ID             uuid.UUID       `db:"id"`
	UserID         uuid.UUID       `db:"user_id"`
	Amount         decimal.Decimal `db:"amount"`
	TotalPayable   decimal.Decimal `db:"total_payable"`
	MonthlyPayment decimal.Decimal `db:"monthly_payment"`
	Duration       int             `db:"duration"`
	RepaymentPlan  string          `db:"repayment_plan"`
	Purpose        string          `db:"purpose"`
	Status         LoanStatus      `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	Owner          *Owner          `db:"-"`
}

// RecordFilter scopes a listing. A nil UserID means every user; Limit 0 means no limit.
type RecordFilter struct {
	UserID    *uuid.UUID
	Limit     int
	WithOwner bool
}

// Record is one entry of the merged transfer/deposit history.
type Record struct {
	Kind        RecordKind
	Transaction *Transaction
	Deposit     *Deposit
}

func (r Record) CreatedAt() time.Time {
	if r.Kind == KindDeposit && r.Deposit != nil {
		return r.Deposit.CreatedAt
	}
	if r.Transaction != nil {
		return r.Transaction.CreatedAt
	}
	return time.Time{}
}

func (r Record) Reference() string {
	if r.Kind == KindDeposit && r.Deposit != nil {
		return r.Deposit.Reference
	}
	if r.Transaction != nil {
		return r.Transaction.Reference
	}
	return ""
}

func (r Record) Resolvable() Resolvable {
	if r.Kind == KindDeposit && r.Deposit != nil {
		return r.Deposit.Resolvable()
	}
	if r.Transaction != nil {
		return r.Transaction.Resolvable()
	}
	return Resolvable{Kind: r.Kind}
}

// SetStatus mirrors a stored status change onto the wrapped record.
func (r Record) SetStatus(status TxStatus) {
	if r.Deposit != nil {
		r.Deposit.Status = status
	}
	if r.Transaction != nil {
		r.Transaction.Status = status
	}
}

// Resolvable is the view of a transfer or deposit the resolution engine works on.
type Resolvable struct {
	Kind    RecordKind
	ID      uuid.UUID
	UserID  uuid.UUID
	Account Account
	Amount  decimal.Decimal
	Fee     decimal.Decimal
	Status  TxStatus
}

func (t *Transaction) Resolvable() Resolvable {
	return Resolvable{
		Kind:    KindTransfer,
		ID:      t.ID,
		UserID:  t.UserID,
		Account: t.Account,
		Amount:  t.Amount,
		Fee:     t.Fee,
		Status:  t.Status,
	}
}

func (d *Deposit) Resolvable() Resolvable {
	return Resolvable{
		Kind:    KindDeposit,
		ID:      d.ID,
		UserID:  d.UserID,
		Account: d.Account,
		Amount:  d.Amount,
		Fee:     decimal.Zero,
		Status:  d.Status,
	}
}
