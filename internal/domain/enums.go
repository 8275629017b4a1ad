package domain

import "fmt"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusPending     UserStatus = "pending"
	UserStatusDeactivated UserStatus = "deactivated"
	UserStatusDenied      UserStatus = "denied"
)

// CanLogin reports whether an account in this status may obtain a token.
func (s UserStatus) CanLogin() bool {
	return s == UserStatusActive || s == UserStatusPending
}

// Account names one of the two balances held by a wallet.
type Account string

const (
	AccountSaving   Account = "saving"
	AccountChecking Account = "checking"
)

func ParseAccount(s string) (Account, error) {
	switch Account(s) {
	case AccountSaving, AccountChecking:
		return Account(s), nil
	default:
		return "", fmt.Errorf("%w: invalid account type specified: %q", ErrInvalidArgument, s)
	}
}

// RecordKind distinguishes the two money-movement records a resolution can target.
type RecordKind string

const (
	KindTransfer RecordKind = "transfer"
	KindDeposit  RecordKind = "deposit"
)

func ParseRecordKind(s string) (RecordKind, error) {
	switch RecordKind(s) {
	case KindTransfer, KindDeposit:
		return RecordKind(s), nil
	default:
		return "", fmt.Errorf("%w: invalid transaction type specified: %q", ErrInvalidArgument, s)
	}
}

type TxStatus string

const (
	TxStatusPending  TxStatus = "pending"
	TxStatusSuccess  TxStatus = "success"
	TxStatusDeclined TxStatus = "declined"
	// TxStatusFailed is accepted by storage but never produced by the resolution engine.
	TxStatusFailed TxStatus = "failed"
)

type TransferType string

const (
	TransferInternal TransferType = "internal transfer"
	TransferWire     TransferType = "wire transfer"
	TransferLocal    TransferType = "local transfer"
)

type DepositType string

const (
	DepositCard   DepositType = "card deposit"
	DepositCrypto DepositType = "crypto deposit"
)

type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusApproved LoanStatus = "approved"
	LoanStatusRejected LoanStatus = "rejected"
)

// Action is an admin decision applied to a pending record.
type Action string

const (
	ActionApprove Action = "approve"
	ActionDecline Action = "decline"
	ActionReject  Action = "reject"
)

// StatusAction is an admin decision applied to a user account.
type StatusAction string

const (
	StatusActionApprove    StatusAction = "approve"
	StatusActionDeny       StatusAction = "deny"
	StatusActionDeactivate StatusAction = "deactivate"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)
