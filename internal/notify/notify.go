package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/domain"
)

//go:generate mockgen -source=notify.go -destination=mock_notify.go -package=notify

type Kind string

const (
	KindWelcome             Kind = "welcome"
	KindAccountApproved     Kind = "account_approved"
	KindAccountDenied       Kind = "account_denied"
	KindAccountDeactivated  Kind = "account_deactivated"
	KindConfirmedDeposit    Kind = "confirmed_deposit"
	KindConfirmedTransfer   Kind = "confirmed_transfer"
	KindUnconfirmedDeposit  Kind = "unconfirmed_deposit"
	KindUnconfirmedTransfer Kind = "unconfirmed_transfer"
	KindLoanApproved        Kind = "loan_approved"
	KindLoanRejected        Kind = "loan_rejected"
)

var subjects = map[Kind]string{
	KindWelcome:             "Welcome",
	KindAccountApproved:     "Account Approval Status",
	KindAccountDenied:       "Account Approval Status",
	KindAccountDeactivated:  "Account Approval Status",
	KindConfirmedDeposit:    "Transaction Notice",
	KindConfirmedTransfer:   "Transaction Notice",
	KindUnconfirmedDeposit:  "Transaction Notice",
	KindUnconfirmedTransfer: "Transaction Notice",
	KindLoanApproved:        "Loan Notice",
	KindLoanRejected:        "Loan Notice",
}

func (k Kind) Subject() string {
	if s, ok := subjects[k]; ok {
		return s
	}
	return "Notice"
}

// Message is one outbound notice addressed to a user.
type Message struct {
	Kind      Kind            `json:"kind"`
	Subject   string          `json:"subject"`
	UserID    uuid.UUID       `json:"userId"`
	Email     string          `json:"email"`
	FirstName string          `json:"firstName"`
	Reference string          `json:"reference,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

func NewMessage(kind Kind, user *domain.User) Message {
	m := Message{
		Kind:      kind,
		Subject:   kind.Subject(),
		CreatedAt: time.Now().UTC(),
	}
	if user != nil {
		m.UserID = user.ID
		m.Email = user.Email
		m.FirstName = firstName(user.Fullname)
	}
	return m
}

func firstName(fullname string) string {
	for i, r := range fullname {
		if r == ' ' {
			return fullname[:i]
		}
	}
	return fullname
}

// RecordKind picks the notice sent after an admin resolves a transfer or deposit.
func RecordKind(action domain.Action, kind domain.RecordKind) Kind {
	switch {
	case action == domain.ActionApprove && kind == domain.KindDeposit:
		return KindConfirmedDeposit
	case action == domain.ActionApprove:
		return KindConfirmedTransfer
	case kind == domain.KindDeposit:
		return KindUnconfirmedDeposit
	default:
		return KindUnconfirmedTransfer
	}
}

func StatusKind(action domain.StatusAction) Kind {
	switch action {
	case domain.StatusActionApprove:
		return KindAccountApproved
	case domain.StatusActionDeny:
		return KindAccountDenied
	default:
		return KindAccountDeactivated
	}
}

func LoanKind(status domain.LoanStatus) Kind {
	if status == domain.LoanStatusApproved {
		return KindLoanApproved
	}
	return KindLoanRejected
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier only records the notice.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, msg Message) error {
	zap.L().Info("notification",
		zap.String("kind", string(msg.Kind)),
		zap.String("user_id", msg.UserID.String()),
		zap.String("email", msg.Email),
		zap.String("reference", msg.Reference),
	)
	return nil
}
