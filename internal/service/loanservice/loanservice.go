package loanservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/notify"
	"github.com/GlebRadaev/bankapi/internal/pg"
)

//go:generate mockgen -source=loanservice.go -destination=mock_loanservice.go -package=loanservice

const loanNoticeWarning = "Loan status updated but notification email failed to send"

type LoanRepo interface {
	Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LoanStatus) error
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.Loan, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type Notifier interface {
	Notify(ctx context.Context, msg notify.Message) error
}

type LoanRequest struct {
	Amount        decimal.Decimal
	Duration      int
	RepaymentPlan string
	Purpose       string
}

type Service struct {
	loanRepo  LoanRepo
	userRepo  UserRepo
	txManager pg.TXManager
	notifier  Notifier
}

func New(loanRepo LoanRepo, userRepo UserRepo, txManager pg.TXManager, notifier Notifier) *Service {
	return &Service{
		loanRepo:  loanRepo,
		userRepo:  userRepo,
		txManager: txManager,
		notifier:  notifier,
	}
}

// Create stores a pending loan application. Loans never touch the wallet.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req LoanRequest) (*domain.Loan, error) {
	verr := domain.NewValidationError()
	if !req.Amount.IsPositive() {
		verr.Add("amount", "amount must be greater than 0")
	} else if !domain.IsCurrencyAmount(req.Amount) {
		verr.Add("amount", "amount must have at most 2 decimal places")
	}
	if req.Duration <= 0 {
		verr.Add("duration", "duration must be greater than 0")
	}
	if strings.TrimSpace(req.RepaymentPlan) == "" {
		verr.Add("repaymentPlan", "Please provide repaymentPlan")
	}
	if strings.TrimSpace(req.Purpose) == "" {
		verr.Add("purpose", "Please provide purpose")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	loan, err := s.loanRepo.Create(ctx, &domain.Loan{
		UserID:         userID,
		Amount:         req.Amount,
		TotalPayable:   decimal.Zero,
		MonthlyPayment: decimal.Zero,
		Duration:       req.Duration,
		RepaymentPlan:  req.RepaymentPlan,
		Purpose:        req.Purpose,
		Status:         domain.LoanStatusPending,
	})
	if err != nil {
		zap.L().Error("failed to create loan", zap.Error(err))
		return nil, err
	}
	return loan, nil
}

// List returns every loan with its requester for admins and the caller's own loans otherwise.
func (s *Service) List(ctx context.Context, caller domain.Principal) ([]domain.Loan, error) {
	filter := domain.RecordFilter{WithOwner: true}
	if !caller.IsAdmin() {
		id := caller.ID
		filter = domain.RecordFilter{UserID: &id}
	}
	loans, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		zap.L().Error("failed to fetch loans", zap.Error(err))
		return nil, err
	}
	return loans, nil
}

// Resolve approves or rejects a pending loan and notifies the applicant.
// A failed notice is reported as a warning; the decision stays stored.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, action domain.Action) (*domain.Loan, string, error) {
	var loan *domain.Loan
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.loanRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if loan == nil {
			return fmt.Errorf("%w: no loan found with that ID", domain.ErrNotFound)
		}
		next, err := domain.ResolveLoan(loan.Status, action)
		if err != nil {
			return err
		}
		if err := s.loanRepo.UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		loan.Status = next
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	zap.L().Info("loan resolved", zap.String("loan_id", id.String()), zap.String("status", string(loan.Status)))

	if err := s.notify(ctx, loan); err != nil {
		zap.L().Warn("loan notice failed", zap.String("loan_id", id.String()), zap.Error(err))
		return loan, loanNoticeWarning, nil
	}
	return loan, "", nil
}

func (s *Service) notify(ctx context.Context, loan *domain.Loan) error {
	owner, err := s.userRepo.FindByID(ctx, loan.UserID)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("%w: applicant no longer exists", domain.ErrNotFound)
	}
	msg := notify.NewMessage(notify.LoanKind(loan.Status), owner)
	msg.Amount = loan.Amount
	return s.notifier.Notify(ctx, msg)
}
