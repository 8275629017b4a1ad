package transactionservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/notify"
	"github.com/GlebRadaev/bankapi/internal/pg"
	"github.com/GlebRadaev/bankapi/pkg/auth"
)

//go:generate mockgen -source=transactionservice.go -destination=mock_transactionservice.go -package=transactionservice

const (
	DefaultRecentLimit   = 5
	maxReferenceAttempts = 3
)

type UserRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type WalletRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	ApplyDelta(ctx context.Context, userID uuid.UUID, account domain.Account, delta decimal.Decimal) (*domain.Wallet, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TxStatus) error
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.Transaction, error)
}

type DepositRepo interface {
	Create(ctx context.Context, deposit *domain.Deposit) (*domain.Deposit, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Deposit, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TxStatus) error
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.Deposit, error)
}

type Notifier interface {
	Notify(ctx context.Context, msg notify.Message) error
}

// Resolved is the result of an admin decision on a transfer or deposit.
// Warning is set when the decision is stored but the owner was not notified.
type Resolved struct {
	Record  domain.Record
	Warning string
}

type Service struct {
	userRepo        UserRepo
	walletRepo      WalletRepo
	transactionRepo TransactionRepo
	depositRepo     DepositRepo
	txManager       pg.TXManager
	hashService     auth.HashServiceInterface
	notifier        Notifier
	now             func() time.Time
}

func New(
	userRepo UserRepo,
	walletRepo WalletRepo,
	transactionRepo TransactionRepo,
	depositRepo DepositRepo,
	txManager pg.TXManager,
	hashService auth.HashServiceInterface,
	notifier Notifier,
) *Service {
	return &Service{
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		depositRepo:     depositRepo,
		txManager:       txManager,
		hashService:     hashService,
		notifier:        notifier,
		now:             time.Now,
	}
}

// CreateTransfer checks the PIN and the balance and stores a pending transfer.
// The wallet is not touched until an admin approves it.
func (s *Service) CreateTransfer(ctx context.Context, userID uuid.UUID, req TransferRequest) (*domain.Transaction, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	account, err := domain.ParseAccount(string(req.Account))
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no user found with that ID", domain.ErrNotFound)
	}
	if !s.hashService.ComparePassword(user.PinHash, req.Pin) {
		return nil, fmt.Errorf("%w: incorrect transaction PIN", domain.ErrUnauthorized)
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: no wallet found for this user", domain.ErrNotFound)
	}

	fee := domain.TransferFee(req.Amount)
	total := req.Amount.Add(fee)
	available, err := wallet.Balance(account)
	if err != nil {
		return nil, err
	}
	if available.LessThan(total) {
		return nil, &domain.InsufficientFundsError{Account: account, Required: total, Fee: fee, Available: available}
	}

	tx := req.transaction(userID, account, fee)
	err = s.withReference(domain.ReferencePrefixTransfer, func(reference string) error {
		tx.Reference = reference
		_, err := s.transactionRepo.Create(ctx, tx)
		return err
	})
	if err != nil {
		zap.L().Error("failed to create transfer", zap.Error(err))
		return nil, err
	}
	zap.L().Info("transfer created", zap.String("reference", tx.Reference), zap.String("user_id", userID.String()))
	return tx, nil
}

// CreateDeposit validates the payment method and stores a pending deposit.
func (s *Service) CreateDeposit(ctx context.Context, userID uuid.UUID, req DepositRequest) (*domain.Deposit, error) {
	deposit, err := req.deposit(userID)
	if err != nil {
		return nil, err
	}

	err = s.withReference(domain.DepositReferencePrefix(deposit.DepositType), func(reference string) error {
		deposit.Reference = reference
		_, err := s.depositRepo.Create(ctx, deposit)
		return err
	})
	if err != nil {
		zap.L().Error("failed to create deposit", zap.Error(err))
		return nil, err
	}
	zap.L().Info("deposit created", zap.String("reference", deposit.Reference), zap.String("user_id", userID.String()))
	return deposit, nil
}

// withReference retries create with a fresh reference while it collides.
func (s *Service) withReference(prefix string, create func(reference string) error) error {
	var err error
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		err = create(domain.NewReference(prefix, s.now()))
		if !errors.Is(err, domain.ErrDuplicateReference) {
			return err
		}
		zap.L().Warn("reference collision", zap.String("prefix", prefix), zap.Int("attempt", attempt+1))
	}
	return err
}

// List returns the caller's transfers and deposits as one history, newest first.
// Admins see everyone's records unless target names a user.
func (s *Service) List(ctx context.Context, caller domain.Principal, target *uuid.UUID) ([]domain.Record, error) {
	return s.history(ctx, scope(caller, target, 0))
}

// Recent returns at most limit records of the merged history; limit <= 0 means DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, caller domain.Principal, target *uuid.UUID, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	records, err := s.history(ctx, scope(caller, target, limit))
	if err != nil {
		return nil, err
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// ListDeposits returns every deposit with its requester.
func (s *Service) ListDeposits(ctx context.Context) ([]domain.Deposit, error) {
	deposits, err := s.depositRepo.List(ctx, domain.RecordFilter{WithOwner: true})
	if err != nil {
		zap.L().Error("failed to fetch deposits", zap.Error(err))
		return nil, err
	}
	return deposits, nil
}

func scope(caller domain.Principal, target *uuid.UUID, limit int) domain.RecordFilter {
	if !caller.IsAdmin() {
		id := caller.ID
		return domain.RecordFilter{UserID: &id, Limit: limit}
	}
	return domain.RecordFilter{UserID: target, Limit: limit, WithOwner: true}
}

func (s *Service) history(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	var (
		transactions []domain.Transaction
		deposits     []domain.Deposit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.transactionRepo.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		deposits, err = s.depositRepo.List(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("failed to fetch transaction history", zap.Error(err))
		return nil, err
	}

	records := make([]domain.Record, 0, len(transactions)+len(deposits))
	for i := range transactions {
		records = append(records, domain.Record{Kind: domain.KindTransfer, Transaction: &transactions[i]})
	}
	for i := range deposits {
		records = append(records, domain.Record{Kind: domain.KindDeposit, Deposit: &deposits[i]})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt().After(records[j].CreatedAt())
	})
	return records, nil
}

// Resolve applies an admin decision to a transfer or deposit. The record row is
// locked and the wallet is changed with a conditional update, both inside one
// database transaction, so concurrent decisions cannot overdraw an account.
func (s *Service) Resolve(ctx context.Context, kind domain.RecordKind, id uuid.UUID, action domain.Action) (*Resolved, error) {
	if _, err := domain.ParseRecordKind(string(kind)); err != nil {
		return nil, err
	}

	var record domain.Record
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.lock(ctx, kind, id)
		if err != nil {
			return err
		}
		view := record.Resolvable()
		res, err := domain.ResolveRecord(view, action)
		if err != nil {
			return err
		}
		if !res.Delta.IsZero() {
			if err := s.applyDelta(ctx, view, res.Delta); err != nil {
				return err
			}
		}
		if err := s.setStatus(ctx, kind, id, res.Next); err != nil {
			return err
		}
		record.SetStatus(res.Next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("transaction resolved",
		zap.String("kind", string(kind)),
		zap.String("reference", record.Reference()),
		zap.String("action", string(action)),
	)

	out := &Resolved{Record: record}
	if err := s.notifyOwner(ctx, record, action); err != nil {
		zap.L().Warn("resolution notice failed", zap.String("reference", record.Reference()), zap.Error(err))
		out.Warning = fmt.Sprintf("Transaction %sd but notification email failed to send", action)
	}
	return out, nil
}

func (s *Service) lock(ctx context.Context, kind domain.RecordKind, id uuid.UUID) (domain.Record, error) {
	if kind == domain.KindDeposit {
		deposit, err := s.depositRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return domain.Record{}, err
		}
		if deposit == nil {
			return domain.Record{}, fmt.Errorf("%w: no deposit found with that ID", domain.ErrNotFound)
		}
		return domain.Record{Kind: kind, Deposit: deposit}, nil
	}

	tx, err := s.transactionRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return domain.Record{}, err
	}
	if tx == nil {
		return domain.Record{}, fmt.Errorf("%w: no transaction found with that ID", domain.ErrNotFound)
	}
	return domain.Record{Kind: kind, Transaction: tx}, nil
}

func (s *Service) setStatus(ctx context.Context, kind domain.RecordKind, id uuid.UUID, status domain.TxStatus) error {
	if kind == domain.KindDeposit {
		return s.depositRepo.UpdateStatus(ctx, id, status)
	}
	return s.transactionRepo.UpdateStatus(ctx, id, status)
}

// applyDelta changes the wallet or reports why the conditional update matched nothing.
func (s *Service) applyDelta(ctx context.Context, view domain.Resolvable, delta decimal.Decimal) error {
	wallet, err := s.walletRepo.ApplyDelta(ctx, view.UserID, view.Account, delta)
	if err != nil {
		return err
	}
	if wallet != nil {
		return nil
	}

	current, err := s.walletRepo.GetByUserID(ctx, view.UserID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: no wallet found for this user", domain.ErrNotFound)
	}
	available, err := current.Balance(view.Account)
	if err != nil {
		return err
	}
	return &domain.InsufficientFundsError{
		Account:   view.Account,
		Required:  delta.Neg(),
		Fee:       view.Fee,
		Available: available,
	}
}

func (s *Service) notifyOwner(ctx context.Context, record domain.Record, action domain.Action) error {
	view := record.Resolvable()
	owner, err := s.userRepo.FindByID(ctx, view.UserID)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("%w: owner of %s no longer exists", domain.ErrNotFound, record.Reference())
	}
	msg := notify.NewMessage(notify.RecordKind(action, record.Kind), owner)
	msg.Reference = record.Reference()
	msg.Amount = view.Amount
	return s.notifier.Notify(ctx, msg)
}
