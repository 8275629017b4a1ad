package walletservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/domain"
)

//go:generate mockgen -source=walletservice.go -destination=mock_walletservice.go -package=walletservice

type WalletRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	ApplyDelta(ctx context.Context, userID uuid.UUID, account domain.Account, delta decimal.Decimal) (*domain.Wallet, error)
}

type Service struct {
	walletRepo WalletRepo
}

func New(walletRepo WalletRepo) *Service {
	return &Service{
		walletRepo: walletRepo,
	}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get wallet", zap.Error(err))
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: no wallet found for this user", domain.ErrNotFound)
	}
	return wallet, nil
}

// Fund credits one account of a user's wallet. Only admins reach this.
func (s *Service) Fund(ctx context.Context, userID uuid.UUID, account string, amount decimal.Decimal) (*domain.Wallet, error) {
	acc, err := domain.ParseAccount(account)
	if err != nil {
		return nil, err
	}
	verr := domain.NewValidationError()
	if !amount.IsPositive() {
		verr.Add("amount", "amount must be greater than 0")
	} else if !domain.IsCurrencyAmount(amount) {
		verr.Add("amount", "amount must have at most 2 decimal places")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.ApplyDelta(ctx, userID, acc, amount)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: no wallet found for this user", domain.ErrNotFound)
	}
	zap.L().Info("wallet funded",
		zap.String("user_id", userID.String()),
		zap.String("account", string(acc)),
		zap.String("amount", amount.StringFixed(2)),
	)
	return wallet, nil
}
