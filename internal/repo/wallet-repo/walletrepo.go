package walletrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/pg"
)

const walletColumns = "id, user_id, saving, checking, currency, saving_account_number, checking_account_number, created_at, updated_at"

// accountColumns whitelists the balance columns a delta may touch.
var accountColumns = map[domain.Account]string{
	domain.AccountSaving:   "saving",
	domain.AccountChecking: "checking",
}

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Saving, &w.Checking, &w.Currency, &w.SavingAccountNumber, &w.CheckingAccountNumber, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `
        SELECT ` + walletColumns + `
        FROM wallets
        WHERE user_id = $1
    `
	wallet, err := scanWallet(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get wallet", zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

func (r *Repository) Create(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error) {
	query := `
        INSERT INTO wallets (user_id, currency, saving_account_number, checking_account_number)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + walletColumns
	created, err := scanWallet(r.db.QueryRow(ctx, query, wallet.UserID, wallet.Currency, wallet.SavingAccountNumber, wallet.CheckingAccountNumber))
	if err != nil {
		if constraint, ok := pg.IsUniqueViolation(err); ok {
			return nil, fmt.Errorf("%w: wallet already exists (%s)", domain.ErrConflict, constraint)
		}
		zap.L().Error("failed to create wallet", zap.Error(err))
		return nil, err
	}
	return created, nil
}

// ApplyDelta adds delta to one account in a single statement and only if the
// result stays non-negative. It returns nil without error when no row qualified,
// either because the wallet is missing or the balance is too low.
func (r *Repository) ApplyDelta(ctx context.Context, userID uuid.UUID, account domain.Account, delta decimal.Decimal) (*domain.Wallet, error) {
	col, ok := accountColumns[account]
	if !ok {
		return nil, fmt.Errorf("%w: invalid account type specified: %q", domain.ErrInvalidArgument, account)
	}
	query := fmt.Sprintf(`
		UPDATE wallets
		SET %[1]s = %[1]s + $1, updated_at = NOW()
		WHERE user_id = $2 AND %[1]s + $1 >= 0
		RETURNING %[2]s
	`, col, walletColumns)

	wallet, err := scanWallet(r.db.QueryRow(ctx, query, delta, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to update wallet balance", zap.Error(err))
		return nil, err
	}
	return wallet, nil
}
