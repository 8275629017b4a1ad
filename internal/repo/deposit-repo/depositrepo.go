package depositrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/pg"
)

const depositColumns = `d.id, d.user_id, d.deposit_type, d.account, d.amount,
	d.card_type, d.card_holder_name, d.card_last4, d.card_expiry, d.coin, d.wallet_address,
	d.status, d.reference, d.created_at, d.updated_at`

const ownerColumns = "u.id, u.fullname, u.email, u.phone, u.photo"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanDeposit(row pgx.Row, owner *domain.Owner) (*domain.Deposit, error) {
	var d domain.Deposit
	dest := []any{
		&d.ID, &d.UserID, &d.DepositType, &d.Account, &d.Amount,
		&d.CardType, &d.CardHolderName, &d.CardLast4, &d.CardExpiry, &d.Coin, &d.WalletAddress,
		&d.Status, &d.Reference, &d.CreatedAt, &d.UpdatedAt,
	}
	if owner != nil {
		dest = append(dest, &owner.ID, &owner.Fullname, &owner.Email, &owner.Phone, &owner.Photo)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) Create(ctx context.Context, deposit *domain.Deposit) (*domain.Deposit, error) {
	query := `
		INSERT INTO deposits (user_id, deposit_type, account, amount,
			card_type, card_holder_name, card_last4, card_expiry, coin, wallet_address,
			status, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		deposit.UserID, string(deposit.DepositType), string(deposit.Account), deposit.Amount,
		deposit.CardType, deposit.CardHolderName, deposit.CardLast4, deposit.CardExpiry, deposit.Coin, deposit.WalletAddress,
		string(deposit.Status), deposit.Reference,
	).Scan(&deposit.ID, &deposit.CreatedAt, &deposit.UpdatedAt)
	if err != nil {
		if _, ok := pg.IsUniqueViolation(err); ok {
			return nil, domain.ErrDuplicateReference
		}
		zap.L().Error("can't save deposit", zap.Error(err))
		return nil, err
	}
	return deposit, nil
}

func (r *Repository) findOne(ctx context.Context, query string, id uuid.UUID) (*domain.Deposit, error) {
	deposit, err := scanDeposit(r.db.QueryRow(ctx, query, id), nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find deposit", zap.Error(err))
		return nil, err
	}
	return deposit, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Deposit, error) {
	return r.findOne(ctx, "SELECT "+depositColumns+" FROM deposits d WHERE d.id = $1", id)
}

// FindByIDForUpdate locks the deposit row until the surrounding transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Deposit, error) {
	return r.findOne(ctx, "SELECT "+depositColumns+" FROM deposits d WHERE d.id = $1 FOR UPDATE", id)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TxStatus) error {
	tag, err := r.db.Exec(ctx, "UPDATE deposits SET status = $1, updated_at = NOW() WHERE id = $2", string(status), id)
	if err != nil {
		zap.L().Error("can't update deposit status", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no deposit found with that ID", domain.ErrNotFound)
	}
	return nil
}

// List returns deposits newest first, scoped and limited by filter.
func (r *Repository) List(ctx context.Context, filter domain.RecordFilter) ([]domain.Deposit, error) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + depositColumns + ", " + ownerColumns)
	b.WriteString(" FROM deposits d JOIN users u ON u.id = d.user_id")
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		b.WriteString(" WHERE d.user_id = $1")
	}
	b.WriteString(" ORDER BY d.created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		zap.L().Error("failed to fetch deposits", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		var owner domain.Owner
		deposit, err := scanDeposit(rows, &owner)
		if err != nil {
			zap.L().Error("failed to scan deposit row", zap.Error(err))
			return nil, err
		}
		if filter.WithOwner {
			deposit.Owner = &owner
		}
		deposits = append(deposits, *deposit)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate deposit rows", zap.Error(err))
		return nil, err
	}
	return deposits, nil
}
