package transactionrepo

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

const transactionColumns = `t.id, t.user_id, t.transfer_type, t.account, t.amount, t.fee,
	t.beneficiary_name, t.beneficiary_acct, t.beneficiary_bank, t.swift_code, t.routing_number,
	t.description, t.bank_address, t.status, t.reference, t.created_at, t.updated_at`

const ownerColumns = "u.id, u.fullname, u.email, u.phone, u.photo"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanTransaction(row pgx.Row, owner *domain.Owner) (*domain.Transaction, error) {
	var t domain.Transaction
	dest := []any{
		&t.ID, &t.UserID, &t.TransferType, &t.Account, &t.Amount, &t.Fee,
		&t.BeneficiaryName, &t.BeneficiaryAcct, &t.BeneficiaryBank, &t.SwiftCode, &t.RoutingNumber,
		&t.Description, &t.BankAddress, &t.Status, &t.Reference, &t.CreatedAt, &t.UpdatedAt,
	}
	if owner != nil {
		dest = append(dest, &owner.ID, &owner.Fullname, &owner.Email, &owner.Phone, &owner.Photo)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, transfer_type, account, amount, fee,
			beneficiary_name, beneficiary_acct, beneficiary_bank, swift_code, routing_number,
			description, bank_address, status, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		tx.UserID, string(tx.TransferType), string(tx.Account), tx.Amount, tx.Fee,
		tx.BeneficiaryName, tx.BeneficiaryAcct, tx.BeneficiaryBank, tx.SwiftCode, tx.RoutingNumber,
		tx.Description, tx.BankAddress, string(tx.Status), tx.Reference,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if _, ok := pg.IsUniqueViolation(err); ok {
			return nil, domain.ErrDuplicateReference
		}
		zap.L().Error("can't save transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) findOne(ctx context.Context, query string, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, id), nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return r.findOne(ctx, "SELECT "+transactionColumns+" FROM transactions t WHERE t.id = $1", id)
}

// FindByIDForUpdate locks the transaction row until the surrounding transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return r.findOne(ctx, "SELECT "+transactionColumns+" FROM transactions t WHERE t.id = $1 FOR UPDATE", id)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TxStatus) error {
	tag, err := r.db.Exec(ctx, "UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2", string(status), id)
	if err != nil {
		zap.L().Error("can't update transaction status", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no transaction found with that ID", domain.ErrNotFound)
	}
	return nil
}

// List returns transactions newest first, scoped and limited by filter.
func (r *Repository) List(ctx context.Context, filter domain.RecordFilter) ([]domain.Transaction, error) {
	query, args := listQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to fetch transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var owner domain.Owner
		tx, err := scanTransaction(rows, &owner)
		if err != nil {
			zap.L().Error("failed to scan transaction row", zap.Error(err))
			return nil, err
		}
		if filter.WithOwner {
			tx.Owner = &owner
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate transaction rows", zap.Error(err))
		return nil, err
	}
	return transactions, nil
}

func listQuery(filter domain.RecordFilter) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + transactionColumns + ", " + ownerColumns)
	b.WriteString(" FROM transactions t JOIN users u ON u.id = t.user_id")
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		b.WriteString(" WHERE t.user_id = $1")
	}
	b.WriteString(" ORDER BY t.created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}
