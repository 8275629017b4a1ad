package loanrepo

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

const loanColumns = `l.id, l.user_id, l.amount, l.total_payable, l.monthly_payment, l.duration,
	l.repayment_plan, l.purpose, l.status, l.created_at, l.updated_at`

const ownerColumns = "u.id, u.fullname, u.email, u.phone, u.photo"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanLoan(row pgx.Row, owner *domain.Owner) (*domain.Loan, error) {
	var l domain.Loan
	dest := []any{
		&l.ID, &l.UserID, &l.Amount, &l.TotalPayable, &l.MonthlyPayment, &l.Duration,
		&l.RepaymentPlan, &l.Purpose, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	}
	if owner != nil {
		dest = append(dest, &owner.ID, &owner.Fullname, &owner.Email, &owner.Phone, &owner.Photo)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repository) Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	query := `
		INSERT INTO loans (user_id, amount, total_payable, monthly_payment, duration, repayment_plan, purpose, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		loan.UserID, loan.Amount, loan.TotalPayable, loan.MonthlyPayment, loan.Duration,
		loan.RepaymentPlan, loan.Purpose, string(loan.Status),
	).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save loan", zap.Error(err))
		return nil, err
	}
	return loan, nil
}

// FindByIDForUpdate locks the loan row until the surrounding transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := "SELECT " + loanColumns + " FROM loans l WHERE l.id = $1 FOR UPDATE"
	loan, err := scanLoan(r.db.QueryRow(ctx, query, id), nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find loan", zap.Error(err))
		return nil, err
	}
	return loan, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LoanStatus) error {
	tag, err := r.db.Exec(ctx, "UPDATE loans SET status = $1, updated_at = NOW() WHERE id = $2", string(status), id)
	if err != nil {
		zap.L().Error("can't update loan status", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no loan found with that ID", domain.ErrNotFound)
	}
	return nil
}

// List returns loans newest first, scoped and limited by filter.
func (r *Repository) List(ctx context.Context, filter domain.RecordFilter) ([]domain.Loan, error) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + loanColumns + ", " + ownerColumns)
	b.WriteString(" FROM loans l JOIN users u ON u.id = l.user_id")
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		b.WriteString(" WHERE l.user_id = $1")
	}
	b.WriteString(" ORDER BY l.created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		zap.L().Error("failed to fetch loans", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var owner domain.Owner
		loan, err := scanLoan(rows, &owner)
		if err != nil {
			zap.L().Error("failed to scan loan row", zap.Error(err))
			return nil, err
		}
		if filter.WithOwner {
			loan.Owner = &owner
		}
		loans = append(loans, *loan)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate loan rows", zap.Error(err))
		return nil, err
	}
	return loans, nil
}
