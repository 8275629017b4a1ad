package loanrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/bankapi/internal/domain"
)

var columns = []string{
	"id", "user_id", "amount", "total_payable", "monthly_payment", "duration",
	"repayment_plan", "purpose", "status", "created_at", "updated_at",
}

var withOwner = append(append([]string{}, columns...), "owner_id", "fullname", "email", "phone", "photo")

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func testLoan() *domain.Loan {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Loan{
		ID:             uuid.MustParse("e7d6c5b4-a392-4817-b6f5-e4d3c2b1a090"),
		UserID:         uuid.MustParse("6f1c1f5e-1b7a-4c55-9a39-1c1e0b9f3a11"),
		Amount:         decimal.NewFromInt(5000),
		TotalPayable:   decimal.Zero,
		MonthlyPayment: decimal.Zero,
		Duration:       12,
		RepaymentPlan:  "monthly",
		Purpose:        "car",
		Status:         domain.LoanStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func loanRow(l *domain.Loan) []any {
	return []any{
		l.ID, l.UserID, l.Amount, l.TotalPayable, l.MonthlyPayment, l.Duration,
		l.RepaymentPlan, l.Purpose, l.Status, l.CreatedAt, l.UpdatedAt,
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	insert := regexp.QuoteMeta("INSERT INTO loans (user_id, amount, total_payable, monthly_payment, duration, repayment_plan, purpose, status)")
	newID := uuid.New()
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insert).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), 12, "monthly", "car", "pending").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(newID, createdAt, createdAt))

	loan := testLoan()
	loan.ID = uuid.Nil
	result, err := repo.Create(context.Background(), loan)
	assert.NoError(t, err)
	assert.Equal(t, newID, result.ID)

	mock.ExpectQuery(insert).
		WillReturnError(errors.New("database error"))
	result, err = repo.Create(context.Background(), testLoan())
	assert.Error(t, err)
	assert.Nil(t, result)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByIDForUpdate(t *testing.T) {
	repo, mock := NewMock(t)
	loan := testLoan()
	query := regexp.QuoteMeta("FROM loans l WHERE l.id = $1 FOR UPDATE")

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.Loan
	}{
		{
			name: "Loan found",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(loan.ID).
					WillReturnRows(pgxmock.NewRows(columns).AddRow(loanRow(loan)...))
			},
			result: loan,
		},
		{
			name: "Loan not found",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(loan.ID).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(loan.ID).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByIDForUpdate(context.Background(), loan.ID)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.result == nil {
				assert.Nil(t, result)
			} else {
				assert.Equal(t, tt.result, result)
			}
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := NewMock(t)
	id := uuid.New()
	query := regexp.QuoteMeta("UPDATE loans SET status = $1, updated_at = NOW() WHERE id = $2")

	mock.ExpectExec(query).
		WithArgs("approved", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.UpdateStatus(context.Background(), id, domain.LoanStatusApproved))

	mock.ExpectExec(query).
		WithArgs("rejected", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), id, domain.LoanStatusRejected), domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)
	loan := testLoan()
	owner := domain.Owner{ID: loan.UserID, Fullname: "Jane Doe", Email: "jane@bank.test"}
	row := append(loanRow(loan), owner.ID, owner.Fullname, owner.Email, owner.Phone, owner.Photo)
	userID := loan.UserID

	mock.ExpectQuery(regexp.QuoteMeta("FROM loans l JOIN users u ON u.id = l.user_id WHERE l.user_id = $1 ORDER BY l.created_at DESC")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(withOwner).AddRow(row...))

	result, err := repo.List(context.Background(), domain.RecordFilter{UserID: &userID})
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Nil(t, result[0].Owner)

	mock.ExpectQuery(regexp.QuoteMeta("FROM loans l JOIN users u ON u.id = l.user_id ORDER BY l.created_at DESC")).
		WillReturnRows(pgxmock.NewRows(withOwner).AddRow(row...))

	result, err = repo.List(context.Background(), domain.RecordFilter{WithOwner: true})
	assert.NoError(t, err)
	assert.Equal(t, &owner, result[0].Owner)

	mock.ExpectQuery(regexp.QuoteMeta("FROM loans l")).
		WillReturnError(errors.New("database error"))
	_, err = repo.List(context.Background(), domain.RecordFilter{})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
