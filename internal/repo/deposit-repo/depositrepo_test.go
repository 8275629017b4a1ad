package depositrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/bankapi/internal/domain"
)

var columns = []string{
	"id", "user_id", "deposit_type", "account", "amount",
	"card_type", "card_holder_name", "card_last4", "card_expiry", "coin", "wallet_address",
	"status", "reference", "created_at", "updated_at",
}

var withOwner = append(append([]string{}, columns...), "owner_id", "fullname", "email", "phone", "photo")

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func testDeposit() *domain.Deposit {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Deposit{
		ID:             uuid.MustParse("c4b2a1d0-9e8f-4a7b-8c6d-5e4f3a2b1c0d"),
		UserID:         uuid.MustParse("6f1c1f5e-1b7a-4c55-9a39-1c1e0b9f3a11"),
		DepositType:    domain.DepositCard,
		Account:        domain.AccountSaving,
		Amount:         decimal.NewFromInt(500),
		CardType:       "visa",
		CardHolderName: "Jane Doe",
		CardLast4:      "4242",
		CardExpiry:     "12/29",
		Status:         domain.TxStatusPending,
		Reference:      "cad1234561234",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func depositRow(d *domain.Deposit) []any {
	return []any{
		d.ID, d.UserID, d.DepositType, d.Account, d.Amount,
		d.CardType, d.CardHolderName, d.CardLast4, d.CardExpiry, d.Coin, d.WalletAddress,
		d.Status, d.Reference, d.CreatedAt, d.UpdatedAt,
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	insert := regexp.QuoteMeta("INSERT INTO deposits (user_id, deposit_type, account, amount")
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	newID := uuid.New()

	tests := []struct {
		name      string
		mockSetup func()
		expectErr error
	}{
		{
			name: "Create deposit successfully",
			mockSetup: func() {
				mock.ExpectQuery(insert).
					WithArgs(pgxmock.AnyArg(), "card deposit", "saving", pgxmock.AnyArg(),
						"visa", "Jane Doe", "4242", "12/29", "", "", "pending", "cad1234561234").
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(newID, createdAt, createdAt))
			},
		},
		{
			name: "Reference collision",
			mockSetup: func() {
				mock.ExpectQuery(insert).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "deposits_reference_key"})
			},
			expectErr: domain.ErrDuplicateReference,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(insert).
					WillReturnError(errors.New("database error"))
			},
			expectErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			deposit := testDeposit()
			deposit.ID = uuid.Nil
			result, err := repo.Create(context.Background(), deposit)
			if tt.expectErr != nil {
				assert.Error(t, err)
				if errors.Is(tt.expectErr, domain.ErrDuplicateReference) {
					assert.ErrorIs(t, err, domain.ErrDuplicateReference)
				}
				assert.Nil(t, result)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, newID, result.ID)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByIDForUpdate(t *testing.T) {
	repo, mock := NewMock(t)
	deposit := testDeposit()
	query := regexp.QuoteMeta("FROM deposits d WHERE d.id = $1 FOR UPDATE")

	mock.ExpectQuery(query).
		WithArgs(deposit.ID).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(depositRow(deposit)...))
	result, err := repo.FindByIDForUpdate(context.Background(), deposit.ID)
	assert.NoError(t, err)
	assert.Equal(t, deposit, result)

	mock.ExpectQuery(query).
		WithArgs(deposit.ID).
		WillReturnError(pgx.ErrNoRows)
	result, err = repo.FindByIDForUpdate(context.Background(), deposit.ID)
	assert.NoError(t, err)
	assert.Nil(t, result)

	mock.ExpectQuery(query).
		WithArgs(deposit.ID).
		WillReturnError(errors.New("database error"))
	_, err = repo.FindByIDForUpdate(context.Background(), deposit.ID)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := NewMock(t)
	id := uuid.New()
	query := regexp.QuoteMeta("UPDATE deposits SET status = $1, updated_at = NOW() WHERE id = $2")

	tests := []struct {
		name      string
		mockSetup func()
		expectErr error
	}{
		{
			name: "Status updated",
			mockSetup: func() {
				mock.ExpectExec(query).
					WithArgs("success", id).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "Deposit missing",
			mockSetup: func() {
				mock.ExpectExec(query).
					WithArgs("success", id).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.UpdateStatus(context.Background(), id, domain.TxStatusSuccess)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			assert.NoError(t, err)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)
	deposit := testDeposit()
	owner := domain.Owner{ID: deposit.UserID, Fullname: "Jane Doe", Email: "jane@bank.test"}
	row := append(depositRow(deposit), owner.ID, owner.Fullname, owner.Email, owner.Phone, owner.Photo)

	mock.ExpectQuery(regexp.QuoteMeta("FROM deposits d JOIN users u ON u.id = d.user_id ORDER BY d.created_at DESC")).
		WillReturnRows(pgxmock.NewRows(withOwner).AddRow(row...))

	result, err := repo.List(context.Background(), domain.RecordFilter{WithOwner: true})
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, &owner, result[0].Owner)

	userID := deposit.UserID
	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.user_id = $1 ORDER BY d.created_at DESC LIMIT $2")).
		WithArgs(userID, 5).
		WillReturnRows(pgxmock.NewRows(withOwner).AddRow(row...))

	result, err = repo.List(context.Background(), domain.RecordFilter{UserID: &userID, Limit: 5})
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Nil(t, result[0].Owner)

	mock.ExpectQuery(regexp.QuoteMeta("FROM deposits d")).
		WillReturnError(errors.New("database error"))
	_, err = repo.List(context.Background(), domain.RecordFilter{})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
