package walletservice

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/bankapi/internal/domain"
)

func NewMock(t *testing.T) (*Service, *MockWalletRepo) {
	ctrl := gomock.NewController(t)
	repo := NewMockWalletRepo(ctrl)
	service := New(repo)
	defer ctrl.Finish()
	return service, repo
}

func TestGet(t *testing.T) {
	service, repo := NewMock(t)
	userID := uuid.New()
	wallet := &domain.Wallet{UserID: userID, Saving: decimal.NewFromInt(1000)}

	tests := []struct {
		name          string
		prepareMock   func()
		expected      *domain.Wallet
		expectedError error
	}{
		{
			name: "Wallet found",
			prepareMock: func() {
				repo.EXPECT().GetByUserID(gomock.Any(), userID).Return(wallet, nil)
			},
			expected: wallet,
		},
		{
			name: "Wallet missing",
			prepareMock: func() {
				repo.EXPECT().GetByUserID(gomock.Any(), userID).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "Repository error",
			prepareMock: func() {
				repo.EXPECT().GetByUserID(gomock.Any(), userID).Return(nil, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			result, err := service.Get(context.Background(), userID)
			if tt.expectedError != nil {
				assert.Error(t, err)
				if errors.Is(tt.expectedError, domain.ErrNotFound) {
					assert.ErrorIs(t, err, domain.ErrNotFound)
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFund(t *testing.T) {
	service, repo := NewMock(t)
	userID := uuid.New()
	amount := decimal.NewFromInt(250)

	tests := []struct {
		name          string
		account       string
		amount        decimal.Decimal
		prepareMock   func()
		expectedError error
	}{
		{
			name:    "Fund checking",
			account: "checking",
			amount:  amount,
			prepareMock: func() {
				repo.EXPECT().ApplyDelta(gomock.Any(), userID, domain.AccountChecking, amount).
					Return(&domain.Wallet{UserID: userID, Checking: amount}, nil)
			},
		},
		{
			name:          "Misspelled account",
			account:       "savings",
			amount:        amount,
			prepareMock:   func() {},
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name:          "Zero amount",
			account:       "saving",
			amount:        decimal.Zero,
			prepareMock:   func() {},
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name:          "Sub-cent amount",
			account:       "saving",
			amount:        decimal.RequireFromString("0.004"),
			prepareMock:   func() {},
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name:    "Wallet missing",
			account: "saving",
			amount:  amount,
			prepareMock: func() {
				repo.EXPECT().ApplyDelta(gomock.Any(), userID, domain.AccountSaving, amount).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			wallet, err := service.Fund(context.Background(), userID, tt.account, tt.amount)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, wallet)
				return
			}
			assert.NoError(t, err)
			assert.True(t, amount.Equal(wallet.Checking))
		})
	}
}
