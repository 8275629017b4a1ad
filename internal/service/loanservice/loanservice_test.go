package loanservice

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/notify"
	"github.com/GlebRadaev/bankapi/internal/pg"
)

func NewMock(t *testing.T) (*Service, *MockLoanRepo, *MockUserRepo, *pg.MockTXManager, *MockNotifier) {
	ctrl := gomock.NewController(t)
	loanRepo := NewMockLoanRepo(ctrl)
	userRepo := NewMockUserRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	notifier := NewMockNotifier(ctrl)
	service := New(loanRepo, userRepo, txManager, notifier)
	defer ctrl.Finish()
	return service, loanRepo, userRepo, txManager, notifier
}

var errDatabase = errors.New("database error")

func TestCreate(t *testing.T) {
	service, loanRepo, _, _, _ := NewMock(t)
	userID := uuid.New()

	tests := []struct {
		name          string
		req           LoanRequest
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Pending application",
			req:  LoanRequest{Amount: decimal.NewFromInt(5000), Duration: 12, RepaymentPlan: "monthly", Purpose: "car"},
			prepareMock: func() {
				loanRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, loan *domain.Loan) (*domain.Loan, error) {
					assert.Equal(t, userID, loan.UserID)
					assert.Equal(t, domain.LoanStatusPending, loan.Status)
					assert.True(t, loan.TotalPayable.IsZero())
					assert.True(t, loan.MonthlyPayment.IsZero())
					return loan, nil
				})
			},
		},
		{
			name:          "Invalid amount and duration",
			req:           LoanRequest{Amount: decimal.Zero, RepaymentPlan: "monthly", Purpose: "car"},
			prepareMock:   func() {},
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name:          "Sub-cent amount",
			req:           LoanRequest{Amount: decimal.RequireFromString("5000.005"), Duration: 12, RepaymentPlan: "monthly", Purpose: "car"},
			prepareMock:   func() {},
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name: "Storage failure",
			req:  LoanRequest{Amount: decimal.NewFromInt(10), Duration: 1, RepaymentPlan: "once", Purpose: "rent"},
			prepareMock: func() {
				loanRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errDatabase)
			},
			expectedError: errDatabase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			loan, err := service.Create(context.Background(), userID, tt.req)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, loan)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, loan)
		})
	}
}

func TestList(t *testing.T) {
	service, loanRepo, _, _, _ := NewMock(t)
	userID := uuid.New()
	loans := []domain.Loan{{ID: uuid.New(), UserID: userID}}

	loanRepo.EXPECT().List(gomock.Any(), domain.RecordFilter{UserID: &userID}).Return(loans, nil)
	result, err := service.List(context.Background(), domain.Principal{ID: userID, Role: domain.RoleUser})
	assert.NoError(t, err)
	assert.Equal(t, loans, result)

	loanRepo.EXPECT().List(gomock.Any(), domain.RecordFilter{WithOwner: true}).Return(loans, nil)
	result, err = service.List(context.Background(), domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin})
	assert.NoError(t, err)
	assert.Equal(t, loans, result)

	loanRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("database error"))
	_, err = service.List(context.Background(), domain.Principal{ID: userID})
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	service, loanRepo, userRepo, txManager, notifier := NewMock(t)
	id := uuid.New()
	userID := uuid.New()
	owner := &domain.User{ID: userID, Fullname: "Jane Doe", Email: "jane@bank.test"}
	pending := func() *domain.Loan {
		return &domain.Loan{ID: id, UserID: userID, Amount: decimal.NewFromInt(5000), Status: domain.LoanStatusPending}
	}
	inTx := func() {
		txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		})
	}

	tests := []struct {
		name            string
		action          domain.Action
		prepareMock     func()
		expectedStatus  domain.LoanStatus
		expectedWarning string
		expectedError   error
	}{
		{
			name:   "Approve pending loan",
			action: domain.ActionApprove,
			prepareMock: func() {
				inTx()
				loanRepo.EXPECT().FindByIDForUpdate(gomock.Any(), id).Return(pending(), nil)
				loanRepo.EXPECT().UpdateStatus(gomock.Any(), id, domain.LoanStatusApproved).Return(nil)
				userRepo.EXPECT().FindByID(gomock.Any(), userID).Return(owner, nil)
				notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg notify.Message) error {
					assert.Equal(t, notify.KindLoanApproved, msg.Kind)
					assert.Equal(t, "jane@bank.test", msg.Email)
					return nil
				})
			},
			expectedStatus: domain.LoanStatusApproved,
		},
		{
			name:   "Reject with failed notice",
			action: domain.ActionReject,
			prepareMock: func() {
				inTx()
				loanRepo.EXPECT().FindByIDForUpdate(gomock.Any(), id).Return(pending(), nil)
				loanRepo.EXPECT().UpdateStatus(gomock.Any(), id, domain.LoanStatusRejected).Return(nil)
				userRepo.EXPECT().FindByID(gomock.Any(), userID).Return(owner, nil)
				notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))
			},
			expectedStatus:  domain.LoanStatusRejected,
			expectedWarning: loanNoticeWarning,
		},
		{
			name:   "Terminal loan",
			action: domain.ActionReject,
			prepareMock: func() {
				inTx()
				loan := pending()
				loan.Status = domain.LoanStatusApproved
				loanRepo.EXPECT().FindByIDForUpdate(gomock.Any(), id).Return(loan, nil)
			},
			expectedError: domain.ErrAlreadyProcessed,
		},
		{
			name:   "Decline is not a loan action",
			action: domain.ActionDecline,
			prepareMock: func() {
				inTx()
				loanRepo.EXPECT().FindByIDForUpdate(gomock.Any(), id).Return(pending(), nil)
			},
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name:   "Unknown loan",
			action: domain.ActionApprove,
			prepareMock: func() {
				inTx()
				loanRepo.EXPECT().FindByIDForUpdate(gomock.Any(), id).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			loan, warning, err := service.Resolve(context.Background(), id, tt.action)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, loan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, loan.Status)
			assert.Equal(t, tt.expectedWarning, warning)
		})
	}
}
