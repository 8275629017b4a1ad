package transactionservice

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/notify"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func transfer(account domain.Account, amount string) TransferRequest {
	return TransferRequest{
		Pin:             "1234",
		TransferType:    domain.TransferInternal,
		Account:         account,
		Amount:          dec(amount),
		BeneficiaryAcct: "2377225624",
	}
}

func cardDeposit(amount string) DepositRequest {
	return DepositRequest{
		DepositType:    domain.DepositCard,
		Account:        domain.AccountSaving,
		Amount:         dec(amount),
		CardType:       "visa",
		CardHolderName: "Jane Doe",
		CardNumber:     "4242 4242 4242 4242",
		CardCvv:        "123",
		CardExpiry:     "12/29",
	}
}

func TestLedger_TransferApproved(t *testing.T) {
	service, st, notifier := newLedger()
	ctx := context.Background()
	userID := st.addUser("1000", "0")

	tx, err := service.CreateTransfer(ctx, userID, transfer(domain.AccountSaving, "100"))
	require.NoError(t, err)
	assert.True(t, dec("1").Equal(tx.Fee))
	assert.Equal(t, domain.TxStatusPending, tx.Status)
	assert.Regexp(t, `^tr\d{10}$`, tx.Reference)
	assert.True(t, dec("1000").Equal(st.wallet(userID).Saving), "creation must not touch the wallet")

	res, err := service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionApprove)
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
	assert.Equal(t, domain.TxStatusSuccess, res.Record.Transaction.Status)
	assert.True(t, dec("899").Equal(st.wallet(userID).Saving))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notify.KindConfirmedTransfer, notifier.sent[0].Kind)
	assert.Equal(t, tx.Reference, notifier.sent[0].Reference)
	assert.True(t, dec("100").Equal(notifier.sent[0].Amount))
}

func TestLedger_FractionalTransferRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		saving      string
		amount      string
		expectedFee string
		approved    string
	}{
		{name: "Half-cent fee rounds up", saving: "1.00", amount: "0.50", expectedFee: "0.01", approved: "0.49"},
		{name: "Sub-half-cent fee rounds down", saving: "1.00", amount: "0.40", expectedFee: "0", approved: "0.60"},
		{name: "Odd cents", saving: "250.00", amount: "33.33", expectedFee: "0.33", approved: "216.34"},
		{name: "Large fractional amount", saving: "5000.00", amount: "1234.56", expectedFee: "12.35", approved: "3753.09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, st, _ := newLedger()
			ctx := context.Background()
			userID := st.addUser(tt.saving, "0")

			tx, err := service.CreateTransfer(ctx, userID, transfer(domain.AccountSaving, tt.amount))
			require.NoError(t, err)
			assert.True(t, dec(tt.expectedFee).Equal(tx.Fee), "fee %s, want %s", tx.Fee, tt.expectedFee)

			_, err = service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionApprove)
			require.NoError(t, err)
			assert.True(t, dec(tt.approved).Equal(st.wallet(userID).Saving), "after approve: %s", st.wallet(userID).Saving)

			_, err = service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionDecline)
			require.NoError(t, err)
			assert.True(t, dec(tt.saving).Equal(st.wallet(userID).Saving), "after decline: %s", st.wallet(userID).Saving)
		})
	}
}

func TestLedger_InsufficientFundsOnCreate(t *testing.T) {
	service, st, _ := newLedger()
	userID := st.addUser("0", "50")

	_, err := service.CreateTransfer(context.Background(), userID, transfer(domain.AccountChecking, "100"))

	var funds *domain.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.True(t, dec("101").Equal(funds.Required))
	assert.True(t, dec("1").Equal(funds.Fee))
	assert.True(t, dec("50").Equal(funds.Available))
	assert.Equal(t, domain.AccountChecking, funds.Account)
	assert.Empty(t, st.transactions, "no record may be stored")
}

func TestLedger_DepositApprovedThenDeclined(t *testing.T) {
	service, st, notifier := newLedger()
	ctx := context.Background()
	userID := st.addUser("0", "0")

	deposit, err := service.CreateDeposit(ctx, userID, cardDeposit("500"))
	require.NoError(t, err)
	assert.Equal(t, "4242", deposit.CardLast4)
	assert.Regexp(t, `^cad\d{10}$`, deposit.Reference)

	_, err = service.Resolve(ctx, domain.KindDeposit, deposit.ID, domain.ActionApprove)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(st.wallet(userID).Saving))

	res, err := service.Resolve(ctx, domain.KindDeposit, deposit.ID, domain.ActionDecline)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusDeclined, res.Record.Deposit.Status)
	assert.True(t, st.wallet(userID).Saving.IsZero())

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, notify.KindConfirmedDeposit, notifier.sent[0].Kind)
	assert.Equal(t, notify.KindUnconfirmedDeposit, notifier.sent[1].Kind)
}

func TestLedger_RepeatedDecisions(t *testing.T) {
	service, st, _ := newLedger()
	ctx := context.Background()
	userID := st.addUser("1000", "0")

	tx, err := service.CreateTransfer(ctx, userID, transfer(domain.AccountSaving, "100"))
	require.NoError(t, err)

	_, err = service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionDecline)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(st.wallet(userID).Saving), "declining a pending transfer moves no money")

	_, err = service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionDecline)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	_, err = service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionApprove)
	require.NoError(t, err, "a declined transfer may still be approved")
	assert.True(t, dec("899").Equal(st.wallet(userID).Saving))

	_, err = service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionApprove)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.True(t, dec("899").Equal(st.wallet(userID).Saving))

	_, err = service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionDecline)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(st.wallet(userID).Saving), "reversal restores the pre-approval balance")
}

func TestLedger_DepositReversalNeedsFunds(t *testing.T) {
	service, st, _ := newLedger()
	ctx := context.Background()
	userID := st.addUser("0", "0")

	deposit, err := service.CreateDeposit(ctx, userID, cardDeposit("500"))
	require.NoError(t, err)
	_, err = service.Resolve(ctx, domain.KindDeposit, deposit.ID, domain.ActionApprove)
	require.NoError(t, err)

	st.setBalance(userID, domain.AccountSaving, "120")
	_, err = service.Resolve(ctx, domain.KindDeposit, deposit.ID, domain.ActionDecline)

	var funds *domain.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.True(t, dec("500").Equal(funds.Required))
	assert.True(t, dec("120").Equal(funds.Available))
	assert.True(t, dec("120").Equal(st.wallet(userID).Saving))
	assert.Equal(t, domain.TxStatusSuccess, st.deposits[deposit.ID].Status)
}

func TestLedger_NotificationFailureIsAWarning(t *testing.T) {
	service, st, notifier := newLedger()
	ctx := context.Background()
	userID := st.addUser("0", "0")
	notifier.err = errors.New("smtp down")

	deposit, err := service.CreateDeposit(ctx, userID, cardDeposit("100"))
	require.NoError(t, err)

	res, err := service.Resolve(ctx, domain.KindDeposit, deposit.ID, domain.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, "Transaction approved but notification email failed to send", res.Warning)
	assert.True(t, dec("100").Equal(st.wallet(userID).Saving), "the resolution stays committed")
}

func TestLedger_BalanceNeverNegative(t *testing.T) {
	service, st, _ := newLedger()
	ctx := context.Background()
	userID := st.addUser("5000", "2500")
	rng := rand.New(rand.NewSource(42))
	accounts := []domain.Account{domain.AccountSaving, domain.AccountChecking}

	for i := 0; i < 300; i++ {
		account := accounts[rng.Intn(len(accounts))]
		amount := decimal.New(int64(1+rng.Intn(40000)), -2)
		before, _ := ptr(st.wallet(userID)).Balance(account)

		tx, err := service.CreateTransfer(ctx, userID, TransferRequest{
			Pin:             "1234",
			TransferType:    domain.TransferInternal,
			Account:         account,
			Amount:          amount,
			BeneficiaryAcct: "2377225624",
		})
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			continue
		}
		if rng.Intn(2) == 0 {
			continue
		}

		_, err = service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionApprove)
		after, _ := ptr(st.wallet(userID)).Balance(account)
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			assert.True(t, before.Equal(after))
			continue
		}
		assert.True(t, before.Sub(after).Equal(amount.Add(domain.TransferFee(amount))), "debit must equal amount plus fee")

		w := st.wallet(userID)
		assert.False(t, w.Saving.IsNegative())
		assert.False(t, w.Checking.IsNegative())
	}
}

func ptr(w domain.Wallet) *domain.Wallet {
	return &w
}

func TestLedger_ConcurrentApprovals(t *testing.T) {
	service, st, _ := newLedger()
	ctx := context.Background()
	userID := st.addUser("101", "0")

	const n = 10
	transfers := make([]*domain.Transaction, n)
	for i := range transfers {
		tx, err := service.CreateTransfer(ctx, userID, transfer(domain.AccountSaving, "100"))
		require.NoError(t, err, "balance is checked, not reserved, at creation")
		transfers[i] = tx
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
	)
	start := make(chan struct{})
	for _, tx := range transfers {
		wg.Add(1)
		go func(tx *domain.Transaction) {
			defer wg.Done()
			<-start
			_, err := service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionApprove)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientFunds):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(tx)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, refused)
	assert.True(t, st.wallet(userID).Saving.IsZero())
}

func TestLedger_ConcurrentApprovalsOfOneRecord(t *testing.T) {
	service, st, _ := newLedger()
	ctx := context.Background()
	userID := st.addUser("1000", "0")

	tx, err := service.CreateTransfer(ctx, userID, transfer(domain.AccountSaving, "100"))
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Resolve(ctx, domain.KindTransfer, tx.ID, domain.ActionApprove)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	}
	assert.Equal(t, 1, succeeded)
	assert.True(t, dec("899").Equal(st.wallet(userID).Saving))
}

func TestLedger_History(t *testing.T) {
	service, st, _ := newLedger()
	ctx := context.Background()
	jane := st.addUser("1000", "0")
	bob := st.addUser("1000", "0")

	_, err := service.CreateTransfer(ctx, jane, transfer(domain.AccountSaving, "10"))
	require.NoError(t, err)
	_, err = service.CreateDeposit(ctx, jane, cardDeposit("200"))
	require.NoError(t, err)
	_, err = service.CreateTransfer(ctx, bob, transfer(domain.AccountSaving, "20"))
	require.NoError(t, err)
	last, err := service.CreateDeposit(ctx, jane, cardDeposit("300"))
	require.NoError(t, err)

	own, err := service.List(ctx, domain.Principal{ID: jane, Role: domain.RoleUser}, &bob)
	require.NoError(t, err)
	require.Len(t, own, 3, "users only ever see their own records")
	assert.Equal(t, last.Reference, own[0].Reference())
	for i := 1; i < len(own); i++ {
		assert.False(t, own[i].CreatedAt().After(own[i-1].CreatedAt()))
	}

	all, err := service.List(ctx, domain.Principal{ID: jane, Role: domain.RoleAdmin}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	onlyBob, err := service.List(ctx, domain.Principal{Role: domain.RoleAdmin}, &bob)
	require.NoError(t, err)
	require.Len(t, onlyBob, 1)
	assert.Equal(t, domain.KindTransfer, onlyBob[0].Kind)

	recent, err := service.Recent(ctx, domain.Principal{ID: jane, Role: domain.RoleUser}, nil, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, last.Reference, recent[0].Reference())
	assert.Equal(t, domain.KindDeposit, recent[1].Kind)
}
