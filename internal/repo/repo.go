package repo

import (
	"github.com/GlebRadaev/bankapi/internal/pg"
	depositrepo "github.com/GlebRadaev/bankapi/internal/repo/deposit-repo"
	loanrepo "github.com/GlebRadaev/bankapi/internal/repo/loan-repo"
	transactionrepo "github.com/GlebRadaev/bankapi/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/bankapi/internal/repo/user-repo"
	walletrepo "github.com/GlebRadaev/bankapi/internal/repo/wallet-repo"
)

// Repositories holds concrete repositories: each one serves the narrow
// interfaces of several services.
type Repositories struct {
	UserRepo        *userrepo.Repository
	WalletRepo      *walletrepo.Repository
	TransactionRepo *transactionrepo.Repository
	DepositRepo     *depositrepo.Repository
	LoanRepo        *loanrepo.Repository
	TxManager       pg.TXManager
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		WalletRepo:      walletrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		DepositRepo:     depositrepo.New(conn),
		LoanRepo:        loanrepo.New(conn),
		TxManager:       txManager,
	}
}
