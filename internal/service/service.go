package service

import (
	"github.com/GlebRadaev/bankapi/internal/handlers/auth"
	"github.com/GlebRadaev/bankapi/internal/handlers/loans"
	"github.com/GlebRadaev/bankapi/internal/handlers/transactions"
	"github.com/GlebRadaev/bankapi/internal/handlers/users"
	"github.com/GlebRadaev/bankapi/internal/handlers/wallet"
	"github.com/GlebRadaev/bankapi/internal/notify"

	pkgauth "github.com/GlebRadaev/bankapi/pkg/auth"

	"github.com/GlebRadaev/bankapi/internal/repo"
	authservice "github.com/GlebRadaev/bankapi/internal/service/authservice"
	loanservice "github.com/GlebRadaev/bankapi/internal/service/loanservice"
	transactionservice "github.com/GlebRadaev/bankapi/internal/service/transactionservice"
	userservice "github.com/GlebRadaev/bankapi/internal/service/userservice"
	walletservice "github.com/GlebRadaev/bankapi/internal/service/walletservice"
)

type Services struct {
	AuthService        auth.Service
	UserService        users.Service
	WalletService      wallet.Service
	TransactionService transactions.Service
	LoanService        loans.Service
}

// New wires the services. Signup notices go through the dispatcher's worker
// pool; decision notices are delivered inline so a failure can be reported.
func New(
	repo *repo.Repositories,
	hashService pkgauth.HashServiceInterface,
	jwtService pkgauth.JWTServiceInterface,
	dispatcher *notify.Dispatcher,
) *Services {
	authService := authservice.New(repo.UserRepo, repo.WalletRepo, repo.TxManager, hashService, jwtService, dispatcher)
	userService := userservice.New(repo.UserRepo, repo.TxManager, dispatcher)
	walletService := walletservice.New(repo.WalletRepo)
	transactionService := transactionservice.New(
		repo.UserRepo,
		repo.WalletRepo,
		repo.TransactionRepo,
		repo.DepositRepo,
		repo.TxManager,
		hashService,
		dispatcher,
	)
	loanService := loanservice.New(repo.LoanRepo, repo.UserRepo, repo.TxManager, dispatcher)

	return &Services{
		AuthService:        authService,
		UserService:        userService,
		WalletService:      walletService,
		TransactionService: transactionService,
		LoanService:        loanService,
	}
}
