package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/bankapi/docs"
	"github.com/GlebRadaev/bankapi/internal/domain"
	authhandlers "github.com/GlebRadaev/bankapi/internal/handlers/auth"
	loanhandlers "github.com/GlebRadaev/bankapi/internal/handlers/loans"
	transactionhandlers "github.com/GlebRadaev/bankapi/internal/handlers/transactions"
	userhandlers "github.com/GlebRadaev/bankapi/internal/handlers/users"
	wallethandlers "github.com/GlebRadaev/bankapi/internal/handlers/wallet"
	"github.com/GlebRadaev/bankapi/internal/service"
	"github.com/GlebRadaev/bankapi/pkg/auth"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type AuthHandler interface {
	Signup(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	UpdatePassword(w http.ResponseWriter, r *http.Request)
	UpdateMe(w http.ResponseWriter, r *http.Request)
	DeleteMe(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetWallet(w http.ResponseWriter, r *http.Request)
	Fund(w http.ResponseWriter, r *http.Request)
}

type TransactionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Recent(w http.ResponseWriter, r *http.Request)
	ListDeposits(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
}

type LoanHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler        AuthHandler
	UserHandler        UserHandler
	WalletHandler      WalletHandler
	TransactionHandler TransactionHandler
	LoanHandler        LoanHandler

	jwtService  auth.JWTServiceInterface
	corsOrigins []string
}

func New(s *service.Services, jwtService auth.JWTServiceInterface, corsOrigins []string) *Handlers {
	return &Handlers{
		AuthHandler:        authhandlers.New(s.AuthService),
		UserHandler:        userhandlers.New(s.UserService),
		WalletHandler:      wallethandlers.New(s.WalletService),
		TransactionHandler: transactionhandlers.New(s.TransactionService),
		LoanHandler:        loanhandlers.New(s.LoanService),
		jwtService:         jwtService,
		corsOrigins:        corsOrigins,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		cors.Handler(cors.Options{
			AllowedOrigins:   h.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	userOnly := auth.RequireRole(domain.RoleUser)
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", h.AuthHandler.Signup)
		r.Post("/login", h.AuthHandler.Login)
		r.Get("/logout", h.AuthHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.jwtService))

			r.Get("/me", h.AuthHandler.Me)
			r.Patch("/updateMyPassword", h.AuthHandler.UpdatePassword)
			r.Patch("/updateMe", h.AuthHandler.UpdateMe)
			r.Delete("/deleteMe", h.AuthHandler.DeleteMe)
			r.Get("/me/wallet", h.WalletHandler.GetWallet)

			r.Route("/me/transactions", func(r chi.Router) {
				r.With(userOnly).Post("/", h.TransactionHandler.Create)
				r.Get("/", h.TransactionHandler.List)
				r.Get("/recent", h.TransactionHandler.Recent)
				r.With(adminOnly).Get("/deposits", h.TransactionHandler.ListDeposits)
				r.With(adminOnly).Patch("/{id}/action/{action}", h.TransactionHandler.Resolve)
			})
			r.Route("/me/loans", func(r chi.Router) {
				r.With(userOnly).Post("/", h.LoanHandler.Create)
				r.Get("/", h.LoanHandler.List)
				r.With(adminOnly).Patch("/{id}/action/{action}", h.LoanHandler.Resolve)
			})

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", h.UserHandler.List)
				r.Delete("/{id}", h.UserHandler.Delete)
				r.Patch("/{id}/status", h.UserHandler.UpdateStatus)
				r.Patch("/{id}/wallets", h.WalletHandler.Fund)
			})
		})
	})

	return r
}
