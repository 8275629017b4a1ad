package authservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/notify"
	"github.com/GlebRadaev/bankapi/internal/pg"
	"github.com/GlebRadaev/bankapi/pkg/auth"
	"github.com/GlebRadaev/bankapi/pkg/validate"
)

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice

const defaultCurrency = "USD"

type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error
	Promote(ctx context.Context, id uuid.UUID) error
}

type WalletRepo interface {
	Create(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
}

type Dispatcher interface {
	Enqueue(ctx context.Context, msg notify.Message) error
}

// Session is what a caller receives after signing up or logging in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
	Wallet    *domain.Wallet
}

type Service struct {
	userRepo    UserRepo
	walletRepo  WalletRepo
	txManager   pg.TXManager
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	dispatcher  Dispatcher
}

func New(
	userRepo UserRepo,
	walletRepo WalletRepo,
	txManager pg.TXManager,
	hashService auth.HashServiceInterface,
	jwtService auth.JWTServiceInterface,
	dispatcher Dispatcher,
) *Service {
	return &Service{
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		txManager:   txManager,
		hashService: hashService,
		jwtService:  jwtService,
		dispatcher:  dispatcher,
	}
}

// Signup stores a pending user together with an empty wallet and logs them in.
func (s *Service) Signup(ctx context.Context, user *domain.User, password, pin string) (*Session, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Role = domain.RoleUser
	user.Status = domain.UserStatusPending

	wallet, err := s.register(ctx, user, password, pin)
	if err != nil {
		return nil, err
	}

	session, err := s.session(user, wallet)
	if err != nil {
		return nil, err
	}

	if err := s.dispatcher.Enqueue(ctx, notify.NewMessage(notify.KindWelcome, user)); err != nil {
		zap.L().Warn("welcome notice not queued", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	zap.L().Info("user successfully registered", zap.String("user_id", user.ID.String()))
	return session, nil
}

// register hashes the secrets and writes the user and wallet in one transaction.
func (s *Service) register(ctx context.Context, user *domain.User, password, pin string) (*domain.Wallet, error) {
	if user.Currency == "" {
		user.Currency = defaultCurrency
	}

	passwordHash, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, err
	}
	pinHash, err := s.hashService.HashPassword(pin)
	if err != nil {
		zap.L().Error("can't hash pin", zap.Error(err))
		return nil, err
	}
	user.PasswordHash = passwordHash
	user.PinHash = pinHash

	var wallet *domain.Wallet
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		created, err := s.walletRepo.Create(ctx, newWallet(user))
		if err != nil {
			return err
		}
		wallet = created
		return nil
	})
	if err != nil {
		zap.L().Error("can't register user", zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

func newWallet(user *domain.User) *domain.Wallet {
	saving := validate.NewAccountNumber()
	checking := validate.NewAccountNumber()
	for checking == saving {
		checking = validate.NewAccountNumber()
	}
	return &domain.Wallet{
		UserID:                user.ID,
		Currency:              user.Currency,
		SavingAccountNumber:   saving,
		CheckingAccountNumber: checking,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hashService.ComparePassword(user.PasswordHash, password) {
		zap.L().Info("invalid credentials", zap.String("email", email))
		return nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}
	if !user.Status.CanLogin() {
		return nil, fmt.Errorf("%w: your account has been %s, please contact support", domain.ErrForbidden, user.Status)
	}
	zap.L().Info("user successfully authenticated", zap.String("user_id", user.ID.String()))
	return s.session(user, nil)
}

// Me returns the caller's profile and wallet.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.Wallet, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, fmt.Errorf("%w: no user found with that ID", domain.ErrNotFound)
	}
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, wallet, nil
}

func (s *Service) UpdatePassword(ctx context.Context, userID uuid.UUID, current, password string) (*Session, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no user found with that ID", domain.ErrNotFound)
	}
	if !s.hashService.ComparePassword(user.PasswordHash, current) {
		return nil, fmt.Errorf("%w: your current password is wrong", domain.ErrUnauthorized)
	}

	hash, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return s.session(user, nil)
}

// UpdateMe edits the caller's own profile. An empty update returns the
// profile unchanged.
func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error) {
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		upd.Email = &email
	}
	if upd.Empty() {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fmt.Errorf("%w: no user found with that ID", domain.ErrNotFound)
		}
		return user, nil
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	zap.L().Info("profile updated", zap.String("user_id", userID.String()))
	return user, nil
}

// DeactivateMe closes the caller's own account. Deactivated accounts can no
// longer log in; an admin may reactivate them.
func (s *Service) DeactivateMe(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateStatus(ctx, userID, domain.UserStatusDeactivated); err != nil {
		return err
	}
	zap.L().Info("user deactivated own account", zap.String("user_id", userID.String()))
	return nil
}

// SeedAdmin promotes the account registered under user.Email, or creates an
// active admin with a wallet when none exists.
func (s *Service) SeedAdmin(ctx context.Context, user *domain.User, password, pin string) (*domain.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	existing, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.userRepo.Promote(ctx, existing.ID); err != nil {
			return nil, err
		}
		existing.Role = domain.RoleAdmin
		existing.Status = domain.UserStatusActive
		zap.L().Info("user promoted to admin", zap.String("user_id", existing.ID.String()))
		return existing, nil
	}

	user.Role = domain.RoleAdmin
	user.Status = domain.UserStatusActive
	if _, err := s.register(ctx, user, password, pin); err != nil {
		return nil, err
	}
	zap.L().Info("admin created", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *Service) session(user *domain.User, wallet *domain.Wallet) (*Session, error) {
	token, expiresAt, err := s.jwtService.GenerateJWT(user.ID, user.Role)
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		Wallet:    wallet,
	}, nil
}
