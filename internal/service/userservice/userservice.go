package userservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/notify"
	"github.com/GlebRadaev/bankapi/internal/pg"
)

//go:generate mockgen -source=userservice.go -destination=mock_userservice.go -package=userservice

const statusNoticeWarning = "Account status updated but notification email failed to send"

type UserRepo interface {
	List(ctx context.Context) ([]domain.User, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Notifier interface {
	Notify(ctx context.Context, msg notify.Message) error
}

type Service struct {
	userRepo  UserRepo
	txManager pg.TXManager
	notifier  Notifier
}

func New(userRepo UserRepo, txManager pg.TXManager, notifier Notifier) *Service {
	return &Service{
		userRepo:  userRepo,
		txManager: txManager,
		notifier:  notifier,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		zap.L().Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	zap.L().Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

// UpdateStatus applies an admin decision to a user account. A non-empty warning
// means the change is stored but the user could not be told about it.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, action domain.StatusAction) (*domain.User, string, error) {
	var user *domain.User
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		current, err := s.userRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: no user found with that ID", domain.ErrNotFound)
		}
		next, err := domain.ResolveUserStatus(current.Status, action)
		if err != nil {
			return err
		}
		if err := s.userRepo.UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		current.Status = next
		user = current
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	if err := s.notifier.Notify(ctx, notify.NewMessage(notify.StatusKind(action), user)); err != nil {
		zap.L().Warn("account status notice failed", zap.String("user_id", id.String()), zap.Error(err))
		return user, statusNoticeWarning, nil
	}
	return user, "", nil
}
