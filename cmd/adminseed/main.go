package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v6"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/app"
	"github.com/GlebRadaev/bankapi/internal/config"
	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/notify"
	"github.com/GlebRadaev/bankapi/internal/pg"
	userrepo "github.com/GlebRadaev/bankapi/internal/repo/user-repo"
	walletrepo "github.com/GlebRadaev/bankapi/internal/repo/wallet-repo"
	"github.com/GlebRadaev/bankapi/internal/service/authservice"
	"github.com/GlebRadaev/bankapi/pkg/auth"
	"github.com/GlebRadaev/bankapi/pkg/logger"
)

type adminConfig struct {
	Email    string `env:"ADMIN_EMAIL,required"`
	Password string `env:"ADMIN_PASSWORD,required"`
	Pin      string `env:"ADMIN_PIN,required"`
	Fullname string `env:"ADMIN_NAME"  envDefault:"Administrator"`
	Phone    string `env:"ADMIN_PHONE" envDefault:"0000000000"`
}

// adminseed creates an active admin account, or promotes the account already
// registered under ADMIN_EMAIL.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Can't seed admin")
	}
}

func run(ctx context.Context) error {
	cfg := config.New()
	if err := logger.InitLogger(cfg); err != nil {
		return err
	}

	admin := adminConfig{}
	if err := env.Parse(&admin); err != nil {
		return err
	}

	pool, err := app.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pg.RunMigrations(pool); err != nil {
		return err
	}

	conn := pg.New(pool)
	dispatcher := notify.NewDispatcher(notify.LogNotifier{}, 1)
	defer dispatcher.Close()

	authService := authservice.New(
		userrepo.New(conn),
		walletrepo.New(conn),
		pg.NewTXManager(pool),
		auth.NewHashService(0),
		auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
		dispatcher,
	)

	user, err := authService.SeedAdmin(ctx, &domain.User{
		Fullname: admin.Fullname,
		Email:    admin.Email,
		Phone:    admin.Phone,
	}, admin.Password, admin.Pin)
	if err != nil {
		return err
	}
	zap.L().Info("admin ready", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
	return nil
}
