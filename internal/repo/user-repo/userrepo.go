package userrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/pg"
)

const userColumns = `id, fullname, email, phone, dob, gender, occupation, country, city, zipcode, address,
	next_kin_name, next_kin_email, next_kin_phone, next_kin_relationship, next_kin_address,
	currency, photo, passport_photo, identity_document, password_hash, pin_hash, keep_signed_in,
	role, status, created_at, updated_at`

var conflictMessages = map[string]string{
	"users_email_key": "email already in use",
	"users_phone_key": "phone number already in use",
}

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Fullname, &u.Email, &u.Phone, &u.DOB, &u.Gender, &u.Occupation, &u.Country, &u.City, &u.Zipcode, &u.Address,
		&u.NextOfKin.Name, &u.NextOfKin.Email, &u.NextOfKin.Phone, &u.NextOfKin.Relationship, &u.NextOfKin.Address,
		&u.Currency, &u.Photo, &u.PassportPhoto, &u.IdentityDocument, &u.PasswordHash, &u.PinHash, &u.KeepSignedIn,
		&u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (repo *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return repo.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (repo *Repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return repo.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

// FindByIDForUpdate locks the user row until the surrounding transaction ends.
func (repo *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return repo.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id)
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (fullname, email, phone, dob, gender, occupation, country, city, zipcode, address,
			next_kin_name, next_kin_email, next_kin_phone, next_kin_relationship, next_kin_address,
			currency, photo, passport_photo, identity_document, password_hash, pin_hash, keep_signed_in, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id, created_at, updated_at
	`
	err := repo.db.QueryRow(ctx, query,
		user.Fullname, user.Email, user.Phone, user.DOB, string(user.Gender), user.Occupation, user.Country, user.City, user.Zipcode, user.Address,
		user.NextOfKin.Name, user.NextOfKin.Email, user.NextOfKin.Phone, user.NextOfKin.Relationship, user.NextOfKin.Address,
		user.Currency, user.Photo, user.PassportPhoto, user.IdentityDocument, user.PasswordHash, user.PinHash, user.KeepSignedIn,
		string(user.Role), string(user.Status),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if constraint, ok := pg.IsUniqueViolation(err); ok {
			msg, known := conflictMessages[constraint]
			if !known {
				msg = "user already exists"
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrConflict, msg)
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// UpdateProfile writes the non-nil fields of upd and returns the stored user.
func (repo *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error) {
	query := `
		UPDATE users SET
			fullname = COALESCE($1, fullname),
			email = COALESCE($2, email),
			phone = COALESCE($3, phone),
			gender = COALESCE($4, gender),
			photo = COALESCE($5, photo),
			updated_at = NOW()
		WHERE id = $6
		RETURNING ` + userColumns
	user, err := scanUser(repo.db.QueryRow(ctx, query, upd.Fullname, upd.Email, upd.Phone, upd.Gender, upd.Photo, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no user found with that ID", domain.ErrNotFound)
		}
		if constraint, ok := pg.IsUniqueViolation(err); ok {
			msg, known := conflictMessages[constraint]
			if !known {
				msg = "user already exists"
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrConflict, msg)
		}
		zap.L().Error("can't update user profile", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// List returns every non-admin user, newest first.
func (repo *Repository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := repo.db.Query(ctx, "SELECT "+userColumns+" FROM users WHERE role <> 'admin' ORDER BY created_at DESC")
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			zap.L().Error("can't scan user row", zap.Error(err))
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate user rows", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (repo *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return repo.exec(ctx, "UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2", passwordHash, id)
}

func (repo *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error {
	return repo.exec(ctx, "UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2", string(status), id)
}

// Promote turns an existing account into an active admin.
func (repo *Repository) Promote(ctx context.Context, id uuid.UUID) error {
	return repo.exec(ctx, "UPDATE users SET role = 'admin', status = 'active', updated_at = NOW() WHERE id = $1", id)
}

// Delete removes the user; wallet, transfers, deposits and loans go with it.
func (repo *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.exec(ctx, "DELETE FROM users WHERE id = $1", id)
}

func (repo *Repository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := repo.db.Exec(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't update user", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no user found with that ID", domain.ErrNotFound)
	}
	return nil
}
