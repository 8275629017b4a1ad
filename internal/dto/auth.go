package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/GlebRadaev/bankapi/internal/domain"
)

const dateLayout = "2006-01-02"

type NextOfKinDTO struct {
	Name         string `json:"name" validate:"required" example:"John Doe"`
	Email        string `json:"email" validate:"required,email" example:"john@example.com"`
	Phone        string `json:"phone" validate:"required" example:"+15550100"`
	Relationship string `json:"relationship" validate:"required" example:"brother"`
	Address      string `json:"address" validate:"required" example:"12 Main St"`
}

type SignupRequestDTO struct {
	Fullname         string       `json:"fullname" validate:"required" example:"Jane Doe"`
	Email            string       `json:"email" validate:"required,email" example:"jane@example.com"`
	Phone            string       `json:"phone" validate:"required" example:"+15550199"`
	DOB              string       `json:"dob" validate:"required,datetime=2006-01-02" example:"1990-04-01"`
	Gender           string       `json:"gender" validate:"required,oneof=Male Female" example:"Female"`
	Occupation       string       `json:"occupation" validate:"required" example:"Engineer"`
	Country          string       `json:"country" validate:"required" example:"United Kingdom"`
	City             string       `json:"city" validate:"required" example:"London"`
	Zipcode          string       `json:"zipcode" validate:"required,max=10" example:"SW1A1AA"`
	Address          string       `json:"address" validate:"required" example:"10 Downing St"`
	NextOfKin        NextOfKinDTO `json:"nextOfKin" validate:"required"`
	Currency         string       `json:"currency" validate:"omitempty,len=3" example:"USD"`
	Photo            string       `json:"photo" example:"user-1.jpeg"`
	PassportPhoto    string       `json:"passportPhoto" example:"passport-1.jpeg"`
	IdentityDocument string       `json:"identityDocument" example:"id-1.pdf"`
	Password         string       `json:"password" validate:"required,min=8" example:"password123"`
	PasswordConfirm  string       `json:"passwordConfirm" validate:"required,eqfield=Password" example:"password123"`
	Pin              string       `json:"pin" validate:"required,len=4,numeric" example:"1234"`
	KeepSignedIn     bool         `json:"keepSignedIn" example:"false"`
}

// User builds the domain user. DOB is already validated by the datetime tag.
func (r SignupRequestDTO) User() *domain.User {
	dob, _ := time.Parse(dateLayout, r.DOB)
	return &domain.User{
		Fullname:   r.Fullname,
		Email:      r.Email,
		Phone:      r.Phone,
		DOB:        dob,
		Gender:     domain.Gender(r.Gender),
		Occupation: r.Occupation,
		Country:    r.Country,
		City:       r.City,
		Zipcode:    r.Zipcode,
		Address:    r.Address,
		NextOfKin: domain.NextOfKin{
			Name:         r.NextOfKin.Name,
			Email:        r.NextOfKin.Email,
			Phone:        r.NextOfKin.Phone,
			Relationship: r.NextOfKin.Relationship,
			Address:      r.NextOfKin.Address,
		},
		Currency:         r.Currency,
		Photo:            r.Photo,
		PassportPhoto:    r.PassportPhoto,
		IdentityDocument: r.IdentityDocument,
		KeepSignedIn:     r.KeepSignedIn,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type UpdatePasswordRequestDTO struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required" example:"password123"`
	Password        string `json:"password" validate:"required,min=8" example:"newpassword123"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password" example:"newpassword123"`
}

// UpdateMeRequestDTO holds the profile fields a user may edit on their own.
// Password fields are decoded only so the request can be refused.
type UpdateMeRequestDTO struct {
	Fullname        *string `json:"fullname" validate:"omitnil,min=1" example:"Jane Roe"`
	Email           *string `json:"email" validate:"omitnil,email" example:"jane.roe@example.com"`
	Phone           *string `json:"phone" validate:"omitnil,min=1" example:"+15550100"`
	Gender          *string `json:"gender" validate:"omitnil,oneof=Male Female" example:"Female"`
	Photo           *string `json:"photo" example:"user-2.jpeg"`
	Password        string  `json:"password" swaggerignore:"true"`
	PasswordConfirm string  `json:"passwordConfirm" swaggerignore:"true"`
}

func (r UpdateMeRequestDTO) ChangesPassword() bool {
	return r.Password != "" || r.PasswordConfirm != ""
}

func (r UpdateMeRequestDTO) Profile() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Fullname: r.Fullname,
		Email:    r.Email,
		Phone:    r.Phone,
		Gender:   r.Gender,
		Photo:    r.Photo,
	}
}

type UserDTO struct {
	ID         uuid.UUID `json:"id" example:"0b5c3f3e-8a4e-4a8e-9c39-3f0f6a9d1e11"`
	Fullname   string    `json:"fullname" example:"Jane Doe"`
	Email      string    `json:"email" example:"jane@example.com"`
	Phone      string    `json:"phone" example:"+15550199"`
	DOB        string    `json:"dob" example:"1990-04-01"`
	Gender     string    `json:"gender" example:"Female"`
	Occupation string    `json:"occupation" example:"Engineer"`
	Country    string    `json:"country" example:"United Kingdom"`
	City       string    `json:"city" example:"London"`
	Zipcode    string    `json:"zipcode" example:"SW1A1AA"`
	Address    string    `json:"address" example:"10 Downing St"`
	Currency   string    `json:"currency" example:"USD"`
	Photo      string    `json:"photo,omitempty" example:"user-1.jpeg"`
	Role       string    `json:"role" example:"user"`
	Status     string    `json:"status" example:"pending"`
	CreatedAt  time.Time `json:"createdAt" example:"2024-03-01T10:00:00Z"`
}

func NewUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Fullname:   u.Fullname,
		Email:      u.Email,
		Phone:      u.Phone,
		DOB:        u.DOB.Format(dateLayout),
		Gender:     string(u.Gender),
		Occupation: u.Occupation,
		Country:    u.Country,
		City:       u.City,
		Zipcode:    u.Zipcode,
		Address:    u.Address,
		Currency:   u.Currency,
		Photo:      u.Photo,
		Role:       string(u.Role),
		Status:     string(u.Status),
		CreatedAt:  u.CreatedAt,
	}
}

func NewUserDTOs(users []domain.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, NewUserDTO(&users[i]))
	}
	return out
}

type SessionResponseDTO struct {
	Token  string     `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User   UserDTO    `json:"user"`
	Wallet *WalletDTO `json:"wallet,omitempty"`
}

type MeResponseDTO struct {
	User   UserDTO    `json:"user"`
	Wallet *WalletDTO `json:"wallet,omitempty"`
}

type UpdateStatusRequestDTO struct {
	Action string `json:"action" validate:"required,oneof=approve deny deactivate" example:"approve"`
}
