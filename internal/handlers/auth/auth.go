package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/GlebRadaev/bankapi/internal/apierr"
	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/dto"
	"github.com/GlebRadaev/bankapi/internal/service/authservice"
	"github.com/GlebRadaev/bankapi/pkg/auth"
	"github.com/GlebRadaev/bankapi/pkg/utils"
	"github.com/GlebRadaev/bankapi/pkg/validate"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=auth

const loggedOut = "loggedout"

type Service interface {
	Signup(ctx context.Context, user *domain.User, password, pin string) (*authservice.Session, error)
	Login(ctx context.Context, email, password string) (*authservice.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.Wallet, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, current, password string) (*authservice.Session, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error)
	DeactivateMe(ctx context.Context, userID uuid.UUID) error
}

type AuthHandler struct {
	authService Service
	now         func() time.Time
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		now:         time.Now,
	}
}

// Signup godoc
//
//	@Summary		Register a new user
//	@Description	Create a pending user account with an empty wallet and log it in
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.SignupRequestDTO	true	"Signup request body"
//	@Success		201		{object}	dto.SessionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		409		{object}	utils.Response	"User already exists"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/users/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apierr.Respond(w, err)
		return
	}
	session, err := h.authService.Signup(r.Context(), req.User(), req.Password, req.Pin)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	h.respondWithSession(w, http.StatusCreated, session)
}

// Login godoc
//
//	@Summary		Authenticate user
//	@Description	Log in with email and password and get a JWT token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.SessionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Incorrect email or password"
//	@Failure		403		{object}	utils.Response	"Account deactivated or denied"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/users/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apierr.Respond(w, err)
		return
	}
	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	h.respondWithSession(w, http.StatusOK, session)
}

// Logout godoc
//
//	@Summary	Log out
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	utils.Response
//	@Router		/api/users/logout [get]
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    loggedOut,
		Path:     "/",
		Expires:  h.now().Add(10 * time.Second),
		HttpOnly: true,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Status: utils.StatusSuccess})
}

// Me godoc
//
//	@Summary	Current user
//	@Tags		Users
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	dto.MeResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Failure	404	{object}	utils.Response	"User not found"
//	@Router		/api/users/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	user, wallet, err := h.authService.Me(r.Context(), principal.ID)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.MeResponseDTO{
		User:   dto.NewUserDTO(user),
		Wallet: dto.NewWalletDTO(wallet),
	})
}

// UpdatePassword godoc
//
//	@Summary	Change password
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		dto.UpdatePasswordRequestDTO	true	"Current and new password"
//	@Success	200		{object}	dto.SessionResponseDTO
//	@Failure	400		{object}	utils.Response	"Invalid request body"
//	@Failure	401		{object}	utils.Response	"Current password is wrong"
//	@Router		/api/users/updateMyPassword [patch]
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apierr.Respond(w, err)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	session, err := h.authService.UpdatePassword(r.Context(), principal.ID, req.PasswordCurrent, req.Password)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	h.respondWithSession(w, http.StatusOK, session)
}

// UpdateMe godoc
//
//	@Summary		Update own profile
//	@Description	Change fullname, email, phone, gender or photo. Passwords are changed through updateMyPassword
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.UpdateMeRequestDTO	true	"Fields to change"
//	@Success		200		{object}	dto.MeResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body or password fields present"
//	@Failure		409		{object}	utils.Response	"Email or phone already in use"
//	@Router			/api/users/updateMe [patch]
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateMeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChangesPassword() {
		verr := domain.NewValidationError()
		verr.Add("password", "This route is not for password updates, please use /updateMyPassword")
		apierr.Respond(w, verr)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierr.Respond(w, err)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	user, err := h.authService.UpdateMe(r.Context(), principal.ID, req.Profile())
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.MeResponseDTO{User: dto.NewUserDTO(user)})
}

// DeleteMe godoc
//
//	@Summary		Deactivate own account
//	@Description	The account is kept but can no longer log in
//	@Tags			Users
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/users/deleteMe [delete]
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	if err := h.authService.DeactivateMe(r.Context(), principal.ID); err != nil {
		apierr.Respond(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    loggedOut,
		Path:     "/",
		Expires:  h.now().Add(10 * time.Second),
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, code int, session *authservice.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
	})
	w.Header().Set("Authorization", "Bearer "+session.Token)
	utils.RespondWithData(w, code, dto.SessionResponseDTO{
		Token:  session.Token,
		User:   dto.NewUserDTO(session.User),
		Wallet: dto.NewWalletDTO(session.Wallet),
	})
}
