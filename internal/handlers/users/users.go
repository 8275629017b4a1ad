package users

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GlebRadaev/bankapi/internal/apierr"
	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/dto"
	"github.com/GlebRadaev/bankapi/pkg/utils"
	"github.com/GlebRadaev/bankapi/pkg/validate"
)

//go:generate mockgen -source=users.go -destination=mock_users.go -package=users

type Service interface {
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, action domain.StatusAction) (*domain.User, string, error)
}

type UserHandler struct {
	userService Service
}

func New(userService Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List godoc
//
//	@Summary	List customers
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		dto.UserDTO
//	@Failure	403	{object}	utils.Response	"Admin only"
//	@Router		/api/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.NewUserDTOs(users))
}

// Delete godoc
//
//	@Summary	Delete a user with all their records
//	@Tags		Admin
//	@Security	BearerAuth
//	@Param		id	path	string	true	"User ID"
//	@Success	204
//	@Failure	404	{object}	utils.Response	"User not found"
//	@Router		/api/users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	if err := h.userService.Delete(r.Context(), id); err != nil {
		apierr.Respond(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus godoc
//
//	@Summary		Approve, deny or deactivate an account
//	@Description	The account holder is notified by email; a failed notice is reported as a warning.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		dto.UpdateStatusRequestDTO	true	"Status action"
//	@Success		200		{object}	dto.UserDTO
//	@Failure		400		{object}	utils.Response	"Unknown action"
//	@Failure		404		{object}	utils.Response	"User not found"
//	@Failure		409		{object}	utils.Response	"Account already in that status"
//	@Router			/api/users/{id}/status [patch]
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	var req dto.UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apierr.Respond(w, err)
		return
	}

	user, warning, err := h.userService.UpdateStatus(r.Context(), id, domain.StatusAction(req.Action))
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithWarning(w, http.StatusOK, dto.NewUserDTO(user), warning)
}
