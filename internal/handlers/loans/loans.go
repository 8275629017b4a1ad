package loans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GlebRadaev/bankapi/internal/apierr"
	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/dto"
	"github.com/GlebRadaev/bankapi/internal/service/loanservice"
	"github.com/GlebRadaev/bankapi/pkg/auth"
	"github.com/GlebRadaev/bankapi/pkg/utils"
	"github.com/GlebRadaev/bankapi/pkg/validate"
)

//go:generate mockgen -source=loans.go -destination=mock_loans.go -package=loans

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req loanservice.LoanRequest) (*domain.Loan, error)
	List(ctx context.Context, caller domain.Principal) ([]domain.Loan, error)
	Resolve(ctx context.Context, id uuid.UUID, action domain.Action) (*domain.Loan, string, error)
}

type LoanHandler struct {
	loanService Service
}

func New(loanService Service) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// Create godoc
//
//	@Summary	Apply for a loan
//	@Tags		Loans
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		dto.CreateLoanRequestDTO	true	"Loan application"
//	@Success	201		{object}	dto.LoanDTO
//	@Failure	400		{object}	utils.Response	"Invalid data"
//	@Failure	403		{object}	utils.Response	"Only customers may apply"
//	@Router		/api/users/me/loans [post]
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req dto.CreateLoanRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apierr.Respond(w, err)
		return
	}

	loan, err := h.loanService.Create(r.Context(), principal.ID, req.Loan())
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, dto.NewLoanDTO(loan))
}

// List godoc
//
//	@Summary		Loan applications
//	@Description	Customers see their own loans; admins see every loan with its requester.
//	@Tags			Loans
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ListResponseDTO
//	@Router			/api/users/me/loans [get]
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	loans, err := h.loanService.List(r.Context(), principal)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.ListResponseDTO{
		Results: len(loans),
		Items:   dto.NewLoanDTOs(loans),
	})
}

// Resolve godoc
//
//	@Summary	Approve or reject a loan
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Loan ID"
//	@Param		action	path		string	true	"approve or reject"
//	@Success	200		{object}	dto.LoanDTO
//	@Failure	400		{object}	utils.Response	"Invalid action"
//	@Failure	404		{object}	utils.Response	"Loan not found"
//	@Failure	409		{object}	utils.Response	"Already processed"
//	@Router		/api/users/me/loans/{id}/action/{action} [patch]
func (h *LoanHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	action := domain.Action(chi.URLParam(r, "action"))

	loan, warning, err := h.loanService.Resolve(r.Context(), id, action)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{
		Status:  utils.StatusSuccess,
		Message: fmt.Sprintf("Loan %s successfully!", loan.Status),
		Warning: warning,
		Data:    dto.NewLoanDTO(loan),
	})
}
