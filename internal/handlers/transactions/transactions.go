package transactions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GlebRadaev/bankapi/internal/apierr"
	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/dto"
	"github.com/GlebRadaev/bankapi/internal/service/transactionservice"
	"github.com/GlebRadaev/bankapi/pkg/auth"
	"github.com/GlebRadaev/bankapi/pkg/utils"
	"github.com/GlebRadaev/bankapi/pkg/validate"
)

//go:generate mockgen -source=transactions.go -destination=mock_transactions.go -package=transactions

type Service interface {
	CreateTransfer(ctx context.Context, userID uuid.UUID, req transactionservice.TransferRequest) (*domain.Transaction, error)
	CreateDeposit(ctx context.Context, userID uuid.UUID, req transactionservice.DepositRequest) (*domain.Deposit, error)
	List(ctx context.Context, caller domain.Principal, target *uuid.UUID) ([]domain.Record, error)
	Recent(ctx context.Context, caller domain.Principal, target *uuid.UUID, limit int) ([]domain.Record, error)
	ListDeposits(ctx context.Context) ([]domain.Deposit, error)
	Resolve(ctx context.Context, kind domain.RecordKind, id uuid.UUID, action domain.Action) (*transactionservice.Resolved, error)
}

type TransactionHandler struct {
	transactionService Service
}

func New(transactionService Service) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// Create godoc
//
//	@Summary		Request a transfer or a deposit
//	@Description	Stores a pending record. Balances change only when an admin approves it.
//	@Tags			Transactions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.CreateTransactionRequestDTO	true	"Transfer or deposit"
//	@Success		201		{object}	dto.RecordDTO
//	@Failure		400		{object}	utils.Response	"Invalid data or insufficient funds"
//	@Failure		401		{object}	utils.Response	"Incorrect transaction PIN"
//	@Failure		404		{object}	utils.Response	"Wallet not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/users/me/transactions [post]
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req dto.CreateTransactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apierr.Respond(w, err)
		return
	}

	var record dto.RecordDTO
	switch req.Type {
	case dto.TypeTransfer:
		tx, err := h.transactionService.CreateTransfer(r.Context(), principal.ID, req.Transfer())
		if err != nil {
			apierr.Respond(w, err)
			return
		}
		record = dto.NewTransferDTO(tx)
	default:
		deposit, err := h.transactionService.CreateDeposit(r.Context(), principal.ID, req.Deposit())
		if err != nil {
			apierr.Respond(w, err)
			return
		}
		record = dto.NewDepositDTO(deposit)
	}
	utils.RespondWithData(w, http.StatusCreated, record)
}

// List godoc
//
//	@Summary		Transaction history
//	@Description	Transfers and deposits merged, newest first. Admins see everyone unless user is given.
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			user	query		string	false	"Filter by user ID (admin only)"
//	@Success		200		{object}	dto.ListResponseDTO
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Router			/api/users/me/transactions [get]
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	target, err := targetUser(r)
	if err != nil {
		apierr.Respond(w, err)
		return
	}

	records, err := h.transactionService.List(r.Context(), principal, target)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.ListResponseDTO{
		Results: len(records),
		Items:   dto.NewRecordDTOs(records),
	})
}

// Recent godoc
//
//	@Summary	Most recent transfers and deposits
//	@Tags		Transactions
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int		false	"Number of records, 5 by default"
//	@Param		user	query		string	false	"Filter by user ID (admin only)"
//	@Success	200		{object}	dto.ListResponseDTO
//	@Router		/api/users/me/transactions/recent [get]
func (h *TransactionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	target, err := targetUser(r)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	// A missing or malformed limit falls back to the default.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.transactionService.Recent(r.Context(), principal, target, limit)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.ListResponseDTO{
		Results: len(records),
		Items:   dto.NewRecordDTOs(records),
	})
}

// ListDeposits godoc
//
//	@Summary	All deposit requests with their requesters
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ListResponseDTO
//	@Failure	403	{object}	utils.Response	"Admin only"
//	@Router		/api/users/me/transactions/deposits [get]
func (h *TransactionHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.transactionService.ListDeposits(r.Context())
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.ListResponseDTO{
		Results: len(deposits),
		Items:   dto.NewDepositDTOs(deposits),
	})
}

// Resolve godoc
//
//	@Summary		Approve or decline a transfer or deposit
//	@Description	Approving moves money; declining an approved record reverses it.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Record ID"
//	@Param			action	path		string	true	"approve or decline"
//	@Param			type	query		string	false	"transfer (default) or deposit"
//	@Success		200		{object}	dto.RecordDTO
//	@Failure		400		{object}	utils.Response	"Insufficient funds or invalid action"
//	@Failure		404		{object}	utils.Response	"Record or wallet not found"
//	@Failure		409		{object}	utils.Response	"Already processed"
//	@Router			/api/users/me/transactions/{id}/action/{action} [patch]
func (h *TransactionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	action := domain.Action(chi.URLParam(r, "action"))
	kind := domain.KindTransfer
	if t := r.URL.Query().Get("type"); t != "" {
		kind = domain.RecordKind(t)
	}

	resolved, err := h.transactionService.Resolve(r.Context(), kind, id, action)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{
		Status:  utils.StatusSuccess,
		Message: fmt.Sprintf("Transaction %sd successfully!", action),
		Warning: resolved.Warning,
		Data:    dto.NewRecordDTO(resolved.Record),
	})
}

func targetUser(r *http.Request) (*uuid.UUID, error) {
	raw := r.URL.Query().Get("user")
	if raw == "" {
		return nil, nil
	}
	id, err := domain.ParseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
