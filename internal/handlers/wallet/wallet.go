package wallet

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/bankapi/internal/apierr"
	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/dto"
	"github.com/GlebRadaev/bankapi/pkg/auth"
	"github.com/GlebRadaev/bankapi/pkg/utils"
	"github.com/GlebRadaev/bankapi/pkg/validate"
)

//go:generate mockgen -source=wallet.go -destination=mock_wallet.go -package=wallet

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	Fund(ctx context.Context, userID uuid.UUID, account string, amount decimal.Decimal) (*domain.Wallet, error)
}

type WalletHandler struct {
	walletService Service
}

func New(walletService Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetWallet godoc
//
//	@Summary		Get the caller's wallet
//	@Description	Balances of the saving and checking accounts with their account numbers
//	@Tags			Wallet
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.WalletDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Wallet not found"
//	@Router			/api/users/me/wallet [get]
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	wallet, err := h.walletService.Get(r.Context(), principal.ID)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.NewWalletDTO(wallet))
}

// Fund godoc
//
//	@Summary	Credit a user's account
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"User ID"
//	@Param		request	body		dto.FundWalletRequestDTO	true	"Account and amount"
//	@Success	200		{object}	dto.WalletDTO
//	@Failure	400		{object}	utils.Response	"Invalid account or amount"
//	@Failure	404		{object}	utils.Response	"Wallet not found"
//	@Router		/api/users/{id}/wallets [patch]
func (h *WalletHandler) Fund(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	var req dto.FundWalletRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apierr.Respond(w, err)
		return
	}

	wallet, err := h.walletService.Fund(r.Context(), userID, req.Account, req.Amount)
	if err != nil {
		apierr.Respond(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, dto.NewWalletDTO(wallet))
}
