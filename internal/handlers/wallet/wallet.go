package wallet

import (
	"context"
	"errors"
	"net/http"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/dto"
	"github.com/GlebRadaev/marketsettle/internal/service/walletservice"
	"github.com/GlebRadaev/marketsettle/pkg/auth"
	"github.com/GlebRadaev/marketsettle/pkg/utils"
)

//go:generate mockgen -source=wallet.go -destination=mock_wallet.go -package=wallet

type Service interface {
	GetWallet(ctx context.Context, accountID int) (*domain.Account, error)
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
//	@Summary		Get own wallet
//	@Description	Return the wallet balance of the authenticated account.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.WalletResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Account not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet [get]
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	account, err := h.walletService.GetWallet(r.Context(), auth.AccountID(r.Context()))
	if err != nil {
		if errors.Is(err, walletservice.ErrAccountNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FromAccount(account))
}
