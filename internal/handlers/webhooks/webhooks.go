package webhooks

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/dto"
	"github.com/GlebRadaev/marketsettle/internal/service/transactionservice"
	"github.com/GlebRadaev/marketsettle/pkg/utils"
)

//go:generate mockgen -source=webhooks.go -destination=mock_webhooks.go -package=webhooks

const SecretHeader = "X-Webhook-Secret"

type Service interface {
	Transition(ctx context.Context, req transactionservice.TransitionRequest) (*domain.PaymentTransaction, error)
}

type WebhookHandler struct {
	transactionService Service
	secret             []byte
}

// New builds the gateway callback handler. An empty secret rejects every
// callback.
func New(transactionService Service, secret string) *WebhookHandler {
	return &WebhookHandler{
		transactionService: transactionService,
		secret:             []byte(secret),
	}
}

// PaymentStatus godoc
//
//	@Summary		Gateway payment callback
//	@Description	HesabPay and MoMo report the final payment status here. Redelivered callbacks are acknowledged without side effects.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			X-Webhook-Secret	header		string					true	"Shared gateway secret"
//	@Param			request				body		dto.PaymentWebhookDTO	true	"Gateway status"
//	@Success		200					{object}	dto.PaymentTransactionResponseDTO
//	@Success		202					{object}	utils.Response	"Status is not final yet"
//	@Failure		400					{object}	utils.Response	"Malformed request"
//	@Failure		401					{object}	utils.Response	"Bad secret"
//	@Failure		404					{object}	utils.Response	"Payment transaction not found"
//	@Failure		409					{object}	utils.Response	"Transition not allowed"
//	@Failure		500					{object}	utils.Response	"Internal server error"
//	@Router			/api/webhooks/payments [post]
func (h *WebhookHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	if len(h.secret) == 0 || subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), h.secret) != 1 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.PaymentWebhookDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, final := domain.GatewayStatus(req.Status)
	if !final {
		zap.L().Info("non-final gateway status ignored",
			zap.Int("transactionID", req.TransactionID), zap.String("status", req.Status))
		utils.RespondWithJSON(w, http.StatusAccepted, utils.Response{Message: "status is not final"})
		return
	}

	tx, err := h.transactionService.Transition(r.Context(), transactionservice.TransitionRequest{
		TransactionID: req.TransactionID,
		Target:        target,
		Reference:     req.Reference,
		Reason:        req.Reason,
		FromGateway:   true,
	})
	if err != nil {
		switch {
		case errors.Is(err, transactionservice.ErrTransactionNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, transactionservice.ErrInvalidTransition),
			errors.Is(err, transactionservice.ErrOrderAlreadyPaid):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FromTransaction(tx))
}
