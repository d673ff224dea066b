package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/dto"
	"github.com/GlebRadaev/marketsettle/internal/service/transactionservice"
	"github.com/GlebRadaev/marketsettle/pkg/utils"
)

//go:generate mockgen -source=payments.go -destination=mock_payments.go -package=payments

type Service interface {
	Quote(ctx context.Context, orderID int) (*domain.Commission, error)
	Create(ctx context.Context, orderID int, method domain.PaymentMethod) (*domain.PaymentTransaction, error)
	ListByOrder(ctx context.Context, orderID int) ([]domain.PaymentTransaction, error)
	Get(ctx context.Context, id int) (*domain.PaymentTransaction, error)
	Transition(ctx context.Context, req transactionservice.TransitionRequest) (*domain.PaymentTransaction, error)
}

type PaymentHandler struct {
	transactionService Service
}

func New(transactionService Service) *PaymentHandler {
	return &PaymentHandler{
		transactionService: transactionService,
	}
}

// GetCommission godoc
//
//	@Summary		Quote order commission
//	@Description	Split the order total into admin and seller shares at the current commission rate.
//	@Tags			Payments
//	@Security		BearerAuth
//	@Produce		json
//	@Param			orderID	path		int	true	"Order ID"
//	@Success		200		{object}	dto.CommissionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid order id"
//	@Failure		404		{object}	utils.Response	"Order not found"
//	@Failure		422		{object}	utils.Response	"Negative order total"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/orders/{orderID}/commission [get]
func (h *PaymentHandler) GetCommission(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	commission, err := h.transactionService.Quote(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FromCommission(orderID, commission))
}

// CreatePayment godoc
//
//	@Summary		Start order payment
//	@Description	Create a pending payment transaction for the order. The commission split is fixed at this moment.
//	@Tags			Payments
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			orderID	path		int							true	"Order ID"
//	@Param			request	body		dto.CreatePaymentRequestDTO	true	"Payment method"
//	@Success		201		{object}	dto.PaymentTransactionResponseDTO
//	@Failure		400		{object}	utils.Response	"Malformed request"
//	@Failure		403		{object}	utils.Response	"Buyer role required"
//	@Failure		404		{object}	utils.Response	"Order not found"
//	@Failure		409		{object}	utils.Response	"Order already paid or payment in progress"
//	@Failure		422		{object}	utils.Response	"Unknown payment method"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/orders/{orderID}/payments [post]
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	var req dto.CreatePaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.transactionService.Create(r.Context(), orderID, domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.FromTransaction(tx))
}

// ListPayments godoc
//
//	@Summary		List order payments
//	@Description	Return every payment transaction of the order, newest first.
//	@Tags			Payments
//	@Security		BearerAuth
//	@Produce		json
//	@Param			orderID	path		int	true	"Order ID"
//	@Success		200		{array}		dto.PaymentTransactionResponseDTO
//	@Success		204		{object}	utils.Response	"No payments yet"
//	@Failure		400		{object}	utils.Response	"Invalid order id"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/orders/{orderID}/payments [get]
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	txs, err := h.transactionService.ListByOrder(r.Context(), orderID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(txs) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}

	response := make([]dto.PaymentTransactionResponseDTO, 0, len(txs))
	for i := range txs {
		response = append(response, dto.FromTransaction(&txs[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetPayment godoc
//
//	@Summary		Get payment transaction
//	@Tags			Payments
//	@Security		BearerAuth
//	@Produce		json
//	@Param			transactionID	path		int	true	"Payment transaction ID"
//	@Success		200				{object}	dto.PaymentTransactionResponseDTO
//	@Failure		400				{object}	utils.Response	"Invalid transaction id"
//	@Failure		404				{object}	utils.Response	"Payment transaction not found"
//	@Failure		500				{object}	utils.Response	"Internal server error"
//	@Router			/api/payments/{transactionID} [get]
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "transactionID")
	if !ok {
		return
	}
	tx, err := h.transactionService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FromTransaction(tx))
}

// SubmitReceipt godoc
//
//	@Summary		Submit bank transfer receipt
//	@Description	Attach the uploaded receipt and move the payment to waiting_verification.
//	@Tags			Payments
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			transactionID	path		int						true	"Payment transaction ID"
//	@Param			request			body		dto.ReceiptRequestDTO	true	"Stored receipt path"
//	@Success		200				{object}	dto.PaymentTransactionResponseDTO
//	@Failure		400				{object}	utils.Response	"Malformed request"
//	@Failure		404				{object}	utils.Response	"Payment transaction not found"
//	@Failure		409				{object}	utils.Response	"Transition not allowed"
//	@Failure		500				{object}	utils.Response	"Internal server error"
//	@Router			/api/payments/{transactionID}/receipt [post]
func (h *PaymentHandler) SubmitReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "transactionID")
	if !ok {
		return
	}
	var req dto.ReceiptRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReceiptPath == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "receipt_path is required")
		return
	}
	h.transition(w, r, transactionservice.TransitionRequest{
		TransactionID: id,
		Target:        domain.StatusWaitingVerification,
		Reference:     req.ReceiptPath,
	})
}

// Approve godoc
//
//	@Summary		Approve payment
//	@Description	Confirm the payment and credit the admin and seller wallets atomically.
//	@Tags			Payments
//	@Security		BearerAuth
//	@Produce		json
//	@Param			transactionID	path		int	true	"Payment transaction ID"
//	@Success		200				{object}	dto.PaymentTransactionResponseDTO
//	@Failure		403				{object}	utils.Response	"Admin role required"
//	@Failure		404				{object}	utils.Response	"Payment transaction not found"
//	@Failure		409				{object}	utils.Response	"Transition not allowed"
//	@Failure		500				{object}	utils.Response	"Internal server error"
//	@Router			/api/payments/{transactionID}/approve [post]
func (h *PaymentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "transactionID")
	if !ok {
		return
	}
	h.transition(w, r, transactionservice.TransitionRequest{
		TransactionID: id,
		Target:        domain.StatusCompleted,
	})
}

// Reject godoc
//
//	@Summary		Reject payment
//	@Tags			Payments
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			transactionID	path		int						true	"Payment transaction ID"
//	@Param			request			body		dto.RejectRequestDTO	false	"Rejection reason"
//	@Success		200				{object}	dto.PaymentTransactionResponseDTO
//	@Failure		403				{object}	utils.Response	"Admin role required"
//	@Failure		404				{object}	utils.Response	"Payment transaction not found"
//	@Failure		409				{object}	utils.Response	"Transition not allowed"
//	@Failure		500				{object}	utils.Response	"Internal server error"
//	@Router			/api/payments/{transactionID}/reject [post]
func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "transactionID")
	if !ok {
		return
	}
	var req dto.RejectRequestDTO
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	h.transition(w, r, transactionservice.TransitionRequest{
		TransactionID: id,
		Target:        domain.StatusRejected,
		Reason:        req.Reason,
	})
}

func (h *PaymentHandler) transition(w http.ResponseWriter, r *http.Request, req transactionservice.TransitionRequest) {
	tx, err := h.transactionService.Transition(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FromTransaction(tx))
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transactionservice.ErrTransactionNotFound),
		errors.Is(err, transactionservice.ErrOrderNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, transactionservice.ErrInvalidTransition),
		errors.Is(err, transactionservice.ErrOrderAlreadyPaid),
		errors.Is(err, transactionservice.ErrPaymentInProgress):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, transactionservice.ErrInvalidPaymentMethod),
		errors.Is(err, transactionservice.ErrNegativeAmount):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
