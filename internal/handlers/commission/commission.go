package commission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/dto"
	"github.com/GlebRadaev/marketsettle/internal/service/commissionservice"
	"github.com/GlebRadaev/marketsettle/pkg/auth"
	"github.com/GlebRadaev/marketsettle/pkg/utils"
)

//go:generate mockgen -source=commission.go -destination=mock_commission.go -package=commission

type Service interface {
	GetSetting(ctx context.Context) (*domain.CommissionSetting, error)
	UpdateSetting(ctx context.Context, percentage decimal.Decimal, updatedBy int) (*domain.CommissionSetting, error)
}

type CommissionHandler struct {
	commissionService Service
}

func New(commissionService Service) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
	}
}

// GetSetting godoc
//
//	@Summary		Get commission rate
//	@Description	Return the platform commission percentage in effect. The default of 2.00 is reported when none was configured.
//	@Tags			Commission
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.CommissionSettingResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/commission [get]
func (h *CommissionHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := h.commissionService.GetSetting(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FromSetting(setting))
}

// UpdateSetting godoc
//
//	@Summary		Set commission rate
//	@Description	Replace the platform commission percentage. Existing payment transactions keep the split they were created with.
//	@Tags			Commission
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.UpdateCommissionRequestDTO	true	"New percentage"
//	@Success		200		{object}	dto.CommissionSettingResponseDTO
//	@Failure		400		{object}	utils.Response	"Malformed request"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Admin role required"
//	@Failure		422		{object}	utils.Response	"Percentage out of range"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/commission [put]
func (h *CommissionHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCommissionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	percentage, err := decimal.NewFromString(req.Percentage)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "percentage must be a decimal number")
		return
	}

	setting, err := h.commissionService.UpdateSetting(r.Context(), percentage, auth.AccountID(r.Context()))
	if err != nil {
		if errors.Is(err, commissionservice.ErrInvalidPercentage) {
			utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FromSetting(setting))
}
