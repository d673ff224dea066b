package dto

import (
	"time"

	"github.com/GlebRadaev/marketsettle/internal/domain"
)

func FromCommission(orderID int, c *domain.Commission) CommissionResponseDTO {
	return CommissionResponseDTO{
		OrderID:              orderID,
		TotalAmount:          c.TotalAmount.StringFixed(2),
		CommissionPercentage: c.CommissionPercentage.StringFixed(2),
		AdminShare:           c.AdminShare.StringFixed(2),
		SellerShare:          c.SellerShare.StringFixed(2),
	}
}

func FromSetting(s *domain.CommissionSetting) CommissionSettingResponseDTO {
	resp := CommissionSettingResponseDTO{
		Percentage: s.Percentage.StringFixed(2),
		UpdatedBy:  s.UpdatedBy,
	}
	if !s.UpdatedAt.IsZero() {
		resp.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func FromTransaction(tx *domain.PaymentTransaction) PaymentTransactionResponseDTO {
	return PaymentTransactionResponseDTO{
		ID:                   tx.ID,
		OrderID:              tx.OrderID,
		Amount:               tx.Amount.StringFixed(2),
		AdminShare:           tx.AdminShare.StringFixed(2),
		SellerShare:          tx.SellerShare.StringFixed(2),
		CommissionPercentage: tx.CommissionPercentage.StringFixed(2),
		PaymentMethod:        string(tx.PaymentMethod),
		Status:               string(tx.Status),
		Reference:            tx.Reference,
		CreatedAt:            tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            tx.UpdatedAt.Format(time.RFC3339),
	}
}

func FromAccount(a *domain.Account) WalletResponseDTO {
	return WalletResponseDTO{
		AccountID: a.ID,
		Role:      string(a.Role),
		Balance:   a.WalletBalance.StringFixed(2),
	}
}
