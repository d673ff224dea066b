package dto

type WalletResponseDTO struct {
	AccountID int    `json:"account_id" example:"7"`
	Role      string `json:"role" example:"seller"`
	Balance   string `json:"balance" example:"242.50"`
}
