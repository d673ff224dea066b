package dto

type CommissionSettingResponseDTO struct {
	Percentage string `json:"percentage" example:"2.00"`
	UpdatedBy  *int   `json:"updated_by,omitempty" example:"1"`
	UpdatedAt  string `json:"updated_at,omitempty" example:"2024-11-02T16:09:57+03:00"`
}

type UpdateCommissionRequestDTO struct {
	Percentage string `json:"percentage" example:"3.50"`
}

type CommissionResponseDTO struct {
	OrderID              int    `json:"order_id" example:"5"`
	TotalAmount          string `json:"total_amount" example:"250.00"`
	CommissionPercentage string `json:"commission_percentage" example:"3.00"`
	AdminShare           string `json:"admin_share" example:"7.50"`
	SellerShare          string `json:"seller_share" example:"242.50"`
}
