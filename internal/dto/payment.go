package dto

type CreatePaymentRequestDTO struct {
	PaymentMethod string `json:"payment_method" example:"hesab_pay"`
}

type ReceiptRequestDTO struct {
	ReceiptPath string `json:"receipt_path" example:"receipts/5/transfer.jpg"`
}

type RejectRequestDTO struct {
	Reason string `json:"reason,omitempty" example:"receipt does not match the order total"`
}

// PaymentWebhookDTO is the body a payment gateway posts on a status change.
type PaymentWebhookDTO struct {
	TransactionID int    `json:"transaction_id" example:"10"`
	Status        string `json:"status" example:"COMPLETED"`
	Reference     string `json:"reference" example:"HP-2024-000123"`
	Reason        string `json:"reason,omitempty" example:"insufficient funds"`
}

type PaymentTransactionResponseDTO struct {
	ID                   int    `json:"id" example:"10"`
	OrderID              int    `json:"order_id" example:"5"`
	Amount               string `json:"amount" example:"250.00"`
	AdminShare           string `json:"admin_share" example:"7.50"`
	SellerShare          string `json:"seller_share" example:"242.50"`
	CommissionPercentage string `json:"commission_percentage" example:"3.00"`
	PaymentMethod        string `json:"payment_method" example:"hesab_pay"`
	Status               string `json:"status" example:"pending"`
	Reference            string `json:"reference,omitempty" example:"HP-2024-000123"`
	CreatedAt            string `json:"created_at" example:"2024-11-02T16:09:57+03:00"`
	UpdatedAt            string `json:"updated_at" example:"2024-11-02T16:12:04+03:00"`
}
