package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCommissionPercentage applies when no commission setting is stored.
var DefaultCommissionPercentage = decimal.RequireFromString("2.00")

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

type Account struct {
	ID            int             `db:"id"`
	Role          Role            `db:"role"`
	WalletBalance decimal.Decimal `db:"wallet_balance"`
}

type CommissionSetting struct {
	ID         int             `db:"id"`
	Percentage decimal.Decimal `db:"percentage"`
	UpdatedBy  *int            `db:"updated_by"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// Commission is the split of an order total between the platform and the seller.
type Commission struct {
	TotalAmount          decimal.Decimal
	CommissionPercentage decimal.Decimal
	AdminShare           decimal.Decimal
	SellerShare          decimal.Decimal
}

type OrderPaymentStatus string

const (
	OrderPaymentUnpaid               OrderPaymentStatus = "unpaid"
	OrderPaymentPending              OrderPaymentStatus = "pending"
	OrderPaymentAwaitingVerification OrderPaymentStatus = "awaiting_verification"
	OrderPaymentPaid                 OrderPaymentStatus = "paid"
	OrderPaymentFailed               OrderPaymentStatus = "failed"
)

type Order struct {
	ID               int                `db:"id"`
	BuyerID          int                `db:"buyer_id"`
	SellerID         int                `db:"seller_id"`
	TotalAmount      decimal.Decimal    `db:"total_amount"`
	PaymentStatus    OrderPaymentStatus `db:"payment_status"`
	PaymentMethod    *PaymentMethod     `db:"payment_method"`
	CommissionAmount decimal.Decimal    `db:"commission_amount"`
	SellerAmount     decimal.Decimal    `db:"seller_amount"`
}

type PaymentMethod string

const (
	PaymentMethodHesabPay     PaymentMethod = "hesab_pay"
	PaymentMethodMomo         PaymentMethod = "momo"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCOD          PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodHesabPay, PaymentMethodMomo, PaymentMethodBankTransfer, PaymentMethodCOD:
		return true
	}
	return false
}

// Gateway reports whether payments with this method are confirmed by an
// external gateway rather than by an admin.
func (m PaymentMethod) Gateway() bool {
	return m == PaymentMethodHesabPay || m == PaymentMethodMomo
}

type TransactionStatus string

const (
	// StatusPending transaction created, payment not confirmed yet;
	StatusPending TransactionStatus = "pending"
	// StatusWaitingVerification bank transfer receipt uploaded, awaiting review;
	StatusWaitingVerification TransactionStatus = "waiting_verification"
	// StatusCompleted payment confirmed, wallets credited;
	StatusCompleted TransactionStatus = "completed"
	// StatusRejected payment failed or was declined.
	StatusRejected TransactionStatus = "rejected"
)

var transitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:             {StatusCompleted, StatusWaitingVerification, StatusRejected},
	StatusWaitingVerification: {StatusCompleted, StatusRejected},
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusWaitingVerification, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// GatewayStatus maps a status reported by a payment gateway to the terminal
// state it settles the transaction into. Statuses that are not final yet,
// such as PENDING or PROCESSING, report false.
func GatewayStatus(status string) (TransactionStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "COMPLETED", "SUCCESS", "PAID":
		return StatusCompleted, true
	case "FAILED", "REJECTED", "DECLINED", "CANCELLED":
		return StatusRejected, true
	}
	return "", false
}

type PaymentTransaction struct {
	ID                   int               `db:"id"`
	OrderID              int               `db:"order_id"`
	Amount               decimal.Decimal   `db:"amount"`
	AdminShare           decimal.Decimal   `db:"admin_share"`
	SellerShare          decimal.Decimal   `db:"seller_share"`
	CommissionPercentage decimal.Decimal   `db:"commission_percentage"`
	PaymentMethod        PaymentMethod     `db:"payment_method"`
	Status               TransactionStatus `db:"status"`
	Reference            string            `db:"reference"`
	CreditedAt           *time.Time        `db:"credited_at"`
	CreatedAt            time.Time         `db:"created_at"`
	UpdatedAt            time.Time         `db:"updated_at"`
}
