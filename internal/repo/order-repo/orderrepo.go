package orderrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const selectOrder = `
        SELECT id, buyer_id, seller_id, total_amount, payment_status, payment_method, commission_amount, seller_amount
        FROM orders
        WHERE id = $1`

func (r *Repository) FindByID(ctx context.Context, orderID int) (*domain.Order, error) {
	return r.findOne(ctx, selectOrder, orderID)
}

// FindByIDForUpdate locks the order row until the enclosing transaction ends.
// Payment creation and settlement of one order serialise on this lock.
func (r *Repository) FindByIDForUpdate(ctx context.Context, orderID int) (*domain.Order, error) {
	return r.findOne(ctx, selectOrder+` FOR UPDATE`, orderID)
}

func (r *Repository) findOne(ctx context.Context, query string, orderID int) (*domain.Order, error) {
	var order domain.Order
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&order.ID, &order.BuyerID, &order.SellerID, &order.TotalAmount,
		&order.PaymentStatus, &order.PaymentMethod, &order.CommissionAmount, &order.SellerAmount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Int("orderID", orderID), zap.Error(err))
		return nil, err
	}
	return &order, nil
}

// UpdatePayment writes the payment read-model fields mirrored from the
// current payment transaction.
func (r *Repository) UpdatePayment(ctx context.Context, order *domain.Order) error {
	query := `
        UPDATE orders
        SET payment_status = $1, payment_method = $2, commission_amount = $3, seller_amount = $4
        WHERE id = $5
    `
	_, err := r.db.Exec(ctx, query,
		order.PaymentStatus, order.PaymentMethod, order.CommissionAmount, order.SellerAmount, order.ID,
	)
	if err != nil {
		zap.L().Error("failed to update order payment", zap.Int("orderID", order.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) UpdatePaymentStatus(ctx context.Context, orderID int, status domain.OrderPaymentStatus) error {
	query := `
        UPDATE orders
        SET payment_status = $1
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, orderID)
	if err != nil {
		zap.L().Error("failed to update order payment status", zap.Int("orderID", orderID), zap.Error(err))
		return err
	}
	return nil
}
