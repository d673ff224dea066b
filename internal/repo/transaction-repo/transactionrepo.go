package transactionrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/pg"
)

const columns = `id, order_id, amount, admin_share, seller_share, commission_percentage,
        payment_method, status, reference, credited_at, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scan(row pgx.Row, tx *domain.PaymentTransaction) error {
	return row.Scan(
		&tx.ID, &tx.OrderID, &tx.Amount, &tx.AdminShare, &tx.SellerShare, &tx.CommissionPercentage,
		&tx.PaymentMethod, &tx.Status, &tx.Reference, &tx.CreditedAt, &tx.CreatedAt, &tx.UpdatedAt,
	)
}

func (r *Repository) Create(ctx context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
	query := `
        INSERT INTO payment_transactions
            (order_id, amount, admin_share, seller_share, commission_percentage, payment_method, status, reference)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		tx.OrderID, tx.Amount, tx.AdminShare, tx.SellerShare, tx.CommissionPercentage,
		tx.PaymentMethod, tx.Status, tx.Reference,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save payment transaction", zap.Int("orderID", tx.OrderID), zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.PaymentTransaction, error) {
	query := `SELECT ` + columns + ` FROM payment_transactions WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByIDForUpdate locks the row until the enclosing transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.PaymentTransaction, error) {
	query := `SELECT ` + columns + ` FROM payment_transactions WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *Repository) findOne(ctx context.Context, query string, id int) (*domain.PaymentTransaction, error) {
	var tx domain.PaymentTransaction
	err := scan(r.db.QueryRow(ctx, query, id), &tx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find payment transaction", zap.Int("transactionID", id), zap.Error(err))
		return nil, err
	}
	return &tx, nil
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID int) ([]domain.PaymentTransaction, error) {
	query := `SELECT ` + columns + ` FROM payment_transactions WHERE order_id = $1 ORDER BY created_at DESC`
	return r.findMany(ctx, query, orderID)
}

// FindPendingGateway returns pending gateway payments created before the given
// moment that carry a gateway reference, oldest first.
func (r *Repository) FindPendingGateway(ctx context.Context, before time.Time, limit uint32) ([]domain.PaymentTransaction, error) {
	query := `SELECT ` + columns + ` FROM payment_transactions
        WHERE status = 'pending' AND payment_method IN ('hesab_pay', 'momo') AND reference <> '' AND created_at < $1
        ORDER BY created_at ASC
        LIMIT $2`
	return r.findMany(ctx, query, before, int(limit))
}

func (r *Repository) findMany(ctx context.Context, query string, args ...any) ([]domain.PaymentTransaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get payment transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var txs []domain.PaymentTransaction
	for rows.Next() {
		var tx domain.PaymentTransaction
		if err := scan(rows, &tx); err != nil {
			zap.L().Error("can't scan payment transaction row", zap.Error(err))
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("payment transaction rows error", zap.Error(err))
		return nil, err
	}
	return txs, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status domain.TransactionStatus, reference string) (*domain.PaymentTransaction, error) {
	query := `
        UPDATE payment_transactions
        SET status = $1, reference = COALESCE(NULLIF($2, ''), reference), updated_at = now()
        WHERE id = $3
        RETURNING ` + columns
	var tx domain.PaymentTransaction
	err := scan(r.db.QueryRow(ctx, query, status, reference, id), &tx)
	if err != nil {
		zap.L().Error("failed to update payment transaction status", zap.Int("transactionID", id), zap.Error(err))
		return nil, err
	}
	return &tx, nil
}

// MarkCredited sets credited_at once. It reports false when the marker was
// already set or the row does not exist.
func (r *Repository) MarkCredited(ctx context.Context, id int) (bool, error) {
	query := `
        UPDATE payment_transactions
        SET credited_at = now()
        WHERE id = $1 AND credited_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		zap.L().Error("failed to mark payment transaction credited", zap.Int("transactionID", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
