package accountrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
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

func (r *Repository) FindByID(ctx context.Context, accountID int) (*domain.Account, error) {
	query := `
        SELECT id, role, wallet_balance
        FROM accounts
        WHERE id = $1
    `
	var account domain.Account
	err := r.db.QueryRow(ctx, query, accountID).Scan(&account.ID, &account.Role, &account.WalletBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get account", zap.Int("accountID", accountID), zap.Error(err))
		return nil, err
	}
	return &account, nil
}

// FindFirstByRole returns the account with the lowest id holding role, or nil.
func (r *Repository) FindFirstByRole(ctx context.Context, role domain.Role) (*domain.Account, error) {
	query := `
        SELECT id, role, wallet_balance
        FROM accounts
        WHERE role = $1
        ORDER BY id ASC
        LIMIT 1
    `
	var account domain.Account
	err := r.db.QueryRow(ctx, query, role).Scan(&account.ID, &account.Role, &account.WalletBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to find account by role", zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}
	return &account, nil
}

// AddToWallet increments the wallet balance in place. The increment is done by
// the database so concurrent settlements never lose an update. It reports
// false when no account row matched.
func (r *Repository) AddToWallet(ctx context.Context, accountID int, delta decimal.Decimal) (bool, error) {
	query := `
        UPDATE accounts
        SET wallet_balance = wallet_balance + $1
        WHERE id = $2
    `
	tag, err := r.db.Exec(ctx, query, delta, accountID)
	if err != nil {
		zap.L().Error("failed to credit wallet", zap.Int("accountID", accountID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
