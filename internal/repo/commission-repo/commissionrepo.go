package commissionrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/pg"
)

// settingID is the primary key of the single commission settings row.
const settingID = 1

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetSetting(ctx context.Context) (*domain.CommissionSetting, error) {
	query := `
        SELECT id, percentage, updated_by, updated_at
        FROM commission_settings
        WHERE id = $1
    `
	var setting domain.CommissionSetting
	err := r.db.QueryRow(ctx, query, settingID).
		Scan(&setting.ID, &setting.Percentage, &setting.UpdatedBy, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get commission setting", zap.Error(err))
		return nil, err
	}
	return &setting, nil
}

func (r *Repository) UpsertSetting(ctx context.Context, percentage decimal.Decimal, updatedBy int) (*domain.CommissionSetting, error) {
	query := `
        INSERT INTO commission_settings (id, percentage, updated_by, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (id) DO UPDATE
        SET percentage = EXCLUDED.percentage, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
        RETURNING id, percentage, updated_by, updated_at
    `
	var setting domain.CommissionSetting
	err := r.db.QueryRow(ctx, query, settingID, percentage, updatedBy).
		Scan(&setting.ID, &setting.Percentage, &setting.UpdatedBy, &setting.UpdatedAt)
	if err != nil {
		zap.L().Error("failed to upsert commission setting", zap.Error(err))
		return nil, err
	}
	return &setting, nil
}
