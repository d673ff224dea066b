package commissionservice

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/marketsettle/internal/domain"
)

//go:generate mockgen -source=commissionservice.go -destination=mock_commissionservice.go -package=commissionservice

type SettingRepo interface {
	GetSetting(ctx context.Context) (*domain.CommissionSetting, error)
	UpsertSetting(ctx context.Context, percentage decimal.Decimal, updatedBy int) (*domain.CommissionSetting, error)
}

// RateCache holds the effective commission percentage for a short time.
type RateCache interface {
	Get(ctx context.Context) (decimal.Decimal, bool, error)
	Set(ctx context.Context, percentage decimal.Decimal) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	repo  SettingRepo
	cache RateCache
}

func New(repo SettingRepo, cache RateCache) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

var (
	ErrInvalidPercentage = errors.New("commission percentage must be between 0 and 100 with at most two decimal places")

	hundred = decimal.NewFromInt(100)
)

// Split divides total between the platform and the seller. The admin share is
// rounded half-up to cents and the seller share takes the remainder, so the
// two always add up to total.
func Split(total, percentage decimal.Decimal) domain.Commission {
	adminShare := total.Mul(percentage).Div(hundred).Round(2)
	return domain.Commission{
		TotalAmount:          total,
		CommissionPercentage: percentage,
		AdminShare:           adminShare,
		SellerShare:          total.Sub(adminShare),
	}
}

// Calculate splits the order total with the currently effective percentage.
// The order total is expected to be non-negative.
func (s *Service) Calculate(ctx context.Context, order *domain.Order) (*domain.Commission, error) {
	percentage, err := s.Percentage(ctx)
	if err != nil {
		return nil, err
	}
	commission := Split(order.TotalAmount, percentage)
	return &commission, nil
}

// Percentage returns the effective commission percentage, falling back to
// domain.DefaultCommissionPercentage when no setting is stored.
func (s *Service) Percentage(ctx context.Context) (decimal.Decimal, error) {
	percentage, ok, err := s.cache.Get(ctx)
	if err != nil {
		zap.L().Warn("commission rate cache read failed", zap.Error(err))
	} else if ok {
		return percentage, nil
	}

	setting, err := s.repo.GetSetting(ctx)
	if err != nil {
		zap.L().Error("failed to get commission setting", zap.Error(err))
		return decimal.Zero, err
	}

	percentage = domain.DefaultCommissionPercentage
	if setting != nil {
		percentage = setting.Percentage
	}

	if err := s.cache.Set(ctx, percentage); err != nil {
		zap.L().Warn("commission rate cache write failed", zap.Error(err))
	}
	return percentage, nil
}

func (s *Service) GetSetting(ctx context.Context) (*domain.CommissionSetting, error) {
	setting, err := s.repo.GetSetting(ctx)
	if err != nil {
		zap.L().Error("failed to get commission setting", zap.Error(err))
		return nil, err
	}
	if setting == nil {
		return &domain.CommissionSetting{Percentage: domain.DefaultCommissionPercentage}, nil
	}
	return setting, nil
}

// UpdateSetting stores a new percentage. Transactions created earlier keep the
// shares computed at their creation.
func (s *Service) UpdateSetting(ctx context.Context, percentage decimal.Decimal, updatedBy int) (*domain.CommissionSetting, error) {
	if percentage.IsNegative() || percentage.GreaterThan(hundred) || !percentage.Equal(percentage.Round(2)) {
		return nil, ErrInvalidPercentage
	}

	setting, err := s.repo.UpsertSetting(ctx, percentage, updatedBy)
	if err != nil {
		zap.L().Error("failed to update commission setting", zap.Error(err))
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		zap.L().Warn("commission rate cache invalidation failed", zap.Error(err))
	}

	zap.L().Info("commission setting updated",
		zap.String("percentage", setting.Percentage.StringFixed(2)), zap.Int("updatedBy", updatedBy))
	return setting, nil
}

type noopCache struct{}

func (noopCache) Get(context.Context) (decimal.Decimal, bool, error) { return decimal.Zero, false, nil }
func (noopCache) Set(context.Context, decimal.Decimal) error         { return nil }
func (noopCache) Invalidate(context.Context) error                   { return nil }
