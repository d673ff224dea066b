package commissionservice

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/marketsettle/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func NewMock(t *testing.T) (*Service, *MockSettingRepo, *MockRateCache) {
	ctrl := gomock.NewController(t)
	repo := NewMockSettingRepo(ctrl)
	cache := NewMockRateCache(ctrl)
	return New(repo, cache), repo, cache
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name        string
		total       string
		percentage  string
		adminShare  string
		sellerShare string
	}{
		{"Default rate on 100", "100.00", "2.00", "2.00", "98.00"},
		{"Three percent on 250", "250.00", "3", "7.50", "242.50"},
		{"Zero total", "0", "2.00", "0", "0"},
		{"Zero percent", "99.99", "0", "0", "99.99"},
		{"Full percent", "99.99", "100", "99.99", "0"},
		{"Half cent rounds up", "0.25", "2.00", "0.01", "0.24"},
		{"Below half cent rounds down", "0.24", "2.00", "0", "0.24"},
		{"Fractional percentage", "19.99", "2.75", "0.55", "19.44"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Split(dec(tt.total), dec(tt.percentage))

			assertDecimal(t, tt.adminShare, c.AdminShare)
			assertDecimal(t, tt.sellerShare, c.SellerShare)
			assertDecimal(t, tt.total, c.AdminShare.Add(c.SellerShare))
			assertDecimal(t, tt.percentage, c.CommissionPercentage)
		})
	}
}

// Admin share is checked against integer arithmetic on cents and basis points.
func TestSplit_Reconciles(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		cents := rnd.Int63n(100_000_000)
		basisPoints := rnd.Int63n(10_001)

		total := decimal.New(cents, -2)
		percentage := decimal.New(basisPoints, -2)
		c := Split(total, percentage)

		expectedAdmin := decimal.New((cents*basisPoints+5000)/10000, -2)

		require.Truef(t, c.AdminShare.Add(c.SellerShare).Equal(total),
			"shares %s + %s != %s", c.AdminShare, c.SellerShare, total)
		require.Truef(t, c.AdminShare.Equal(expectedAdmin),
			"total %s at %s%%: admin %s, expected %s", total, percentage, c.AdminShare, expectedAdmin)
		require.False(t, c.SellerShare.IsNegative())
	}
}

func TestCalculate(t *testing.T) {
	service, repo, cache := NewMock(t)
	order := &domain.Order{ID: 1, TotalAmount: dec("100.00")}

	tests := []struct {
		name          string
		prepareMock   func()
		percentage    string
		adminShare    string
		sellerShare   string
		expectedError error
	}{
		{
			name: "No setting falls back to default rate",
			prepareMock: func() {
				cache.EXPECT().Get(gomock.Any()).Return(decimal.Zero, false, nil)
				repo.EXPECT().GetSetting(gomock.Any()).Return(nil, nil)
				cache.EXPECT().Set(gomock.Any(), domain.DefaultCommissionPercentage).Return(nil)
			},
			percentage:  "2.00",
			adminShare:  "2.00",
			sellerShare: "98.00",
		},
		{
			name: "Stored setting is used",
			prepareMock: func() {
				cache.EXPECT().Get(gomock.Any()).Return(decimal.Zero, false, nil)
				repo.EXPECT().GetSetting(gomock.Any()).Return(&domain.CommissionSetting{ID: 1, Percentage: dec("5.00")}, nil)
				cache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)
			},
			percentage:  "5.00",
			adminShare:  "5.00",
			sellerShare: "95.00",
		},
		{
			name: "Cached rate skips the repository",
			prepareMock: func() {
				cache.EXPECT().Get(gomock.Any()).Return(dec("10"), true, nil)
			},
			percentage:  "10",
			adminShare:  "10.00",
			sellerShare: "90.00",
		},
		{
			name: "Cache failure falls through to the repository",
			prepareMock: func() {
				cache.EXPECT().Get(gomock.Any()).Return(decimal.Zero, false, errors.New("redis down"))
				repo.EXPECT().GetSetting(gomock.Any()).Return(nil, nil)
				cache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
			percentage:  "2.00",
			adminShare:  "2.00",
			sellerShare: "98.00",
		},
		{
			name: "Repository error",
			prepareMock: func() {
				cache.EXPECT().Get(gomock.Any()).Return(decimal.Zero, false, nil)
				repo.EXPECT().GetSetting(gomock.Any()).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			c, err := service.Calculate(context.Background(), order)

			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assertDecimal(t, "100.00", c.TotalAmount)
			assertDecimal(t, tt.percentage, c.CommissionPercentage)
			assertDecimal(t, tt.adminShare, c.AdminShare)
			assertDecimal(t, tt.sellerShare, c.SellerShare)
		})
	}
}

func TestCalculate_WithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockSettingRepo(ctrl)
	service := New(repo, nil)

	repo.EXPECT().GetSetting(gomock.Any()).Return(nil, nil)

	c, err := service.Calculate(context.Background(), &domain.Order{TotalAmount: dec("250.00")})

	require.NoError(t, err)
	assertDecimal(t, "2.00", c.CommissionPercentage)
	assertDecimal(t, "5.00", c.AdminShare)
	assertDecimal(t, "245.00", c.SellerShare)
}

func TestGetSetting(t *testing.T) {
	service, repo, _ := NewMock(t)

	repo.EXPECT().GetSetting(gomock.Any()).Return(nil, nil)
	setting, err := service.GetSetting(context.Background())
	require.NoError(t, err)
	assertDecimal(t, "2.00", setting.Percentage)
	assert.Nil(t, setting.UpdatedBy)

	adminID := 1
	repo.EXPECT().GetSetting(gomock.Any()).Return(&domain.CommissionSetting{ID: 1, Percentage: dec("4.50"), UpdatedBy: &adminID}, nil)
	setting, err = service.GetSetting(context.Background())
	require.NoError(t, err)
	assertDecimal(t, "4.50", setting.Percentage)

	repo.EXPECT().GetSetting(gomock.Any()).Return(nil, errors.New("db error"))
	_, err = service.GetSetting(context.Background())
	assert.Error(t, err)
}

func TestUpdateSetting(t *testing.T) {
	service, repo, cache := NewMock(t)
	adminID := 1

	tests := []struct {
		name          string
		percentage    string
		prepareMock   func(percentage decimal.Decimal)
		expectedError error
	}{
		{
			name:       "Successful update invalidates the cache",
			percentage: "3.00",
			prepareMock: func(percentage decimal.Decimal) {
				repo.EXPECT().UpsertSetting(gomock.Any(), percentage, adminID).
					Return(&domain.CommissionSetting{ID: 1, Percentage: percentage, UpdatedBy: &adminID}, nil)
				cache.EXPECT().Invalidate(gomock.Any()).Return(nil)
			},
		},
		{
			name:       "Cache invalidation failure is not fatal",
			percentage: "0",
			prepareMock: func(percentage decimal.Decimal) {
				repo.EXPECT().UpsertSetting(gomock.Any(), percentage, adminID).
					Return(&domain.CommissionSetting{ID: 1, Percentage: percentage, UpdatedBy: &adminID}, nil)
				cache.EXPECT().Invalidate(gomock.Any()).Return(errors.New("redis down"))
			},
		},
		{
			name:          "Negative percentage",
			percentage:    "-1",
			prepareMock:   func(decimal.Decimal) {},
			expectedError: ErrInvalidPercentage,
		},
		{
			name:          "Percentage above 100",
			percentage:    "100.01",
			prepareMock:   func(decimal.Decimal) {},
			expectedError: ErrInvalidPercentage,
		},
		{
			name:          "Sub-cent precision",
			percentage:    "2.005",
			prepareMock:   func(decimal.Decimal) {},
			expectedError: ErrInvalidPercentage,
		},
		{
			name:       "Repository error",
			percentage: "3.00",
			prepareMock: func(percentage decimal.Decimal) {
				repo.EXPECT().UpsertSetting(gomock.Any(), percentage, adminID).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percentage := dec(tt.percentage)
			tt.prepareMock(percentage)

			setting, err := service.UpdateSetting(context.Background(), percentage, adminID)

			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, setting)
				return
			}
			require.NoError(t, err)
			assert.True(t, percentage.Equal(setting.Percentage))
		})
	}
}
