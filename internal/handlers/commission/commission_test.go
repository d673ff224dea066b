package commission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/dto"
	"github.com/GlebRadaev/marketsettle/internal/service/commissionservice"
	"github.com/GlebRadaev/marketsettle/pkg/auth"
)

func NewMock(t *testing.T) (*CommissionHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func TestGetSettingHandler(t *testing.T) {
	handler, service := NewMock(t)
	updatedBy := 1
	updatedAt := time.Date(2024, 11, 2, 16, 9, 57, 0, time.UTC)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expectedBody dto.CommissionSettingResponseDTO
	}{
		{
			name: "Configured rate",
			prepareMock: func() {
				service.EXPECT().GetSetting(gomock.Any()).Return(&domain.CommissionSetting{
					ID: 1, Percentage: decimal.RequireFromString("3.5"), UpdatedBy: &updatedBy, UpdatedAt: updatedAt,
				}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: dto.CommissionSettingResponseDTO{
				Percentage: "3.50", UpdatedBy: &updatedBy, UpdatedAt: "2024-11-02T16:09:57Z",
			},
		},
		{
			name: "Default rate",
			prepareMock: func() {
				service.EXPECT().GetSetting(gomock.Any()).Return(&domain.CommissionSetting{
					ID: 1, Percentage: domain.DefaultCommissionPercentage,
				}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: dto.CommissionSettingResponseDTO{Percentage: "2.00"},
		},
		{
			name: "Internal server error",
			prepareMock: func() {
				service.EXPECT().GetSetting(gomock.Any()).Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodGet, "/api/commission", nil)
			w := httptest.NewRecorder()

			handler.GetSetting(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.CommissionSettingResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, tt.expectedBody, body)
			}
		})
	}
}

func TestUpdateSettingHandler(t *testing.T) {
	handler, service := NewMock(t)
	updatedBy := 1

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Rate updated",
			body: `{"percentage":"3.00"}`,
			prepareMock: func() {
				service.EXPECT().
					UpdateSetting(gomock.Any(), decimal.RequireFromString("3.00"), 1).
					Return(&domain.CommissionSetting{ID: 1, Percentage: decimal.RequireFromString("3"), UpdatedBy: &updatedBy}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid body",
			body:          `{"percentage":`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name:          "Not a number",
			body:          `{"percentage":"three"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "percentage must be a decimal number",
		},
		{
			name: "Out of range",
			body: `{"percentage":"150"}`,
			prepareMock: func() {
				service.EXPECT().
					UpdateSetting(gomock.Any(), decimal.RequireFromString("150"), 1).
					Return(nil, commissionservice.ErrInvalidPercentage)
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: commissionservice.ErrInvalidPercentage.Error(),
		},
		{
			name: "Internal server error",
			body: `{"percentage":"3"}`,
			prepareMock: func() {
				service.EXPECT().
					UpdateSetting(gomock.Any(), decimal.RequireFromString("3"), 1).
					Return(nil, errors.New("error"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPut, "/api/commission", bytes.NewBufferString(tt.body))
			r = r.WithContext(context.WithValue(context.Background(), auth.AccountIDKey, 1))
			w := httptest.NewRecorder()

			handler.UpdateSetting(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
			if tt.expectedCode == http.StatusOK {
				var body dto.CommissionSettingResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, "3.00", body.Percentage)
			}
		})
	}
}
