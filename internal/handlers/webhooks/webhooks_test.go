package webhooks

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/service/transactionservice"
)

const secret = "gateway-secret"

func TestPaymentStatusHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service, secret)

	completed := &domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusCompleted, Reference: "HP-123"}

	tests := []struct {
		name         string
		secret       string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name:         "Missing secret",
			body:         `{"transaction_id":10,"status":"COMPLETED"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Wrong secret",
			secret:       "guess",
			body:         `{"transaction_id":10,"status":"COMPLETED"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Malformed body",
			secret:       secret,
			body:         `{"transaction_id":`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Not final yet",
			secret:       secret,
			body:         `{"transaction_id":10,"status":"PROCESSING"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusAccepted,
		},
		{
			name:   "Completed",
			secret: secret,
			body:   `{"transaction_id":10,"status":"COMPLETED","reference":"HP-123"}`,
			prepareMock: func() {
				service.EXPECT().Transition(gomock.Any(), transactionservice.TransitionRequest{
					TransactionID: 10, Target: domain.StatusCompleted, Reference: "HP-123", FromGateway: true,
				}).Return(completed, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "Redelivered completion",
			secret: secret,
			body:   `{"transaction_id":10,"status":"COMPLETED","reference":"HP-123"}`,
			prepareMock: func() {
				service.EXPECT().Transition(gomock.Any(), gomock.Any()).Return(completed, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "Failed",
			secret: secret,
			body:   `{"transaction_id":10,"status":"FAILED","reason":"insufficient funds"}`,
			prepareMock: func() {
				service.EXPECT().Transition(gomock.Any(), transactionservice.TransitionRequest{
					TransactionID: 10, Target: domain.StatusRejected, Reason: "insufficient funds", FromGateway: true,
				}).Return(&domain.PaymentTransaction{ID: 10, Status: domain.StatusRejected}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "Completion after failure",
			secret: secret,
			body:   `{"transaction_id":10,"status":"COMPLETED"}`,
			prepareMock: func() {
				service.EXPECT().Transition(gomock.Any(), gomock.Any()).Return(nil, transactionservice.ErrInvalidTransition)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:   "Second payment for a settled order",
			secret: secret,
			body:   `{"transaction_id":11,"status":"COMPLETED"}`,
			prepareMock: func() {
				service.EXPECT().Transition(gomock.Any(), gomock.Any()).Return(nil, transactionservice.ErrOrderAlreadyPaid)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:   "Unknown transaction",
			secret: secret,
			body:   `{"transaction_id":99,"status":"COMPLETED"}`,
			prepareMock: func() {
				service.EXPECT().Transition(gomock.Any(), gomock.Any()).Return(nil, transactionservice.ErrTransactionNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:   "Settlement failure",
			secret: secret,
			body:   `{"transaction_id":10,"status":"COMPLETED"}`,
			prepareMock: func() {
				service.EXPECT().Transition(gomock.Any(), gomock.Any()).Return(nil, errors.New("deadlock detected"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/api/webhooks/payments", bytes.NewBufferString(tt.body))
			if tt.secret != "" {
				r.Header.Set(SecretHeader, tt.secret)
			}
			w := httptest.NewRecorder()

			handler.PaymentStatus(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestPaymentStatusHandler_EmptySecretRejectsAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := New(NewMockService(ctrl), "")

	r := httptest.NewRequest(http.MethodPost, "/api/webhooks/payments", bytes.NewBufferString(`{"transaction_id":10,"status":"COMPLETED"}`))
	w := httptest.NewRecorder()

	handler.PaymentStatus(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
