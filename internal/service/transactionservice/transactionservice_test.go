package transactionservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/pg"
)

type mocks struct {
	repo       *MockRepo
	orders     *MockOrderRepo
	calculator *MockCalculator
	wallets    *MockWalletCreditor
	txManager  *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		repo:       NewMockRepo(ctrl),
		orders:     NewMockOrderRepo(ctrl),
		calculator: NewMockCalculator(ctrl),
		wallets:    NewMockWalletCreditor(ctrl),
		txManager:  pg.NewMockTXManager(ctrl),
	}
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		})
	return New(m.repo, m.orders, m.calculator, m.wallets, m.txManager), m
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:            5,
		BuyerID:       3,
		SellerID:      7,
		TotalAmount:   dec("100.00"),
		PaymentStatus: domain.OrderPaymentUnpaid,
	}
}

func testCommission() *domain.Commission {
	return &domain.Commission{
		TotalAmount:          dec("100.00"),
		CommissionPercentage: dec("2.00"),
		AdminShare:           dec("2.00"),
		SellerShare:          dec("98.00"),
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name          string
		method        domain.PaymentMethod
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:   "Creates pending transaction and mirrors the order",
			method: domain.PaymentMethodHesabPay,
			prepareMock: func(m *mocks) {
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(testOrder(), nil)
				m.calculator.EXPECT().Calculate(gomock.Any(), gomock.Any()).Return(testCommission(), nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
						assert.Equal(t, domain.StatusPending, tx.Status)
						assert.Equal(t, 5, tx.OrderID)
						assert.Equal(t, domain.PaymentMethodHesabPay, tx.PaymentMethod)
						assert.True(t, tx.AdminShare.Equal(dec("2.00")))
						assert.True(t, tx.SellerShare.Equal(dec("98.00")))
						assert.True(t, tx.Amount.Equal(tx.AdminShare.Add(tx.SellerShare)))
						tx.ID = 11
						return tx, nil
					})
				m.orders.EXPECT().UpdatePayment(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, order *domain.Order) error {
						assert.Equal(t, domain.OrderPaymentPending, order.PaymentStatus)
						require.NotNil(t, order.PaymentMethod)
						assert.Equal(t, domain.PaymentMethodHesabPay, *order.PaymentMethod)
						assert.True(t, order.CommissionAmount.Equal(dec("2.00")))
						assert.True(t, order.SellerAmount.Equal(dec("98.00")))
						return nil
					})
			},
		},
		{
			name:          "Unknown payment method",
			method:        domain.PaymentMethod("paypal"),
			prepareMock:   func(m *mocks) {},
			expectedError: ErrInvalidPaymentMethod,
		},
		{
			name:   "Order not found",
			method: domain.PaymentMethodMomo,
			prepareMock: func(m *mocks) {
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
		{
			name:   "Negative total",
			method: domain.PaymentMethodCOD,
			prepareMock: func(m *mocks) {
				order := testOrder()
				order.TotalAmount = dec("-1.00")
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(order, nil)
			},
			expectedError: ErrNegativeAmount,
		},
		{
			name:   "Order already paid",
			method: domain.PaymentMethodBankTransfer,
			prepareMock: func(m *mocks) {
				order := testOrder()
				order.PaymentStatus = domain.OrderPaymentPaid
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(order, nil)
			},
			expectedError: ErrOrderAlreadyPaid,
		},
		{
			name:   "Pending payment still open",
			method: domain.PaymentMethodBankTransfer,
			prepareMock: func(m *mocks) {
				order := testOrder()
				order.PaymentStatus = domain.OrderPaymentPending
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(order, nil)
			},
			expectedError: ErrPaymentInProgress,
		},
		{
			name:   "Receipt under verification",
			method: domain.PaymentMethodHesabPay,
			prepareMock: func(m *mocks) {
				order := testOrder()
				order.PaymentStatus = domain.OrderPaymentAwaitingVerification
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(order, nil)
			},
			expectedError: ErrPaymentInProgress,
		},
		{
			name:   "Retry after failed payment",
			method: domain.PaymentMethodCOD,
			prepareMock: func(m *mocks) {
				order := testOrder()
				order.PaymentStatus = domain.OrderPaymentFailed
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(order, nil)
				m.calculator.EXPECT().Calculate(gomock.Any(), gomock.Any()).Return(testCommission(), nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
						tx.ID = 11
						return tx, nil
					})
				m.orders.EXPECT().UpdatePayment(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "Calculator error",
			method: domain.PaymentMethodCOD,
			prepareMock: func(m *mocks) {
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(testOrder(), nil)
				m.calculator.EXPECT().Calculate(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("can't calculate commission: db error"),
		},
		{
			name:   "Repository error",
			method: domain.PaymentMethodCOD,
			prepareMock: func(m *mocks) {
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(testOrder(), nil)
				m.calculator.EXPECT().Calculate(gomock.Any(), gomock.Any()).Return(testCommission(), nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("insert failed"))
			},
			expectedError: errors.New("insert failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			tx, err := service.Create(context.Background(), 5, tt.method)

			if tt.expectedError != nil {
				assert.Nil(t, tx)
				if !errors.Is(err, tt.expectedError) {
					assert.EqualError(t, err, tt.expectedError.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 11, tx.ID)
		})
	}
}

func TestTransition_Edges(t *testing.T) {
	statuses := []domain.TransactionStatus{
		domain.StatusPending,
		domain.StatusWaitingVerification,
		domain.StatusCompleted,
		domain.StatusRejected,
	}
	targets := []domain.TransactionStatus{
		domain.StatusWaitingVerification,
		domain.StatusCompleted,
		domain.StatusRejected,
	}
	orderStatus := map[domain.TransactionStatus]domain.OrderPaymentStatus{
		domain.StatusWaitingVerification: domain.OrderPaymentAwaitingVerification,
		domain.StatusCompleted:           domain.OrderPaymentPaid,
		domain.StatusRejected:            domain.OrderPaymentFailed,
	}

	for _, from := range statuses {
		for _, to := range targets {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				service, m := NewMock(t)
				current := &domain.PaymentTransaction{
					ID: 10, OrderID: 5, Status: from, PaymentMethod: domain.PaymentMethodBankTransfer,
				}
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).Return(current, nil)

				switch {
				case from == to:
				case from.CanTransitionTo(to):
					updated := &domain.PaymentTransaction{ID: 10, OrderID: 5, Status: to}
					m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(testOrder(), nil)
					m.repo.EXPECT().UpdateStatus(gomock.Any(), 10, to, "ref").Return(updated, nil)
					if to == domain.StatusCompleted {
						m.wallets.EXPECT().CreditWallets(gomock.Any(), gomock.Any(), updated).Return(nil)
					}
					m.orders.EXPECT().UpdatePaymentStatus(gomock.Any(), 5, orderStatus[to]).Return(nil)
				}

				tx, err := service.Transition(context.Background(), TransitionRequest{
					TransactionID: 10,
					Target:        to,
					Reference:     "ref",
				})

				switch {
				case from == to:
					require.NoError(t, err)
					assert.Same(t, current, tx)
				case from.CanTransitionTo(to):
					require.NoError(t, err)
					assert.Equal(t, to, tx.Status)
				default:
					assert.ErrorIs(t, err, ErrInvalidTransition)
					assert.Nil(t, tx)
				}
			})
		}
	}
}

func TestTransition_Errors(t *testing.T) {
	tests := []struct {
		name          string
		req           TransitionRequest
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:          "Pending is not a target",
			req:           TransitionRequest{TransactionID: 10, Target: domain.StatusPending},
			prepareMock:   func(m *mocks) {},
			expectedError: ErrInvalidTransition,
		},
		{
			name:          "Unknown target",
			req:           TransitionRequest{TransactionID: 10, Target: "refunded"},
			prepareMock:   func(m *mocks) {},
			expectedError: ErrInvalidTransition,
		},
		{
			name: "Unknown transaction",
			req:  TransitionRequest{TransactionID: 10, Target: domain.StatusCompleted},
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).Return(nil, nil)
			},
			expectedError: ErrTransactionNotFound,
		},
		{
			name: "Crediting failure aborts the transition",
			req:  TransitionRequest{TransactionID: 10, Target: domain.StatusCompleted},
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).
					Return(&domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusPending}, nil)
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(testOrder(), nil)
				m.repo.EXPECT().UpdateStatus(gomock.Any(), 10, domain.StatusCompleted, "").
					Return(&domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusCompleted}, nil)
				m.wallets.EXPECT().CreditWallets(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("platform admin account not found"))
			},
			expectedError: errors.New("can't settle transaction 10: platform admin account not found"),
		},
		{
			name: "Order vanished",
			req:  TransitionRequest{TransactionID: 10, Target: domain.StatusRejected, Reason: "declined"},
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).
					Return(&domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusPending}, nil)
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
		{
			name: "Second completion for a paid order",
			req:  TransitionRequest{TransactionID: 10, Target: domain.StatusCompleted, FromGateway: true},
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).
					Return(&domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusPending, PaymentMethod: domain.PaymentMethodHesabPay}, nil)
				order := testOrder()
				order.PaymentStatus = domain.OrderPaymentPaid
				m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(order, nil)
			},
			expectedError: ErrOrderAlreadyPaid,
		},
		{
			name: "Receipt for a gateway payment",
			req:  TransitionRequest{TransactionID: 10, Target: domain.StatusWaitingVerification, Reference: "receipts/fake.jpg"},
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).
					Return(&domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusPending, PaymentMethod: domain.PaymentMethodHesabPay}, nil)
			},
			expectedError: ErrInvalidTransition,
		},
		{
			name: "Gateway reports on cash on delivery",
			req:  TransitionRequest{TransactionID: 10, Target: domain.StatusCompleted, FromGateway: true},
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).
					Return(&domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusPending, PaymentMethod: domain.PaymentMethodCOD}, nil)
			},
			expectedError: ErrInvalidTransition,
		},
		{
			name: "Gateway reports on bank transfer",
			req:  TransitionRequest{TransactionID: 10, Target: domain.StatusRejected, FromGateway: true},
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).
					Return(&domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusWaitingVerification, PaymentMethod: domain.PaymentMethodBankTransfer}, nil)
			},
			expectedError: ErrInvalidTransition,
		},
		{
			name: "Lock query error",
			req:  TransitionRequest{TransactionID: 10, Target: domain.StatusRejected},
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).Return(nil, errors.New("lock timeout"))
			},
			expectedError: errors.New("lock timeout"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			tx, err := service.Transition(context.Background(), tt.req)

			assert.Nil(t, tx)
			if !errors.Is(err, tt.expectedError) {
				assert.EqualError(t, err, tt.expectedError.Error())
			}
		})
	}
}

func TestTransition_RejectKeepsPaidOrder(t *testing.T) {
	service, m := NewMock(t)
	order := testOrder()
	order.PaymentStatus = domain.OrderPaymentPaid
	rejected := &domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusRejected}

	m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 10).
		Return(&domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusPending, PaymentMethod: domain.PaymentMethodMomo}, nil)
	m.orders.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(order, nil)
	m.repo.EXPECT().UpdateStatus(gomock.Any(), 10, domain.StatusRejected, "").Return(rejected, nil)
	m.orders.EXPECT().UpdatePaymentStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	tx, err := service.Transition(context.Background(), TransitionRequest{TransactionID: 10, Target: domain.StatusRejected})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, tx.Status)
}

func TestQuote(t *testing.T) {
	service, m := NewMock(t)

	m.orders.EXPECT().FindByID(gomock.Any(), 5).Return(testOrder(), nil)
	m.calculator.EXPECT().Calculate(gomock.Any(), gomock.Any()).Return(testCommission(), nil)
	c, err := service.Quote(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, c.AdminShare.Equal(dec("2.00")))

	m.orders.EXPECT().FindByID(gomock.Any(), 6).Return(nil, nil)
	_, err = service.Quote(context.Background(), 6)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetAndList(t *testing.T) {
	service, m := NewMock(t)
	stored := &domain.PaymentTransaction{ID: 10, OrderID: 5, Status: domain.StatusPending}

	m.repo.EXPECT().FindByID(gomock.Any(), 10).Return(stored, nil)
	tx, err := service.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, stored, tx)

	m.repo.EXPECT().FindByID(gomock.Any(), 11).Return(nil, nil)
	_, err = service.Get(context.Background(), 11)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	m.repo.EXPECT().FindByOrderID(gomock.Any(), 5).Return([]domain.PaymentTransaction{*stored}, nil)
	txs, err := service.ListByOrder(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	m.repo.EXPECT().FindPendingGateway(gomock.Any(), gomock.Any(), uint32(50)).
		DoAndReturn(func(_ context.Context, before time.Time, _ uint32) ([]domain.PaymentTransaction, error) {
			assert.WithinDuration(t, time.Now().Add(-time.Minute), before, 5*time.Second)
			return nil, nil
		})
	_, err = service.PendingGateway(context.Background(), time.Minute, 50)
	assert.NoError(t, err)
}
