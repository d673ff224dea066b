package transactionservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/pg"
)

//go:generate mockgen -source=transactionservice.go -destination=mock_transactionservice.go -package=transactionservice

type Repo interface {
	Create(ctx context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error)
	FindByID(ctx context.Context, id int) (*domain.PaymentTransaction, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.PaymentTransaction, error)
	FindByOrderID(ctx context.Context, orderID int) ([]domain.PaymentTransaction, error)
	FindPendingGateway(ctx context.Context, before time.Time, limit uint32) ([]domain.PaymentTransaction, error)
	UpdateStatus(ctx context.Context, id int, status domain.TransactionStatus, reference string) (*domain.PaymentTransaction, error)
}

type OrderRepo interface {
	FindByID(ctx context.Context, orderID int) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID int) (*domain.Order, error)
	UpdatePayment(ctx context.Context, order *domain.Order) error
	UpdatePaymentStatus(ctx context.Context, orderID int, status domain.OrderPaymentStatus) error
}

type Calculator interface {
	Calculate(ctx context.Context, order *domain.Order) (*domain.Commission, error)
}

type WalletCreditor interface {
	CreditWallets(ctx context.Context, order *domain.Order, tx *domain.PaymentTransaction) error
}

type Service struct {
	repo       Repo
	orderRepo  OrderRepo
	calculator Calculator
	wallets    WalletCreditor
	txManager  pg.TXManager
}

func New(repo Repo, orderRepo OrderRepo, calculator Calculator, wallets WalletCreditor, txManager pg.TXManager) *Service {
	return &Service{
		repo:       repo,
		orderRepo:  orderRepo,
		calculator: calculator,
		wallets:    wallets,
		txManager:  txManager,
	}
}

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidTransition    = errors.New("invalid payment transaction transition")
	ErrTransactionNotFound  = errors.New("payment transaction not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrNegativeAmount       = errors.New("order total must not be negative")
	ErrOrderAlreadyPaid     = errors.New("order already paid")
	ErrPaymentInProgress    = errors.New("order has an open payment transaction")
)

// TransitionRequest moves a payment transaction to Target. Reference replaces
// the stored gateway reference or receipt path when set; Reason is logged on
// rejection. FromGateway marks requests reported by a payment gateway, which
// may only settle gateway payments.
type TransitionRequest struct {
	TransactionID int
	Target        domain.TransactionStatus
	Reference     string
	Reason        string
	FromGateway   bool
}

// Quote returns the commission split the order would get at the current rate.
func (s *Service) Quote(ctx context.Context, orderID int) (*domain.Commission, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.TotalAmount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	return s.calculator.Calculate(ctx, order)
}

// Create records a pending payment transaction for the order. The commission
// split is computed now and stored with the transaction; later changes of the
// commission rate do not affect it. An order holds at most one open or
// completed transaction: a new one is accepted only while the order is unpaid
// or its last payment failed.
func (s *Service) Create(ctx context.Context, orderID int, method domain.PaymentMethod) (*domain.PaymentTransaction, error) {
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	var created *domain.PaymentTransaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		order, err := s.lockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.TotalAmount.IsNegative() {
			return ErrNegativeAmount
		}
		switch order.PaymentStatus {
		case domain.OrderPaymentPaid:
			return ErrOrderAlreadyPaid
		case domain.OrderPaymentPending, domain.OrderPaymentAwaitingVerification:
			return ErrPaymentInProgress
		}

		commission, err := s.calculator.Calculate(ctx, order)
		if err != nil {
			return fmt.Errorf("can't calculate commission: %w", err)
		}

		created, err = s.repo.Create(ctx, &domain.PaymentTransaction{
			OrderID:              order.ID,
			Amount:               commission.TotalAmount,
			AdminShare:           commission.AdminShare,
			SellerShare:          commission.SellerShare,
			CommissionPercentage: commission.CommissionPercentage,
			PaymentMethod:        method,
			Status:               domain.StatusPending,
		})
		if err != nil {
			return err
		}

		order.PaymentStatus = domain.OrderPaymentPending
		order.PaymentMethod = &method
		order.CommissionAmount = commission.AdminShare
		order.SellerAmount = commission.SellerShare
		return s.orderRepo.UpdatePayment(ctx, order)
	})
	if err != nil {
		zap.L().Error("can't create payment transaction", zap.Int("orderID", orderID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("payment transaction created",
		zap.Int("transactionID", created.ID),
		zap.Int("orderID", orderID),
		zap.String("method", string(method)),
		zap.String("amount", created.Amount.StringFixed(2)),
	)
	return created, nil
}

// Transition applies one step of the payment lifecycle. Repeating a
// transition the transaction has already made (a redelivered webhook) returns
// the stored transaction without side effects. Entering completed credits the
// wallets in the same database transaction as the status change, so a failed
// credit leaves the payment transaction in its previous state. The order row
// is locked for the whole step; an order is settled at most once and a late
// rejection never turns a paid order back to failed.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*domain.PaymentTransaction, error) {
	if !req.Target.Valid() || req.Target == domain.StatusPending {
		return nil, fmt.Errorf("%w: unknown target %q", ErrInvalidTransition, req.Target)
	}

	var result *domain.PaymentTransaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByIDForUpdate(ctx, req.TransactionID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrTransactionNotFound
		}
		if err := checkMethod(current, req); err != nil {
			return err
		}

		if current.Status == req.Target {
			zap.L().Info("duplicate payment transition ignored",
				zap.Int("transactionID", current.ID), zap.String("status", string(current.Status)))
			result = current
			return nil
		}
		if !current.Status.CanTransitionTo(req.Target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, req.Target)
		}

		order, err := s.lockOrder(ctx, current.OrderID)
		if err != nil {
			return err
		}
		paid := order.PaymentStatus == domain.OrderPaymentPaid
		if paid && req.Target == domain.StatusCompleted {
			zap.L().Error("order already settled by another payment transaction",
				zap.Int("transactionID", current.ID), zap.Int("orderID", order.ID))
			return ErrOrderAlreadyPaid
		}

		updated, err := s.repo.UpdateStatus(ctx, current.ID, req.Target, req.Reference)
		if err != nil {
			return err
		}

		switch req.Target {
		case domain.StatusCompleted:
			if err := s.wallets.CreditWallets(ctx, order, updated); err != nil {
				return fmt.Errorf("can't settle transaction %d: %w", updated.ID, err)
			}
			err = s.orderRepo.UpdatePaymentStatus(ctx, order.ID, domain.OrderPaymentPaid)
		case domain.StatusRejected:
			zap.L().Info("payment transaction rejected",
				zap.Int("transactionID", updated.ID), zap.String("reason", req.Reason))
			if !paid {
				err = s.orderRepo.UpdatePaymentStatus(ctx, order.ID, domain.OrderPaymentFailed)
			}
		case domain.StatusWaitingVerification:
			if !paid {
				err = s.orderRepo.UpdatePaymentStatus(ctx, order.ID, domain.OrderPaymentAwaitingVerification)
			}
		}
		if err != nil {
			return err
		}

		result = updated
		return nil
	})
	if err != nil {
		zap.L().Error("payment transition failed",
			zap.Int("transactionID", req.TransactionID),
			zap.String("target", string(req.Target)),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, id int) (*domain.PaymentTransaction, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

func (s *Service) ListByOrder(ctx context.Context, orderID int) ([]domain.PaymentTransaction, error) {
	txs, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		zap.L().Error("failed to list payment transactions", zap.Int("orderID", orderID), zap.Error(err))
		return nil, err
	}
	return txs, nil
}

// PendingGateway lists gateway payments still pending after the grace period.
func (s *Service) PendingGateway(ctx context.Context, olderThan time.Duration, limit uint32) ([]domain.PaymentTransaction, error) {
	return s.repo.FindPendingGateway(ctx, time.Now().Add(-olderThan), limit)
}

// checkMethod rejects steps that do not belong to the payment method: only a
// bank transfer waits for receipt verification, and a gateway may only
// report on gateway payments.
func checkMethod(tx *domain.PaymentTransaction, req TransitionRequest) error {
	if req.Target == domain.StatusWaitingVerification && tx.PaymentMethod != domain.PaymentMethodBankTransfer {
		return fmt.Errorf("%w: %s payments have no receipt step", ErrInvalidTransition, tx.PaymentMethod)
	}
	if req.FromGateway && !tx.PaymentMethod.Gateway() {
		return fmt.Errorf("%w: %s payments are not settled by a gateway", ErrInvalidTransition, tx.PaymentMethod)
	}
	return nil
}

func (s *Service) lockOrder(ctx context.Context, orderID int) (*domain.Order, error) {
	order, err := s.orderRepo.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) findOrder(ctx context.Context, orderID int) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
