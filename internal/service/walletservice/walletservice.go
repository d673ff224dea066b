package walletservice

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/pg"
)

//go:generate mockgen -source=walletservice.go -destination=mock_walletservice.go -package=walletservice

type AccountRepo interface {
	FindByID(ctx context.Context, accountID int) (*domain.Account, error)
	FindFirstByRole(ctx context.Context, role domain.Role) (*domain.Account, error)
	AddToWallet(ctx context.Context, accountID int, delta decimal.Decimal) (bool, error)
}

type TransactionRepo interface {
	MarkCredited(ctx context.Context, transactionID int) (bool, error)
}

type Service struct {
	accountRepo     AccountRepo
	transactionRepo TransactionRepo
	txManager       pg.TXManager
	adminAccountID  int
}

// New builds the wallet service. adminAccountID pins the platform account;
// zero means the lowest-id admin account is used.
func New(accountRepo AccountRepo, transactionRepo TransactionRepo, txManager pg.TXManager, adminAccountID int) *Service {
	return &Service{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		adminAccountID:  adminAccountID,
	}
}

var (
	ErrNotCompleted         = errors.New("payment transaction is not completed")
	ErrOrderMismatch        = errors.New("payment transaction does not belong to order")
	ErrAdminAccountNotFound = errors.New("platform admin account not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAlreadyCredited      = errors.New("payment transaction already credited")
)

type credit struct {
	accountID int
	amount    decimal.Decimal
}

// CreditWallets credits the admin share to the platform account and the seller
// share to the order's seller in one unit of work. Either both increments are
// committed or neither is. The credited_at marker on the transaction is set in
// the same unit, so a second call for the same transaction fails with
// ErrAlreadyCredited instead of paying twice.
func (s *Service) CreditWallets(ctx context.Context, order *domain.Order, tx *domain.PaymentTransaction) error {
	if tx.Status != domain.StatusCompleted {
		return ErrNotCompleted
	}
	if tx.OrderID != order.ID {
		return ErrOrderMismatch
	}

	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		adminID, err := s.resolveAdmin(ctx)
		if err != nil {
			return err
		}

		marked, err := s.transactionRepo.MarkCredited(ctx, tx.ID)
		if err != nil {
			return fmt.Errorf("can't mark transaction %d credited: %w", tx.ID, err)
		}
		if !marked {
			zap.L().Error("wallet crediting invoked twice for the same transaction",
				zap.Int("transactionID", tx.ID), zap.Int("orderID", order.ID))
			return ErrAlreadyCredited
		}

		credits := []credit{
			{accountID: adminID, amount: tx.AdminShare},
			{accountID: order.SellerID, amount: tx.SellerShare},
		}
		// Stable lock order across concurrent settlements.
		sort.SliceStable(credits, func(i, j int) bool { return credits[i].accountID < credits[j].accountID })

		for _, c := range credits {
			ok, err := s.accountRepo.AddToWallet(ctx, c.accountID, c.amount)
			if err != nil {
				return fmt.Errorf("can't credit account %d: %w", c.accountID, err)
			}
			if !ok {
				return fmt.Errorf("%w: %d", ErrAccountNotFound, c.accountID)
			}
		}

		zap.L().Info("wallets credited",
			zap.Int("transactionID", tx.ID),
			zap.Int("adminID", adminID),
			zap.String("adminShare", tx.AdminShare.StringFixed(2)),
			zap.Int("sellerID", order.SellerID),
			zap.String("sellerShare", tx.SellerShare.StringFixed(2)),
		)
		return nil
	})
}

func (s *Service) resolveAdmin(ctx context.Context) (int, error) {
	var (
		admin *domain.Account
		err   error
	)
	if s.adminAccountID != 0 {
		admin, err = s.accountRepo.FindByID(ctx, s.adminAccountID)
	} else {
		admin, err = s.accountRepo.FindFirstByRole(ctx, domain.RoleAdmin)
	}
	if err != nil {
		return 0, fmt.Errorf("can't resolve admin account: %w", err)
	}
	if admin == nil {
		zap.L().Error("no platform admin account to receive commission", zap.Int("configuredID", s.adminAccountID))
		return 0, ErrAdminAccountNotFound
	}
	return admin.ID, nil
}

func (s *Service) GetWallet(ctx context.Context, accountID int) (*domain.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		zap.L().Error("failed to get wallet", zap.Error(err))
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
