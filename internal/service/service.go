package service

import (
	"github.com/GlebRadaev/marketsettle/internal/handlers/commission"
	"github.com/GlebRadaev/marketsettle/internal/handlers/payments"
	"github.com/GlebRadaev/marketsettle/internal/handlers/wallet"
	"github.com/GlebRadaev/marketsettle/internal/pg"
	"github.com/GlebRadaev/marketsettle/internal/reconcile"
	"github.com/GlebRadaev/marketsettle/internal/repo"
	"github.com/GlebRadaev/marketsettle/internal/service/commissionservice"
	"github.com/GlebRadaev/marketsettle/internal/service/transactionservice"
	"github.com/GlebRadaev/marketsettle/internal/service/walletservice"
)

type TransactionService interface {
	payments.Service
	reconcile.Service
}

type Services struct {
	CommissionService  commission.Service
	TransactionService TransactionService
	WalletService      wallet.Service
}

// New wires the settlement services. cache may be nil, in which case the
// commission rate is read from the database on every calculation.
func New(repos *repo.Repositories, txManager pg.TXManager, cache commissionservice.RateCache, adminAccountID int) *Services {
	commissionService := commissionservice.New(repos.CommissionRepo, cache)
	walletService := walletservice.New(repos.AccountRepo, repos.TransactionRepo, txManager, adminAccountID)
	transactionService := transactionservice.New(
		repos.TransactionRepo, repos.OrderRepo, commissionService, walletService, txManager,
	)

	return &Services{
		CommissionService:  commissionService,
		TransactionService: transactionService,
		WalletService:      walletService,
	}
}
