package repo

import (
	"github.com/GlebRadaev/marketsettle/internal/pg"
	accountrepo "github.com/GlebRadaev/marketsettle/internal/repo/account-repo"
	commissionrepo "github.com/GlebRadaev/marketsettle/internal/repo/commission-repo"
	orderrepo "github.com/GlebRadaev/marketsettle/internal/repo/order-repo"
	transactionrepo "github.com/GlebRadaev/marketsettle/internal/repo/transaction-repo"
	"github.com/GlebRadaev/marketsettle/internal/service/commissionservice"
	"github.com/GlebRadaev/marketsettle/internal/service/transactionservice"
	"github.com/GlebRadaev/marketsettle/internal/service/walletservice"
)

// TransactionRepo is read and written by both the payment lifecycle and the
// wallet crediting step.
type TransactionRepo interface {
	transactionservice.Repo
	walletservice.TransactionRepo
}

type Repositories struct {
	CommissionRepo  commissionservice.SettingRepo
	AccountRepo     walletservice.AccountRepo
	OrderRepo       transactionservice.OrderRepo
	TransactionRepo TransactionRepo
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		CommissionRepo:  commissionrepo.New(conn),
		AccountRepo:     accountrepo.New(conn),
		OrderRepo:       orderrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
	}
}
