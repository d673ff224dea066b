package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/marketsettle/internal/config"
	"github.com/GlebRadaev/marketsettle/internal/domain"
	"github.com/GlebRadaev/marketsettle/internal/service/transactionservice"
	"github.com/GlebRadaev/marketsettle/pkg/clients"
)

//go:generate mockgen -source=reconcile.go -destination=mock_reconcile.go -package=reconcile

const (
	maxRetries    = 3
	retryInterval = time.Second
	gracePeriod   = time.Minute
	batchLimit    = 500
	workers       = 10
)

var (
	ErrGatewayNotFound   = errors.New("payment not found at gateway")
	ErrUnexpectedStatus  = errors.New("unexpected gateway status code")
	ErrReferenceMismatch = errors.New("gateway reference mismatch")
	ErrAmountMismatch    = errors.New("gateway amount mismatch")
)

type Service interface {
	PendingGateway(ctx context.Context, olderThan time.Duration, limit uint32) ([]domain.PaymentTransaction, error)
	Transition(ctx context.Context, req transactionservice.TransitionRequest) (*domain.PaymentTransaction, error)
}

// GatewayResponse is what HesabPay and MoMo answer for a payment lookup.
type GatewayResponse struct {
	Reference string           `json:"reference"`
	Status    string           `json:"status"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

// Poller settles gateway payments whose webhook never arrived. Final
// statuses go through Transition, so a webhook racing the poller is absorbed
// by the duplicate-transition guard.
type Poller struct {
	url           string
	transactions  Service
	client        clients.HTTPClientI
	workerPool    WorkerPoolI
	interval      time.Duration
	retryInterval time.Duration
	inFlight      sync.Map
}

func New(cfg *config.Config, transactions Service, client clients.HTTPClientI) *Poller {
	return &Poller{
		url:           cfg.GatewayAddress,
		transactions:  transactions,
		client:        client,
		workerPool:    NewWorkerPool(workers),
		interval:      cfg.ReconcileInterval,
		retryInterval: retryInterval,
	}
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	zap.L().Info("gateway reconciliation started", zap.String("gateway", p.url), zap.Duration("interval", p.interval))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer p.workerPool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("gateway reconciliation stopped")
			return
		case <-ticker.C:
			p.reconcile(ctx)
		}
	}
}

func (p *Poller) reconcile(ctx context.Context) {
	txs, err := p.transactions.PendingGateway(ctx, gracePeriod, batchLimit)
	if err != nil {
		zap.L().Error("failed to fetch pending gateway payments", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, tx := range txs {
		tx := tx
		if _, loaded := p.inFlight.LoadOrStore(tx.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := p.workerPool.AddTask(ctx, func() error {
				defer p.inFlight.Delete(tx.ID)
				return p.check(ctx, tx)
			})
			if err != nil {
				p.inFlight.Delete(tx.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("gateway reconciliation interrupted", zap.Error(err))
	}
}

func (p *Poller) check(ctx context.Context, tx domain.PaymentTransaction) error {
	endpoint := p.url + "/api/payments/" + url.PathEscape(tx.Reference)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		statusCode, respBody, respHeaders, err := p.client.Get(endpoint, nil)
		if err != nil {
			if attempt < maxRetries {
				if err := p.wait(ctx, p.retryInterval*time.Duration(attempt)); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("gateway lookup for transaction %d failed after %d attempts: %w", tx.ID, maxRetries, err)
		}

		switch statusCode {
		case http.StatusOK:
			return p.settle(ctx, tx, respBody)
		case http.StatusTooManyRequests:
			if attempt < maxRetries {
				if err := p.wait(ctx, p.retryAfter(respHeaders, attempt)); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("gateway rate limited transaction %d lookup after %d attempts", tx.ID, maxRetries)
		case http.StatusNotFound:
			zap.L().Warn("payment unknown to gateway",
				zap.Int("transactionID", tx.ID), zap.String("reference", tx.Reference))
			return ErrGatewayNotFound
		default:
			zap.L().Error("unexpected gateway status code",
				zap.Int("status", statusCode), zap.Int("transactionID", tx.ID))
			return ErrUnexpectedStatus
		}
	}
	return nil
}

func (p *Poller) settle(ctx context.Context, tx domain.PaymentTransaction, respBody []byte) error {
	var resp GatewayResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}
	if resp.Reference != tx.Reference {
		return fmt.Errorf("%w: expected %s, got %s", ErrReferenceMismatch, tx.Reference, resp.Reference)
	}

	target, final := domain.GatewayStatus(resp.Status)
	if !final {
		zap.L().Debug("gateway payment still open",
			zap.Int("transactionID", tx.ID), zap.String("status", resp.Status))
		return nil
	}
	if target == domain.StatusCompleted && resp.Amount != nil && !resp.Amount.Equal(tx.Amount) {
		zap.L().Error("gateway reports a different amount, not settling",
			zap.Int("transactionID", tx.ID),
			zap.String("expected", tx.Amount.StringFixed(2)),
			zap.String("reported", resp.Amount.StringFixed(2)),
		)
		return ErrAmountMismatch
	}

	_, err := p.transactions.Transition(ctx, transactionservice.TransitionRequest{
		TransactionID: tx.ID,
		Target:        target,
		Reason:        resp.Reason,
		FromGateway:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply gateway status to transaction %d: %w", tx.ID, err)
	}
	zap.L().Info("gateway payment reconciled",
		zap.Int("transactionID", tx.ID), zap.String("status", string(target)))
	return nil
}

func (p *Poller) retryAfter(headers http.Header, attempt int) time.Duration {
	if seconds, err := strconv.Atoi(headers.Get("Retry-After")); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return p.retryInterval * time.Duration(attempt)
}

func (p *Poller) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
