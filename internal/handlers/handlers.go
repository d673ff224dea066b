package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/marketsettle/docs"
	"github.com/GlebRadaev/marketsettle/internal/domain"
	commissionhandlers "github.com/GlebRadaev/marketsettle/internal/handlers/commission"
	paymenthandlers "github.com/GlebRadaev/marketsettle/internal/handlers/payments"
	wallethandlers "github.com/GlebRadaev/marketsettle/internal/handlers/wallet"
	webhookhandlers "github.com/GlebRadaev/marketsettle/internal/handlers/webhooks"
	"github.com/GlebRadaev/marketsettle/internal/service"
	"github.com/GlebRadaev/marketsettle/pkg/auth"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type CommissionHandler interface {
	GetSetting(w http.ResponseWriter, r *http.Request)
	UpdateSetting(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	GetCommission(w http.ResponseWriter, r *http.Request)
	CreatePayment(w http.ResponseWriter, r *http.Request)
	ListPayments(w http.ResponseWriter, r *http.Request)
	GetPayment(w http.ResponseWriter, r *http.Request)
	SubmitReceipt(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetWallet(w http.ResponseWriter, r *http.Request)
}

type WebhookHandler interface {
	PaymentStatus(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	CommissionHandler CommissionHandler
	PaymentHandler    PaymentHandler
	WalletHandler     WalletHandler
	WebhookHandler    WebhookHandler

	tokens auth.TokenValidator
}

func New(s *service.Services, tokens auth.TokenValidator, webhookSecret string) *Handlers {
	return &Handlers{
		CommissionHandler: commissionhandlers.New(s.CommissionService),
		PaymentHandler:    paymenthandlers.New(s.TransactionService),
		WalletHandler:     wallethandlers.New(s.WalletService),
		WebhookHandler:    webhookhandlers.New(s.TransactionService, webhookSecret),
		tokens:            tokens,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	adminOnly := auth.RequireRole(string(domain.RoleAdmin))
	buyerOnly := auth.RequireRole(string(domain.RoleBuyer))

	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Post("/webhooks/payments", h.WebhookHandler.PaymentStatus)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.tokens))

			r.Get("/commission", h.CommissionHandler.GetSetting)
			r.With(adminOnly).Put("/commission", h.CommissionHandler.UpdateSetting)

			r.Route("/orders/{orderID}", func(r chi.Router) {
				r.Get("/commission", h.PaymentHandler.GetCommission)
				r.Get("/payments", h.PaymentHandler.ListPayments)
				r.With(buyerOnly).Post("/payments", h.PaymentHandler.CreatePayment)
			})
			r.Route("/payments/{transactionID}", func(r chi.Router) {
				r.Get("/", h.PaymentHandler.GetPayment)
				r.With(buyerOnly).Post("/receipt", h.PaymentHandler.SubmitReceipt)
				r.With(adminOnly).Post("/approve", h.PaymentHandler.Approve)
				r.With(adminOnly).Post("/reject", h.PaymentHandler.Reject)
			})
			r.Get("/wallet", h.WalletHandler.GetWallet)
		})
	})

	return r
}
