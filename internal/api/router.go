package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/handlers"
	custommiddleware "github.com/rentpool/Deposit-Pool-Backend/internal/api/middleware"
	"github.com/rentpool/Deposit-Pool-Backend/internal/config"
	"github.com/rentpool/Deposit-Pool-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	depositService *service.DepositService,
	poolService *service.PoolService,
	dividendService *service.DividendService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace, no organization scope required
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireOrganization)

			r.Route("/deposit", func(r chi.Router) {
				depositHandler := handlers.NewDepositHandler(depositService)
				r.Post("/", depositHandler.Collect)
				r.Get("/", depositHandler.ListDeposits)
				r.Get("/pending-refunds", depositHandler.ListPendingRefunds)
				r.Get("/pool/{year}", depositHandler.ListPoolForYear)
				r.Route("/lease/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", depositHandler.GetDepositByLease)
				})
				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", depositHandler.GetDeposit)
					r.Post("/pool/enter", depositHandler.EnterPool)
					r.Post("/pool/exit", depositHandler.ExitPool)
					r.Get("/refund", depositHandler.CalculateRefund)
					r.Post("/refund", depositHandler.ProcessRefund)
				})
			})

			r.Route("/pool", func(r chi.Router) {
				poolHandler := handlers.NewPoolHandler(poolService, dividendService)
				r.Get("/", poolHandler.ListPools)
				r.Route("/year/{year}", func(r chi.Router) {
					r.Get("/", poolHandler.GetPool)
					r.Post("/performance", poolHandler.RecordPerformance)
					r.Post("/calculate", poolHandler.CalculateDividends)
				})
				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Post("/close", poolHandler.ClosePool)
				})
			})

			r.Route("/dividend", func(r chi.Router) {
				dividendHandler := handlers.NewDividendHandler(dividendService)
				r.Get("/year/{year}", dividendHandler.ListDividendsForYear)
				r.Route("/tenant/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", dividendHandler.ListTenantDividends)
				})
				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", dividendHandler.GetDividend)
					r.Post("/choice", dividendHandler.RecordChoice)
					r.Post("/payment", dividendHandler.ProcessPayment)
				})
			})
		})
	})

	return r
}
