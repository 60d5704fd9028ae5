package businessdailydeals

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/auth"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/coupons"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/credits"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/dealrequests"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/deals"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/health"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/inquiries"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/keywords"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/notifications"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/payments"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/rates"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/upload"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/users"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/middlewarectx"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/metrics"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// Handlers groups every endpoint handler mounted by RegisterRoutes.
// Upload is nil when no object store is configured.
type Handlers struct {
	Health        *health.Handler
	Auth          *auth.Handler
	Users         *users.Handler
	Deals         *deals.Handler
	Credits       *credits.Handler
	Payments      *payments.Handler
	Inquiries     *inquiries.Handler
	Coupons       *coupons.Handler
	Keywords      *keywords.Handler
	Notifications *notifications.Handler
	DealRequests  *dealrequests.Handler
	Rates         *rates.Handler
	Upload        *upload.Handler
}

// RouteOptions carries the cross-cutting settings of the router.
type RouteOptions struct {
	Tokens         middlewarectx.TokenParser
	Limiter        *middlewarectx.RateLimiter
	AllowedOrigins []string
	Timeout        time.Duration
}

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r chi.Router, logger *slog.Logger, h Handlers, opts RouteOptions) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.HTTPMiddleware,
		cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)

	r.Method(http.MethodGet, "/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	supplier := middlewarectx.RequireRole(models.RoleSupplier)
	buyer := middlewarectx.RequireRole(models.RoleBuyer)
	admin := middlewarectx.RequireRole(models.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware(logger))
		}

		// Open endpoints
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Get("/deals", h.Deals.List)
		r.Get("/deals/{id}", h.Deals.Get)
		r.Get("/deal-requests", h.DealRequests.List)
		r.Get("/deal-requests/{id}", h.DealRequests.Get)
		r.Get("/rates", h.Rates.List)
		r.Post("/payments/payfast/notify", h.Payments.Notify)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(opts.Tokens, logger))

			r.Get("/me", h.Users.Me)
			r.Patch("/me", h.Users.UpdateMe)
			r.Get("/credits/balance", h.Credits.Balance)
			r.Get("/credits/transactions", h.Credits.Transactions)
			r.Get("/payments", h.Payments.List)

			r.Get("/inquiries", h.Inquiries.List)
			r.Post("/inquiries/{id}/close", h.Inquiries.Close)
			r.Get("/coupons", h.Coupons.List)
			r.Get("/coupons/{code}", h.Coupons.Validate)

			r.Get("/notifications", h.Notifications.List)
			r.Patch("/notifications/read-all", h.Notifications.MarkAllRead)
			r.Patch("/notifications/{id}/read", h.Notifications.MarkRead)

			r.With(supplier).Group(func(r chi.Router) {
				r.Get("/me/deals", h.Deals.Mine)
				r.Post("/credits/purchase", h.Payments.Purchase)
				r.Post("/deals", h.Deals.Create)
				r.Patch("/deals/{id}", h.Deals.Update)
				r.Patch("/deals/{id}/status", h.Deals.SetStatus)
				r.Post("/deals/{id}/reactivate", h.Deals.Reactivate)
				r.Post("/inquiries/{id}/respond", h.Inquiries.Respond)
				r.Post("/coupons/{code}/redeem", h.Coupons.Redeem)
				r.Get("/coupons/{code}/history", h.Coupons.History)
				r.Post("/rates/bulk-upload", h.Rates.BulkUpload)
				if h.Upload != nil {
					r.Post("/upload/image", h.Upload.Image)
				}
			})

			r.With(buyer).Group(func(r chi.Router) {
				r.Post("/inquiries", h.Inquiries.Create)
				r.Post("/coupons", h.Coupons.Create)
				r.Get("/keywords", h.Keywords.List)
				r.Post("/keywords", h.Keywords.Add)
				r.Delete("/keywords/{id}", h.Keywords.Remove)
				r.Post("/deal-requests", h.DealRequests.Create)
				r.Post("/deal-requests/{id}/close", h.DealRequests.Close)
			})

			r.With(admin).Group(func(r chi.Router) {
				r.Post("/admin/suppliers/{id}/verify", h.Users.VerifySupplier)
				r.Post("/admin/users/{id}/refund", h.Users.Refund)
			})
		})
	})
}
