// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DealsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bdd_deals_created_total",
		Help: "Deals posted, by deal type.",
	}, []string{"type"})

	CreditsCharged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bdd_credits_charged_total",
		Help: "Credits deducted for deal postings.",
	})

	CreditsPurchased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bdd_credits_purchased_total",
		Help: "Credits added through completed payments.",
	})

	CouponsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bdd_coupons_issued_total",
		Help: "Coupon codes minted.",
	})

	CouponRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bdd_coupon_redemptions_total",
		Help: "Coupon redemption attempts, by result.",
	}, []string{"result"})

	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bdd_notifications_created_total",
		Help: "Keyword notifications created by deal fan-out.",
	})

	Payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bdd_payments_total",
		Help: "PayFast notifications processed, by resulting status.",
	}, []string{"status"})

	DealsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bdd_deals_expired_total",
		Help: "Deals moved to expired by the scheduler.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bdd_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// HTTPMiddleware records request durations labelled with the matched chi route.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
