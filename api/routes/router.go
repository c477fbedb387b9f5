package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/souqly/souqly-backend/api/controllers"
	"github.com/souqly/souqly-backend/api/middleware"
	checkoutsvc "github.com/souqly/souqly-backend/internal/checkout"
	"github.com/souqly/souqly-backend/internal/orders"
	"github.com/souqly/souqly-backend/internal/payments"
	"github.com/souqly/souqly-backend/internal/reviews"
	"github.com/souqly/souqly-backend/internal/vouchers"
	"github.com/souqly/souqly-backend/pkg/config"
	"github.com/souqly/souqly-backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        pinger
	RedisPinger     pinger
	CheckoutService checkoutsvc.Service
	OrdersService   orders.Service
	VouchersService vouchers.Service
	ReviewsService  reviews.Service
	ProfileRepo     payments.ProfileRepository
	Onboarding      payments.OnboardingService
	Metrics         prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/checkout", controllers.SubmitCheckout(deps.CheckoutService, logg))

		r.Get("/payment-methods", controllers.PaymentMethods(deps.ProfileRepo, logg))
		r.Post("/sellers/{id}/onboarding", controllers.StartSellerOnboarding(deps.Onboarding, logg))

		r.Route("/vouchers", func(r chi.Router) {
			r.Get("/", controllers.ListVouchers(deps.VouchersService, logg))
			r.Post("/", controllers.CreateVoucher(deps.VouchersService, logg))
			r.Put("/{id}", controllers.UpdateVoucher(deps.VouchersService, logg))
			r.Delete("/{id}", controllers.DeleteVoucher(deps.VouchersService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.OrdersService, logg))
			r.Get("/{id}", controllers.GetOrder(deps.OrdersService, logg))
			r.Patch("/{id}/status", controllers.UpdateOrderStatus(deps.OrdersService, logg))
		})

		r.Post("/order-items/{id}/review", controllers.MarkOrderItemReviewed(deps.OrdersService, logg))
		r.Get("/reviews/pending", controllers.PendingReviews(deps.ReviewsService, logg))
	})

	return r
}
