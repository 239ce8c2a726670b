package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayoubterari/entrecoiffeur-backend/api/controllers"
	webhookcontrollers "github.com/ayoubterari/entrecoiffeur-backend/api/controllers/webhooks"
	"github.com/ayoubterari/entrecoiffeur-backend/api/middleware"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/affiliates"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/auth"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/commission"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/coupons"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/invoices"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/notifications"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/orders"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/products"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/reviews"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/support"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/users"
	stripewebhook "github.com/ayoubterari/entrecoiffeur-backend/internal/webhooks/stripe"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/auth/session"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/config"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/redis"
)

// Services bundles everything the HTTP layer dispatches to.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Users         users.Repository
	Products      products.Service
	Orders        orders.Service
	Coupons       coupons.Service
	Invoices      invoices.Service
	Affiliates    affiliates.Service
	Reviews       reviews.Service
	Support       support.Service
	Notifications notifications.Service
	Commission    commission.Service
	StripeWebhook *stripewebhook.Service
	StripeGuard   *stripewebhook.IdempotencyGuard
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(svcs.StripeWebhook, cfg.Stripe, svcs.StripeGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
	})

	// Public storefront reads.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products/{productId}", controllers.GetProduct(svcs.Products, logg))
		r.Get("/sellers/{sellerId}/products", controllers.ListSellerCatalog(svcs.Products, logg))
	})
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Get("/sellers/{sellerId}", controllers.ListSellerReviews(svcs.Reviews, logg))
		r.Get("/sellers/{sellerId}/stats", controllers.SellerReviewStats(svcs.Reviews, logg))
		r.Get("/products/{productId}", controllers.ListProductReviews(svcs.Reviews, logg))
		r.Get("/products/{productId}/stats", controllers.ProductReviewStats(svcs.Reviews, logg))
	})
	r.Post("/api/v1/affiliates/click/{code}", controllers.AffiliateClick(svcs.Affiliates, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Post("/v1/auth/logout", controllers.AuthLogout(svcs.Auth, logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.Get("/", controllers.ListMyOrders(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(svcs.Orders, logg))
			r.With(middleware.RequireAccountTypes(logg, enums.AccountTypeProfessional, enums.AccountTypeAdmin)).
				Post("/{orderId}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
			r.Post("/{orderId}/reviews", controllers.CreateOrderReview(svcs.Reviews, logg))
		})

		r.Post("/v1/coupons/validate", controllers.ValidateCoupon(svcs.Coupons, logg))

		r.Route("/v1/invoices", func(r chi.Router) {
			r.Get("/", controllers.ListMyInvoices(svcs.Invoices, logg))
			r.Get("/{invoiceId}", controllers.GetInvoice(svcs.Invoices, logg))
			r.With(middleware.RequireAccountTypes(logg, enums.AccountTypeAdmin)).
				Post("/{invoiceId}/credit-note", controllers.AdminCreateCreditNote(svcs.Invoices, logg))
			r.With(middleware.RequireAccountTypes(logg, enums.AccountTypeAdmin)).
				Post("/{invoiceId}/status", controllers.AdminUpdateInvoiceStatus(svcs.Invoices, logg))
		})

		r.Route("/v1/affiliates", func(r chi.Router) {
			r.Post("/links", controllers.CreateAffiliateLink(svcs.Affiliates, logg))
			r.Get("/links", controllers.ListAffiliateLinks(svcs.Affiliates, logg))
			r.Get("/balance", controllers.AffiliateBalance(svcs.Affiliates, logg))
			r.Get("/transactions", controllers.AffiliateTransactions(svcs.Affiliates, logg))
		})

		r.Route("/v1/support", func(r chi.Router) {
			r.Post("/tickets", controllers.CreateSupportTicket(svcs.Support, logg))
			r.Get("/tickets", controllers.ListMySupportTickets(svcs.Support, logg))
			r.Get("/tickets/{ticketId}", controllers.GetSupportTicket(svcs.Support, logg))
			r.Post("/tickets/{ticketId}/messages", controllers.ReplySupportTicket(svcs.Support, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Get("/v1/settings/commission", controllers.GetCommissionRate(svcs.Commission, logg))

		r.Route("/v1/seller", func(r chi.Router) {
			r.Use(middleware.RequireAccountTypes(logg, enums.AccountTypeProfessional))
			r.Use(middleware.RequireActiveSeller(svcs.Users, logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.SellerCreateProduct(svcs.Products, logg))
				r.Get("/", controllers.SellerListProducts(svcs.Products, logg))
				r.Put("/{productId}", controllers.SellerUpdateProduct(svcs.Products, logg))
				r.Delete("/{productId}", controllers.SellerDeactivateProduct(svcs.Products, logg))
			})
			r.Route("/coupons", func(r chi.Router) {
				r.Post("/", controllers.SellerCreateCoupon(svcs.Coupons, logg))
				r.Get("/", controllers.SellerListCoupons(svcs.Coupons, logg))
				r.Put("/{couponId}", controllers.SellerUpdateCoupon(svcs.Coupons, logg))
				r.Delete("/{couponId}", controllers.SellerDeactivateCoupon(svcs.Coupons, logg))
			})
			r.Get("/orders", controllers.SellerListOrders(svcs.Orders, logg))
			r.Get("/invoices", controllers.SellerListInvoices(svcs.Invoices, logg))
			r.Get("/reports/earnings", controllers.SellerEarningsReport(svcs.Commission, logg))
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAccountTypes(logg, enums.AccountTypeAdmin))

			r.Get("/ping", controllers.AdminPing())
			r.Post("/coupons", controllers.AdminCreateCoupon(svcs.Coupons, logg))
			r.Delete("/coupons/{couponId}", controllers.AdminDeactivateCoupon(svcs.Coupons, logg))
			r.Get("/support/tickets", controllers.AdminListSupportTickets(svcs.Support, logg))
			r.Post("/support/tickets/{ticketId}/status", controllers.AdminUpdateTicketStatus(svcs.Support, logg))
			r.Put("/settings/commission", controllers.AdminUpdateCommissionRate(svcs.Commission, logg))
		})
	})

	return r
}
