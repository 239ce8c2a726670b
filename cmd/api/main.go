package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/ayoubterari/entrecoiffeur-backend/api/routes"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/affiliates"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/auth"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/commission"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/coupons"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/invoices"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/notifications"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/orders"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/products"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/reviews"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/sequence"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/support"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/users"
	stripewebhook "github.com/ayoubterari/entrecoiffeur-backend/internal/webhooks/stripe"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/auth/session"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/config"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/migrate"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/outbox"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/redis"
)

const stripeEventGuardTTL = 7 * 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	svcs.Users = userRepo

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	svcs.Auth = authService

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		Users:          userRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}
	svcs.Register = registerService

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, svcs),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var errs error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = multierr.Append(errs, err)
		}
		if err := <-errCh; err != nil && err != http.ErrServerClosed {
			errs = multierr.Append(errs, err)
		}
		if errs != nil {
			logg.Error(ctx, "api server shutdown incomplete", errs)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Services, error) {
	var svcs routes.Services
	gdb := dbClient.DB()

	events := outbox.NewService(outbox.NewRepository(gdb), logg)

	sequenceService, err := sequence.NewService(sequence.NewRepository())
	if err != nil {
		return svcs, err
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(gdb))
	if err != nil {
		return svcs, err
	}
	svcs.Notifications = notificationService

	defaultTVARate, err := cfg.Billing.DefaultTVARate()
	if err != nil {
		return svcs, err
	}
	productService, err := products.NewService(products.NewRepository(gdb), defaultTVARate)
	if err != nil {
		return svcs, err
	}
	svcs.Products = productService

	couponService, err := coupons.NewService(coupons.NewRepository(gdb))
	if err != nil {
		return svcs, err
	}
	svcs.Coupons = couponService

	earningRate, err := cfg.Affiliate.EarningRate()
	if err != nil {
		return svcs, err
	}
	affiliateService, err := affiliates.NewService(affiliates.ServiceParams{
		DB:          dbClient,
		Repo:        affiliates.NewRepository(gdb),
		Outbox:      events,
		EarningRate: earningRate,
	})
	if err != nil {
		return svcs, err
	}
	svcs.Affiliates = affiliateService

	invoiceService, err := invoices.NewService(invoices.ServiceParams{
		DB:       dbClient,
		Repo:     invoices.NewRepository(gdb),
		Sequence: sequenceService,
		Outbox:   events,
	})
	if err != nil {
		return svcs, err
	}
	svcs.Invoices = invoiceService

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		DB:     dbClient,
		Repo:   reviews.NewRepository(gdb),
		Outbox: events,
	})
	if err != nil {
		return svcs, err
	}
	svcs.Reviews = reviewService

	supportService, err := support.NewService(support.ServiceParams{
		DB:            dbClient,
		Repo:          support.NewRepository(gdb),
		Sequence:      sequenceService,
		Notifications: notificationService,
		Outbox:        events,
	})
	if err != nil {
		return svcs, err
	}
	svcs.Support = supportService

	bootstrapRate, err := cfg.Billing.DefaultCommissionRate()
	if err != nil {
		return svcs, err
	}
	commissionService, err := commission.NewService(commission.ServiceParams{
		Repo:          commission.NewRepository(gdb),
		BootstrapRate: bootstrapRate,
	})
	if err != nil {
		return svcs, err
	}
	svcs.Commission = commissionService

	shippingFee, err := cfg.Checkout.ShippingFeeAmount()
	if err != nil {
		return svcs, err
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		DB:            dbClient,
		Repo:          orders.NewRepository(gdb),
		Products:      products.NewRepository(gdb),
		Coupons:       couponService,
		Affiliates:    affiliateService,
		Invoices:      invoiceService,
		Notifications: notificationService,
		Outbox:        events,
		Logger:        logg,
		ShippingFee:   shippingFee,
	})
	if err != nil {
		return svcs, err
	}
	svcs.Orders = orderService

	stripeService, err := stripewebhook.NewService(stripewebhook.ServiceParams{Orders: orderService})
	if err != nil {
		return svcs, err
	}
	svcs.StripeWebhook = stripeService

	stripeGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, stripeEventGuardTTL, "stripe:event")
	if err != nil {
		return svcs, err
	}
	svcs.StripeGuard = stripeGuard

	return svcs, nil
}
