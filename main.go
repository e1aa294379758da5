package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forever-ecommerce/cache"
	"forever-ecommerce/config"
	"forever-ecommerce/controllers"
	"forever-ecommerce/events"
	"forever-ecommerce/middleware"
	"forever-ecommerce/payments"
	"forever-ecommerce/repository"
	"forever-ecommerce/routes"
	"forever-ecommerce/services"
	"forever-ecommerce/utils"

	"github.com/gorilla/mux"
)

const appName = "Forever"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := utils.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "seed-admin" {
		err = seedAdmin(ctx, cfg)
	} else {
		err = serve(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// seedAdmin creates the initial superadmin from INITIAL_ADMIN_EMAIL and INITIAL_ADMIN_PASSWORD.
func seedAdmin(ctx context.Context, cfg *config.Config) error {
	client, err := utils.ConnectDB(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.Mongo.Database)

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	admins := services.NewAdminService(repository.NewAdminRepository(db), utils.NewJWTManager(cfg.JWTSecret), utils.NewValidator(), cfg.Admin.SetupSecret)
	created, err := admins.Seed(ctx, cfg.Admin.InitialEmail, cfg.Admin.InitialPassword)
	if err != nil {
		return err
	}
	if created {
		slog.Info("superadmin created", "email", cfg.Admin.InitialEmail)
	} else {
		slog.Info("admin already exists", "email", cfg.Admin.InitialEmail)
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	mongoClient, err := utils.ConnectDB(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := utils.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	store := cache.NewStore(rdb)

	publisher, consumer, err := newEventBus(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	users := repository.NewUserRepository(db)
	admins := repository.NewAdminRepository(db)
	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	settings := repository.NewSettingsRepository(db)

	mailer := utils.NewMailer(cfg.Email.Provider, cfg.Postmark.APIToken, cfg.Sendgrid.APIKey, cfg.Email.Sender, cfg.Email.SenderName)
	emailService := utils.NewEmailService(mailer, appName)
	tokens := utils.NewJWTManager(cfg.JWTSecret)
	validator := utils.NewValidator()

	var stripeGateway payments.CheckoutGateway
	if cfg.Stripe.SecretKey != "" {
		stripeGateway = payments.NewStripeGateway(cfg.Stripe.SecretKey)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, Stripe checkout disabled")
	}
	var razorpayGateway payments.OrderGateway
	if cfg.Razorpay.KeyID != "" && cfg.Razorpay.KeySecret != "" {
		razorpayGateway = payments.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	} else {
		logger.Warn("Razorpay keys not set, Razorpay checkout disabled")
	}

	accountService := services.NewAccountService(users, store, emailService, tokens, validator)
	adminService := services.NewAdminService(admins, tokens, validator, cfg.Admin.SetupSecret)
	checkoutService := services.NewCheckoutService(users, products, orders, stripeGateway, razorpayGateway, publisher, services.CheckoutConfig{
		Currency:       cfg.Checkout.Currency,
		DeliveryCharge: cfg.Checkout.DeliveryCharge,
	})
	notifier := services.NewOrderNotifier(users, settings, emailService)

	errs := utils.ErrorResponder{ExposeInternal: !cfg.IsProduction()}
	origins := cfg.AllowedOrigins()
	defaultOrigin := ""
	if len(origins) > 0 {
		defaultOrigin = origins[0]
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Controllers{
		User:     controllers.NewUserController(accountService, errs),
		Product:  controllers.NewProductController(services.NewCatalogService(products, validator), errs),
		Cart:     controllers.NewCartController(services.NewCartService(users, products), errs),
		Order:    controllers.NewOrderController(checkoutService, errs, defaultOrigin),
		Admin:    controllers.NewAdminController(adminService, services.NewAnalyticsService(orders, users, products), errs),
		Settings: controllers.NewSettingsController(services.NewSettingsService(settings, products, validator), errs),
		Health: controllers.NewHealthController(map[string]controllers.HealthCheck{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
	},
		middleware.NewAuth(tokens, adminService, users, errs),
		middleware.RateLimit(store, "admin", cfg.RateLimit.Limit, cfg.RateLimit.Window),
	)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           routes.NewHandler(router, logger, origins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if consumer == nil {
			return
		}
		if err := consumer.Run(consumerCtx, notifier.Handle); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("order event consumer stopped", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr, "env", cfg.Environment.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		stopConsumer()
		<-consumerDone
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("signal received, starting graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	stopConsumer()
	if consumer != nil {
		_ = consumer.Close()
	}
	<-consumerDone
	logger.Info("shutdown complete")
	return nil
}

// newEventBus selects the order event transport from EVENT_BROKER. The
// consumer is nil when events are disabled.
func newEventBus(cfg *config.Config) (events.Publisher, events.Consumer, error) {
	switch cfg.Events.Broker {
	case "", "memory":
		bus := events.NewMemoryBus(256)
		return bus, bus, nil
	case "rabbitmq":
		publisher, err := events.NewRabbitPublisher(cfg.Events.RabbitMQURL)
		if err != nil {
			return nil, nil, err
		}
		return publisher, events.NewRabbitConsumer(cfg.Events.RabbitMQURL), nil
	case "kafka":
		brokers := cfg.KafkaBrokerList()
		return events.NewKafkaPublisher(brokers, cfg.Events.KafkaTopic),
			events.NewKafkaConsumer(brokers, cfg.Events.KafkaTopic, events.NotifierGroup), nil
	case "none":
		return events.NopPublisher{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown EVENT_BROKER %q", cfg.Events.Broker)
	}
}
