package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	cartApi "github.com/ridloal/fashion-dropship-store/internal/cart/api"
	cartRepository "github.com/ridloal/fashion-dropship-store/internal/cart/repository"
	cartService "github.com/ridloal/fashion-dropship-store/internal/cart/service"
	orderApi "github.com/ridloal/fashion-dropship-store/internal/order/api"
	orderRepository "github.com/ridloal/fashion-dropship-store/internal/order/repository"
	orderService "github.com/ridloal/fashion-dropship-store/internal/order/service"
	paymentApi "github.com/ridloal/fashion-dropship-store/internal/payment/api"
	"github.com/ridloal/fashion-dropship-store/internal/payment/gateway"
	paymentService "github.com/ridloal/fashion-dropship-store/internal/payment/service"
	"github.com/ridloal/fashion-dropship-store/internal/platform/config"
	"github.com/ridloal/fashion-dropship-store/internal/platform/database"
	"github.com/ridloal/fashion-dropship-store/internal/platform/events"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/platform/idempotency"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
	productApi "github.com/ridloal/fashion-dropship-store/internal/product/api"
	productRepository "github.com/ridloal/fashion-dropship-store/internal/product/repository"
	productService "github.com/ridloal/fashion-dropship-store/internal/product/service"
	supplierApi "github.com/ridloal/fashion-dropship-store/internal/supplier/api"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/outbox"
	supplierRepository "github.com/ridloal/fashion-dropship-store/internal/supplier/repository"
	supplierService "github.com/ridloal/fashion-dropship-store/internal/supplier/service"
	userApi "github.com/ridloal/fashion-dropship-store/internal/user/api"
	userDomain "github.com/ridloal/fashion-dropship-store/internal/user/domain"
	userRepository "github.com/ridloal/fashion-dropship-store/internal/user/repository"
	userService "github.com/ridloal/fashion-dropship-store/internal/user/service"
)

const (
	orderTimeoutSpec = "*/30 * * * * *"
	kafkaBuffer      = 256
	shutdownTimeout  = 10 * time.Second
)

func main() {
	// Load Config
	cfg := config.Load()
	gin.SetMode(cfg.Server.GinMode)

	logger.Info("Starting Fashion Storefront...")
	ctx := context.Background()

	// Setup Repositories
	var (
		productRepo productRepository.ProductRepository
		userRepo    userRepository.UserRepository
		orderRepo   orderRepository.OrderRepository
		db          *sql.DB
	)
	if cfg.DB.DSN != "" {
		var err error
		db, err = database.Connect(cfg.DB.DSN)
		if err != nil {
			logger.Error("Failed to connect to database", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			logger.Error("Failed to apply database schema", err)
			os.Exit(1)
		}
		productRepo = productRepository.NewPostgresProductRepository(db)
		userRepo = userRepository.NewPostgresUserRepository(db)
		orderRepo = orderRepository.NewPostgresOrderRepository(db)
	} else {
		logger.Info("DATABASE_DSN not set, using in-memory storage")
		productRepo = productRepository.NewMemoryProductRepository()
		userRepo = userRepository.NewMemoryUserRepository()
		orderRepo = orderRepository.NewMemoryOrderRepository()
	}

	// Redis untuk cart, idempotency dan outbox (opsional)
	var (
		cartRepo cartRepository.CartRepository = cartRepository.NewMemoryCartRepository()
		claims   idempotency.Store             = idempotency.NewMemoryStore()
		queue    outbox.Queue                  = outbox.NewMemoryQueue()
		rdb      *redis.Client
	)
	if cfg.Broker.RedisAddr != "" {
		var err error
		rdb, err = idempotency.NewRedisClient(ctx, cfg.Broker.RedisAddr)
		if err != nil {
			logger.Error("Failed to connect to Redis at "+cfg.Broker.RedisAddr, err)
			os.Exit(1)
		}
		defer rdb.Close()
		cartRepo = cartRepository.NewRedisCartRepository(rdb, cartRepository.DefaultCartTTL)
		claims = idempotency.NewRedisStore(rdb)
		queue = outbox.NewRedisQueue(rdb)
	}

	var (
		publisher events.Publisher = events.NewLogPublisher()
		kafkaPub  *events.KafkaPublisher
	)
	if len(cfg.Broker.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.Broker.KafkaBrokers, cfg.Broker.KafkaTopic, kafkaBuffer)
		kafkaPub.Start()
		publisher = kafkaPub
		logger.Info("Publishing events to Kafka topic %s", cfg.Broker.KafkaTopic)
	}

	pricing := money.NewRules(cfg.Pricing.TaxRate, cfg.Pricing.FreeShippingThreshold, cfg.Pricing.FlatShippingRate)

	// Setup Services
	supplierSvc := supplierService.NewSupplierService(
		supplierRepository.NewMemorySupplierRepository(supplierRepository.DefaultCatalog()),
		queue, claims, publisher,
		supplierService.Config{
			Latency:      cfg.Supplier.Latency,
			ConfirmDelay: cfg.Supplier.ConfirmDelay,
			ShipDelay:    cfg.Supplier.ShipDelay,
		})
	productSvc := productService.NewProductService(productRepo)
	userSvc := userService.NewUserService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	orderSvc := orderService.NewOrderService(orderRepo, productSvc, supplierFulfillment{supplier: supplierSvc}, publisher, pricing, cfg.Payment.Timeout)
	cartSvc := cartService.NewCartService(cartRepo, productSvc, orderSvc, pricing)

	var stripeGw gateway.StripeGateway
	if cfg.Payment.StripeSecretKey != "" {
		stripeGw = gateway.NewStripeLive(cfg.Payment.StripeSecretKey)
		logger.Info("Stripe: using live API")
	} else {
		stripeGw = gateway.NewStripeSandbox()
	}
	paymentSvc := paymentService.NewPaymentService(orderSvc, stripeGw, gateway.NewPayPalSandbox(), gateway.NewAuthorizeNetSandbox(), cfg.Pricing.Currency)

	supplierSvc.OnStatusChange(relayStatus(orderSvc))
	supplierSvc.OnInventoryChange(relayInventory(productSvc))

	// Seed data
	if n, err := productRepository.Seed(ctx, productRepo); err != nil {
		logger.Error("Failed to seed products", err)
	} else if n > 0 {
		logger.Info("Seeded %d products", n)
	}
	if _, err := userSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Error("Failed to ensure admin account", err)
	}

	// Background jobs
	dispatcher := outbox.NewDispatcher(queue, claims, supplierSvc.ProcessTask, cfg.Supplier.MaxAttempts)
	if err := dispatcher.Start(cfg.Supplier.OutboxPollSpec); err != nil {
		logger.Error("Failed to start supplier outbox dispatcher", err)
		os.Exit(1)
	}
	if err := orderSvc.StartScheduler(orderTimeoutSpec); err != nil {
		logger.Error("Failed to start payment timeout scheduler", err)
		os.Exit(1)
	}
	if err := supplierSvc.StartScheduler(cfg.Supplier.InventorySyncSpec); err != nil {
		logger.Error("Failed to start inventory sync", err)
		os.Exit(1)
	}

	// Setup Gin Router
	auth := userApi.NewAuthMiddleware(userSvc)
	admin := auth.RequireRole(userDomain.RoleAdmin)

	router := httpx.NewRouter()
	apiGroup := router.Group("/api")
	userApi.NewUserHandler(userSvc, auth).RegisterRoutes(apiGroup)
	productApi.NewProductHandler(productSvc).RegisterRoutes(apiGroup, admin)
	cartApi.NewCartHandler(cartSvc).RegisterRoutes(apiGroup, auth.OptionalAuth())
	orderApi.NewOrderHandler(orderSvc).RegisterRoutes(apiGroup, orderApi.Guards{
		Optional: auth.OptionalAuth(),
		Required: auth.RequireAuth(),
		Admin:    admin,
	})
	paymentApi.NewPaymentHandler(paymentSvc).RegisterRoutes(apiGroup)
	supplierApi.NewSupplierHandler(supplierSvc).RegisterRoutes(apiGroup, admin)

	server := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Storefront running on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to run storefront server", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down storefront...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	dispatcher.Stop()
	orderSvc.StopScheduler()
	supplierSvc.StopScheduler()
	if kafkaPub != nil {
		kafkaPub.Close()
		kafkaPub.WaitClosed()
	}
	logger.Info("Storefront stopped")
}
