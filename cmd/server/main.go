package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront-system/internal/config"
	"storefront-system/internal/database"
	"storefront-system/internal/handlers"
	"storefront-system/internal/kafka"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
	"storefront-system/internal/notify"
	"storefront-system/internal/redis"
	"storefront-system/internal/services"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	mailer   notify.Mailer
	mux      *http.ServeMux
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting storefront server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = app.consumer.Stop()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	_ = app.producer.Close()
	_ = app.mailer.Close()
	_ = app.redis.Close()
	_ = app.db.Close()
	app.log.Info("Server exited")
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	db, err := dbConnect(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	catalogService := services.NewCatalogService(db, log)
	promoService := services.NewPromoService(db, log)
	orderService := services.NewOrderService(db, log, promoService)
	settingsService := services.NewSettingsService(db, redisClient, log)
	authService := services.NewAuthService(db, redisClient, &cfg.Session, log)
	statsService := services.NewStatsService(db, redisClient, log, &cfg.Stats)
	storefrontService := services.NewStorefrontService(catalogService, settingsService, redisClient, &cfg.Store, log)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	mailer := notify.NewSMTPMailer(&cfg.SMTP, log)
	notifier := notify.NewNotifier(mailer, orderService, catalogService, settingsService, &cfg.Store, log)

	authHandler := handlers.NewAuthHandler(authService, &cfg.Session, log)
	categoriesHandler := handlers.NewCategoriesHandler(catalogService, storefrontService, log)
	productsHandler := handlers.NewProductsHandler(catalogService, storefrontService, log)
	packagesHandler := handlers.NewPackagesHandler(catalogService, log)
	ordersHandler := handlers.NewOrdersHandler(orderService, producer, statsService, log)
	promoHandler := handlers.NewPromoHandler(promoService, log)
	settingsHandler := handlers.NewSettingsHandler(settingsService, storefrontService, log)
	publicHandler := handlers.NewPublicHandler(storefrontService, log)
	uploadHandler := handlers.NewUploadHandler(&cfg.Upload, log)
	statsHandler := handlers.NewStatsHandler(statsService, log)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit)
	healthHandler := handlers.NewHealthHandler(db, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck)

	registerEventHandlers(consumer, notifier, log)
	if err := consumer.Start(); err != nil {
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	mux := setupRoutes(&routeHandlers{
		auth:       authHandler,
		categories: categoriesHandler,
		products:   productsHandler,
		packages:   packagesHandler,
		orders:     ordersHandler,
		promo:      promoHandler,
		settings:   settingsHandler,
		public:     publicHandler,
		upload:     uploadHandler,
		stats:      statsHandler,
		rateLimit:  rateLimitHandler,
		health:     healthHandler,
	}, rateLimiter, &cfg.RateLimit, &cfg.Upload, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &application{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		producer: producer,
		consumer: consumer,
		mailer:   mailer,
		mux:      mux,
		server:   server,
	}, nil
}

// routeHandlers собирает все HTTP обработчики для маршрутизации.
type routeHandlers struct {
	auth       *handlers.AuthHandler
	categories *handlers.CategoriesHandler
	products   *handlers.ProductsHandler
	packages   *handlers.PackagesHandler
	orders     *handlers.OrdersHandler
	promo      *handlers.PromoHandler
	settings   *handlers.SettingsHandler
	public     *handlers.PublicHandler
	upload     *handlers.UploadHandler
	stats      *handlers.StatsHandler
	rateLimit  *handlers.RateLimitHandler
	health     *handlers.HealthHandler
}

// setupRoutes настраивает маршруты HTTP сервера. Публичные эндпоинты
// проходят через rate limiter, админские — через проверку сессии.
func setupRoutes(h *routeHandlers, rateLimiter *services.RateLimiter, rlCfg *config.RateLimitConfig, uploadCfg *config.UploadConfig, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	public := func(hf http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.RateLimitMiddleware(rateLimiter, log, hf))
	}
	// Оформление заказа и проверка промокодов идут через отдельный лимит.
	checkout := func(hf http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.CheckoutRateLimitMiddleware(rateLimiter, log, int64(rlCfg.CheckoutRequests), hf))
	}
	admin := func(hf http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(h.auth.RequireAuth(hf))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(h.health.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(h.health.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(h.health.Liveness))

	// Auth endpoints
	mux.HandleFunc("/api/auth/login", public(h.auth.Login))
	mux.HandleFunc("/api/auth/logout", corsMiddleware(h.auth.Logout))
	mux.HandleFunc("/api/auth/me", corsMiddleware(h.auth.Me))

	// Storefront endpoints
	mux.HandleFunc("/api/public/homepage", public(h.public.Homepage))
	mux.HandleFunc("/api/public/payment-settings", public(h.public.PaymentSettings))
	mux.HandleFunc("/api/public/checkout-url", checkout(h.public.CheckoutURL))

	// Catalog endpoints: чтение публичное, изменения только для админа
	mux.HandleFunc("/api/categories", splitByMethod(public(h.categories.Collection), admin(h.categories.Collection)))
	mux.HandleFunc("/api/categories/", splitByMethod(public(h.categories.Item), admin(h.categories.Item)))
	mux.HandleFunc("/api/products", splitByMethod(public(h.products.Collection), admin(h.products.Collection)))
	mux.HandleFunc("/api/products/admin", admin(h.products.AdminList))
	mux.HandleFunc("/api/products/category/", public(h.products.ByCategory))
	mux.HandleFunc("/api/products/", splitByMethod(public(h.products.Item), admin(h.products.Item)))
	mux.HandleFunc("/api/packages", admin(h.packages.Create))
	mux.HandleFunc("/api/packages/product/", handlePackagesByProduct(h, public, admin))
	mux.HandleFunc("/api/packages/", splitByMethod(public(h.packages.Item), admin(h.packages.Item)))

	// Order endpoints: создание публичное, остальное админское
	mux.HandleFunc("/api/orders", handleOrdersRoute(h, checkout, admin))
	mux.HandleFunc("/api/orders/", admin(h.orders.Item))

	// Promo endpoints
	mux.HandleFunc("/api/promo/validate", checkout(h.promo.Validate))
	mux.HandleFunc("/api/promo", admin(h.promo.Collection))
	mux.HandleFunc("/api/promo/", admin(h.promo.Item))

	// Settings endpoints (только админ)
	mux.HandleFunc("/api/settings", admin(h.settings.Collection))
	mux.HandleFunc("/api/settings/", admin(h.settings.Item))

	// Upload endpoints
	mux.HandleFunc("/api/upload/image", admin(h.upload.Upload))
	mux.HandleFunc("/api/upload/image/", admin(h.upload.Delete))
	mux.HandleFunc("/api/upload/payment-proof", public(h.upload.Upload))

	// Admin stats
	mux.HandleFunc("/api/admin/stats", admin(h.stats.Dashboard))

	// Rate limit status
	mux.HandleFunc("/api/rate-limit/status", corsMiddleware(h.rateLimit.Status))

	// Статика загруженных файлов
	publicPath := strings.TrimSuffix(uploadCfg.PublicPath, "/") + "/"
	mux.Handle(publicPath, http.StripPrefix(publicPath, http.FileServer(http.Dir(uploadCfg.Dir))))

	return mux
}

// splitByMethod направляет GET в публичный обработчик, остальные методы
// в админский.
func splitByMethod(read, write http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodOptions {
			read(w, r)
			return
		}
		write(w, r)
	}
}

// handleOrdersRoute: POST публичный (оформление заказа), GET админский.
func handleOrdersRoute(h *routeHandlers, public, admin func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	publicCreate := public(h.orders.Collection)
	adminList := admin(h.orders.Collection)
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodOptions:
			publicCreate(w, r)
		case http.MethodGet:
			adminList(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handlePackagesByProduct: публичный список включенных тарифов, вариант
// /admin с выключенными — только для админа.
func handlePackagesByProduct(h *routeHandlers, public, admin func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	publicList := public(h.packages.ByProduct)
	adminList := admin(h.packages.ByProduct)
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/admin") {
			adminList(w, r)
			return
		}
		publicList(w, r)
	}
}

// registerEventHandlers регистрирует обработчики событий Kafka:
// почтовые уведомления о новых и завершенных заказах.
func registerEventHandlers(consumer *kafka.Consumer, notifier *notify.Notifier, log *logger.Logger) {
	consumer.RegisterHandler(models.EventTypeOrderCreated, func(ctx context.Context, event *models.Event) error {
		var data models.OrderCreatedData
		if err := kafka.DecodeEventData(event, &data); err != nil {
			return err
		}
		log.WithField("event_id", event.ID).Info("Processing order created event")
		return notifier.HandleOrderCreated(ctx, &data)
	})

	consumer.RegisterHandler(models.EventTypeOrderStatusChanged, func(ctx context.Context, event *models.Event) error {
		var data models.OrderStatusChangedData
		if err := kafka.DecodeEventData(event, &data); err != nil {
			return err
		}
		log.WithField("event_id", event.ID).Info("Processing order status changed event")
		return notifier.HandleOrderStatusChanged(ctx, &data)
	})
}

// corsMiddleware и другие helper функции
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	type errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
