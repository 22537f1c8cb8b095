package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"loja/internal/cache"
	"loja/internal/config"
	"loja/internal/database"
	"loja/internal/handlers"
	"loja/internal/logging"
	"loja/internal/middleware"
	"loja/internal/repositories"
	"loja/internal/services"
	"loja/pkg/rabbitmq"
)

// deps holds everything the HTTP layer needs.
type deps struct {
	db     *gorm.DB
	cfg    *config.Config
	cache  services.ProductCache
	events services.EventPublisher
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// --- Database ---
	db, err := database.Open(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	d := deps{db: db, cfg: cfg}

	// --- Redis (optional) ---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = cache.Connect(ctx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cancel()
		if err != nil {
			logrus.WithError(err).Warn("Product cache disabled")
		} else {
			d.cache = cache.NewProductCache(rdb, cfg.ProductCacheTTL)
			logrus.WithField("addr", cfg.RedisAddr).Info("Product cache enabled")
		}
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			logrus.WithError(err).Warn("Catalog events disabled")
		} else {
			d.events = mqClient
		}
	}

	app, productService := newApp(d)

	// Evict cached products changed by any instance.
	if mqClient != nil {
		if err := mqClient.Consume("product.*", productService.HandleCatalogEvent); err != nil {
			logrus.WithError(err).Warn("Failed to start catalog event consumer")
		}
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.Infof("Starting server on %s", cfg.Addr())
		if err := app.Listen(cfg.Addr()); err != nil {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	logrus.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.WithError(err).Error("Error during Fiber shutdown")
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			logrus.WithError(err).Error("Error closing RabbitMQ connection")
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logrus.WithError(err).Error("Error closing Redis connection")
		}
	}
	if err := database.Close(db); err != nil {
		logrus.WithError(err).Error("Error closing database")
	}
	logrus.Info("Server gracefully stopped")
}

// newApp wires repositories, services and handlers into a Fiber app.
func newApp(d deps) (*fiber.App, *services.ProductService) {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(d.db)
	categoryRepo := repositories.NewGORMCategoryRepository(d.db)
	productRepo := repositories.NewGORMProductRepository(d.db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, services.TokenConfig{
		Secret:   d.cfg.JWTSecret,
		Issuer:   d.cfg.JWTIssuer,
		Audience: d.cfg.JWTAudience,
		TTL:      d.cfg.JWTTTL,
	})
	var opts []services.ProductServiceOption
	if d.cache != nil {
		opts = append(opts, services.WithCache(d.cache))
	}
	if d.events != nil {
		opts = append(opts, services.WithEvents(d.events))
	}
	productService := services.NewProductService(productRepo, opts...)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "loja",
		ErrorHandler: errorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if sqlDB, err := d.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status["status"] = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})

	app.Use(middleware.AuthGate(authService))

	// --- API Routes ---
	v1 := app.Group("/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(v1)
	handlers.NewUserHandler(services.NewUserService(userRepo)).RegisterRoutes(v1)
	handlers.NewCategoryHandler(services.NewCategoryService(categoryRepo, services.WithProductInvalidator(productService))).RegisterRoutes(v1)
	handlers.NewProductHandler(productService).RegisterRoutes(v1)

	return app, productService
}

// errorHandler answers errors escaping the handlers, such as unknown routes,
// with the API's JSON error body.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		}).WithError(err).Error("Unhandled error")
		return c.Status(code).JSON(fiber.Map{"erro": "Erro interno do servidor"})
	}
	return c.Status(code).JSON(fiber.Map{"erro": err.Error()})
}
