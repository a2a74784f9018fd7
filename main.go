package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"

	"github.com/Antocflores/casino/internal/handlers"
	"github.com/Antocflores/casino/internal/middleware"
	"github.com/Antocflores/casino/internal/models"
	"github.com/Antocflores/casino/internal/repositories"
	"github.com/Antocflores/casino/internal/services"
	"github.com/Antocflores/casino/pkg/feed"
	"github.com/Antocflores/casino/pkg/rabbitmq"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("JWT_SECRET", "casino-dev-secret")
	viper.SetDefault("ADMIN_EMAIL", "admin123@gmail.com")
	viper.SetDefault("ADMIN_PASSWORD", "123456")
	viper.SetDefault("BUYER_EMAIL_DOMAIN", "@usm.cl")
	viper.SetDefault("PICKUP_WINDOW", "5m")
	viper.SetDefault("COUNTDOWN_TICK", "1s")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	pickupWindow := viper.GetDuration("PICKUP_WINDOW")
	countdownTick := viper.GetDuration("COUNTDOWN_TICK")

	// --- Database ---
	db, err := openDatabase(viper.GetString("DATABASE_DSN"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.Order{}, &models.QueueEntry{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional: empty URL disables event publishing) ---
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if rabbitMQURL := viper.GetString("RABBITMQ_URL"); rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set, event publishing disabled.")
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	queueRepo := repositories.NewGORMQueueRepository(db)

	// --- Live-subscription hub ---
	hub := feed.NewHub()

	// --- Services ---
	authService, err := services.NewAuthService(services.AuthConfig{
		AdminEmail:    viper.GetString("ADMIN_EMAIL"),
		AdminPassword: viper.GetString("ADMIN_PASSWORD"),
		BuyerDomain:   viper.GetString("BUYER_EMAIL_DOMAIN"),
		JWTSecret:     viper.GetString("JWT_SECRET"),
	})
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}
	catalogService := services.NewCatalogService(productRepo, hub, publisher)
	cartService := services.NewCartService(cartRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, queueRepo, cartRepo, productRepo, hub, publisher, time.Now)
	queueService := services.NewQueueService(queueRepo, orderRepo, hub, publisher, pickupWindow, countdownTick, time.Now)

	// Seed the cafeteria menu on first run.
	if err := catalogService.SeedDefaults(); err != nil {
		log.Printf("Error seeding catalog: %v", err)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	queueHandler := handlers.NewQueueHandler(queueService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Login is public; everything else requires a session token.
	authHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	productHandler.RegisterRoutes(protected)
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	queueHandler.RegisterRoutes(protected)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Background workers ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pickup-countdown watcher: expires notified entries whose window ran out.
	go queueService.Watch(ctx)

	// Event log consumer, mirrors every published lifecycle event.
	if mqClient != nil {
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received event %s: %s", msg.RoutingKey, string(msg.Body))
			return nil
		}
		if consumerErr := mqClient.ConsumeEvents("#", messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")
	cancel()

	// Shutdown Fiber app
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase picks a driver from the DSN: postgres for postgres:// DSNs,
// a shared in-memory SQLite database otherwise.
func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
