package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"stockyard/internal/caching"
	"stockyard/internal/handlers"
	"stockyard/internal/jobs/background"
	"stockyard/internal/middleware"
	"stockyard/internal/repositories"
	"stockyard/internal/services"
	"stockyard/pkg/database"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// Repositories on the shared pool; the orchestrator builds tx-scoped ones
	// per operation.
	stockRepo := repositories.NewStockUnitRepo(pool)
	movementRepo := repositories.NewMovementRepo(pool)
	clusterRepo := repositories.NewClusterConfigRepo(pool)
	homeRepo := repositories.NewProductHomeRepo(pool)

	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	layoutSvc := services.NewLayoutService(clusterRepo, homeRepo, cacheSvc)
	allocSvc := services.NewAllocationService(stockRepo)
	txSvc := services.NewTransactionService(pool, layoutSvc, allocSvc)

	transactionHandlers := handlers.NewTransactionHandlers(txSvc)
	stockHandlers := handlers.NewStockHandlers(stockRepo, movementRepo, layoutSvc, allocSvc)
	layoutHandlers := handlers.NewLayoutHandlers(clusterRepo, homeRepo, cacheSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	scheduler := background.NewJobScheduler(stockRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/v1")
	v1.Use(middleware.ActorMiddleware(jwtSecret))

	v1.POST("/transactions/inbound", transactionHandlers.CreateInbound)
	v1.POST("/transactions/npl", transactionHandlers.CreateNPLReturn)
	v1.POST("/transactions/outbound", transactionHandlers.CreateOutbound)
	v1.DELETE("/transactions/outbound/:code", transactionHandlers.CancelOutbound)
	v1.POST("/transactions/permutation", transactionHandlers.CreatePermutation)

	v1.GET("/stock-units", stockHandlers.ListStockUnits)
	v1.GET("/movements", stockHandlers.ListMovements)
	v1.POST("/placement/validate", stockHandlers.ValidatePlacement)
	v1.POST("/allocation/preview", stockHandlers.PreviewAllocation)

	v1.POST("/layout/clusters", layoutHandlers.CreateCluster)
	v1.GET("/layout/clusters", layoutHandlers.ListClusters)
	v1.POST("/layout/overrides", layoutHandlers.CreateOverride)
	v1.POST("/layout/product-homes", layoutHandlers.SetProductHome)
	v1.GET("/layout/product-homes", layoutHandlers.ListProductHomes)
	v1.POST("/layout/cache/invalidate", layoutHandlers.FlushCache)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Stockyard server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
