package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/mangaza/subscription-billing/internal/config"
	"github.com/mangaza/subscription-billing/internal/handler"
	"github.com/mangaza/subscription-billing/internal/idempotency"
	"github.com/mangaza/subscription-billing/internal/repository"
	"github.com/mangaza/subscription-billing/internal/service"
	"github.com/mangaza/subscription-billing/pkg/response"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	lineRepo := repository.NewLineRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Initialize services
	requestStore := idempotency.NewRedisStore(redisClient, cfg.Business.IdempotencyTTL)
	billingService := service.NewBillingService(lineRepo, invoiceRepo, paymentRepo, requestStore, redisClient, cfg)
	billingHandler := handler.NewBillingHandler(billingService, cfg)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(billingHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(billingHandler *handler.BillingHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/clients/{clientId}/overview", billingHandler.GetClientOverview).Methods("GET")
	api.HandleFunc("/clients/{clientId}/invoices/unpaid", billingHandler.GetUnpaidInvoices).Methods("GET")
	api.HandleFunc("/clients/{clientId}/payments", billingHandler.PayAllUnpaid).Methods("POST")
	api.HandleFunc("/lines", billingHandler.CreateLine).Methods("POST")
	api.HandleFunc("/lines/{lineId}", billingHandler.DeactivateLine).Methods("DELETE")
	api.HandleFunc("/lines/{lineId}/invoices", billingHandler.GetLineInvoices).Methods("GET")
	api.HandleFunc("/lines/{lineId}/transactions", billingHandler.GetBalanceHistory).Methods("GET")
	api.HandleFunc("/lines/{lineId}/coverage", billingHandler.GetCoverage).Methods("GET")
	api.HandleFunc("/lines/{lineId}/balance", billingHandler.AddBalance).Methods("POST")
	api.HandleFunc("/advance-payments/plan", billingHandler.PlanAdvancePayment).Methods("POST")
	api.HandleFunc("/invoices/{invoiceId}/payments", billingHandler.PayInvoice).Methods("POST")
	api.HandleFunc("/invoices/{invoiceId}/document", billingHandler.GetInvoiceDocument).Methods("GET")

	return router
}
