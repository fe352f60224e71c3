package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/mangaza/subscription-billing/internal/config"
	"github.com/mangaza/subscription-billing/internal/repository"
	"github.com/mangaza/subscription-billing/internal/service"
)

func main() {
	log.Println("Starting billing scheduler...")

	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	lineRepo := repository.NewLineRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	automation := service.NewAutomationService(lineRepo, invoiceRepo, paymentRepo, cfg)

	// Initialize cron scheduler in the billing timezone
	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.GetSchedulerLocation()))

	setupCronJobs(c, cfg, automation)

	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, automation *service.AutomationService) {
	// Monthly invoice generation, first of the month
	_, err := c.AddFunc(cfg.Scheduler.InvoiceCron, func() {
		log.Println("Running monthly invoice generation job...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		created, err := automation.GenerateMonthlyInvoices(ctx, time.Now())
		if err != nil {
			log.Printf("Invoice generation job failed after %d invoices: %v", created, err)
			return
		}
		log.Printf("Invoice generation job created %d invoices", created)
	})
	if err != nil {
		log.Printf("Error scheduling invoice generation job: %v", err)
	}

	// Monthly balance debit, after invoice generation
	_, err = c.AddFunc(cfg.Scheduler.DebitCron, func() {
		log.Println("Running monthly balance debit job...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		debited, err := automation.DebitMonthlyCharges(ctx, time.Now())
		if err != nil {
			log.Printf("Balance debit job failed after %d lines: %v", debited, err)
			return
		}
		log.Printf("Balance debit job charged %d lines", debited)
	})
	if err != nil {
		log.Printf("Error scheduling balance debit job: %v", err)
	}

	// Daily payment status sweep
	_, err = c.AddFunc(cfg.Scheduler.StatusSweepCron, func() {
		log.Println("Running daily payment status sweep...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		updated, err := automation.SweepPaymentStatuses(ctx, time.Now())
		if err != nil {
			log.Printf("Status sweep failed after %d updates: %v", updated, err)
			return
		}
		log.Printf("Status sweep updated %d lines", updated)
	})
	if err != nil {
		log.Printf("Error scheduling status sweep job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
