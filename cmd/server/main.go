package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api"
	"github.com/rentpool/Deposit-Pool-Backend/internal/config"
	"github.com/rentpool/Deposit-Pool-Backend/internal/database"
	"github.com/rentpool/Deposit-Pool-Backend/internal/repository"
	"github.com/rentpool/Deposit-Pool-Backend/internal/scheduler"
	"github.com/rentpool/Deposit-Pool-Backend/internal/secure"
	"github.com/rentpool/Deposit-Pool-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	organizationRepo := repository.NewOrganizationRepository(db)
	leaseRepo := repository.NewLeaseRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	poolRepo := repository.NewPoolRepository(db)
	dividendRepo := repository.NewDividendRepository(db)

	// Mailing address encryption
	vault, err := secure.NewVault(cfg.Secure.MailingAddressKey)
	if err != nil {
		log.Fatalf("Failed to initialize encryption: %v", err)
	}

	// Create services
	systemService := service.NewSystemService(db)
	depositService := service.NewDepositService(
		depositRepo,
		leaseRepo,
		dividendRepo,
	)
	poolService := service.NewPoolService(
		poolRepo,
		organizationRepo,
	)
	dividendService := service.NewDividendService(
		dividendRepo,
		depositRepo,
		organizationRepo,
		poolService,
		vault,
	)

	// Create router
	router := api.NewRouter(systemService, depositService, poolService, dividendService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Year-end calculation scheduler
	schedCtx, cancelSched := context.WithCancel(context.Background())
	defer cancelSched()

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(schedCtx, organizationRepo, dividendService)
		if err := sched.Register(cfg.Scheduler.CronSpec); err != nil {
			log.Fatalf("Failed to register scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
