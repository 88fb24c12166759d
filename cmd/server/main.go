package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cipherledger/internal/authz"
	"cipherledger/internal/config"
	"cipherledger/internal/database"
	"cipherledger/internal/fhe"
	"cipherledger/internal/handlers"
	"cipherledger/internal/ledger"
	"cipherledger/internal/middleware"
	"cipherledger/internal/repositories"
	"cipherledger/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("database initialization failed", "error", err.Error())
		os.Exit(1)
	}

	_ = repositories.NewGrantRepository(db)
	eventRepo := repositories.NewEventRepository(db)

	env, err := fhe.NewStore()
	if err != nil {
		logger.Error("encrypted store initialization failed", "error", err.Error())
		os.Exit(1)
	}

	metrics := services.NewPrometheusMetrics()
	eventSink := services.NewEventLogger(logger, eventRepo)

	engine := ledger.NewEngine(
		ledger.NewStore(),
		env,
		cfg.Ledger.ContractAddress,
		cfg.Ledger.MonthBucketSeconds,
		eventSink,
		metrics,
	)

	decryptor := authz.NewEnvironmentDecryptor(env)
	tokenService := services.NewTokenService(&cfg.JWT)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
	}))
	rateLimiter := middleware.NewRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst)
	e.Use(rateLimiter.Middleware())

	healthHandler := handlers.NewHealthCheckHandler(db)
	ledgerHandler := handlers.NewLedgerHandler(engine, decryptor)
	decryptHandler := handlers.NewDecryptHandler(decryptor, metrics)
	eventHandler := handlers.NewEventHandler(eventRepo)

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", middleware.RequireAuth(tokenService))
	api.POST("/accounts", ledgerHandler.RegisterAccount)
	api.POST("/ledger/income", ledgerHandler.RecordIncome)
	api.GET("/ledger/income/:index", ledgerHandler.GetIncomeRecord)
	api.POST("/ledger/expenses", ledgerHandler.RecordExpense)
	api.GET("/ledger/expenses/:index", ledgerHandler.GetExpenseRecord)
	api.POST("/ledger/budgets", ledgerHandler.SetBudget)
	api.POST("/ledger/goals", ledgerHandler.SetGoal)
	api.GET("/ledger/state", ledgerHandler.GetState)
	api.POST("/decrypt", decryptHandler.DecryptBatch)
	api.GET("/events", eventHandler.ListEvents)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", "addr", server.Addr, "contract", cfg.Ledger.ContractAddress)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err.Error())
	}
}
