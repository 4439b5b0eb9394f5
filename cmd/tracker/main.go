package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/service"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/catalog"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/docstore"
	clientprovider "github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/network/client"
	networkdefinition "github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/network/definition"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/pricing"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/repository"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/restapi"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/scheduler"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/walletloader"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := configloader.Load(configloader.PathFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Wallet tracker starting", "dataDir", cfg.Storage.DataDir, "schedule", cfg.Tracker.Schedule)
	appLogger := logger.NewSlogAdapter()

	store, err := docstore.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		logger.Fatal("Failed to open document store", "dir", cfg.Storage.DataDir, "error", err)
	}
	walletRepo := repository.NewWalletRepository(store)
	projectRepo := repository.NewProjectRepository(store)

	netDefProvider := networkdefinition.NewNetworkDefinitionProvider(logger.Named("networks"), cfg)
	clientProvider := clientprovider.NewEVMClientProvider(cfg, logger.Named("rpc"))
	defer clientProvider.Close()

	catalogTimeout := time.Duration(cfg.DEXScreener.RequestTimeoutMillis) * time.Millisecond
	if _, err := catalog.Sync(ctx, projectRepo, logger.Named("catalog"), true,
		catalog.NewRemoteSource(cfg.Catalog.BaseURL, cfg.Catalog.ProjectIDs, cfg.Catalog.MaxRetries, catalogTimeout, logger.Named("catalog")),
		catalog.NewFileSource(cfg.Catalog.ProjectsFile, logger.Named("catalog")),
	); err != nil {
		logger.Error("Failed to seed project catalog", "error", err)
	}

	locks := service.NewWalletLocks()
	walletService := service.NewWalletService(walletRepo, locks, appLogger)
	added, err := walletService.ImportWallets(ctx, walletloader.NewWalletFileLoader(cfg.Tracker.WalletsFile, appLogger))
	if err != nil {
		logger.Error("Failed to import wallets", "path", cfg.Tracker.WalletsFile, "error", err)
	} else if added > 0 {
		logger.Info("Wallets imported", "count", added)
	}

	trackerService := service.NewTrackerService(walletRepo, projectRepo, netDefProvider, clientProvider, locks, logger.Named("tracker"), cfg)
	backfillService := service.NewBackfillService(walletRepo, projectRepo, netDefProvider, clientProvider, locks, logger.Named("backfill"), cfg)

	dexClient := pricing.NewDEXScreenerClient(
		cfg.DEXScreener.BaseURL,
		time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond,
		zapLogger.Named("DEXScreenerAPIClient"),
		cfg.DEXScreener.MaxTokensPerBatchRequest,
		cfg.Pricing.Stablecoins,
	)
	oracle := pricing.NewPairOracle(cfg.Pricing.NativePairs, netDefProvider, clientProvider, logger.Named("oracle"))
	priceService := service.NewPriceService(oracle, dexClient, netDefProvider, logger.Named("prices"), cfg)
	analyticsService := service.NewAnalyticsService(walletRepo, projectRepo, priceService, logger.Named("analytics"))

	sched, err := scheduler.New(cfg.Tracker.Schedule, trackerService, logger.Named("scheduler"))
	if err != nil {
		logger.Fatal("Failed to create scheduler", "error", err)
	}
	sched.Start()
	if cfg.Tracker.RunOnStart {
		go sched.RunOnce()
	}

	handler := restapi.NewHandler(walletService, trackerService, backfillService, analyticsService, time.Now)
	router := restapi.SetupRouter(handler, cfg, zapLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Warn("Scheduler did not stop in time", "error", err)
	}
	cancel()

	zapLogger.Info("Wallet tracker stopped", zap.Duration("shutdownBudget", 10*time.Second))
}
