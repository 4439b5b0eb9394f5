// Command catalog refreshes the project catalog from the remote project API
// and the curated projects file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/catalog"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/docstore"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/repository"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/logger"
)

func main() {
	curatedOnly := flag.Bool("curated-only", false, "skip the remote project API")
	onlyIfEmpty := flag.Bool("if-empty", false, "do nothing when the catalog already has projects")
	flag.Parse()

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := docstore.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		logger.Fatal("Failed to open document store", "dir", cfg.Storage.DataDir, "error", err)
	}

	log := logger.Named("catalog")
	var sources []port.ProjectSource
	if !*curatedOnly {
		timeout := time.Duration(cfg.DEXScreener.RequestTimeoutMillis) * time.Millisecond
		sources = append(sources, catalog.NewRemoteSource(cfg.Catalog.BaseURL, cfg.Catalog.ProjectIDs, cfg.Catalog.MaxRetries, timeout, log))
	}
	sources = append(sources, catalog.NewFileSource(cfg.Catalog.ProjectsFile, log))

	n, err := catalog.Sync(ctx, repository.NewProjectRepository(store), log, *onlyIfEmpty, sources...)
	if err != nil {
		logger.Fatal("Catalog sync failed", "error", err)
	}
	logger.Info("Catalog sync complete", "projects", n)
}
