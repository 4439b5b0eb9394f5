package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/calc"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/metrics"
)

// TrackerServiceImpl implements port.TrackingService.
type TrackerServiceImpl struct {
	wallets   port.WalletRepository
	projects  port.ProjectRepository
	reader    *balanceReader
	locks     *WalletLocks
	logger    port.Logger
	threshold float64
	seed      bool
}

// NewTrackerService creates a new instance of TrackerServiceImpl.
func NewTrackerService(
	wr port.WalletRepository,
	pr port.ProjectRepository,
	np port.NetworkDefinitionProvider,
	cp port.BlockchainClientProvider,
	locks *WalletLocks,
	l port.Logger,
	cfg *configloader.Config,
) *TrackerServiceImpl {
	return &TrackerServiceImpl{
		wallets:  wr,
		projects: pr,
		reader: &balanceReader{
			networks:   np,
			clients:    cp,
			logger:     l,
			maxWorkers: cfg.Performance.MaxConcurrentRoutines,
		},
		locks:     locks,
		logger:    l,
		threshold: cfg.Tracker.AutoExcludeThresholdPercent,
		seed:      cfg.Tracker.SeedsPreviousDay(),
	}
}

// TrackWallet records today's balance of every catalog project for address.
func (s *TrackerServiceImpl) TrackWallet(ctx context.Context, address string, now time.Time) (entity.TrackingSummary, error) {
	addr, err := entity.NormalizeAddress(address)
	if err != nil {
		return entity.TrackingSummary{}, err
	}
	today, yesterday := entity.TodayAndYesterday(now)
	summary := entity.TrackingSummary{WalletAddress: addr, Date: today}

	if _, err := s.wallets.Get(ctx, addr); err != nil {
		return summary, err
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return summary, err
	}

	reading := s.reader.read(ctx, addr, projects, nil)
	summary.Errors = reading.errors

	unlock := s.locks.Lock(addr)
	defer unlock()

	wallet, err := s.wallets.Get(ctx, addr)
	if err != nil {
		return summary, err
	}

	symbols := make([]string, 0, len(reading.balances))
	for symbol := range reading.balances {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		balance := reading.balances[symbol]
		series := wallet.Series(symbol)
		if len(series) == 0 && s.seed {
			series = series.Upsert(yesterday, balance)
		}
		series = calc.Recalculate(series.Upsert(today, balance))

		var excluded bool
		series, excluded = autoExclude(series, today, s.threshold)
		if excluded {
			summary.TokensExcluded = append(summary.TokensExcluded, symbol)
			metrics.AutoExclusions.WithLabelValues(symbol).Inc()
			s.logger.Info("Auto-excluded day", "wallet", addr, "token", symbol, "date", today.String())
		}

		wallet.SetSeries(symbol, series)
		summary.TokensUpdated++
	}

	if err := s.wallets.Save(ctx, wallet); err != nil {
		return summary, err
	}
	s.logger.Debug("Wallet tracked", "wallet", addr, "tokens", summary.TokensUpdated, "errors", len(summary.Errors))
	return summary, nil
}

// RunAllWallets tracks every registered wallet in turn.
func (s *TrackerServiceImpl) RunAllWallets(ctx context.Context, now time.Time) []entity.TrackingSummary {
	start := time.Now()
	defer func() { metrics.TrackingDuration.Observe(time.Since(start).Seconds()) }()

	wallets, err := s.wallets.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list wallets for tracking run", "error", err)
		metrics.TrackingRuns.WithLabelValues("error").Inc()
		return nil
	}

	summaries := make([]entity.TrackingSummary, 0, len(wallets))
	status := "ok"
	for _, w := range wallets {
		if ctx.Err() != nil {
			status = "cancelled"
			break
		}
		summary, err := s.TrackWallet(ctx, w.Address, now)
		if err != nil {
			s.logger.Error("Failed to track wallet", "wallet", w.Address, "error", err)
			summary.Errors = append(summary.Errors, entity.TrackingError{WalletAddress: w.Address, Message: err.Error()})
		}
		if len(summary.Errors) > 0 && status == "ok" {
			status = "partial"
		}
		summaries = append(summaries, summary)
	}
	metrics.TrackingRuns.WithLabelValues(status).Inc()
	s.logger.Info("Tracking run finished", "wallets", len(summaries), "status", status, "duration", time.Since(start).String())
	return summaries
}

// autoExclude re-evaluates the exclusion of date: the entry is excluded when
// it has a non-excluded predecessor and its change exceeds threshold percent.
// Returns the recalculated series and whether date ended up excluded.
func autoExclude(series entity.TokenSeries, date entity.Date, threshold float64) (entity.TokenSeries, bool) {
	if threshold <= 0 {
		return series, false
	}
	e, idx, ok := series.Find(date)
	if !ok || e.Excluded {
		return series, false
	}
	hasPrevious := false
	for _, prev := range series[:idx] {
		if !prev.Excluded {
			hasPrevious = true
			break
		}
	}
	if !hasPrevious || math.Abs(e.PercentageChange) <= threshold {
		return series, false
	}
	out, err := series.SetExcluded(date, true)
	if err != nil {
		return series, false
	}
	return calc.Recalculate(out), true
}

var _ port.TrackingService = (*TrackerServiceImpl)(nil)
