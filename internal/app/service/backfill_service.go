package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/calc"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/infrastructure/configloader"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/metrics"

	"golang.org/x/time/rate"
)

// BackfillServiceImpl implements port.BackfillService.
type BackfillServiceImpl struct {
	wallets   port.WalletRepository
	projects  port.ProjectRepository
	networks  port.NetworkDefinitionProvider
	clients   port.BlockchainClientProvider
	reader    *balanceReader
	locks     *WalletLocks
	logger    port.Logger
	limiter   *rate.Limiter
	maxDays   int
	threshold float64
}

// NewBackfillService creates a new instance of BackfillServiceImpl.
func NewBackfillService(
	wr port.WalletRepository,
	pr port.ProjectRepository,
	np port.NetworkDefinitionProvider,
	cp port.BlockchainClientProvider,
	locks *WalletLocks,
	l port.Logger,
	cfg *configloader.Config,
) *BackfillServiceImpl {
	maxDays := cfg.Backfill.MaxDays
	if cfg.Backfill.LookbackDays > 0 && cfg.Backfill.LookbackDays < maxDays {
		maxDays = cfg.Backfill.LookbackDays
	}
	limit := rate.Inf
	if cfg.Backfill.RequestDelayMillis > 0 {
		limit = rate.Every(time.Duration(cfg.Backfill.RequestDelayMillis) * time.Millisecond)
	}
	return &BackfillServiceImpl{
		wallets:  wr,
		projects: pr,
		networks: np,
		clients:  cp,
		reader: &balanceReader{
			networks:   np,
			clients:    cp,
			logger:     l,
			maxWorkers: cfg.Performance.MaxConcurrentRoutines,
		},
		locks:     locks,
		logger:    l,
		limiter:   rate.NewLimiter(limit, 1),
		maxDays:   maxDays,
		threshold: cfg.Tracker.AutoExcludeThresholdPercent,
	}
}

// Preload fills the `days` days before today from historical blocks, oldest
// first. Every processed day is saved before the next one is read.
func (s *BackfillServiceImpl) Preload(ctx context.Context, address string, days int, now time.Time, overwrite bool) (entity.BackfillSummary, error) {
	addr, err := entity.NormalizeAddress(address)
	if err != nil {
		return entity.BackfillSummary{}, err
	}
	summary := entity.BackfillSummary{WalletAddress: addr, DaysRequested: days}
	if days < 1 || days > s.maxDays {
		return summary, fmt.Errorf("%w: %d not in 1..%d", entity.ErrInvalidDays, days, s.maxDays)
	}
	if _, err := s.wallets.Get(ctx, addr); err != nil {
		return summary, err
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return summary, err
	}

	heads, headErrs := s.heads(ctx)
	summary.Errors = append(summary.Errors, headErrs...)
	if len(heads) == 0 {
		return summary, fmt.Errorf("no network head available for backfill")
	}

	today := entity.DateOf(now)
	touched := make(map[string]struct{})
	var written []entity.Date

	for offset := days; offset >= 1; offset-- {
		date := today.AddDays(-offset)

		if !overwrite {
			exists, err := s.hasDay(ctx, addr, date)
			if err != nil {
				return summary, err
			}
			if exists {
				summary.DaysSkipped++
				metrics.BackfillDays.WithLabelValues("skipped").Inc()
				continue
			}
		}

		blocks := make(map[string]uint64, len(heads))
		for key, h := range heads {
			back := uint64(offset) * h.perDay
			if back >= h.number {
				continue
			}
			blocks[key] = h.number - back
		}
		if len(blocks) == 0 {
			summary.Errors = append(summary.Errors, entity.TrackingError{WalletAddress: addr, Date: date.String(), Message: "day predates every chain"})
			metrics.BackfillDays.WithLabelValues("failed").Inc()
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return summary, err
		}
		reading := s.reader.read(ctx, addr, projects, blocks)
		for i := range reading.errors {
			reading.errors[i].Date = date.String()
		}
		summary.Errors = append(summary.Errors, reading.errors...)
		if len(reading.balances) == 0 {
			metrics.BackfillDays.WithLabelValues("failed").Inc()
			continue
		}

		block := primaryBlock(reading.blocks, s.networks.GetAllNetworkDefinitions())
		if err := s.saveDay(ctx, addr, date, block, reading.balances); err != nil {
			return summary, err
		}
		for symbol := range reading.balances {
			touched[symbol] = struct{}{}
		}
		written = append(written, date)
		summary.DaysProcessed++
		metrics.BackfillDays.WithLabelValues("processed").Inc()
		s.logger.Debug("Backfilled day", "wallet", addr, "date", date.String(), "tokens", len(reading.balances))
	}

	if err := s.finish(ctx, addr, touched, written); err != nil {
		return summary, err
	}
	s.logger.Info("Backfill finished", "wallet", addr, "processed", summary.DaysProcessed, "skipped", summary.DaysSkipped, "errors", len(summary.Errors))
	return summary, nil
}

type chainHead struct {
	number uint64
	perDay uint64
}

func (s *BackfillServiceImpl) heads(ctx context.Context) (map[string]chainHead, []entity.TrackingError) {
	heads := make(map[string]chainHead)
	var errs []entity.TrackingError
	for _, nd := range s.networks.GetAllNetworkDefinitions() {
		perDay := nd.BlocksPerDay()
		if perDay == 0 {
			continue
		}
		client, err := s.clients.GetClient(nd)
		if err != nil {
			errs = append(errs, entity.TrackingError{Chain: nd.Key, Message: err.Error()})
			continue
		}
		n, err := client.BlockNumber(ctx)
		if err != nil {
			errs = append(errs, entity.TrackingError{Chain: nd.Key, Message: err.Error()})
			continue
		}
		heads[nd.Key] = chainHead{number: n, perDay: perDay}
	}
	return heads, errs
}

// primaryBlock returns the block of the first network that was pinned.
func primaryBlock(blocks map[string]uint64, defs []entity.NetworkDefinition) uint64 {
	for _, nd := range defs {
		if b, ok := blocks[nd.Key]; ok {
			return b
		}
	}
	return 0
}

func (s *BackfillServiceImpl) hasDay(ctx context.Context, addr string, date entity.Date) (bool, error) {
	wallet, err := s.wallets.Get(ctx, addr)
	if err != nil {
		return false, err
	}
	for _, series := range wallet.Balances {
		if _, _, ok := series.Find(date); ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *BackfillServiceImpl) saveDay(ctx context.Context, addr string, date entity.Date, block uint64, balances map[string]float64) error {
	unlock := s.locks.Lock(addr)
	defer unlock()

	wallet, err := s.wallets.Get(ctx, addr)
	if err != nil {
		return err
	}
	for symbol, balance := range balances {
		series := wallet.Series(symbol).UpsertEntry(entity.BalanceEntry{Date: date, Balance: balance, Block: block})
		wallet.SetSeries(symbol, series)
	}
	return s.wallets.Save(ctx, wallet)
}

// finish recalculates touched series and applies the auto-exclusion rule to
// the written days in chronological order.
func (s *BackfillServiceImpl) finish(ctx context.Context, addr string, touched map[string]struct{}, written []entity.Date) error {
	if len(touched) == 0 {
		return nil
	}
	unlock := s.locks.Lock(addr)
	defer unlock()

	wallet, err := s.wallets.Get(ctx, addr)
	if err != nil {
		return err
	}
	for symbol := range touched {
		series := calc.Recalculate(wallet.Series(symbol))
		for _, date := range written {
			var excluded bool
			series, excluded = autoExclude(series, date, s.threshold)
			if excluded {
				metrics.AutoExclusions.WithLabelValues(symbol).Inc()
			}
		}
		wallet.SetSeries(symbol, series)
	}
	return s.wallets.Save(ctx, wallet)
}

var _ port.BackfillService = (*BackfillServiceImpl)(nil)
