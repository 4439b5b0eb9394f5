package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/calc"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// AnalyticsServiceImpl implements port.AnalyticsService over stored histories.
type AnalyticsServiceImpl struct {
	wallets  port.WalletRepository
	projects port.ProjectRepository
	prices   port.PriceService
	logger   port.Logger
}

// NewAnalyticsService creates a new instance of AnalyticsServiceImpl.
func NewAnalyticsService(wr port.WalletRepository, pr port.ProjectRepository, ps port.PriceService, l port.Logger) *AnalyticsServiceImpl {
	return &AnalyticsServiceImpl{wallets: wr, projects: pr, prices: ps, logger: l}
}

type snapshot struct {
	wallets  []entity.Wallet
	projects []entity.Project
	index    entity.ProjectIndex
}

func (s *AnalyticsServiceImpl) load(ctx context.Context) (snapshot, error) {
	wallets, err := s.wallets.List(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load wallets: %w", err)
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load projects: %w", err)
	}
	return snapshot{wallets: wallets, projects: projects, index: entity.IndexProjects(projects)}, nil
}

// composeProjects narrows the catalog to the projects the APY engines look at.
func (sn snapshot) composeProjects() []entity.Project {
	out := make([]entity.Project, 0, len(sn.projects))
	for _, p := range sn.projects {
		if p.Composable() {
			out = append(out, p)
		}
	}
	return out
}

func (s *AnalyticsServiceImpl) AggregatedBalances(ctx context.Context, selected []string) (map[string]float64, error) {
	sn, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return calc.AggregatedBalances(sn.wallets, selected, sn.index), nil
}

func (s *AnalyticsServiceImpl) TokenHistory(ctx context.Context, selected []string, token string) ([]entity.HistoryPoint, error) {
	wallets, err := s.wallets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallets: %w", err)
	}
	return calc.TokenHistory(wallets, selected, token), nil
}

func (s *AnalyticsServiceImpl) DailyGains(ctx context.Context, selected []string, now time.Time) (entity.DailyGainsReport, error) {
	sn, err := s.load(ctx)
	if err != nil {
		return entity.DailyGainsReport{}, err
	}
	today, yesterday := entity.TodayAndYesterday(now)
	prices := s.prices.PriceTable(ctx, sn.composeProjects())
	return calc.DailyGains(sn.wallets, selected, sn.index, prices, today, yesterday), nil
}

func (s *AnalyticsServiceImpl) APY(ctx context.Context, selected []string, now time.Time) (entity.APYReport, error) {
	sn, err := s.load(ctx)
	if err != nil {
		return entity.APYReport{}, err
	}
	today, yesterday := entity.TodayAndYesterday(now)
	prices := s.prices.PriceTable(ctx, sn.composeProjects())
	return calc.ComputeAPY(sn.wallets, selected, sn.index, prices, today, yesterday), nil
}

// Projection compounds the current compose balance at today's APY.
func (s *AnalyticsServiceImpl) Projection(ctx context.Context, selected []string, annualCashout float64, now time.Time) (entity.ProjectionReport, error) {
	report, err := s.APY(ctx, selected, now)
	if err != nil {
		return entity.ProjectionReport{}, err
	}
	return calc.ProjectCompound(
		report.TotalCurrentBalanceUSD,
		report.APYData.TodayAPY,
		report.APYData.AnnualAPY,
		annualCashout,
		calc.ProjectionHorizonYears,
	), nil
}

func (s *AnalyticsServiceImpl) Projects(ctx context.Context) ([]entity.Project, error) {
	return s.projects.List(ctx)
}

var _ port.AnalyticsService = (*AnalyticsServiceImpl)(nil)
