package port

import (
	"context"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// WalletService manages wallet registration and stored history edits.
type WalletService interface {
	ListWallets(ctx context.Context) ([]entity.Wallet, error)
	AddWallet(ctx context.Context, address string) (entity.Wallet, error)
	RemoveWallet(ctx context.Context, address string) error
	SetExcluded(ctx context.Context, address, token string, date entity.Date, excluded bool) (entity.TokenSeries, error)
	RecalculateWallet(ctx context.Context, address string) (int, error)
	ImportWallets(ctx context.Context, provider WalletProvider) (int, error)
}

// TrackingService records the current balances of wallets.
type TrackingService interface {
	TrackWallet(ctx context.Context, address string, now time.Time) (entity.TrackingSummary, error)
	RunAllWallets(ctx context.Context, now time.Time) []entity.TrackingSummary
}

// BackfillService preloads historical daily balances.
type BackfillService interface {
	Preload(ctx context.Context, address string, days int, now time.Time, overwrite bool) (entity.BackfillSummary, error)
}

// AnalyticsService serves read models computed from stored histories.
type AnalyticsService interface {
	AggregatedBalances(ctx context.Context, selected []string) (map[string]float64, error)
	TokenHistory(ctx context.Context, selected []string, token string) ([]entity.HistoryPoint, error)
	DailyGains(ctx context.Context, selected []string, now time.Time) (entity.DailyGainsReport, error)
	APY(ctx context.Context, selected []string, now time.Time) (entity.APYReport, error)
	Projection(ctx context.Context, selected []string, annualCashout float64, now time.Time) (entity.ProjectionReport, error)
	Projects(ctx context.Context) ([]entity.Project, error)
}
