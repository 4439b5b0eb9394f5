package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/calc"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/metrics"
)

// WalletServiceImpl implements port.WalletService.
type WalletServiceImpl struct {
	repo   port.WalletRepository
	locks  *WalletLocks
	logger port.Logger
}

// NewWalletService creates a new instance of WalletServiceImpl.
func NewWalletService(repo port.WalletRepository, locks *WalletLocks, l port.Logger) *WalletServiceImpl {
	return &WalletServiceImpl{repo: repo, locks: locks, logger: l}
}

func (s *WalletServiceImpl) ListWallets(ctx context.Context) ([]entity.Wallet, error) {
	wallets, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	metrics.Wallets.Set(float64(len(wallets)))
	return wallets, nil
}

// AddWallet registers a wallet with empty history.
func (s *WalletServiceImpl) AddWallet(ctx context.Context, address string) (entity.Wallet, error) {
	addr, err := entity.NormalizeAddress(address)
	if err != nil {
		return entity.Wallet{}, err
	}
	wallet := entity.NewWallet(addr)
	if err := s.repo.Create(ctx, wallet); err != nil {
		return entity.Wallet{}, err
	}
	metrics.Wallets.Inc()
	s.logger.Info("Wallet added", "wallet", addr)
	return wallet, nil
}

func (s *WalletServiceImpl) RemoveWallet(ctx context.Context, address string) error {
	unlock := s.locks.Lock(address)
	defer unlock()

	if err := s.repo.Delete(ctx, address); err != nil {
		return err
	}
	metrics.Wallets.Dec()
	s.logger.Info("Wallet removed", "wallet", address)
	return nil
}

// SetExcluded flips the exclusion of one day of a token history and returns
// the recalculated series.
func (s *WalletServiceImpl) SetExcluded(ctx context.Context, address, token string, date entity.Date, excluded bool) (entity.TokenSeries, error) {
	unlock := s.locks.Lock(address)
	defer unlock()

	wallet, err := s.repo.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	if !wallet.HasToken(token) {
		return nil, fmt.Errorf("%w: %s", entity.ErrTokenNotFound, token)
	}
	series, err := wallet.Series(token).SetExcluded(date, excluded)
	if err != nil {
		return nil, err
	}
	series = calc.Recalculate(series)
	wallet.SetSeries(token, series)
	if err := s.repo.Save(ctx, wallet); err != nil {
		return nil, err
	}
	s.logger.Info("Day exclusion updated", "wallet", wallet.Address, "token", token, "date", date.String(), "excluded", excluded)
	return series, nil
}

// RecalculateWallet recomputes every token history of the wallet.
func (s *WalletServiceImpl) RecalculateWallet(ctx context.Context, address string) (int, error) {
	unlock := s.locks.Lock(address)
	defer unlock()

	wallet, err := s.repo.Get(ctx, address)
	if err != nil {
		return 0, err
	}
	for _, token := range wallet.Tokens() {
		series, dups := calc.Normalize(wallet.Series(token))
		if len(dups) > 0 {
			s.logger.Warn("Dropped duplicate dates", "wallet", wallet.Address, "token", token, "count", len(dups))
		}
		wallet.SetSeries(token, series)
	}
	if err := s.repo.Save(ctx, wallet); err != nil {
		return 0, err
	}
	return len(wallet.Balances), nil
}

// ImportWallets registers the provider's wallets, skipping known and invalid ones.
func (s *WalletServiceImpl) ImportWallets(ctx context.Context, provider port.WalletProvider) (int, error) {
	wallets, err := provider.GetWallets()
	if err != nil {
		return 0, err
	}
	added := 0
	for _, w := range wallets {
		_, err := s.AddWallet(ctx, w.Address)
		switch {
		case err == nil:
			added++
		case errors.Is(err, entity.ErrWalletExists):
		case errors.Is(err, entity.ErrInvalidAddress):
			s.logger.Warn("Skipping invalid wallet address", "address", w.Address)
		default:
			return added, err
		}
	}
	return added, nil
}

var _ port.WalletService = (*WalletServiceImpl)(nil)
