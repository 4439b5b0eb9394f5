package port

import (
	"context"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// WalletRepository persists wallets and their balance histories.
type WalletRepository interface {
	List(ctx context.Context) ([]entity.Wallet, error)
	// Get returns entity.ErrWalletNotFound when the address is not registered.
	Get(ctx context.Context, address string) (entity.Wallet, error)
	// Create returns entity.ErrWalletExists for a registered address.
	Create(ctx context.Context, wallet entity.Wallet) error
	Save(ctx context.Context, wallet entity.Wallet) error
	// Delete rewrites the collection without the wallet.
	Delete(ctx context.Context, address string) error
}

// WalletProvider yields wallet addresses from an external list.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}
