package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

type walletRepository struct {
	store port.DocumentStore
}

// NewWalletRepository stores wallets as {id, address, balances} documents.
func NewWalletRepository(store port.DocumentStore) port.WalletRepository {
	return &walletRepository{store: store}
}

func (r *walletRepository) List(ctx context.Context) ([]entity.Wallet, error) {
	docs, err := r.store.Find(ctx, walletsCollection, nil, port.FindOptions{})
	if err != nil {
		return nil, err
	}
	wallets := make([]entity.Wallet, 0, len(docs))
	for _, d := range docs {
		w, err := fromDocument[entity.Wallet](d)
		if err != nil {
			return nil, err
		}
		if w.Balances == nil {
			w.Balances = map[string]entity.TokenSeries{}
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

func (r *walletRepository) Get(ctx context.Context, address string) (entity.Wallet, error) {
	id := strings.ToLower(address)
	docs, err := r.store.Find(ctx, walletsCollection, map[string]any{"id": id}, port.FindOptions{Limit: 1})
	if err != nil {
		return entity.Wallet{}, err
	}
	if len(docs) == 0 {
		return entity.Wallet{}, fmt.Errorf("%w: %s", entity.ErrWalletNotFound, address)
	}
	w, err := fromDocument[entity.Wallet](docs[0])
	if err != nil {
		return entity.Wallet{}, err
	}
	if w.Balances == nil {
		w.Balances = map[string]entity.TokenSeries{}
	}
	return w, nil
}

func (r *walletRepository) Create(ctx context.Context, wallet entity.Wallet) error {
	doc, err := toDocument(wallet)
	if err != nil {
		return err
	}
	added, err := r.store.InsertNew(ctx, walletsCollection, doc)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("%w: %s", entity.ErrWalletExists, wallet.Address)
	}
	return nil
}

func (r *walletRepository) Save(ctx context.Context, wallet entity.Wallet) error {
	balances, err := toDocument(wallet.Balances)
	if err != nil {
		return err
	}
	if balances == nil {
		balances = port.Document{}
	}
	return r.store.UpdateOne(ctx, walletsCollection, map[string]any{"id": wallet.ID}, port.Document{
		"$set": map[string]any{
			"address":  wallet.Address,
			"balances": balances,
		},
	})
}

func (r *walletRepository) Delete(ctx context.Context, address string) error {
	id := strings.ToLower(address)
	removed, err := r.store.DeleteOne(ctx, walletsCollection, map[string]any{"id": id})
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s", entity.ErrWalletNotFound, address)
	}
	return nil
}
