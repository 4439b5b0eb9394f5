package entity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Wallet is a tracked account and its per-token balance histories.
type Wallet struct {
	ID       string                 `json:"id"`
	Address  string                 `json:"address"`
	Balances map[string]TokenSeries `json:"balances"`
}

// NewWallet returns an empty wallet for a normalized address.
func NewWallet(address string) Wallet {
	return Wallet{ID: address, Address: address, Balances: map[string]TokenSeries{}}
}

// NormalizeAddress validates a 0x-prefixed 20 byte hex address and lowercases it.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return strings.ToLower(address), nil
}

// Series returns the history for token, or nil.
func (w Wallet) Series(token string) TokenSeries {
	if w.Balances == nil {
		return nil
	}
	return w.Balances[token]
}

// HasToken reports whether the wallet has a series for token.
func (w Wallet) HasToken(token string) bool {
	_, ok := w.Balances[token]
	return ok
}

// SetSeries replaces the history for token.
func (w *Wallet) SetSeries(token string, series TokenSeries) {
	if w.Balances == nil {
		w.Balances = map[string]TokenSeries{}
	}
	w.Balances[token] = series
}

// Tokens returns the wallet's token symbols in sorted order.
func (w Wallet) Tokens() []string {
	tokens := make([]string, 0, len(w.Balances))
	for token := range w.Balances {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// SelectWallets keeps the wallets whose address is in selected. An empty
// selection keeps every wallet.
func SelectWallets(wallets []Wallet, selected []string) []Wallet {
	if len(selected) == 0 {
		return wallets
	}
	set := make(map[string]struct{}, len(selected))
	for _, a := range selected {
		set[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	out := make([]Wallet, 0, len(selected))
	for _, w := range wallets {
		if _, ok := set[strings.ToLower(w.Address)]; ok {
			out = append(out, w)
		}
	}
	return out
}
