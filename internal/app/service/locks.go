package service

import (
	"strings"
	"sync"
)

// WalletLocks serializes read-modify-write cycles per wallet address across
// the wallet, tracker and backfill services.
type WalletLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWalletLocks returns an empty lock set.
func NewWalletLocks() *WalletLocks {
	return &WalletLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock of address and returns its release function.
func (l *WalletLocks) Lock(address string) func() {
	key := strings.ToLower(address)
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
