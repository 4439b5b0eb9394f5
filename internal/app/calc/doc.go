// Package calc holds the pure balance-history engines: series recalculation,
// cross-wallet aggregation, APY and gains, and compound projection.
//
// Nothing in this package performs I/O or reads the clock. Callers pass the
// wallets, catalog, price table and reference days explicitly, so every
// function is safe to call concurrently on independent inputs.
package calc
