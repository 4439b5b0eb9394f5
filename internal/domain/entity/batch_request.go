package entity

import "math/big"

// BalanceRequestType defines the type of balance request.
type BalanceRequestType int

const (
	// NativeBalanceRequest requests the native balance of a wallet.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest requests the ERC20 balance of a wallet.
	TokenBalanceRequest
)

// ZeroAddress marks the native coin in catalog contract entries.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// BalanceRequestItem is one element of a batched balance query.
type BalanceRequestItem struct {
	ID            string
	Type          BalanceRequestType
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	TokenDecimals int32
}

// BalanceResultItem is the outcome of one BalanceRequestItem.
// Reverted calls yield a zero Balance with Reverted set and no Error.
type BalanceResultItem struct {
	RequestID     string
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	Decimals      int32
	IsNative      bool
	Block         uint64
	Balance       *big.Int
	Amount        float64
	Reverted      bool
	Error         error
}
