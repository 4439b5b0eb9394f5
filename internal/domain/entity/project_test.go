package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectComposable(t *testing.T) {
	six := int32(6)
	usdc := Project{
		Symbol:  "USDC",
		Decimal: 6,
		Contracts: map[string]ContractEntry{
			"ETH": {Token: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
		},
		Protocols: map[string]map[string]ContractEntry{
			"AAVE": {"ETH": {Symbol: "aUSDC", Address: "0x98C23E9d8f34FEFb1B7BD6a91B7FF122F4e16F5c", Decimal: &six, Compose: true}},
		},
	}
	plain := Project{Symbol: "DOGE", Contracts: map[string]ContractEntry{"BSC": {Token: "0x1"}}}

	assert.True(t, usdc.Composable())
	assert.False(t, plain.Composable())

	idx := IndexProjects([]Project{usdc, plain})
	assert.True(t, idx.Composable("USDC"))
	assert.False(t, idx.Composable("DOGE"))
	assert.False(t, idx.Composable("UNKNOWN"))

	contracts := usdc.ChainContracts("ETH")
	assert.Len(t, contracts, 2)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", contracts[0].ContractAddress())
	assert.Equal(t, int32(6), usdc.DecimalsFor(contracts[1]))
	assert.Empty(t, usdc.ChainContracts("BSC"))
}

func TestContractEntryIsNative(t *testing.T) {
	assert.True(t, ContractEntry{Token: ZeroAddress}.IsNative())
	assert.False(t, ContractEntry{Address: "0xae7ab96520de3a18e5e111b5eaab095312d7fe84"}.IsNative())
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress(" 0x33c29E24631C39eA358327c5a98C0809A79dCa2D ")
	assert.NoError(t, err)
	assert.Equal(t, "0x33c29e24631c39ea358327c5a98c0809a79dca2d", got)

	for _, bad := range []string{"", "0x123", "33c29E24631C39eA358327c5a98C0809A79dCa2D", "0xZZc29E24631C39eA358327c5a98C0809A79dCa2D"} {
		_, err := NormalizeAddress(bad)
		assert.ErrorIs(t, err, ErrInvalidAddress, bad)
	}
}

func TestSelectWallets(t *testing.T) {
	ws := []Wallet{NewWallet("0xa"), NewWallet("0xb")}
	assert.Len(t, SelectWallets(ws, nil), 2)
	assert.Len(t, SelectWallets(ws, []string{"0xB"}), 1)
	assert.Empty(t, SelectWallets(ws, []string{"0xc"}))
}
