package calc

import (
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

func day(d int) entity.Date {
	return entity.NewDate(2024, time.March, d)
}

func entry(d int, balance float64, excluded bool) entity.BalanceEntry {
	return entity.BalanceEntry{Date: day(d), Balance: balance, Excluded: excluded}
}

func wallet(address string, balances map[string]entity.TokenSeries) entity.Wallet {
	w := entity.NewWallet(address)
	for token, series := range balances {
		w.SetSeries(token, Recalculate(series))
	}
	return w
}

func catalog() entity.ProjectIndex {
	return entity.IndexProjects([]entity.Project{
		{ID: "ETH", Symbol: "ETH", Decimal: 18, Contracts: map[string]entity.ContractEntry{
			"ETH": {Token: entity.ZeroAddress, Compose: true},
		}},
		{ID: "USDC", Symbol: "USDC", Decimal: 6, Contracts: map[string]entity.ContractEntry{
			"ETH": {Token: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
		}, Protocols: map[string]map[string]entity.ContractEntry{
			"AAVE": {"ETH": {Symbol: "aUSDC", Address: "0x98c23e9d8f34fefb1b7bd6a91b7ff122f4e16f5c", Compose: true}},
		}},
		{ID: "DOGE", Symbol: "DOGE", Decimal: 8, Contracts: map[string]entity.ContractEntry{
			"BSC": {Token: "0xba2ae424d960c26247dd6c32edc70b295c744c43"},
		}},
	})
}
