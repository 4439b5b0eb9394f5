package entity

import "strings"

// ContractEntry is a token deployment on one chain.
// Older catalog records use "address" instead of "token".
type ContractEntry struct {
	Symbol  string `json:"symbol,omitempty"`
	Token   string `json:"token,omitempty"`
	Address string `json:"address,omitempty"`
	Decimal *int32 `json:"decimal,omitempty"`
	Compose bool   `json:"compose"`
}

// ContractAddress returns the deployed address of the entry.
func (c ContractEntry) ContractAddress() string {
	if c.Token != "" {
		return c.Token
	}
	return c.Address
}

// IsNative reports whether the entry stands for the chain's native coin.
func (c ContractEntry) IsNative() bool {
	return strings.EqualFold(c.ContractAddress(), ZeroAddress)
}

// Project is the catalog metadata of a tracked token.
type Project struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name,omitempty"`
	Symbol    string                   `json:"symbol"`
	Decimal   int32                    `json:"decimal"`
	Contracts map[string]ContractEntry `json:"contracts"`
	// Protocols holds yield-bearing wrappers of the token (AAVE aTokens) keyed by
	// protocol then chain. Their balances count toward the token.
	Protocols map[string]map[string]ContractEntry `json:"protocols,omitempty"`
}

// Composable reports whether any contract entry carries the compose flag.
func (p Project) Composable() bool {
	for _, c := range p.Contracts {
		if c.Compose {
			return true
		}
	}
	for _, chains := range p.Protocols {
		for _, c := range chains {
			if c.Compose {
				return true
			}
		}
	}
	return false
}

// DecimalsFor returns the contract's decimals, falling back to the project's.
func (p Project) DecimalsFor(c ContractEntry) int32 {
	if c.Decimal != nil {
		return *c.Decimal
	}
	return p.Decimal
}

// ChainContracts returns every contract entry of the project on chain,
// the base contract first.
func (p Project) ChainContracts(chain string) []ContractEntry {
	var out []ContractEntry
	if c, ok := p.Contracts[chain]; ok && c.ContractAddress() != "" {
		out = append(out, c)
	}
	for _, chains := range p.Protocols {
		if c, ok := chains[chain]; ok && c.ContractAddress() != "" {
			out = append(out, c)
		}
	}
	return out
}

// ProjectIndex maps token symbols to catalog projects.
type ProjectIndex map[string]Project

// IndexProjects builds a ProjectIndex keyed by symbol.
func IndexProjects(projects []Project) ProjectIndex {
	idx := make(ProjectIndex, len(projects))
	for _, p := range projects {
		idx[p.Symbol] = p
	}
	return idx
}

// Composable reports whether token belongs to a project with a compose contract.
func (idx ProjectIndex) Composable(token string) bool {
	p, ok := idx[token]
	return ok && p.Composable()
}
