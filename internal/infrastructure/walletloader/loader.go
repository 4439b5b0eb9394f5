package walletloader

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// WalletFileLoader implements the port.WalletProvider interface by loading wallets from a file.
// One address per line; blank lines and lines starting with '#' are ignored.
type WalletFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewWalletFileLoader creates a new WalletFileLoader.
func NewWalletFileLoader(filePath string, l port.Logger) port.WalletProvider {
	return &WalletFileLoader{
		filePath: filePath,
		logger:   l,
	}
}

// GetWallets reads wallet addresses from the configured file path.
// A missing file yields no wallets.
func (l *WalletFileLoader) GetWallets() ([]entity.Wallet, error) {
	file, err := os.Open(l.filePath)
	if errors.Is(err, os.ErrNotExist) {
		l.logger.Info("Wallet file not found, nothing to import", "path", l.filePath)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var wallets []entity.Wallet
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		address, err := entity.NormalizeAddress(line)
		if err != nil {
			l.logger.Warn("Skipping invalid wallet address", "file", l.filePath, "line_number", lineNum, "address", line)
			continue
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}
		wallets = append(wallets, entity.NewWallet(address))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}

	l.logger.Info("Wallets loaded from file", "count", len(wallets), "path", l.filePath)
	return wallets, nil
}
