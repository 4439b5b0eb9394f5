package walletloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWallets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	content := "# tracked wallets\n" +
		"0x33c29E24631C39eA358327c5a98C0809A79dCa2D\n" +
		"\n" +
		"not-an-address\n" +
		"0x33c29e24631c39ea358327c5a98c0809a79dca2d\n" +
		"  0x00000000000000000000000000000000000000aa  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	wallets, err := NewWalletFileLoader(path, logger.Nop{}).GetWallets()
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "0x33c29e24631c39ea358327c5a98c0809a79dca2d", wallets[0].Address)
	assert.Equal(t, wallets[0].Address, wallets[0].ID)
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", wallets[1].Address)
}

func TestGetWalletsMissingFile(t *testing.T) {
	wallets, err := NewWalletFileLoader(filepath.Join(t.TempDir(), "none.txt"), logger.Nop{}).GetWallets()
	require.NoError(t, err)
	assert.Empty(t, wallets)
}
