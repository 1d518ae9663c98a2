package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/hashlockd/swapd/internal/htlcparams"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, DefaultSafetyCheckInterval, cfg.Safety.SafetyCheckInterval)
	require.Equal(t, DefaultBobFundDeadline, cfg.Safety.BobFundDeadline)
	require.Equal(t, DefaultWalletRetries, cfg.Wallet.Retries)
	require.Equal(t, DefaultSafetyMargin, cfg.Safety.MarginFor(htlcparams.UtxoChain))
}

func TestSafetyConfigMarginForFallsBackToDefault(t *testing.T) {
	s := SafetyConfig{MarginByLedgerKind: map[htlcparams.LedgerKind]time.Duration{}}
	require.Equal(t, DefaultSafetyMargin, s.MarginFor(htlcparams.AccountChain))
}

func TestLoadCreatesDefaultConfigOnFirstRun(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Storage.DataDir)

	path := ConfigPath(dir)
	require.FileExists(t, path)
}

func TestLoadRoundTripsOverrides(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Storage.DataDir = dir
	cfg.Wallet.Retries = 9
	cfg.Safety.BobFundDeadline = 45 * time.Minute
	require.NoError(t, cfg.Save(filepath.Join(dir, ConfigFileName)))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 9, loaded.Wallet.Retries)
	require.Equal(t, 45*time.Minute, loaded.Safety.BobFundDeadline)
}

func TestGetHTLCContract(t *testing.T) {
	sepoliaHTLC := GetHTLCContract(11155111)
	expectedAddr := common.HexToAddress("0x628c677e7b8889e64564d3f381565a9e6656aade")
	require.Equal(t, expectedAddr, sepoliaHTLC)

	require.True(t, GetHTLCContract(1).Hex() == "0x0000000000000000000000000000000000000000")
	require.True(t, GetHTLCContract(999999).Hex() == "0x0000000000000000000000000000000000000000")
}

func TestIsHTLCDeployed(t *testing.T) {
	require.True(t, IsHTLCDeployed(11155111))
	require.False(t, IsHTLCDeployed(1))
	require.False(t, IsHTLCDeployed(999999))
}

func TestListDeployedHTLCChains(t *testing.T) {
	chains := ListDeployedHTLCChains()
	var found bool
	for _, chainID := range chains {
		if chainID == 11155111 {
			found = true
		}
		require.NotEqual(t, uint64(1), chainID)
	}
	require.True(t, found)
}
