// Package main provides swapctl, an operator CLI for inspecting and
// demo-driving a swapd checkpoint database directly (not a remote RPC
// client -- the engine exposes no command surface of its own, spec.md
// Non-goal, so this tool links against the same internal/swapd package the
// daemon does).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	flags "github.com/jessevdk/go-flags"
	"github.com/tyler-smith/go-bip39"

	"github.com/hashlockd/swapd/internal/chain"
	"github.com/hashlockd/swapd/internal/config"
	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/swapd"
	"github.com/hashlockd/swapd/internal/swapd/store"
	"github.com/hashlockd/swapd/internal/walletaction"
	"github.com/hashlockd/swapd/pkg/helpers"
	"github.com/hashlockd/swapd/pkg/logging"
)

// demoAssetDecimals is the display precision for the demo swap's alpha
// quantity (8, matching BTC).
const demoAssetDecimals = 8

// demoBetaSymbol is the ERC-20 token the demo beta leg settles in; its
// contract address and decimals come from the chain package's token
// registry for the chosen EVM chain.
const demoBetaSymbol = "USDC"

type options struct {
	DataDir string `long:"data-dir" default:"~/.swapd" description:"swapd data directory"`
}

var opts options

type startDemoCmd struct {
	Quantity   string `long:"quantity" default:"0.001" description:"alpha leg quantity, as a decimal amount"`
	EVMChainID uint64 `long:"evm-chain-id" default:"11155111" description:"EVM chain ID for the beta leg's token registry lookup"`
}

type statusCmd struct {
	Positional struct {
		SwapID string `positional-arg-name:"swap-id" required:"true"`
	} `positional-args:"true"`
}

type listPendingCmd struct{}

func (c *startDemoCmd) Execute(_ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	secret, hash, err := htlcparams.NewSecret()
	if err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}

	alphaQuantity, err := helpers.ParseAmount(c.Quantity, demoAssetDecimals)
	if err != nil {
		return fmt.Errorf("parse quantity: %w", err)
	}

	betaToken := chain.GetToken(c.EVMChainID, demoBetaSymbol)
	if betaToken == nil {
		return fmt.Errorf("no %s token registered for chain id %d", demoBetaSymbol, c.EVMChainID)
	}
	betaQuantity, err := helpers.ParseAmount(c.Quantity, betaToken.Decimals)
	if err != nil {
		return fmt.Errorf("parse quantity for beta leg: %w", err)
	}
	betaQuantity *= 10

	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return fmt.Errorf("generate demo wallet entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return fmt.Errorf("generate demo wallet mnemonic: %w", err)
	}
	wallet := newDemoWallet(mnemonic)

	now := time.Now()
	params := htlcparams.SwapParams{
		SwapID: htlcparams.NewSwapID(),
		Role:   htlcparams.Alice,
		Alpha: htlcparams.Params{
			LedgerKind:     htlcparams.UtxoChain,
			Asset:          htlcparams.Asset{Symbol: "BTC"},
			Quantity:       alphaQuantity,
			RedeemIdentity: wallet.identity,
			RefundIdentity: wallet.identity,
			SecretHash:     hash,
			Expiry:         htlcparams.Expiry{Unix: now.Add(3 * time.Hour).Unix()},
		},
		Beta: htlcparams.Params{
			LedgerKind: htlcparams.AccountChain,
			Asset: htlcparams.Asset{
				Symbol:   betaToken.Symbol,
				Contract: common.HexToAddress(betaToken.Address).Bytes(),
			},
			Quantity:       betaQuantity,
			RedeemIdentity: wallet.identity,
			RefundIdentity: wallet.identity,
			SecretHash:     hash,
			Expiry:         htlcparams.Expiry{Unix: now.Add(time.Hour).Unix()},
		},
		StartOfSwap:  now,
		SafetyMargin: time.Hour,
	}

	driver := swapd.New(swapd.Config{
		Store: db,
		Wallets: map[htlcparams.LedgerKind]walletaction.Wallet{
			htlcparams.UtxoChain:    wallet,
			htlcparams.AccountChain: wallet,
		},
		Log: logging.GetDefault(),
	})
	defer driver.Close()

	swapID, err := driver.StartSwap(context.Background(), params, &secret)
	if err != nil {
		return fmt.Errorf("start demo swap: %w", err)
	}

	fmt.Printf("started demo swap %s\n", swapID)
	fmt.Printf("  alpha: %s BTC\n", helpers.FormatAmount(params.Alpha.Quantity, demoAssetDecimals))
	fmt.Printf("  beta:  %s %s\n", helpers.FormatAmount(params.Beta.Quantity, betaToken.Decimals), betaToken.Symbol)
	fmt.Printf("demo wallet mnemonic (discard after testing): %s\n", mnemonic)
	return nil
}

func (c *statusCmd) Execute(_ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := uuid.Parse(c.Positional.SwapID)
	if err != nil {
		return fmt.Errorf("parse swap id: %w", err)
	}

	cp, err := db.Load(context.Background(), id)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	fmt.Printf("swap %s (%s)\n  alpha: %s\n  beta:  %s\n  updated: %s\n",
		cp.Params.SwapID, cp.Params.Role, cp.State.Alpha, cp.State.Beta, cp.UpdatedAt.Format(time.RFC3339))
	return nil
}

func (c *listPendingCmd) Execute(_ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	pending, err := db.ListPending(context.Background())
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("no pending swaps")
		return nil
	}
	for _, cp := range pending {
		fmt.Printf("%s  role=%-5s  alpha=%-10s  beta=%-10s\n",
			cp.Params.SwapID, cp.Params.Role, cp.State.Alpha, cp.State.Beta)
	}
	return nil
}

func openStore() (*store.SQLite, error) {
	cfg, err := config.Load(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := store.Open(filepath.Join(filepath.Dir(config.ConfigPath(cfg.Storage.DataDir)), "swapd.db"))
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store: %w", err)
	}
	return db, nil
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("start-demo", "Start a demo Alice-role swap against an ephemeral wallet", "", &startDemoCmd{})
	parser.AddCommand("status", "Show a swap's checkpointed status", "", &statusCmd{})
	parser.AddCommand("list-pending", "List every non-terminal swap", "", &listPendingCmd{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
