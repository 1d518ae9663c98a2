// Package main provides swapd, the cross-ledger atomic swap coordinator
// daemon.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hashlockd/swapd/internal/chain"
	"github.com/hashlockd/swapd/internal/config"
	"github.com/hashlockd/swapd/internal/contracts/htlc"
	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/ledgerevent"
	"github.com/hashlockd/swapd/internal/swapd"
	"github.com/hashlockd/swapd/internal/swapd/statusfeed"
	"github.com/hashlockd/swapd/internal/swapd/store"
	"github.com/hashlockd/swapd/internal/walletaction"
	"github.com/hashlockd/swapd/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	var (
		dataDir     = flag.String("data-dir", "~/.swapd", "Data directory")
		apiAddr     = flag.String("api", "127.0.0.1:8090", "HTTP/WebSocket status-feed address")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error); overrides config")
		evmRPC      = flag.String("evm-rpc", "", "EVM JSON-RPC endpoint for AccountChain HTLC watching")
		evmChainID  = flag.Uint64("evm-chain-id", 0, "EVM chain ID, used to resolve the HTLC registry address")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	log := logging.New(&logging.Config{Level: "info", TimeFormat: time.TimeOnly})
	logging.SetDefault(log)

	if *showVersion {
		log.Infof("swapd %s (commit: %s)", version, commit)
		os.Exit(0)
	}

	cfg, err := config.Load(*dataDir)
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logOutput := &logging.Config{Level: level, TimeFormat: time.TimeOnly}
	if cfg.Logging.File != "" {
		w, err := logging.NewFileRotator(cfg.Logging.File, 10*1024, 3)
		if err != nil {
			log.Fatal("failed to open log file", "error", err)
		}
		logOutput.Output = w
	}
	log = logging.New(logOutput)
	logging.SetDefault(log)

	log.Info("config loaded", "path", config.ConfigPath(*dataDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.Open(filepath.Join(filepath.Dir(config.ConfigPath(*dataDir)), "swapd.db"))
	if err != nil {
		log.Fatal("failed to open checkpoint store", "error", err)
	}
	defer db.Close()
	log.Info("checkpoint store opened")

	hub := statusfeed.NewHub()
	go hub.Run()

	watchers := map[htlcparams.LedgerKind]ledgerevent.Watcher{}
	if *evmRPC != "" && *evmChainID != 0 {
		params, ok := chain.GetByChainID(*evmChainID, chain.Mainnet)
		if !ok {
			params, ok = chain.GetByChainID(*evmChainID, chain.Testnet)
		}
		if !ok {
			log.Warn("EVM chain ID is not in the known chain registry", "chain_id", *evmChainID)
		} else if kind, ok := params.LedgerKind(); !ok || kind != htlcparams.AccountChain {
			log.Fatal("registered chain is not an AccountChain ledger", "chain_id", *evmChainID, "name", params.Name)
		} else {
			log.Info("resolved EVM chain", "chain_id", *evmChainID, "name", params.Name, "symbol", params.Symbol)
		}

		if !config.IsHTLCDeployed(*evmChainID) {
			log.Fatal("no HTLC registry contract deployed for this chain ID", "chain_id", *evmChainID)
		}
		contract := config.GetHTLCContract(*evmChainID)
		client, err := htlc.NewClient(*evmRPC, contract)
		if err != nil {
			log.Fatal("failed to connect EVM HTLC client", "error", err, "chain_id", *evmChainID)
		}
		watchers[htlcparams.AccountChain] = ledgerevent.NewEVMWatcher(client, cfg.Watcher.PollInterval)
		log.Info("EVM watcher configured", "chain_id", *evmChainID, "contract", contract.Hex())
	} else {
		log.Warn("no EVM RPC configured, AccountChain legs will not be watched")
	}

	// UTXO and PaymentChannel watchers, and every ledger's Wallet, are not
	// shipped by this engine (wallet and chain-client implementations are
	// a separate concern); an operator wires them in here per deployment.
	wallets := map[htlcparams.LedgerKind]walletaction.Wallet{}

	driver := swapd.New(swapd.Config{
		Store:               db,
		Watchers:            watchers,
		Wallets:             wallets,
		Log:                 log,
		SafetyCheckInterval: cfg.Safety.SafetyCheckInterval,
		BobFundDeadline:     cfg.Safety.BobFundDeadline,
		SubmitRetries:       cfg.Wallet.Retries,
		SubmitBackoff:       cfg.Wallet.Backoff,
		OnUpdate:            hub.Push,
	})
	defer driver.Close()

	if err := driver.Resume(ctx); err != nil {
		log.Fatal("failed to resume pending swaps", "error", err)
	}
	log.Info("pending swaps resumed")

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	server := &http.Server{Addr: *apiAddr, Handler: mux}
	go func() {
		log.Info("status feed listening", "addr", *apiAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("status feed server failed", "error", err)
		}
	}()

	printBanner(log, *apiAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("error stopping status feed server", "error", err)
	}
	cancel()

	log.Info("goodbye!")
}

func printBanner(log *logging.Logger, apiAddr string) {
	log.Info("")
	log.Info("=================================================")
	log.Infof("  swapd atomic swap coordinator")
	log.Infof("  Version: %s", version)
	log.Info("=================================================")
	log.Info("")
	log.Infof("  Status feed: ws://%s/ws", apiAddr)
	log.Info("")
	log.Info("=================================================")
	log.Info("")
}
