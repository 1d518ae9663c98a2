package main

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/tyler-smith/go-bip39"

	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/walletaction"
)

// demoWallet is a non-production walletaction.Wallet stub: it derives a
// stable identity from a BIP39 mnemonic but never actually signs or
// broadcasts anything. It only exists so start-demo has something to hand
// the driver; real wallet/key custody is out of scope (spec.md Non-goal).
type demoWallet struct {
	identity htlcparams.Identity
}

func newDemoWallet(mnemonic string) *demoWallet {
	seed := bip39.NewSeed(mnemonic, "")
	sum := sha256.Sum256(seed)
	return &demoWallet{identity: htlcparams.Identity(sum[:20])}
}

func (w *demoWallet) Submit(_ context.Context, action walletaction.Action) (walletaction.Result, error) {
	fmt.Printf("[demo-wallet] would submit %s on %s leg (%s %d)\n",
		action.Kind, action.Leg, action.Params.LedgerKind, action.Params.Quantity)
	return walletaction.Result{TxRef: "demo-tx"}, nil
}
