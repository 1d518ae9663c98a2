package ledgerevent

import (
	"context"
	"fmt"
	"time"

	"github.com/hashlockd/swapd/internal/contracts/htlc"
	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/pkg/logging"
)

// EVMWatcher tracks one AccountChain HTLC by subscribing to its registry
// contract's SwapCreated/SwapClaimed/SwapRefunded logs.
type EVMWatcher struct {
	client *htlc.Client
	log    *logging.Logger

	pollInterval time.Duration
}

// NewEVMWatcher wraps an already-connected contract client. pollInterval
// governs how often Height is refreshed by callers driving confirmation
// depth off block height rather than log subscriptions.
func NewEVMWatcher(client *htlc.Client, pollInterval time.Duration) *EVMWatcher {
	if pollInterval <= 0 {
		pollInterval = 15 * time.Second
	}
	return &EVMWatcher{
		client:       client,
		log:          logging.Default().Component("evm-watcher"),
		pollInterval: pollInterval,
	}
}

// Watch computes the swap ID from p's derivation and subscribes to all
// three registry events for it, translating each into a ledgerevent.Event.
func (w *EVMWatcher) Watch(ctx context.Context, leg htlcparams.Leg, p htlcparams.Params) (<-chan Event, error) {
	if p.LedgerKind != htlcparams.AccountChain {
		return nil, fmt.Errorf("ledgerevent: EVMWatcher.Watch called on %s params", p.LedgerKind)
	}

	desc, err := htlcparams.DeriveEVM(p, nil)
	if err != nil {
		return nil, fmt.Errorf("ledgerevent: derive swap id: %w", err)
	}
	swapIDs := [][32]byte{desc.SwapID}

	created, err := w.client.WatchSwapCreated(ctx, swapIDs, nil)
	if err != nil {
		return nil, fmt.Errorf("ledgerevent: watch SwapCreated: %w", err)
	}
	claimed, err := w.client.WatchSwapClaimed(ctx, swapIDs)
	if err != nil {
		return nil, fmt.Errorf("ledgerevent: watch SwapClaimed: %w", err)
	}
	refunded, err := w.client.WatchSwapRefunded(ctx, swapIDs)
	if err != nil {
		return nil, fmt.Errorf("ledgerevent: watch SwapRefunded: %w", err)
	}

	out := make(chan Event, 16)
	go w.pump(ctx, leg, created, claimed, refunded, out)
	return out, nil
}

func (w *EVMWatcher) pump(
	ctx context.Context,
	leg htlcparams.Leg,
	created <-chan *htlc.SwapCreatedEvent,
	claimed <-chan *htlc.SwapClaimedEvent,
	refunded <-chan *htlc.SwapRefundedEvent,
	out chan<- Event,
) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-created:
			if !ok {
				created = nil
				continue
			}
			// SwapCreated fires once CreateSwapNative/CreateSwapERC20 has
			// confirmed; that call is payable and deposits the asset in the
			// same transaction, so Deploy and Fund fuse into one
			// observation here exactly as they do for a UTXO chain
			// (spec.md §4.1) -- emit both, Deployed first so a driver that
			// cares about the intermediate step still sees it.
			now := time.Now()
			out <- Event{
				Kind:       Deployed,
				Leg:        leg,
				TxRef:      e.TxHash.Hex(),
				ObservedAt: now,
			}
			var actualQuantity uint64
			if e.Amount != nil {
				actualQuantity = e.Amount.Uint64()
			}
			out <- Event{
				Kind:           Funded,
				Leg:            leg,
				TxRef:          e.TxHash.Hex(),
				ObservedAt:     now,
				ActualQuantity: actualQuantity,
			}
		case e, ok := <-claimed:
			if !ok {
				claimed = nil
				continue
			}
			out <- Event{
				Kind:       Redeemed,
				Leg:        leg,
				Secret:     htlcparams.Secret(e.Secret),
				TxRef:      e.TxHash.Hex(),
				ObservedAt: time.Now(),
			}
		case e, ok := <-refunded:
			if !ok {
				refunded = nil
				continue
			}
			out <- Event{
				Kind:       Refunded,
				Leg:        leg,
				TxRef:      e.TxHash.Hex(),
				ObservedAt: time.Now(),
			}
		}
	}
}

// Height returns the chain's current block number.
func (w *EVMWatcher) Height(ctx context.Context) (int64, error) {
	height, err := w.client.BlockHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("ledgerevent: fetch height: %w", err)
	}
	return int64(height), nil
}

// Close releases the underlying contract client's connection.
func (w *EVMWatcher) Close() error {
	w.client.Close()
	return nil
}
