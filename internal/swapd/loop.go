package swapd

import (
	"context"
	"time"

	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/ledgerevent"
	"github.com/hashlockd/swapd/internal/swapfsm"
)

// spawn starts the per-swap goroutine: it watches both legs and a safety
// ticker, feeding every observed Event and periodic safety check through
// rs.fsm, checkpointing before dispatching whatever Actions result.
func (d *Driver) spawn(rs *runningSwap) {
	ctx, cancel := context.WithCancel(d.ctx)
	rs.mu.Lock()
	rs.cancel = cancel
	rs.mu.Unlock()

	alphaCh, err := d.watch(ctx, htlcparams.AlphaLeg, rs.params.Alpha)
	if err != nil {
		d.log.Error("watch alpha failed", "swap_id", rs.params.SwapID, "error", err)
		cancel()
		return
	}
	betaCh, err := d.watch(ctx, htlcparams.BetaLeg, rs.params.Beta)
	if err != nil {
		d.log.Error("watch beta failed", "swap_id", rs.params.SwapID, "error", err)
		cancel()
		return
	}

	go d.run(ctx, rs, alphaCh, betaCh)
}

func (d *Driver) watch(ctx context.Context, leg htlcparams.Leg, p htlcparams.Params) (<-chan ledgerevent.Event, error) {
	w, ok := d.cfg.Watchers[p.LedgerKind]
	if !ok {
		// No watcher configured for this ledger kind: return a channel
		// that never fires rather than failing the whole swap, so a
		// partially-configured driver (e.g. in tests) can still exercise
		// the other leg.
		return make(chan ledgerevent.Event), nil
	}
	return w.Watch(ctx, leg, p)
}

func (d *Driver) run(ctx context.Context, rs *runningSwap, alphaCh, betaCh <-chan ledgerevent.Event) {
	ticker := time.NewTicker(d.cfg.SafetyCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-alphaCh:
			if !ok {
				alphaCh = nil
				continue
			}
			d.handleEvent(ctx, rs, ev)
		case ev, ok := <-betaCh:
			if !ok {
				betaCh = nil
				continue
			}
			d.handleEvent(ctx, rs, ev)
		case <-ticker.C:
			d.handleSafetyTick(ctx, rs)
		}

		if d.terminal(rs) {
			d.mu.Lock()
			delete(d.swaps, rs.params.SwapID)
			d.mu.Unlock()
			d.log.Info("swap reached terminal state", "swap_id", rs.params.SwapID)
			return
		}
	}
}

func (d *Driver) handleEvent(ctx context.Context, rs *runningSwap, ev ledgerevent.Event) {
	rs.mu.Lock()
	newState, actions := rs.fsm.Step(rs.state, ev)
	rs.state = newState
	rs.mu.Unlock()

	if err := d.checkpoint(ctx, rs); err != nil {
		d.log.Error("checkpoint after event failed", "swap_id", rs.params.SwapID, "error", err)
	}
	d.dispatch(ctx, rs, actions)
}

func (d *Driver) handleSafetyTick(ctx context.Context, rs *runningSwap) {
	now := time.Now()
	alphaHeight, err := d.legHeight(ctx, rs.params.Alpha.LedgerKind)
	if err != nil {
		d.log.Warn("safety tick: alpha height unavailable", "swap_id", rs.params.SwapID, "error", err)
	}
	betaHeight, err := d.legHeight(ctx, rs.params.Beta.LedgerKind)
	if err != nil {
		d.log.Warn("safety tick: beta height unavailable", "swap_id", rs.params.SwapID, "error", err)
	}

	rs.mu.Lock()
	switch rs.role {
	case htlcparams.Alice:
		alphaExpired := swapfsm.Expired(rs.params.Alpha, now, alphaHeight)
		st, acts := rs.fsm.CheckSafety(rs.state, alphaExpired)
		if aliceFSM, ok := rs.fsm.(swapfsm.AliceFSM); ok {
			deadline := swapfsm.BetaRedeemDeadline(rs.params)
			deadlinePassed := !deadline.IsZero() && now.After(deadline)
			st = aliceFSM.CheckRedeemDeadline(st, deadlinePassed)
		}
		rs.state = st
		rs.mu.Unlock()
		if err := d.checkpoint(ctx, rs); err != nil {
			d.log.Error("checkpoint after safety tick failed", "swap_id", rs.params.SwapID, "error", err)
		}
		d.dispatch(ctx, rs, acts)
		return
	case htlcparams.Bob:
		betaExpired := swapfsm.Expired(rs.params.Beta, now, betaHeight)
		st, acts := rs.fsm.CheckSafety(rs.state, betaExpired)
		if bobFSM, ok := rs.fsm.(swapfsm.BobFSM); ok {
			deadlineElapsed := now.After(FundDeadline(rs.params, d.cfg.BobFundDeadline))
			st = bobFSM.CheckFundDeadline(st, deadlineElapsed)
		}
		rs.state = st
		rs.mu.Unlock()
		if err := d.checkpoint(ctx, rs); err != nil {
			d.log.Error("checkpoint after safety tick failed", "swap_id", rs.params.SwapID, "error", err)
		}
		d.dispatch(ctx, rs, acts)
		return
	default:
		rs.mu.Unlock()
	}
}

// terminal reports whether rs's swap has reached a terminal status on both
// legs and its loop can stop.
func (d *Driver) terminal(rs *runningSwap) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.state.IsTerminal()
}

// FundDeadline is re-exported from swapfsm for the driver's own clock
// comparisons, projected against the configured max-wait duration.
func FundDeadline(params htlcparams.SwapParams, maxWait time.Duration) time.Time {
	return swapfsm.FundDeadline(params, maxWait)
}
