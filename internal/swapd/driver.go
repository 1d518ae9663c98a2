package swapd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/ledgerevent"
	"github.com/hashlockd/swapd/internal/swapfsm"
	"github.com/hashlockd/swapd/internal/walletaction"
	"github.com/hashlockd/swapd/pkg/logging"
)

// Config wires a Driver to its external collaborators. One Watcher and one
// Wallet per LedgerKind is enough: a given process only ever needs one
// chain client per ledger family, shared across every swap touching it.
type Config struct {
	Store               Store
	Watchers            map[htlcparams.LedgerKind]ledgerevent.Watcher
	Wallets             map[htlcparams.LedgerKind]walletaction.Wallet
	Log                 *logging.Logger
	SafetyCheckInterval time.Duration // how often CheckSafety/CheckFundDeadline run; default 1m
	BobFundDeadline     time.Duration // Bob's max wait from StartOfSwap for alpha to fund, used only for a height/relative beta expiry; default 30m
	SubmitRetries       int           // retry attempts for a Retryable wallet error; default 5
	SubmitBackoff       time.Duration // base backoff between retries; default 5s
	// OnUpdate, if set, is called after every successful checkpoint with the
	// swap's latest state -- the Driver's only hook for a push feed such as
	// statusfeed.Hub.Push, kept decoupled so Driver never imports it.
	OnUpdate func(uuid.UUID, swapfsm.SwapState)
}

// runningSwap is a Driver's in-memory handle on one swap's goroutine and
// latest state, guarded by its own mutex so Status() doesn't contend with
// the event loop's processing.
type runningSwap struct {
	mu     sync.Mutex
	fsm    swapfsm.FSM
	role   htlcparams.Role
	params htlcparams.SwapParams
	state  swapfsm.SwapState
	cancel context.CancelFunc
}

// Driver hosts one FSM instance per swap and drives it off watcher event
// channels and a periodic safety-check ticker, checkpointing state before
// carrying out any Action it emits (spec.md §4.5: checkpoint-before-ack).
// Neither AliceFSM nor BobFSM ever runs unsupervised -- the Driver is the
// only thing that touches a Wallet, a Watcher, or a clock.
type Driver struct {
	cfg   Config
	log   *logging.Logger
	mu    sync.RWMutex
	swaps map[uuid.UUID]*runningSwap

	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs a Driver. Call Resume to reload any swaps left pending
// from a prior run before accepting new StartSwap calls.
func New(cfg Config) *Driver {
	if cfg.SafetyCheckInterval <= 0 {
		cfg.SafetyCheckInterval = time.Minute
	}
	if cfg.BobFundDeadline <= 0 {
		cfg.BobFundDeadline = 30 * time.Minute
	}
	if cfg.SubmitRetries <= 0 {
		cfg.SubmitRetries = 5
	}
	if cfg.SubmitBackoff <= 0 {
		cfg.SubmitBackoff = 5 * time.Second
	}
	log := cfg.Log
	if log == nil {
		log = logging.GetDefault()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Driver{
		cfg:    cfg,
		log:    log.Component("swapd"),
		swaps:  make(map[uuid.UUID]*runningSwap),
		ctx:    ctx,
		cancel: cancel,
	}
}

// StartSwap validates params, builds the role-appropriate FSM, checkpoints
// its initial state, and drives its Start() actions. secret must be
// non-nil when params.Role is htlcparams.Alice, and is ignored otherwise.
func (d *Driver) StartSwap(ctx context.Context, params htlcparams.SwapParams, secret *htlcparams.Secret) (uuid.UUID, error) {
	now := time.Now()
	alphaHeight, betaHeight, err := d.heights(ctx, params)
	if err != nil {
		return uuid.Nil, fmt.Errorf("swapd: query chain height: %w", err)
	}
	if err := params.Validate(now, alphaHeight, betaHeight); err != nil {
		return uuid.Nil, fmt.Errorf("swapd: invalid swap params: %w", err)
	}

	fsm, err := newFSM(params, secret)
	if err != nil {
		return uuid.Nil, err
	}

	state, actions := fsm.Start()
	rs := &runningSwap{fsm: fsm, role: params.Role, params: params, state: state}

	if err := d.checkpoint(ctx, rs); err != nil {
		return uuid.Nil, fmt.Errorf("swapd: checkpoint initial state: %w", err)
	}

	d.mu.Lock()
	d.swaps[params.SwapID] = rs
	d.mu.Unlock()

	d.dispatch(ctx, rs, actions)
	d.spawn(rs)
	return params.SwapID, nil
}

// Resume reloads every pending checkpoint from the Store and restarts a
// driver loop for each, without re-issuing Start()'s actions (the
// checkpointed state's gate fields already reflect whether they fired).
func (d *Driver) Resume(ctx context.Context) error {
	pending, err := d.cfg.Store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("swapd: list pending checkpoints: %w", err)
	}
	for _, cp := range pending {
		var secret *htlcparams.Secret
		if cp.Params.Role == htlcparams.Alice {
			secret = cp.Secret
		}
		fsm, err := newFSM(cp.Params, secret)
		if err != nil {
			d.log.Error("resume: rebuild fsm failed", "swap_id", cp.Params.SwapID, "error", err)
			continue
		}
		rs := &runningSwap{
			fsm:    fsm,
			role:   cp.Params.Role,
			params: cp.Params,
			state:  swapfsm.FromSnapshot(cp.State),
		}
		d.mu.Lock()
		d.swaps[cp.Params.SwapID] = rs
		d.mu.Unlock()
		d.spawn(rs)
		d.log.Info("resumed swap", "swap_id", cp.Params.SwapID, "role", cp.Params.Role)
	}
	return nil
}

// Status returns the current SwapState for swapID.
func (d *Driver) Status(swapID uuid.UUID) (swapfsm.SwapState, error) {
	rs, ok := d.lookup(swapID)
	if !ok {
		return swapfsm.SwapState{}, ErrNotFound
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.state, nil
}

// NextAction projects the single next local action (fund, redeem, refund,
// or none) the swap's own role should take, derived from its current
// checkpointed state (spec.md §6 role-typed views, for UI integration).
func (d *Driver) NextAction(swapID uuid.UUID) (swapfsm.PendingAction, error) {
	rs, ok := d.lookup(swapID)
	if !ok {
		return swapfsm.PendingNone, ErrNotFound
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return swapfsm.NextAction(rs.role, rs.state), nil
}

// Cancel stops the driver's local goroutine for swapID without touching
// either ledger. This is a local bookkeeping operation only: an HTLC
// already deployed on-chain can only be unwound by its own refund path
// (spec.md Non-goal: cancellation after either leg is funded is not a
// first-class operation).
func (d *Driver) Cancel(swapID uuid.UUID) error {
	rs, ok := d.lookup(swapID)
	if !ok {
		return ErrNotFound
	}
	rs.mu.Lock()
	cancel := rs.cancel
	rs.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	d.mu.Lock()
	delete(d.swaps, swapID)
	d.mu.Unlock()
	return nil
}

// Close stops every running swap's loop.
func (d *Driver) Close() error {
	d.cancel()
	return nil
}

func (d *Driver) lookup(swapID uuid.UUID) (*runningSwap, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rs, ok := d.swaps[swapID]
	return rs, ok
}

func newFSM(params htlcparams.SwapParams, secret *htlcparams.Secret) (swapfsm.FSM, error) {
	switch params.Role {
	case htlcparams.Alice:
		if secret == nil {
			return nil, fmt.Errorf("swapd: alice role requires a secret")
		}
		fsm := swapfsm.NewAliceFSM(params, *secret)
		return fsm, nil
	case htlcparams.Bob:
		return swapfsm.NewBobFSM(params), nil
	default:
		return nil, fmt.Errorf("swapd: unknown role %q", params.Role)
	}
}

func (d *Driver) heights(ctx context.Context, params htlcparams.SwapParams) (alpha, beta int64, err error) {
	alpha, err = d.legHeight(ctx, params.Alpha.LedgerKind)
	if err != nil {
		return 0, 0, err
	}
	beta, err = d.legHeight(ctx, params.Beta.LedgerKind)
	if err != nil {
		return 0, 0, err
	}
	return alpha, beta, nil
}

func (d *Driver) legHeight(ctx context.Context, kind htlcparams.LedgerKind) (int64, error) {
	w, ok := d.cfg.Watchers[kind]
	if !ok {
		return 0, nil
	}
	return w.Height(ctx)
}

func (d *Driver) checkpoint(ctx context.Context, rs *runningSwap) error {
	rs.mu.Lock()
	state := rs.state
	cp := Checkpoint{
		Params: rs.params,
		State:  state.Snapshot(),
	}
	// Alice always holds the secret from swap creation; it is never part
	// of her SwapState (only Bob's Step ever populates State.Secret, once
	// he observes it revealed on beta). Checkpoint it separately so a
	// resumed Alice driver doesn't need to re-derive it from anywhere.
	if a, ok := rs.fsm.(swapfsm.AliceFSM); ok {
		s := a.Secret
		cp.Secret = &s
	}
	rs.mu.Unlock()
	if err := d.cfg.Store.Save(ctx, cp); err != nil {
		return err
	}
	if d.cfg.OnUpdate != nil {
		d.cfg.OnUpdate(rs.params.SwapID, state)
	}
	return nil
}

// dispatch submits every action to its ledger's Wallet, retrying
// transient failures with backoff. A non-retryable failure is logged and
// left for operator attention; the next observed Event or safety check
// will re-evaluate the swap from its checkpointed state.
func (d *Driver) dispatch(ctx context.Context, rs *runningSwap, actions []walletaction.Action) {
	redeemDeadline := d.betaRedeemDeadline(rs)
	for _, action := range actions {
		wallet, ok := d.cfg.Wallets[action.Params.LedgerKind]
		if !ok {
			d.log.Error("no wallet configured for ledger", "kind", action.Params.LedgerKind, "swap_id", rs.params.SwapID)
			continue
		}
		d.submitWithRetry(ctx, rs, wallet, action, redeemDeadline)
	}
}

// betaRedeemDeadline returns Alice's BetaRedeemDeadline for rs, or the zero
// Time for Bob (whose FSM has no equivalent rule) or when the deadline
// itself isn't computable for beta's expiry unit (swapfsm.BetaRedeemDeadline
// already encodes that as a zero return).
func (d *Driver) betaRedeemDeadline(rs *runningSwap) time.Time {
	if rs.role != htlcparams.Alice {
		return time.Time{}
	}
	return swapfsm.BetaRedeemDeadline(rs.params)
}

// isBetaRedeem reports whether action is Alice's Redeem(beta) submission --
// the one action kind a passed BetaRedeemDeadline forbids retrying further
// (spec.md §4.4.1, scenario E).
func isBetaRedeem(action walletaction.Action) bool {
	return action.Kind == walletaction.Redeem && action.Leg == htlcparams.BetaLeg
}

func (d *Driver) submitWithRetry(ctx context.Context, rs *runningSwap, wallet walletaction.Wallet, action walletaction.Action, redeemDeadline time.Time) {
	var lastErr error
	for attempt := 0; attempt < d.cfg.SubmitRetries; attempt++ {
		if isBetaRedeem(action) && !redeemDeadline.IsZero() && time.Now().After(redeemDeadline) {
			d.log.Warn("beta redeem deadline passed, abandoning retry", "swap_id", rs.params.SwapID)
			return
		}
		result, err := wallet.Submit(ctx, action)
		if err == nil {
			d.log.Info("action submitted", "swap_id", rs.params.SwapID, "kind", action.Kind, "leg", action.Leg, "tx_ref", result.TxRef)
			return
		}
		lastErr = err
		if !walletaction.Retryable(err) {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.cfg.SubmitBackoff * time.Duration(attempt+1)):
		}
	}
	d.log.Error("action submission failed", "swap_id", rs.params.SwapID, "kind", action.Kind, "leg", action.Leg, "error", lastErr)
}
