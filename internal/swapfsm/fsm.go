package swapfsm

import (
	"github.com/hashlockd/swapd/internal/ledgerevent"
	"github.com/hashlockd/swapd/internal/walletaction"
)

// FSM is the common shape a driver drives, satisfied by both AliceFSM and
// BobFSM. It never exposes CheckFundDeadline -- that rule is Bob-specific
// and the driver type-switches to it separately.
type FSM interface {
	Start() (SwapState, []walletaction.Action)
	Step(SwapState, ledgerevent.Event) (SwapState, []walletaction.Action)
	CheckSafety(SwapState, bool) (SwapState, []walletaction.Action)
}

var (
	_ FSM = AliceFSM{}
	_ FSM = BobFSM{}
)
