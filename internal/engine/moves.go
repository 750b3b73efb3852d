package engine

import (
	"log"
	"time"

	"github.com/Pintuzoft/osbase/internal/balance"
	"github.com/Pintuzoft/osbase/internal/domain"
)

// moveVerifyDelay is how long after issuing a move the engine waits before
// checking the roster reflects it.
const moveVerifyDelay = 3 * time.Second

type moveState int

const (
	movePending moveState = iota
	moveVerified
	moveDone
)

// pendingMove tracks one issued move until the roster confirms it. The
// state machine is pending -> verified -> done, driven entirely on the loop
// goroutine; a disconnect cancels it.
type pendingMove struct {
	handle   int
	target   domain.Side
	state    moveState
	reissued bool
	timer    *time.Timer
}

// trackMove registers a verification check for an issued move.
func (e *Engine) trackMove(mv balance.Move) {
	e.cancelMove(mv.Player.Handle)

	pm := &pendingMove{handle: mv.Player.Handle, target: mv.To}
	e.pending[pm.handle] = pm
	pm.timer = e.Schedule(moveVerifyDelay, func() { e.verifyMove(pm) })
}

// verifyMove runs on the loop goroutine after the verify delay. If the
// roster still shows the player on the wrong side the move is re-issued
// once; after that the tracker gives up with a warning.
func (e *Engine) verifyMove(pm *pendingMove) {
	if pm.state != movePending {
		return
	}
	if e.pending[pm.handle] != pm {
		return
	}

	onTarget, present := e.rosterSide(pm.handle, pm.target)
	switch {
	case !present:
		// Player left before we could verify.
		pm.state = moveDone
		delete(e.pending, pm.handle)
	case onTarget:
		pm.state = moveVerified
		e.finishMove(pm)
	case !pm.reissued:
		pm.reissued = true
		e.host.MovePlayer(pm.handle, pm.target)
		pm.timer = e.Schedule(moveVerifyDelay, func() { e.verifyMove(pm) })
	default:
		log.Printf("Warning: move of #%d to %s not reflected after retry", pm.handle, pm.target)
		pm.state = moveDone
		delete(e.pending, pm.handle)
	}
}

// checkPendingMoves verifies outstanding moves against a fresh roster
// without waiting for the timer.
func (e *Engine) checkPendingMoves() {
	for handle, pm := range e.pending {
		if pm.state != movePending {
			continue
		}
		if onTarget, present := e.rosterSide(handle, pm.target); present && onTarget {
			pm.state = moveVerified
			e.finishMove(pm)
		}
	}
}

func (e *Engine) finishMove(pm *pendingMove) {
	if pm.timer != nil {
		pm.timer.Stop()
	}
	pm.state = moveDone
	delete(e.pending, pm.handle)
}

// cancelMove drops tracking for a handle (disconnect or superseding move).
func (e *Engine) cancelMove(handle int) {
	if pm, ok := e.pending[handle]; ok {
		if pm.timer != nil {
			pm.timer.Stop()
		}
		pm.state = moveDone
		delete(e.pending, handle)
	}
}

func (e *Engine) cancelAllMoves() {
	for handle := range e.pending {
		e.cancelMove(handle)
	}
}

// rosterSide reports whether the handle is present in the last roster and
// whether it sits on the wanted side.
func (e *Engine) rosterSide(handle int, want domain.Side) (onTarget, present bool) {
	for _, r := range e.roster {
		if r.Handle == handle {
			return r.Side == want, true
		}
	}
	return false, false
}
