package sim

import "sync"

// Resets models the subsystem reset controller of the board. The
// reset-done flag reads set after DonePolls polls once the reset is
// released, to exercise the spin a real reset cycle needs.
type Resets struct {
	// DonePolls is the number of polls reporting not-done after a
	// release before the cycle completes.
	DonePolls int

	lock  sync.Mutex
	held  bool
	polls int
}

// AssertReset implements uart.Resets.
func (r *Resets) AssertReset() {
	r.lock.Lock()
	r.held = true
	r.polls = 0
	r.lock.Unlock()
}

// ReleaseReset implements uart.Resets.
func (r *Resets) ReleaseReset() {
	r.lock.Lock()
	r.held = false
	r.lock.Unlock()
}

// ResetDone implements uart.Resets.
func (r *Resets) ResetDone() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.held {
		return false
	}
	r.polls++
	return r.polls > r.DonePolls
}
