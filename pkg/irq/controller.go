package irq

import (
	"context"
	"math/bits"
	"sync"
)

// Line identifies an interrupt request line.
type Line uint8

// NumLines is the total number of interrupt request lines.
const NumLines = 32

// Handler services a raised line. It runs in the interrupt context
// and must not block.
type Handler func()

// Controller dispatches interrupt handlers, standing in for the
// interrupt controller of the hardware. Raising a line latches it
// pending; the dispatch goroutine services pending enabled lines one
// at a time, lowest line first.
type Controller struct {
	lock     sync.Mutex
	handlers [NumLines]Handler
	enabled  uint32
	pending  uint32

	notifyCh chan struct{}
}

// NewController creates a Controller.
func NewController() *Controller {
	return &Controller{notifyCh: make(chan struct{}, 1)}
}

// Handle binds the handler for a line, replacing any previous one.
func (c *Controller) Handle(line Line, h Handler) {
	c.lock.Lock()
	c.handlers[line] = h
	c.lock.Unlock()
}

// Enable unmasks a line. A line raised while masked is serviced
// once enabled.
func (c *Controller) Enable(line Line) {
	c.lock.Lock()
	c.enabled |= 1 << line
	ready := c.pending&c.enabled != 0
	c.lock.Unlock()
	if ready {
		c.notify()
	}
}

// Disable masks a line. Raises received while masked stay pending.
func (c *Controller) Disable(line Line) {
	c.lock.Lock()
	c.enabled &^= 1 << line
	c.lock.Unlock()
}

// Raise latches a line pending and schedules dispatch. It never
// blocks and can be called from any goroutine. Raising an already
// pending line has no additional effect.
func (c *Controller) Raise(line Line) {
	c.lock.Lock()
	c.pending |= 1 << line
	ready := c.pending&c.enabled != 0
	c.lock.Unlock()
	if ready {
		c.notify()
	}
}

// Pending reports whether a line is latched pending.
func (c *Controller) Pending(line Line) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.pending&(1<<line) != 0
}

func (c *Controller) notify() {
	select {
	case c.notifyCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable as the interrupt context.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.notifyCh:
			c.dispatch()
		}
	}
}

func (c *Controller) dispatch() {
	for {
		c.lock.Lock()
		ready := c.pending & c.enabled
		if ready == 0 {
			c.lock.Unlock()
			return
		}
		line := Line(bits.TrailingZeros32(ready))
		c.pending &^= 1 << line
		h := c.handlers[line]
		c.lock.Unlock()
		if h != nil {
			h()
		}
	}
}
