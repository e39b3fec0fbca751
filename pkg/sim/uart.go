package sim

import (
	"io"
	"sync"

	"github.com/robotalks/console.go/pkg/irq"
	"github.com/robotalks/console.go/pkg/uart"
)

// fifoDepth is the hardware FIFO depth of the modeled peripheral.
const fifoDepth = 32

// UART is a software model of the PL011-style serial peripheral: the
// register file on one side, the wire on the other. The receive
// interrupt is level-like: causes assert while the receive FIFO is
// non-empty and drop when it drains. The transmit FIFO spools into
// the wire without back pressure, as a line that always drains.
type UART struct {
	ic   *irq.Controller
	line irq.Line

	lock sync.Mutex
	cond *sync.Cond

	cr   uint32
	lcrh uint32
	imsc uint32
	ibrd uint32
	fbrd uint32

	// divisor as latched by the last LCRH write
	latchedI uint32
	latchedF uint32

	rx     []byte
	tx     []byte
	closed bool
}

// NewUART creates the peripheral model raising interrupts on line.
func NewUART(ic *irq.Controller, line irq.Line) *UART {
	u := &UART{ic: ic, line: line}
	u.cond = sync.NewCond(&u.lock)
	return u
}

// Read implements uart.Registers.
func (u *UART) Read(reg uart.Reg) uint32 {
	u.lock.Lock()
	defer u.lock.Unlock()
	switch reg {
	case uart.RegDR:
		if len(u.rx) == 0 {
			return 0
		}
		b := u.rx[0]
		u.rx = u.rx[1:]
		return uint32(b)
	case uart.RegFR:
		return u.flags()
	case uart.RegIBRD:
		return u.ibrd
	case uart.RegFBRD:
		return u.fbrd
	case uart.RegLCRH:
		return u.lcrh
	case uart.RegCR:
		return u.cr
	case uart.RegIMSC:
		return u.imsc
	case uart.RegMIS:
		return u.ris() & u.imsc
	}
	return 0
}

// Write implements uart.Registers.
func (u *UART) Write(reg uart.Reg, val uint32) {
	u.lock.Lock()
	switch reg {
	case uart.RegDR:
		if u.cr&uart.CrUARTEN != 0 && u.cr&uart.CrTXE != 0 && !u.closed {
			u.tx = append(u.tx, byte(val))
			u.cond.Broadcast()
		}
	case uart.RegIBRD:
		u.ibrd = val
	case uart.RegFBRD:
		u.fbrd = val
	case uart.RegLCRH:
		u.lcrh = val
		// divisor takes effect only now
		u.latchedI, u.latchedF = u.ibrd, u.fbrd
	case uart.RegCR:
		u.cr = val
	case uart.RegIMSC:
		u.imsc = val
	case uart.RegICR:
		// receive causes are level in this model; nothing latches
	}
	pend := u.ris()&u.imsc != 0
	u.lock.Unlock()
	if pend {
		u.ic.Raise(u.line)
	}
}

func (u *UART) flags() uint32 {
	var fr uint32
	if len(u.rx) == 0 {
		fr |= uart.FrRXFE
	}
	return fr
}

func (u *UART) ris() uint32 {
	if len(u.rx) > 0 {
		return uart.IntRX | uart.IntRT
	}
	return 0
}

// Divisor gets the baud divisor pair currently in effect, which
// trails the divisor registers until an LCRH write latches them.
func (u *UART) Divisor() (integer, fraction uint32) {
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.latchedI, u.latchedF
}

// Wire gets the line side of the peripheral as a byte stream: Read
// blocks for transmitted bytes, Write feeds received bytes and
// raises the receive interrupt, Close unblocks readers with io.EOF.
func (u *UART) Wire() *Wire {
	return &Wire{u: u}
}

// Wire is the line side of a simulated UART.
type Wire struct {
	u *UART
}

// Read implements io.Reader.
func (w *Wire) Read(p []byte) (int, error) {
	u := w.u
	u.lock.Lock()
	defer u.lock.Unlock()
	for len(u.tx) == 0 && !u.closed {
		u.cond.Wait()
	}
	if len(u.tx) == 0 {
		return 0, io.EOF
	}
	n := copy(p, u.tx)
	u.tx = u.tx[n:]
	return n, nil
}

// Write implements io.Writer. Bytes arriving while the receiver is
// disabled, or overrunning the FIFO, are lost the way they are lost
// on the line.
func (w *Wire) Write(p []byte) (int, error) {
	u := w.u
	u.lock.Lock()
	if u.closed {
		u.lock.Unlock()
		return 0, io.ErrClosedPipe
	}
	if u.cr&uart.CrUARTEN != 0 && u.cr&uart.CrRXE != 0 {
		for _, b := range p {
			if len(u.rx) == fifoDepth {
				break
			}
			u.rx = append(u.rx, b)
		}
	}
	pend := u.ris()&u.imsc != 0
	u.lock.Unlock()
	if pend {
		u.ic.Raise(u.line)
	}
	return len(p), nil
}

// Close implements io.Closer.
func (w *Wire) Close() error {
	u := w.u
	u.lock.Lock()
	u.closed = true
	u.cond.Broadcast()
	u.lock.Unlock()
	return nil
}
