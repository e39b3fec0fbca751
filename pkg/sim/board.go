package sim

import (
	fx "github.com/robotalks/console.go/pkg/framework"
	"github.com/robotalks/console.go/pkg/irq"
	"github.com/robotalks/console.go/pkg/uart"
)

// ClockHz is the peripheral clock of the simulated board.
const ClockHz uint32 = 125000000

// UARTLine is the interrupt request line of the UART.
const UARTLine irq.Line = 20

// Board assembles a simulated device: interrupt controller, reset
// controller, one serial peripheral. It lets the firmware stack run
// without hardware.
type Board struct {
	IC     *irq.Controller
	Resets *Resets
	UART   *UART
}

// NewBoard creates a Board.
func NewBoard() *Board {
	ic := irq.NewController()
	return &Board{
		IC:     ic,
		Resets: &Resets{DonePolls: 2},
		UART:   NewUART(ic, UARTLine),
	}
}

// NewPort brings up the serial driver against the board, filling in
// the board clock when conf leaves it zero.
func (b *Board) NewPort(conf *uart.Config) *uart.Port {
	var c uart.Config
	if conf != nil {
		c = *conf
	}
	if c.ClockHz == 0 {
		c.ClockHz = ClockHz
	}
	return uart.NewPort(b.UART, b.Resets, b.IC, UARTLine, &c)
}

// AddToLoop implements LoopAdder: the interrupt dispatcher joins the
// loop's goroutine group.
func (b *Board) AddToLoop(l *fx.Loop) {
	l.AddRunnable(fx.NamedRun("irq", b.IC))
}
