package uart

// Reg names a register of the serial peripheral.
type Reg uint8

// Registers of the peripheral, PL011 layout.
const (
	RegDR   Reg = iota // data
	RegFR              // flags
	RegIBRD            // integer baud rate divisor
	RegFBRD            // fractional baud rate divisor
	RegLCRH            // line control
	RegCR              // control
	RegIMSC            // interrupt mask set/clear
	RegMIS             // masked interrupt status
	RegICR             // interrupt clear
)

// Flag register bits.
const (
	FrTXFF uint32 = 1 << 5 // transmit FIFO full
	FrRXFE uint32 = 1 << 4 // receive FIFO empty
)

// Line control register bits.
const (
	LcrFEN  uint32 = 1 << 4 // FIFO enable
	LcrSTP2 uint32 = 1 << 3 // two stop bits select
	LcrPEN  uint32 = 1 << 1 // parity enable
)

// Word length field of the line control register.
const (
	LcrWLENShift        = 5
	LcrWLENMask  uint32 = 3 << LcrWLENShift
)

// Control register bits.
const (
	CrUARTEN uint32 = 1 << 0 // UART enable
	CrTXE    uint32 = 1 << 8 // transmit enable
	CrRXE    uint32 = 1 << 9 // receive enable
)

// Interrupt cause bits, shared by IMSC, MIS and ICR.
const (
	IntRX uint32 = 1 << 4 // receive
	IntRT uint32 = 1 << 6 // receive timeout
)

// IntClearAll clears every interrupt cause when written to ICR.
const IntClearAll uint32 = 0xffff

// Registers is the register file of one serial peripheral.
type Registers interface {
	Read(Reg) uint32
	Write(Reg, uint32)
}

// Resets controls the subsystem reset of the peripheral.
type Resets interface {
	AssertReset()
	ReleaseReset()
	ResetDone() bool
}
