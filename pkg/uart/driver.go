package uart

import (
	"github.com/robotalks/console.go/pkg/irq"
)

// Port drives one serial peripheral: interrupt-driven receive into a
// bounded queue, polled transmit.
type Port struct {
	regs  Registers
	input *Queue
}

// NewPort brings up the peripheral and returns the driver. The
// bring-up order is fixed: reset cycle, disable, baud divisor, line
// format, enable, interrupts.
func NewPort(regs Registers, resets Resets, ic *irq.Controller, line irq.Line, conf *Config) *Port {
	if conf == nil {
		conf = &Config{}
	}
	p := &Port{
		regs:  regs,
		input: NewQueue(conf.inputBuffer()),
	}
	p.resetPeripheral(resets)
	p.regs.Write(RegCR, 0)
	p.configBaudRate(conf.ClockHz, conf.baudRate())
	p.configFormat(conf)
	p.regs.Write(RegCR, CrUARTEN|CrTXE|CrRXE)
	p.configInterrupts(ic, line)
	return p
}

func (p *Port) resetPeripheral(resets Resets) {
	resets.AssertReset()
	resets.ReleaseReset()
	for !resets.ResetDone() {
	}
}

func (p *Port) configBaudRate(clockHz, baudRate uint32) {
	integer, fraction := BaudDivisor(clockHz, baudRate)
	p.regs.Write(RegIBRD, integer)
	p.regs.Write(RegFBRD, fraction)
	// The divisor latches on the next LCRH write.
	p.regs.Write(RegLCRH, p.regs.Read(RegLCRH))
}

func (p *Port) configFormat(conf *Config) {
	p.modifyLCRH(uint32(conf.wordLength()-5)<<LcrWLENShift&LcrWLENMask, LcrWLENMask)
	if conf.NoFIFO {
		p.modifyLCRH(0, LcrFEN)
	} else {
		p.modifyLCRH(LcrFEN, 0)
	}
	if conf.TwoStopBits {
		p.modifyLCRH(LcrSTP2, 0)
	} else {
		p.modifyLCRH(0, LcrSTP2)
	}
	if conf.Parity {
		p.modifyLCRH(LcrPEN, 0)
	} else {
		p.modifyLCRH(0, LcrPEN)
	}
}

func (p *Port) configInterrupts(ic *irq.Controller, line irq.Line) {
	p.regs.Write(RegICR, IntClearAll)
	p.regs.Write(RegIMSC, IntRX|IntRT)
	ic.Handle(line, p.serviceIRQ)
	ic.Enable(line)
}

func (p *Port) modifyLCRH(set, clear uint32) {
	p.regs.Write(RegLCRH, p.regs.Read(RegLCRH)&^clear|set)
}

// serviceIRQ is the receive interrupt handler: drain the hardware
// FIFO into the input queue, then clear every pending cause.
func (p *Port) serviceIRQ() {
	if mis := p.regs.Read(RegMIS); mis&(IntRX|IntRT) != 0 {
		for p.regs.Read(RegFR)&FrRXFE == 0 {
			p.input.Put(byte(p.regs.Read(RegDR)))
		}
	}
	p.regs.Write(RegICR, IntClearAll)
}

// WriteByte sends one byte, spinning while the transmit FIFO is
// full. The error is always nil; transmission does not fail upward.
func (p *Port) WriteByte(b byte) error {
	for p.regs.Read(RegFR)&FrTXFF != 0 {
	}
	p.regs.Write(RegDR, uint32(b))
	return nil
}

// Write sends data. It implements io.Writer and never fails.
func (p *Port) Write(data []byte) (int, error) {
	for _, b := range data {
		p.WriteByte(b)
	}
	return len(data), nil
}

// PollInput moves received bytes into buf in arrival order and
// returns the count. A buf as large as the input queue capacity
// takes everything queued so far.
func (p *Port) PollInput(buf []byte) int {
	return p.input.Drain(buf)
}

// InputCap gets the input queue capacity.
func (p *Port) InputCap() int {
	return p.input.Cap()
}
