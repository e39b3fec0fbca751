package uart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/console.go/pkg/irq"
)

func TestBaudDivisor(t *testing.T) {
	testCases := []struct {
		name     string
		clockHz  uint32
		baudRate uint32
		integer  uint32
		fraction uint32
	}{
		{"pico uart clock", 125000000, 115200, 67, 52},
		{"48 MHz", 48000000, 115200, 26, 3},
		{"exact divisor", 1843200, 115200, 1, 0},
		{"half rounds up", 1857600, 115200, 1, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			integer, fraction := BaudDivisor(tc.clockHz, tc.baudRate)
			require.Equal(t, tc.integer, integer)
			require.Equal(t, tc.fraction, fraction)
		})
	}
}

type regOp struct {
	reg Reg
	val uint32
}

// testRegs is a scripted register file: reads consume scripted
// values first and fall back to the last written value, writes are
// recorded in order.
type testRegs struct {
	values map[Reg]uint32
	reads  map[Reg][]uint32
	writes []regOp
	lock   sync.Mutex
}

func newTestRegs() *testRegs {
	return &testRegs{values: make(map[Reg]uint32), reads: make(map[Reg][]uint32)}
}

func (r *testRegs) scriptRead(reg Reg, vals ...uint32) {
	r.lock.Lock()
	r.reads[reg] = append(r.reads[reg], vals...)
	r.lock.Unlock()
}

func (r *testRegs) Read(reg Reg) uint32 {
	r.lock.Lock()
	defer r.lock.Unlock()
	if s := r.reads[reg]; len(s) > 0 {
		r.reads[reg] = s[1:]
		return s[0]
	}
	return r.values[reg]
}

func (r *testRegs) Write(reg Reg, val uint32) {
	r.lock.Lock()
	r.values[reg] = val
	r.writes = append(r.writes, regOp{reg, val})
	r.lock.Unlock()
}

func (r *testRegs) written() []regOp {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]regOp(nil), r.writes...)
}

type testResets struct {
	asserted  bool
	released  bool
	donePolls int
	polls     int
}

func (r *testResets) AssertReset()  { r.asserted = true }
func (r *testResets) ReleaseReset() { r.released = true }
func (r *testResets) ResetDone() bool {
	r.polls++
	return r.polls > r.donePolls
}

func TestPortBringUpSequence(t *testing.T) {
	regs := newTestRegs()
	resets := &testResets{donePolls: 3}
	NewPort(regs, resets, irq.NewController(), 20, &Config{ClockHz: 125000000})

	require.True(t, resets.asserted)
	require.True(t, resets.released)
	require.Equal(t, 4, resets.polls)

	wlen8 := uint32(3) << LcrWLENShift
	require.Equal(t, []regOp{
		{RegCR, 0},
		{RegIBRD, 67},
		{RegFBRD, 52},
		{RegLCRH, 0},
		{RegLCRH, wlen8},
		{RegLCRH, wlen8 | LcrFEN},
		{RegLCRH, wlen8 | LcrFEN},
		{RegLCRH, wlen8 | LcrFEN},
		{RegCR, CrUARTEN | CrTXE | CrRXE},
		{RegICR, IntClearAll},
		{RegIMSC, IntRX | IntRT},
	}, regs.written())
}

func TestPortBringUpFormat(t *testing.T) {
	regs := newTestRegs()
	NewPort(regs, &testResets{}, irq.NewController(), 20, &Config{
		ClockHz:     125000000,
		WordLength:  7,
		TwoStopBits: true,
		Parity:      true,
		NoFIFO:      true,
	})
	require.Equal(t, uint32(2)<<LcrWLENShift|LcrSTP2|LcrPEN, regs.values[RegLCRH])
}

func TestPortServiceIRQ(t *testing.T) {
	regs := newTestRegs()
	port := &Port{regs: regs, input: NewQueue(8)}
	regs.values[RegFR] = FrRXFE
	regs.scriptRead(RegMIS, IntRX)
	regs.scriptRead(RegFR, 0, 0, 0)
	regs.scriptRead(RegDR, 'h', 'i', '!')

	port.serviceIRQ()

	buf := make([]byte, 8)
	n := port.PollInput(buf)
	require.Equal(t, []byte("hi!"), buf[:n])
	writes := regs.written()
	require.Equal(t, regOp{RegICR, IntClearAll}, writes[len(writes)-1])
}

func TestPortServiceIRQSpurious(t *testing.T) {
	regs := newTestRegs()
	port := &Port{regs: regs, input: NewQueue(8)}
	regs.values[RegFR] = FrRXFE

	port.serviceIRQ()

	require.Zero(t, port.PollInput(make([]byte, 8)))
	// even a spurious cause is cleared
	require.Equal(t, []regOp{{RegICR, IntClearAll}}, regs.written())
}

func TestPortIRQWiring(t *testing.T) {
	regs := newTestRegs()
	ic := irq.NewController()
	port := NewPort(regs, &testResets{}, ic, 20, nil)
	regs.values[RegFR] = FrRXFE
	regs.scriptRead(RegMIS, IntRX)
	regs.scriptRead(RegFR, 0)
	regs.scriptRead(RegDR, 'x')

	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()
	go ic.Run(ctx)
	ic.Raise(20)

	buf := make([]byte, 8)
	deadline := time.Now().Add(time.Second)
	for port.PollInput(buf) == 0 {
		require.True(t, time.Now().Before(deadline), "input timeout")
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, byte('x'), buf[0])
}

func TestPortWriteByteBusyWait(t *testing.T) {
	regs := newTestRegs()
	port := &Port{regs: regs, input: NewQueue(8)}
	regs.scriptRead(RegFR, FrTXFF, FrTXFF, 0)

	port.WriteByte('x')

	require.Empty(t, regs.reads[RegFR], "flag reads not consumed")
	writes := regs.written()
	require.Equal(t, regOp{RegDR, uint32('x')}, writes[len(writes)-1])
}

func TestPortWrite(t *testing.T) {
	regs := newTestRegs()
	port := &Port{regs: regs, input: NewQueue(8)}
	n, err := port.Write([]byte("ok\r\n"))
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []regOp{
		{RegDR, 'o'},
		{RegDR, 'k'},
		{RegDR, '\r'},
		{RegDR, '\n'},
	}, regs.written())
}
