package sim

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/console.go/pkg/irq"
	"github.com/robotalks/console.go/pkg/uart"
)

func TestUARTDivisorLatch(t *testing.T) {
	u := NewUART(irq.NewController(), UARTLine)
	u.Write(uart.RegIBRD, 67)
	u.Write(uart.RegFBRD, 52)
	integer, fraction := u.Divisor()
	require.Zero(t, integer)
	require.Zero(t, fraction)

	u.Write(uart.RegLCRH, u.Read(uart.RegLCRH))
	integer, fraction = u.Divisor()
	require.Equal(t, uint32(67), integer)
	require.Equal(t, uint32(52), fraction)

	// a new divisor trails again until the next LCRH write
	u.Write(uart.RegIBRD, 10)
	integer, _ = u.Divisor()
	require.Equal(t, uint32(67), integer)
}

func TestUARTReceiveGating(t *testing.T) {
	u := NewUART(irq.NewController(), UARTLine)
	wire := u.Wire()

	_, err := wire.Write([]byte("lost"))
	require.NoError(t, err)
	require.NotZero(t, u.Read(uart.RegFR)&uart.FrRXFE, "bytes accepted while disabled")

	u.Write(uart.RegCR, uart.CrUARTEN|uart.CrRXE)
	_, err = wire.Write([]byte("k"))
	require.NoError(t, err)
	require.Zero(t, u.Read(uart.RegFR)&uart.FrRXFE)
	require.Equal(t, uint32('k'), u.Read(uart.RegDR))
	require.NotZero(t, u.Read(uart.RegFR)&uart.FrRXFE)
}

func TestUARTInterruptMasking(t *testing.T) {
	ic := irq.NewController()
	u := NewUART(ic, UARTLine)
	u.Write(uart.RegCR, uart.CrUARTEN|uart.CrRXE)

	u.Wire().Write([]byte("x"))
	require.False(t, ic.Pending(UARTLine), "raised while masked")
	require.Zero(t, u.Read(uart.RegMIS))

	// unmasking with a cause outstanding raises immediately
	u.Write(uart.RegIMSC, uart.IntRX|uart.IntRT)
	require.True(t, ic.Pending(UARTLine))
	require.Equal(t, uart.IntRX|uart.IntRT, u.Read(uart.RegMIS))
}

func TestUARTFIFOOverrun(t *testing.T) {
	b := NewBoard()
	port := b.NewPort(nil)

	long := make([]byte, fifoDepth+16)
	for i := range long {
		long[i] = byte('0' + i%10)
	}
	_, err := b.UART.Wire().Write(long)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()
	go b.IC.Run(ctx)

	got := pollInput(t, port, fifoDepth)
	require.Equal(t, long[:fifoDepth], got)
}

func TestBoardLoopback(t *testing.T) {
	b := NewBoard()
	port := b.NewPort(nil)

	integer, fraction := b.UART.Divisor()
	require.Equal(t, uint32(67), integer)
	require.Equal(t, uint32(52), fraction)
	require.Equal(t, uart.CrUARTEN|uart.CrTXE|uart.CrRXE, b.UART.Read(uart.RegCR))
	require.Equal(t, uart.IntRX|uart.IntRT, b.UART.Read(uart.RegIMSC))

	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()
	go b.IC.Run(ctx)

	wire := b.UART.Wire()
	_, err := wire.Write([]byte("hi"))
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), pollInput(t, port, 2))

	port.Write([]byte("ok\r\n"))
	require.Equal(t, []byte("ok\r\n"), readWire(t, wire, 4))
}

func TestWireClose(t *testing.T) {
	u := NewUART(irq.NewController(), UARTLine)
	u.Write(uart.RegCR, uart.CrUARTEN|uart.CrTXE|uart.CrRXE)
	wire := u.Wire()
	u.Write(uart.RegDR, 'a')
	require.NoError(t, wire.Close())

	buf := make([]byte, 4)
	n, err := wire.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte("a"), buf[:n])
	_, err = wire.Read(buf)
	require.Equal(t, io.EOF, err)
	_, err = wire.Write([]byte("x"))
	require.Equal(t, io.ErrClosedPipe, err)
}

func pollInput(t *testing.T, port *uart.Port, want int) []byte {
	var got []byte
	buf := make([]byte, port.InputCap())
	deadline := time.Now().Add(time.Second)
	for len(got) < want {
		if n := port.PollInput(buf); n > 0 {
			got = append(got, buf[:n]...)
			continue
		}
		require.True(t, time.Now().Before(deadline), "input timeout")
		time.Sleep(time.Millisecond)
	}
	return got
}

func readWire(t *testing.T, wire *Wire, want int) []byte {
	resCh := make(chan []byte, 1)
	go func() {
		var got []byte
		buf := make([]byte, 64)
		for len(got) < want {
			n, err := wire.Read(buf)
			if err != nil {
				break
			}
			got = append(got, buf[:n]...)
		}
		resCh <- got
	}()
	select {
	case got := <-resCh:
		return got
	case <-time.After(time.Second):
		t.Fatal("wire read timeout")
		return nil
	}
}
