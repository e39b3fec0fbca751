package wire

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startRelay(t *testing.T) (*Relay, net.Conn, context.CancelFunc, chan error) {
	devA, devB := net.Pipe()
	relay := NewRelay(devA)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	return relay, devB, cancel, done
}

func waitStopped(t *testing.T, done chan error) {
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("relay did not stop")
	}
}

func TestRelaySession(t *testing.T) {
	relay, dev, cancel, done := startRelay(t)
	defer cancel()

	s, err := relay.Attach()
	require.NoError(t, err)

	_, err = dev.Write([]byte("out"))
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, "out", string(buf))

	go s.Write([]byte("in"))
	buf = buf[:2]
	_, err = io.ReadFull(dev, buf)
	require.NoError(t, err)
	require.Equal(t, "in", string(buf))

	cancel()
	waitStopped(t, done)
}

func TestRelayBusy(t *testing.T) {
	relay, _, cancel, done := startRelay(t)
	defer cancel()

	s, err := relay.Attach()
	require.NoError(t, err)
	_, err = relay.Attach()
	require.Equal(t, ErrBusy, err)

	require.NoError(t, s.Close())
	s2, err := relay.Attach()
	require.NoError(t, err)
	s2.Close()

	cancel()
	waitStopped(t, done)
}

func TestRelayBuffersBetweenSessions(t *testing.T) {
	relay, dev, cancel, done := startRelay(t)
	defer cancel()

	// Output produced before anyone attaches is kept.
	_, err := dev.Write([]byte("banner"))
	require.NoError(t, err)

	s, err := relay.Attach()
	require.NoError(t, err)
	buf := make([]byte, 6)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, "banner", string(buf))

	cancel()
	waitStopped(t, done)
}

func TestRelaySessionClose(t *testing.T) {
	relay, _, cancel, done := startRelay(t)
	defer cancel()

	s, err := relay.Attach()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = s.Read(make([]byte, 1))
	require.Equal(t, io.EOF, err)
	_, err = s.Write([]byte("x"))
	require.Error(t, err)

	cancel()
	waitStopped(t, done)
}

func TestRelayStopUnblocksSession(t *testing.T) {
	relay, _, cancel, done := startRelay(t)

	s, err := relay.Attach()
	require.NoError(t, err)
	cancel()
	waitStopped(t, done)

	_, err = s.Read(make([]byte, 1))
	require.Equal(t, io.EOF, err)
}
